// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/leadify/internal/httputil"
	"github.com/pdiddy/leadify/pkg/types"
)

// withServer points searchAPIURL at a test server for the duration of t.
func withServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	ts := httptest.NewServer(h)
	orig := searchAPIURL
	searchAPIURL = ts.URL
	t.Cleanup(func() {
		searchAPIURL = orig
		ts.Close()
	})
}

func newTestClient() *Client {
	return New(types.DiscoveryConfig{APIKey: "fc-test"})
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "quora websites where people are looking for ML fraud detection services", BuildQuery("ML fraud detection"))
	assert.Equal(t, "quora websites where people are looking for  services", BuildQuery(""))
}

func TestDiscoverRequest(t *testing.T) {
	var got searchRequest
	var auth, method, ctype string
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		auth = r.Header.Get("Authorization")
		ctype = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		fmt.Fprint(w, `{"success":true,"data":[{"url":"https://www.quora.com/a"}]}`)
	})

	urls := newTestClient().Discover(context.Background(), "voice cloning technology", 5)

	assert.Equal(t, []string{"https://www.quora.com/a"}, urls)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "Bearer fc-test", auth)
	assert.Equal(t, "application/json", ctype)
	assert.Equal(t, "quora websites where people are looking for voice cloning technology services", got.Query)
	assert.Equal(t, 5, got.Limit)
	assert.Equal(t, "en", got.Lang)
	assert.Equal(t, "United States", got.Location)
	assert.Equal(t, int64(60000), got.Timeout)
}

func TestDiscoverOrderAndTruncation(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":[
			{"url":"https://www.quora.com/3"},
			{"url":""},
			{"url":"https://www.quora.com/1"},
			{"url":"https://www.quora.com/3"},
			{"url":"https://www.quora.com/2"}
		]}`)
	})

	c := newTestClient()
	assert.Equal(t, []string{"https://www.quora.com/3", "https://www.quora.com/1"}, c.Discover(context.Background(), "x", 2))
	assert.Equal(t,
		[]string{"https://www.quora.com/3", "https://www.quora.com/1", "https://www.quora.com/3", "https://www.quora.com/2"},
		c.Discover(context.Background(), "x", 10),
		"duplicates are kept and order is preserved")
}

func TestDiscoverLimitClamp(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero takes default", 0, 3},
		{"negative takes default", -4, 3},
		{"above max", 25, 10},
		{"in range", 7, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sent int
			withServer(t, func(w http.ResponseWriter, r *http.Request) {
				var req searchRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				sent = req.Limit
				fmt.Fprint(w, `{"success":true,"data":[]}`)
			})
			urls := newTestClient().Discover(context.Background(), "x", tt.limit)
			assert.Empty(t, urls)
			assert.NotNil(t, urls)
			assert.Equal(t, tt.want, sent)
		})
	}
}

func TestDiscoverFailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"unauthorized", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"success":false,"error":"Unauthorized"}`)
		}},
		{"success false", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"success":false,"error":"quota exceeded","data":[{"url":"https://www.quora.com/a"}]}`)
		}},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html>gateway</html>`)
		}},
		{"missing success flag", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"data":[{"url":"https://www.quora.com/a"}]}`)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withServer(t, tt.handler)
			urls := newTestClient().Discover(context.Background(), "x", 3)
			assert.NotNil(t, urls)
			assert.Empty(t, urls)
		})
	}
}

func TestDiscoverTransportError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	orig := searchAPIURL
	searchAPIURL = ts.URL
	ts.Close()
	t.Cleanup(func() { searchAPIURL = orig })

	assert.Empty(t, newTestClient().Discover(context.Background(), "x", 3))
}

func TestDiscoverRateLimitRetries(t *testing.T) {
	origDelay := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	t.Cleanup(func() { httputil.RetryBaseDelay = origDelay })

	var calls int32
	withServer(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"success":true,"data":[{"url":"https://www.quora.com/a"}]}`)
	})

	c := New(types.DiscoveryConfig{APIKey: "fc-test", HTTPConfig: types.HTTPConfig{RateLimitRetries: 2}})
	urls := c.Discover(context.Background(), "x", 3)
	require.Len(t, urls, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDiscoverNoRetryByDefault(t *testing.T) {
	var calls int32
	withServer(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	assert.Empty(t, newTestClient().Discover(context.Background(), "x", 3))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
