// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover finds candidate discussion pages for a topic phrase
// through the Firecrawl web search API.
//
// Discovery failures are not errors to the caller: any transport, status or
// decoding problem yields an empty URL list and a warning in the log.
package discover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pdiddy/leadify/internal/httputil"
	"github.com/pdiddy/leadify/pkg/types"
)

// searchAPIURL is the Firecrawl search endpoint. Declared as a var so tests
// can substitute an httptest server.
var searchAPIURL = "https://api.firecrawl.dev/v1/search"

// queryTemplate embeds the topic phrase into the search sentence.
const queryTemplate = "quora websites where people are looking for %s services"

// Client queries the search service.
type Client struct {
	HTTP *http.Client
	cfg  types.DiscoveryConfig
}

// New returns a Client for cfg. Zero-valued settings take their defaults.
func New(cfg types.DiscoveryConfig) *Client {
	cfg = types.PipelineConfig{Discovery: cfg}.WithDefaults().Discovery
	return &Client{
		HTTP: &http.Client{Timeout: cfg.Timeout},
		cfg:  cfg,
	}
}

// BuildQuery returns the search sentence for topic.
func BuildQuery(topic string) string {
	return fmt.Sprintf(queryTemplate, topic)
}

type searchRequest struct {
	Query    string `json:"query"`
	Limit    int    `json:"limit"`
	Lang     string `json:"lang"`
	Location string `json:"location"`
	Timeout  int64  `json:"timeout"`
}

type searchResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"data"`
	Error string `json:"error"`
}

// Discover returns up to limit candidate URLs for topic in the order the
// service ranked them. Limit is clamped to [1,10]; non-positive means 3.
// It never returns an error: failures produce an empty slice.
func (c *Client) Discover(ctx context.Context, topic string, limit int) []string {
	limit = types.ClampLimit(limit)
	urls, err := c.search(ctx, BuildQuery(topic), limit)
	if err != nil {
		slog.WarnContext(ctx, "discovery failed", "topic", topic, "error", err)
		return []string{}
	}
	return urls
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]string, error) {
	body, err := json.Marshal(searchRequest{
		Query:    query,
		Limit:    limit,
		Lang:     c.cfg.Lang,
		Location: c.cfg.Location,
		Timeout:  c.cfg.SearchTimeout.Milliseconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchAPIURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.cfg.RateLimitRetries)
	if err != nil {
		return nil, fmt.Errorf("search API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}
	if !sr.Success {
		if sr.Error != "" {
			return nil, fmt.Errorf("search API reported failure: %s", sr.Error)
		}
		return nil, fmt.Errorf("search API reported failure")
	}

	urls := make([]string, 0, limit)
	for _, d := range sr.Data {
		if d.URL == "" {
			continue
		}
		urls = append(urls, d.URL)
		if len(urls) == limit {
			break
		}
	}
	return urls, nil
}
