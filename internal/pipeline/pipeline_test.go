// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/leadify/internal/condense"
	"github.com/pdiddy/leadify/internal/extract"
	"github.com/pdiddy/leadify/pkg/types"
)

// --- stage mocks ---

type stubCondenser struct {
	topic string
	got   string
	after func()
}

func (s *stubCondenser) Condense(_ context.Context, query string) string {
	s.got = query
	if s.after != nil {
		s.after()
	}
	return s.topic
}

type stubDiscoverer struct {
	urls     []string
	gotTopic string
	gotLimit int
	called   bool
}

func (s *stubDiscoverer) Discover(_ context.Context, topic string, limit int) []string {
	s.called = true
	s.gotTopic = topic
	s.gotLimit = limit
	return s.urls
}

type stubPages struct {
	pages  map[string]types.PageResult
	failed map[string]bool
}

func (s *stubPages) ExtractPage(_ context.Context, url string) (types.PageResult, error) {
	if s.failed[url] {
		return types.PageResult{}, assert.AnError
	}
	return s.pages[url], nil
}

type spyExtractor struct {
	Extractor
	called bool
}

func (s *spyExtractor) Extract(ctx context.Context, urls []string, w io.Writer) (extract.BatchResult, error) {
	s.called = true
	return s.Extractor.Extract(ctx, urls, w)
}

func page(users ...string) types.PageResult {
	var p types.PageResult
	for _, u := range users {
		p.Interactions = append(p.Interactions, types.Interaction{Username: u, Bio: u + " bio", PostType: "question", Upvotes: 3})
	}
	return p
}

// --- Run ---

func TestRunCompleted(t *testing.T) {
	d := &stubDiscoverer{urls: []string{"u1", "u2", "u3"}}
	pages := &stubPages{
		pages:  map[string]types.PageResult{"u1": page("a", "b"), "u3": page("c")},
		failed: map[string]bool{"u2": true},
	}
	var buf bytes.Buffer
	p := NewWithStages(condense.NewWithModel(nil, 0), d, extract.NewWithBackend(pages, 1, 0), 3, &buf)

	res, err := p.Run(context.Background(), "Find people who need AI chatbots for e-commerce")
	require.NoError(t, err)

	assert.Equal(t, "people chatbots commerce", res.Topic)
	assert.Equal(t, "people chatbots commerce", d.gotTopic)
	assert.Equal(t, 3, d.gotLimit)
	assert.Equal(t, types.OutcomeCompleted, res.Outcome)
	assert.Equal(t, []string{"u1", "u2", "u3"}, res.URLs)

	require.Len(t, res.Leads, 3)
	assert.Equal(t, "a", res.Leads[0].Username)
	assert.Equal(t, "u1", res.Leads[0].WebsiteURL)
	assert.Equal(t, "b", res.Leads[1].Username)
	assert.Equal(t, "c", res.Leads[2].Username)
	assert.Equal(t, "u3", res.Leads[2].WebsiteURL)
	for _, l := range res.Leads {
		assert.Equal(t, "Quora", l.DataSource)
	}

	assert.Equal(t, types.ExtractionSummary{Extracted: 2, Failed: 1}, res.Extraction)
	assert.False(t, res.StartedAt.IsZero())

	out := buf.String()
	assert.Contains(t, out, "found 3 discussions")
	assert.Contains(t, out, "failed  u2:")
	assert.Contains(t, out, "2 extracted, 0 empty, 1 failed (total: 3)")
}

func TestRunNoDiscussions(t *testing.T) {
	ex := &spyExtractor{Extractor: extract.NewWithBackend(&stubPages{}, 1, 0)}
	p := NewWithStages(&stubCondenser{topic: "ML fraud detection"}, &stubDiscoverer{}, ex, 3, nil)

	res, err := p.Run(context.Background(), "fraud")
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeNoDiscussions, res.Outcome)
	assert.Equal(t, "No relevant discussions found. Try modifying your search query.", res.Outcome.Message())
	assert.NotNil(t, res.URLs)
	assert.Empty(t, res.Leads)
	assert.False(t, ex.called, "extraction must not run without URLs")
}

func TestRunNoLeads(t *testing.T) {
	pages := &stubPages{
		pages:  map[string]types.PageResult{"u1": {}},
		failed: map[string]bool{"u2": true},
	}
	p := NewWithStages(&stubCondenser{topic: "t"}, &stubDiscoverer{urls: []string{"u1", "u2"}},
		extract.NewWithBackend(pages, 1, 0), 3, nil)

	res, err := p.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeNoLeads, res.Outcome)
	assert.Equal(t, "No lead data could be extracted from the URLs. Try adjusting your search query.", res.Outcome.Message())
	assert.NotNil(t, res.Leads)
	assert.Empty(t, res.Leads)
}

func TestRunEmptyTopicStillSearches(t *testing.T) {
	d := &stubDiscoverer{}
	p := NewWithStages(condense.NewWithModel(nil, 0), d, extract.NewWithBackend(&stubPages{}, 1, 0), 3, nil)

	res, err := p.Run(context.Background(), "the of a")
	require.NoError(t, err)
	assert.Equal(t, "", res.Topic)
	assert.True(t, d.called)
	assert.Equal(t, types.OutcomeNoDiscussions, res.Outcome)
}

func TestRunEmptyQuery(t *testing.T) {
	d := &stubDiscoverer{}
	p := NewWithStages(&stubCondenser{}, d, nil, 3, nil)

	for _, q := range []string{"", "   \n"} {
		res, err := p.Run(context.Background(), q)
		assert.ErrorIs(t, err, ErrEmptyQuery)
		assert.Nil(t, res)
	}
	assert.False(t, d.called)
}

func TestRunCancelledBetweenStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := &stubCondenser{topic: "topic", after: cancel}
	d := &stubDiscoverer{urls: []string{"u1"}}
	p := NewWithStages(c, d, nil, 3, nil)

	res, err := p.Run(ctx, "query")
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.Equal(t, "topic", res.Topic)
	assert.False(t, d.called)
}

type cancellingPages struct {
	cancel context.CancelFunc
	stubPages
}

func (c *cancellingPages) ExtractPage(ctx context.Context, url string) (types.PageResult, error) {
	if url == "u2" {
		c.cancel()
	}
	return c.stubPages.ExtractPage(ctx, url)
}

func TestRunCancelledDuringExtractionKeepsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pages := &cancellingPages{
		cancel:    cancel,
		stubPages: stubPages{pages: map[string]types.PageResult{"u1": page("a"), "u2": page("b"), "u3": page("c")}},
	}
	p := NewWithStages(&stubCondenser{topic: "t"}, &stubDiscoverer{urls: []string{"u1", "u2", "u3"}},
		extract.NewWithBackend(pages, 1, 0), 3, nil)

	res, err := p.Run(ctx, "q")
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	require.NotEmpty(t, res.Leads)
	assert.Equal(t, "a", res.Leads[0].Username)
	assert.Equal(t, 1, res.Extraction.NotAttempted)
}

func TestRunResultsAreIndependent(t *testing.T) {
	d := &stubDiscoverer{urls: []string{"u1"}}
	pages := &stubPages{pages: map[string]types.PageResult{"u1": page("a")}}
	p := NewWithStages(&stubCondenser{topic: "t"}, d, extract.NewWithBackend(pages, 1, 0), 3, nil)

	first, err := p.Run(context.Background(), "q")
	require.NoError(t, err)
	first.Leads[0].Username = "mutated"

	second, err := p.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "a", second.Leads[0].Username)
}

func TestRunStartedAt(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewWithStages(&stubCondenser{topic: "t"}, &stubDiscoverer{}, nil, 3, nil)
	p.now = func() time.Time { return fixed }

	res, err := p.Run(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, fixed, res.StartedAt)
}

// --- New ---

func TestNewRequiresSearchKey(t *testing.T) {
	_, err := New(types.PipelineConfig{}, io.Discard)
	assert.ErrorIs(t, err, ErrMissingSearchKey)

	_, err = New(types.PipelineConfig{Discovery: types.DiscoveryConfig{APIKey: "  "}}, io.Discard)
	assert.ErrorIs(t, err, ErrMissingSearchKey)
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := types.PipelineConfig{Discovery: types.DiscoveryConfig{APIKey: "fc", Limit: 50}}
	_, err := New(cfg, io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func TestNewWithoutLanguageModelKey(t *testing.T) {
	cfg := types.PipelineConfig{Discovery: types.DiscoveryConfig{APIKey: "fc-test", Limit: 5}}
	p, err := New(cfg, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 5, p.limit)

	c, ok := p.condenser.(*condense.Condenser)
	require.True(t, ok)
	assert.False(t, c.HasModel())
}
