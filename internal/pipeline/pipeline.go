// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one lead-generation pass: condense the query, discover
// discussion pages, extract interactions and flatten them into lead rows.
//
// Stage clients are built per run from the supplied configuration. The
// pipeline holds no state between runs and the RunResult it returns belongs
// to the caller.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pdiddy/leadify/internal/condense"
	"github.com/pdiddy/leadify/internal/discover"
	"github.com/pdiddy/leadify/internal/extract"
	"github.com/pdiddy/leadify/internal/normalize"
	"github.com/pdiddy/leadify/pkg/types"
)

var (
	// ErrEmptyQuery is returned when the query is blank.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrMissingSearchKey is returned when no search service key is configured.
	ErrMissingSearchKey = errors.New("search service API key is required")
)

// Condenser turns a query into a topic phrase.
type Condenser interface {
	Condense(ctx context.Context, query string) string
}

// Discoverer finds candidate page URLs for a topic.
type Discoverer interface {
	Discover(ctx context.Context, topic string, limit int) []string
}

// Extractor pulls interactions from a list of page URLs.
type Extractor interface {
	Extract(ctx context.Context, urls []string, w io.Writer) (extract.BatchResult, error)
}

// Pipeline wires the three stage clients together.
type Pipeline struct {
	condenser  Condenser
	discoverer Discoverer
	extractor  Extractor
	limit      int
	w          io.Writer
	now        func() time.Time
}

// New builds a Pipeline from cfg. Progress lines go to w.
func New(cfg types.PipelineConfig, w io.Writer) (*Pipeline, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if strings.TrimSpace(cfg.Discovery.APIKey) == "" {
		return nil, ErrMissingSearchKey
	}
	if cfg.Extraction.APIKey == "" {
		cfg.Extraction.APIKey = cfg.Discovery.APIKey
	}

	return NewWithStages(
		condense.New(cfg.Condense),
		discover.New(cfg.Discovery),
		extract.New(cfg.Extraction),
		cfg.Discovery.Limit,
		w,
	), nil
}

// NewWithStages builds a Pipeline from explicit stage implementations.
func NewWithStages(c Condenser, d Discoverer, e Extractor, limit int, w io.Writer) *Pipeline {
	if w == nil {
		w = io.Discard
	}
	return &Pipeline{
		condenser:  c,
		discoverer: d,
		extractor:  e,
		limit:      types.ClampLimit(limit),
		w:          w,
		now:        time.Now,
	}
}

// Run executes the pipeline for query. The returned RunResult is never nil
// when err is nil. On cancellation the stages completed so far are kept in
// the result and ctx.Err() is returned alongside it.
func (p *Pipeline) Run(ctx context.Context, query string) (*types.RunResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	res := &types.RunResult{
		Query:     query,
		URLs:      []string{},
		Leads:     []types.LeadRecord{},
		StartedAt: p.now().UTC(),
	}

	fmt.Fprintf(p.w, "condensing query\n")
	res.Topic = p.condenser.Condense(ctx, query)
	fmt.Fprintf(p.w, "topic: %q\n", res.Topic)
	if err := ctx.Err(); err != nil {
		return res, err
	}

	res.URLs = p.discoverer.Discover(ctx, res.Topic, p.limit)
	if res.URLs == nil {
		res.URLs = []string{}
	}
	fmt.Fprintf(p.w, "found %d discussions\n", len(res.URLs))
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if len(res.URLs) == 0 {
		res.Outcome = types.OutcomeNoDiscussions
		return res, nil
	}

	batch, err := p.extractor.Extract(ctx, res.URLs, p.w)
	res.Pages = batch.Pages
	res.Extraction = batch.Summary
	res.Leads = normalize.Flatten(batch.Pages)
	fmt.Fprintf(p.w, "\nExtraction summary: %d extracted, %d empty, %d failed (total: %d)\n",
		batch.Summary.Extracted, batch.Summary.Empty, batch.Summary.Failed, batch.Summary.Total())
	if err != nil {
		slog.DebugContext(ctx, "extraction interrupted", "error", err, "pages", len(batch.Pages))
		return res, err
	}

	if len(res.Leads) == 0 {
		res.Outcome = types.OutcomeNoLeads
		return res, nil
	}
	res.Outcome = types.OutcomeCompleted
	return res, nil
}
