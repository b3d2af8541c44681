// Package extract pulls structured user interactions out of discussion pages
// through a schema-directed extraction service.
//
// Each URL is handled independently: a failure on one page is reported and
// counted, never allowed to abort the batch. Results keep the input order of
// the URLs that produced at least one interaction.
package extract

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/leadify/pkg/types"
)

// PageBackend abstracts the extraction service so tests can supply a mock.
// Each call handles a single page URL.
type PageBackend interface {
	ExtractPage(ctx context.Context, url string) (types.PageResult, error)
}

// BatchResult is the outcome of extracting a list of URLs.
type BatchResult struct {
	// Pages holds one entry per page that yielded interactions, in input order.
	Pages   []types.PageLeads
	Summary types.ExtractionSummary
}

// Client runs page extractions with bounded concurrency.
type Client struct {
	backend     PageBackend
	concurrency int
	maxWait     time.Duration
}

// New returns a Client backed by the Firecrawl extract API.
func New(cfg types.ExtractionConfig) *Client {
	cfg = types.PipelineConfig{Extraction: cfg}.WithDefaults().Extraction
	return NewWithBackend(NewFirecrawlBackend(cfg), cfg.Concurrency, cfg.MaxWait)
}

// NewWithBackend returns a Client using backend. Concurrency below 1 is
// treated as 1; a non-positive maxWait disables the per-page deadline.
func NewWithBackend(backend PageBackend, concurrency int, maxWait time.Duration) *Client {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Client{backend: backend, concurrency: concurrency, maxWait: maxWait}
}

type pageState int

const (
	stateNotAttempted pageState = iota
	stateExtracted
	stateEmpty
	stateFailed
)

type pageOutcome struct {
	state        pageState
	interactions []types.Interaction
}

// Extract processes urls and writes one progress line per page to w.
//
// When ctx is cancelled no further URLs are started; the pages gathered so
// far are returned together with ctx.Err(). Any other error is per-page and
// only shows up in the summary.
func (c *Client) Extract(ctx context.Context, urls []string, w io.Writer) (BatchResult, error) {
	outcomes := make([]pageOutcome, len(urls))

	var mu sync.Mutex
	report := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format, args...)
	}

	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for i, u := range urls {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			report("extracting %s\n", u)

			page, err := c.extractOne(ctx, u)
			switch {
			case err != nil:
				report("failed  %s: %v\n", u, err)
				outcomes[i].state = stateFailed
			case len(page.Interactions) == 0:
				report("empty   %s\n", u)
				outcomes[i].state = stateEmpty
			default:
				report("extracted %s (%d interactions)\n", u, len(page.Interactions))
				outcomes[i] = pageOutcome{state: stateExtracted, interactions: page.Interactions}
			}
			return nil
		})
	}
	_ = g.Wait()

	var result BatchResult
	for i, o := range outcomes {
		switch o.state {
		case stateExtracted:
			result.Summary.Extracted++
			result.Pages = append(result.Pages, types.PageLeads{URL: urls[i], Interactions: o.interactions})
		case stateEmpty:
			result.Summary.Empty++
		case stateFailed:
			result.Summary.Failed++
		default:
			result.Summary.NotAttempted++
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (c *Client) extractOne(ctx context.Context, url string) (types.PageResult, error) {
	if c.maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.maxWait)
		defer cancel()
	}
	return c.backend.ExtractPage(ctx, url)
}
