// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/pdiddy/leadify/internal/httputil"
	"github.com/pdiddy/leadify/pkg/types"
)

// extractionPrompt is the instruction sent with every page.
const extractionPrompt = "Extract all user information including username, bio, post type (question/answer), " +
	"timestamp, upvotes, and any links from Quora posts. Focus on identifying potential leads " +
	"who are asking questions or providing answers related to the topic."

// extractAPIURL is the Firecrawl extract endpoint. Job status lives at
// extractAPIURL + "/" + id. Package-level var for test substitution.
var extractAPIURL = "https://api.firecrawl.dev/v1/extract"

// Job states reported by the extract API.
const (
	statusCompleted  = "completed"
	statusProcessing = "processing"
	statusPending    = "pending"
)

// pageSchema is the JSON Schema describing types.PageResult, reflected once.
var pageSchema = sync.OnceValue(func() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(&types.PageResult{})
})

// FirecrawlBackend calls the Firecrawl extract API for one page at a time.
type FirecrawlBackend struct {
	Client           *http.Client
	APIKey           string
	UserAgent        string
	PollInterval     time.Duration
	RateLimitRetries int
}

// NewFirecrawlBackend builds a backend from cfg.
func NewFirecrawlBackend(cfg types.ExtractionConfig) *FirecrawlBackend {
	return &FirecrawlBackend{
		Client:           &http.Client{Timeout: cfg.Timeout},
		APIKey:           cfg.APIKey,
		UserAgent:        cfg.UserAgent,
		PollInterval:     cfg.PollInterval,
		RateLimitRetries: cfg.RateLimitRetries,
	}
}

type extractRequest struct {
	URLs   []string           `json:"urls"`
	Prompt string             `json:"prompt"`
	Schema *jsonschema.Schema `json:"schema"`
}

// extractResponse covers both the submit answer and the job status answer.
type extractResponse struct {
	Success bool            `json:"success"`
	ID      string          `json:"id"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// ExtractPage submits url for extraction and waits for the job to finish.
// The page counts as extracted only when the service reports success and a
// completed status.
func (b *FirecrawlBackend) ExtractPage(ctx context.Context, url string) (types.PageResult, error) {
	body, err := json.Marshal(extractRequest{
		URLs:   []string{url},
		Prompt: extractionPrompt,
		Schema: pageSchema(),
	})
	if err != nil {
		return types.PageResult{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, extractAPIURL, bytes.NewReader(body))
	if err != nil {
		return types.PageResult{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	er, err := b.do(ctx, req)
	if err != nil {
		return types.PageResult{}, err
	}

	if er.ID != "" && pending(er.Status) {
		er, err = b.poll(ctx, er.ID)
		if err != nil {
			return types.PageResult{}, err
		}
	}

	if er.Status != statusCompleted {
		return types.PageResult{}, fmt.Errorf("extraction status %q", er.Status)
	}

	var page types.PageResult
	if len(er.Data) > 0 {
		if err := json.Unmarshal(er.Data, &page); err != nil {
			return types.PageResult{}, fmt.Errorf("decoding extracted data: %w", err)
		}
	}
	return page, nil
}

// poll checks the job status every PollInterval until it leaves the
// processing state or ctx ends.
func (b *FirecrawlBackend) poll(ctx context.Context, id string) (extractResponse, error) {
	interval := b.PollInterval
	if interval <= 0 {
		interval = types.DefaultPollInterval
	}
	statusURL := strings.TrimSuffix(extractAPIURL, "/") + "/" + id

	for {
		select {
		case <-ctx.Done():
			return extractResponse{}, fmt.Errorf("waiting for extract job %s: %w", id, ctx.Err())
		case <-time.After(interval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return extractResponse{}, fmt.Errorf("creating request: %w", err)
		}
		er, err := b.do(ctx, req)
		if err != nil {
			return extractResponse{}, err
		}
		switch er.Status {
		case statusProcessing, statusPending:
			continue
		}
		return er, nil
	}
}

// pending reports whether a job in status has not finished yet. A submit
// answer without a status is an accepted job.
func pending(status string) bool {
	switch status {
	case "", statusProcessing, statusPending:
		return true
	}
	return false
}

// do sends req with auth headers and decodes a successful response.
func (b *FirecrawlBackend) do(ctx context.Context, req *http.Request) (extractResponse, error) {
	req.Header.Set("Authorization", "Bearer "+b.APIKey)
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, b.RateLimitRetries)
	if err != nil {
		return extractResponse{}, fmt.Errorf("extract API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return extractResponse{}, fmt.Errorf("extract API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var er extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return extractResponse{}, fmt.Errorf("decoding extract response: %w", err)
	}
	if !er.Success {
		if er.Error != "" {
			return extractResponse{}, fmt.Errorf("extract API reported failure: %s", er.Error)
		}
		return extractResponse{}, fmt.Errorf("extract API reported failure")
	}
	return er, nil
}
