package types

import (
	"fmt"
	"time"
)

// Defaults applied by PipelineConfig.WithDefaults.
const (
	DefaultGroqModel       = "llama3-70b-8192"
	DefaultCondenseTimeout = 30 * time.Second
	DefaultHTTPTimeout     = 75 * time.Second
	DefaultSearchTimeout   = 60 * time.Second
	DefaultLimit           = 3
	MinLimit               = 1
	MaxLimit               = 10
	DefaultLang            = "en"
	DefaultLocation        = "United States"
	DefaultPollInterval    = 2 * time.Second
	DefaultExtractMaxWait  = 120 * time.Second
	DefaultConcurrency     = 1
	MaxConcurrency         = 10
	DefaultUserAgent       = "leadify/0.1"
	DefaultDataDir         = "data"
	DefaultTopN            = 5
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds one HTTP round trip.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// RateLimitRetries is how many times an HTTP 429 is retried with backoff.
	// Zero means a single attempt.
	RateLimitRetries int `json:"rate_limit_retries" yaml:"rate_limit_retries"`
}

// AIConfig holds settings for the language-model service.
type AIConfig struct {
	// Model is the model identifier (e.g. "llama3-70b-8192").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key. Blank disables the model.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the OpenAI-compatible endpoint (defaults to Groq).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// CondenseConfig holds settings for the condensation stage.
type CondenseConfig struct {
	AIConfig `yaml:",inline"`

	// Timeout bounds the single chat completion call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// DiscoveryConfig holds settings for the discovery stage.
type DiscoveryConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the search service key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Limit is the maximum number of candidate URLs (1-10, default 3).
	Limit int `json:"limit" yaml:"limit"`

	// Lang is the result language sent to the search service.
	Lang string `json:"lang" yaml:"lang"`

	// Location is the geographic locale sent to the search service.
	Location string `json:"location" yaml:"location"`

	// SearchTimeout is the service-side timeout sent with the request.
	SearchTimeout time.Duration `json:"search_timeout" yaml:"search_timeout"`
}

// ExtractionConfig holds settings for the extraction stage.
type ExtractionConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the extraction service key (the same account as search).
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Concurrency is how many pages are extracted at once (default 1).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// PollInterval is the delay between job status checks.
	PollInterval time.Duration `json:"poll_interval" yaml:"poll_interval"`

	// MaxWait bounds the total time spent on one page, polling included.
	MaxWait time.Duration `json:"max_wait" yaml:"max_wait"`
}

// StoreConfig holds settings for the run history.
type StoreConfig struct {
	// Enabled controls whether runs are saved after completion.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// DataDir is the directory holding leads.db.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// PipelineConfig groups all stage configurations for one run.
type PipelineConfig struct {
	Condense   CondenseConfig   `json:"condense" yaml:"condense"`
	Discovery  DiscoveryConfig  `json:"discovery" yaml:"discovery"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Store      StoreConfig      `json:"store" yaml:"store"`
}

// WithDefaults returns a copy with zero-valued settings replaced by defaults.
// Credentials are never defaulted.
func (c PipelineConfig) WithDefaults() PipelineConfig {
	if c.Condense.Model == "" {
		c.Condense.Model = DefaultGroqModel
	}
	if c.Condense.Timeout <= 0 {
		c.Condense.Timeout = DefaultCondenseTimeout
	}

	c.Discovery.HTTPConfig = c.Discovery.HTTPConfig.withDefaults()
	if c.Discovery.Limit == 0 {
		c.Discovery.Limit = DefaultLimit
	}
	if c.Discovery.Lang == "" {
		c.Discovery.Lang = DefaultLang
	}
	if c.Discovery.Location == "" {
		c.Discovery.Location = DefaultLocation
	}
	if c.Discovery.SearchTimeout <= 0 {
		c.Discovery.SearchTimeout = DefaultSearchTimeout
	}

	c.Extraction.HTTPConfig = c.Extraction.HTTPConfig.withDefaults()
	if c.Extraction.Concurrency == 0 {
		c.Extraction.Concurrency = DefaultConcurrency
	}
	if c.Extraction.PollInterval <= 0 {
		c.Extraction.PollInterval = DefaultPollInterval
	}
	if c.Extraction.MaxWait <= 0 {
		c.Extraction.MaxWait = DefaultExtractMaxWait
	}

	if c.Store.DataDir == "" {
		c.Store.DataDir = DefaultDataDir
	}
	return c
}

func (h HTTPConfig) withDefaults() HTTPConfig {
	if h.Timeout <= 0 {
		h.Timeout = DefaultHTTPTimeout
	}
	if h.UserAgent == "" {
		h.UserAgent = DefaultUserAgent
	}
	return h
}

// Validate checks ranges. It does not require credentials; the pipeline
// decides which ones are mandatory.
func (c PipelineConfig) Validate() error {
	if c.Discovery.Limit < MinLimit || c.Discovery.Limit > MaxLimit {
		return fmt.Errorf("discovery limit %d out of range [%d,%d]", c.Discovery.Limit, MinLimit, MaxLimit)
	}
	if c.Extraction.Concurrency < 1 || c.Extraction.Concurrency > MaxConcurrency {
		return fmt.Errorf("extraction concurrency %d out of range [1,%d]", c.Extraction.Concurrency, MaxConcurrency)
	}
	if c.Discovery.RateLimitRetries < 0 || c.Extraction.RateLimitRetries < 0 {
		return fmt.Errorf("rate limit retries must not be negative")
	}
	return nil
}

// ClampLimit bounds a caller-supplied result limit to [MinLimit, MaxLimit].
// Non-positive values take DefaultLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
