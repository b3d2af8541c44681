// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Outcome classifies how a pipeline run ended.
type Outcome string

const (
	// OutcomeCompleted means at least one lead row was produced.
	OutcomeCompleted Outcome = "completed"
	// OutcomeNoDiscussions means discovery returned no candidate URLs.
	OutcomeNoDiscussions Outcome = "no_discussions"
	// OutcomeNoLeads means pages were found but no interactions were extracted.
	OutcomeNoLeads Outcome = "no_leads"
)

// Message returns the user-facing text for the outcome.
func (o Outcome) Message() string {
	switch o {
	case OutcomeCompleted:
		return "Lead generation completed successfully!"
	case OutcomeNoDiscussions:
		return "No relevant discussions found. Try modifying your search query."
	case OutcomeNoLeads:
		return "No lead data could be extracted from the URLs. Try adjusting your search query."
	default:
		return string(o)
	}
}

// ExtractionSummary holds per-URL counts from one extraction batch.
type ExtractionSummary struct {
	// Extracted is the number of pages that yielded at least one interaction.
	Extracted int `json:"extracted" yaml:"extracted"`
	// Empty is the number of pages that completed with no interactions.
	Empty int `json:"empty" yaml:"empty"`
	// Failed is the number of pages skipped because of an error.
	Failed int `json:"failed" yaml:"failed"`
	// NotAttempted is the number of URLs left untouched after cancellation.
	NotAttempted int `json:"not_attempted" yaml:"not_attempted"`
}

// Total returns the number of URLs the batch was given.
func (s ExtractionSummary) Total() int {
	return s.Extracted + s.Empty + s.Failed + s.NotAttempted
}

// HasFailures reports whether any page failed extraction.
func (s ExtractionSummary) HasFailures() bool {
	return s.Failed > 0
}

// RunResult is the self-contained result set of one pipeline run. It is owned
// by the caller; the pipeline keeps no reference to it.
type RunResult struct {
	Query      string            `json:"query" yaml:"query"`
	Topic      string            `json:"topic" yaml:"topic"`
	URLs       []string          `json:"urls" yaml:"urls"`
	Pages      []PageLeads       `json:"pages,omitempty" yaml:"pages,omitempty"`
	Leads      []LeadRecord      `json:"leads" yaml:"leads"`
	Outcome    Outcome           `json:"outcome" yaml:"outcome"`
	Extraction ExtractionSummary `json:"extraction" yaml:"extraction"`
	StartedAt  time.Time         `json:"started_at" yaml:"started_at"`
}
