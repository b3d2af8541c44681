// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the leadify pipeline.
// Implements: interaction records as returned by the extraction service,
// the per-page envelope, flattened lead rows, and the result of one run.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DataSourceQuora is the constant Data Source column value for every lead row.
const DataSourceQuora = "Quora"

// Known post types. The extraction service may return other values; they are
// kept as-is.
const (
	PostQuestion = "question"
	PostAnswer   = "answer"
)

// Interaction is one question or answer found on a discussion page.
type Interaction struct {
	Username  string   `json:"username" yaml:"username" jsonschema_description:"The username of the user who posted the question or answer"`
	Bio       string   `json:"bio" yaml:"bio" jsonschema_description:"The bio or description of the user"`
	PostType  string   `json:"post_type" yaml:"post_type" jsonschema_description:"The type of post, either 'question' or 'answer'"`
	Timestamp string   `json:"timestamp" yaml:"timestamp" jsonschema_description:"When the question or answer was posted"`
	Upvotes   int      `json:"upvotes,omitempty" yaml:"upvotes" jsonschema:"default=0" jsonschema_description:"Number of upvotes received"`
	Links     []string `json:"links,omitempty" yaml:"links" jsonschema_description:"Any links included in the post"`
}

// PageResult is the page-level envelope the extraction service fills in.
// The extraction schema is reflected from this type.
type PageResult struct {
	Interactions []Interaction `json:"interactions" yaml:"interactions" jsonschema_description:"List of all user interactions (questions and answers) on the page"`
}

// UnmarshalJSON decodes an interaction leniently. Missing or null fields take
// their zero value, upvotes given as text ("1.2K", "15 upvotes") or floats are
// coerced, and anything unparseable becomes 0 rather than an error.
func (i *Interaction) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("interaction is not an object: %w", err)
	}
	*i = Interaction{
		Username:  lenientString(raw["username"]),
		Bio:       lenientString(raw["bio"]),
		PostType:  lenientString(raw["post_type"]),
		Timestamp: lenientString(raw["timestamp"]),
		Upvotes:   lenientCount(raw["upvotes"]),
		Links:     lenientStrings(raw["links"]),
	}
	return nil
}

// UnmarshalJSON decodes the envelope, dropping interaction entries that are
// not JSON objects instead of failing the whole page.
func (p *PageResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Interactions json.RawMessage `json:"interactions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("page result is not an object: %w", err)
	}
	*p = PageResult{}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw.Interactions, &entries); err != nil {
		// null, missing, or not a list: no interactions.
		return nil
	}
	for _, e := range entries {
		var it Interaction
		if err := json.Unmarshal(e, &it); err != nil {
			continue
		}
		p.Interactions = append(p.Interactions, it)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// lenientString returns the text of a JSON string, number, or bool.
// Objects, arrays and null yield "".
func lenientString(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	trimmed := bytes.TrimSpace(raw)
	switch trimmed[0] {
	case '{', '[':
		return ""
	}
	return string(trimmed)
}

// countPattern matches a leading number with an optional multiplier. A k, m
// or b suffix must touch the number and end the word; spelled-out multipliers
// may follow a space. Anything else after the number is ignored.
var countPattern = regexp.MustCompile(`^([0-9]+(?:\.[0-9]+)?)(?:([kmb])|\s*(thousand|million|billion))?(?:[^a-z]|$)`)

// lenientCount parses an upvote count. Negative, fractional-only or
// unparseable values become 0.
func lenientCount(raw json.RawMessage) int {
	if isNull(raw) {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return clampCount(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	return ParseCount(s)
}

// ParseCount parses a human-written count such as "15", "1,204", "1.2K" or
// "3 upvotes". It returns 0 when no leading number is present or the number
// runs straight into other letters.
func ParseCount(s string) int {
	s = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, ",", "")))
	m := countPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch m[2] + m[3] {
	case "k", "thousand":
		f *= 1e3
	case "m", "million":
		f *= 1e6
	case "b", "billion":
		f *= 1e9
	}
	return clampCount(f)
}

func clampCount(f float64) int {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// lenientStrings decodes a list of strings. A bare string becomes a
// one-element list; non-string and empty entries are dropped.
func lenientStrings(raw json.RawMessage) []string {
	if isNull(raw) {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single = strings.TrimSpace(single); single != "" {
			return []string{single}
		}
		return nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		var s string
		if err := json.Unmarshal(e, &s); err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// PageLeads pairs a discussion page URL with the interactions extracted from it.
type PageLeads struct {
	URL          string        `json:"url" yaml:"url"`
	Interactions []Interaction `json:"interactions" yaml:"interactions"`
}

// LeadColumns is the fixed, ordered column set of a LeadRecord.
var LeadColumns = []string{
	"Username",
	"Bio",
	"Post Type",
	"Timestamp",
	"Upvotes",
	"Links",
	"Data Source",
	"Website URL",
}

// LeadRecord is one flattened interaction plus its source page: the row unit
// for display and export. Every column is always present.
type LeadRecord struct {
	Username   string `json:"Username" yaml:"Username"`
	Bio        string `json:"Bio" yaml:"Bio"`
	PostType   string `json:"Post Type" yaml:"Post Type"`
	Timestamp  string `json:"Timestamp" yaml:"Timestamp"`
	Upvotes    int    `json:"Upvotes" yaml:"Upvotes"`
	Links      string `json:"Links" yaml:"Links"`
	DataSource string `json:"Data Source" yaml:"Data Source"`
	WebsiteURL string `json:"Website URL" yaml:"Website URL"`
}

// Values returns the row in LeadColumns order. Upvotes stays an int so
// spreadsheet writers keep it numeric.
func (r LeadRecord) Values() []any {
	return []any{
		r.Username,
		r.Bio,
		r.PostType,
		r.Timestamp,
		r.Upvotes,
		r.Links,
		r.DataSource,
		r.WebsiteURL,
	}
}

// Strings returns the row in LeadColumns order with every cell as text.
func (r LeadRecord) Strings() []string {
	return []string{
		r.Username,
		r.Bio,
		r.PostType,
		r.Timestamp,
		strconv.Itoa(r.Upvotes),
		r.Links,
		r.DataSource,
		r.WebsiteURL,
	}
}
