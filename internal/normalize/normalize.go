// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize flattens per-page extraction results into lead rows and
// buckets free-text timestamps into coarse recency periods.
package normalize

import (
	"regexp"
	"strings"

	"github.com/pdiddy/leadify/pkg/types"
)

// linkSeparator joins an interaction's links into the single Links cell.
const linkSeparator = ", "

// Flatten produces one LeadRecord per interaction, interactions in source
// order within each page and pages in the given order. It never returns nil.
func Flatten(pages []types.PageLeads) []types.LeadRecord {
	n := 0
	for _, p := range pages {
		n += len(p.Interactions)
	}

	rows := make([]types.LeadRecord, 0, n)
	for _, p := range pages {
		for _, it := range p.Interactions {
			rows = append(rows, Row(p.URL, it))
		}
	}
	return rows
}

// Row flattens a single interaction found on pageURL.
func Row(pageURL string, it types.Interaction) types.LeadRecord {
	upvotes := it.Upvotes
	if upvotes < 0 {
		upvotes = 0
	}
	return types.LeadRecord{
		Username:   it.Username,
		Bio:        it.Bio,
		PostType:   it.PostType,
		Timestamp:  it.Timestamp,
		Upvotes:    upvotes,
		Links:      strings.Join(it.Links, linkSeparator),
		DataSource: types.DataSourceQuora,
		WebsiteURL: pageURL,
	}
}

// Recency periods returned by Bucket.
const (
	PeriodDay     = "Last 24 hours"
	PeriodWeek    = "Last week"
	PeriodMonth   = "Last month"
	PeriodQuarter = "Last quarter"
	PeriodYear    = "Last year"
	PeriodUnknown = "Unknown"
)

// Periods lists the recency periods from most to least recent.
var Periods = []string{PeriodDay, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear, PeriodUnknown}

// hourAbbrev matches "hr" or "hrs" as a word, e.g. "5 hrs ago" or "2hr".
var hourAbbrev = regexp.MustCompile(`(^|[^a-z])hrs?([^a-z]|$)`)

// Bucket maps a free-text timestamp such as "3 hours ago" or "Updated 2y"
// onto a recency period. Checks run in order and the first match wins.
func Bucket(timestamp string) string {
	s := strings.ToLower(timestamp)
	switch {
	case strings.Contains(s, "hour") || hourAbbrev.MatchString(s):
		return PeriodDay
	case strings.Contains(s, "day") || strings.Contains(s, "yesterday"):
		return PeriodWeek
	case strings.Contains(s, "week"):
		return PeriodMonth
	case strings.Contains(s, "month"):
		return PeriodQuarter
	case strings.Contains(s, "year"):
		return PeriodYear
	default:
		return PeriodUnknown
	}
}

// CountByPeriod tallies leads per recency period. Every period in Periods
// is present in the result.
func CountByPeriod(leads []types.LeadRecord) map[string]int {
	counts := make(map[string]int, len(Periods))
	for _, p := range Periods {
		counts[p] = 0
	}
	for _, l := range leads {
		counts[Bucket(l.Timestamp)]++
	}
	return counts
}
