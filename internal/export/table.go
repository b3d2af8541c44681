// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/leadify/internal/normalize"
	"github.com/pdiddy/leadify/pkg/types"
)

// DefaultTopN is the number of leads shown by the top-users view.
const DefaultTopN = types.DefaultTopN

// WriteTable writes leads as a human-readable table with a 1-based index.
func WriteTable(w io.Writer, leads []types.LeadRecord) {
	if len(leads) == 0 {
		fmt.Fprintln(w, "No lead data available to display.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-20s  %-8s  %7s  %-14s  %-30s  %s\n",
		"#", "Username", "Type", "Upvotes", "Timestamp", "Bio", "Website URL")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, l := range leads {
		fmt.Fprintf(w, "%-4d  %-20s  %-8s  %7d  %-14s  %-30s  %s\n",
			i+1,
			truncate(l.Username, 20),
			truncate(l.PostType, 8),
			l.Upvotes,
			truncate(l.Timestamp, 14),
			truncate(oneLine(l.Bio), 30),
			l.WebsiteURL)
	}
	fmt.Fprintf(w, "\n%d leads\n", len(leads))
}

// Stats are the headline metrics shown above the lead table.
type Stats struct {
	TotalLeads  int            `json:"total_leads" yaml:"total_leads"`
	Sources     string         `json:"sources" yaml:"sources"`
	UniqueUsers int            `json:"unique_users" yaml:"unique_users"`
	Questions   int            `json:"questions" yaml:"questions"`
	Answers     int            `json:"answers" yaml:"answers"`
	ByPeriod    map[string]int `json:"by_period" yaml:"by_period"`
}

// Summarize computes Stats for leads. Blank usernames count as one user.
func Summarize(leads []types.LeadRecord) Stats {
	s := Stats{
		TotalLeads: len(leads),
		Sources:    types.DataSourceQuora,
		ByPeriod:   normalize.CountByPeriod(leads),
	}
	users := make(map[string]struct{}, len(leads))
	for _, l := range leads {
		users[l.Username] = struct{}{}
		switch strings.ToLower(l.PostType) {
		case types.PostQuestion:
			s.Questions++
		case types.PostAnswer:
			s.Answers++
		}
	}
	s.UniqueUsers = len(users)
	return s
}

// WriteStats writes the headline metrics and the recency breakdown.
func WriteStats(w io.Writer, s Stats) {
	fmt.Fprintf(w, "Total Leads Found: %d\n", s.TotalLeads)
	fmt.Fprintf(w, "Sources:           %s\n", s.Sources)
	fmt.Fprintf(w, "Unique Users:      %d\n", s.UniqueUsers)
	fmt.Fprintf(w, "Questions/Answers: %d/%d\n", s.Questions, s.Answers)
	if s.TotalLeads == 0 {
		return
	}
	fmt.Fprintln(w, "\nBy recency:")
	for _, p := range normalize.Periods {
		if n := s.ByPeriod[p]; n > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", p, n)
		}
	}
}

// TopByUpvotes returns the n leads with the most upvotes, highest first.
// Ties keep their original order. Non-positive n means DefaultTopN.
func TopByUpvotes(leads []types.LeadRecord, n int) []types.LeadRecord {
	if n <= 0 {
		n = DefaultTopN
	}
	sorted := make([]types.LeadRecord, len(leads))
	copy(sorted, leads)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Upvotes > sorted[j].Upvotes
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// WriteTop writes the top-users view: username and upvotes.
func WriteTop(w io.Writer, leads []types.LeadRecord) {
	if len(leads) == 0 {
		fmt.Fprintln(w, "No lead data available to display.")
		return
	}
	fmt.Fprintf(w, "%-4s  %-30s  %7s\n", "Rank", "Username", "Upvotes")
	fmt.Fprintln(w, strings.Repeat("-", 45))
	for i, l := range leads {
		fmt.Fprintf(w, "%-4d  %-30s  %7d\n", i+1, truncate(l.Username, 30), l.Upvotes)
	}
}

// Filter returns the leads whose username or bio contains term, ignoring
// case. A blank term returns every lead.
func Filter(leads []types.LeadRecord, term string) []types.LeadRecord {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]types.LeadRecord, 0, len(leads))
	for _, l := range leads {
		if term == "" ||
			strings.Contains(strings.ToLower(l.Username), term) ||
			strings.Contains(strings.ToLower(l.Bio), term) {
			out = append(out, l)
		}
	}
	return out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}
