// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/leadify/pkg/types"
)

func TestFlatten(t *testing.T) {
	pages := []types.PageLeads{
		{
			URL: "https://www.quora.com/a",
			Interactions: []types.Interaction{
				{Username: "u1", Bio: "b1", PostType: "question", Timestamp: "2 days ago", Upvotes: 5, Links: []string{"x", "y"}},
				{Username: "u2"},
			},
		},
		{
			URL: "https://www.quora.com/b",
			Interactions: []types.Interaction{
				{Username: "u3", PostType: "answer", Upvotes: -7, Links: []string{"only"}},
			},
		},
	}

	rows := Flatten(pages)
	require.Len(t, rows, 3)

	assert.Equal(t, types.LeadRecord{
		Username:   "u1",
		Bio:        "b1",
		PostType:   "question",
		Timestamp:  "2 days ago",
		Upvotes:    5,
		Links:      "x, y",
		DataSource: "Quora",
		WebsiteURL: "https://www.quora.com/a",
	}, rows[0])

	assert.Equal(t, types.LeadRecord{
		Username:   "u2",
		DataSource: "Quora",
		WebsiteURL: "https://www.quora.com/a",
	}, rows[1], "missing fields default to empty values")

	assert.Equal(t, "u3", rows[2].Username)
	assert.Equal(t, 0, rows[2].Upvotes, "negative upvotes clamp to zero")
	assert.Equal(t, "only", rows[2].Links)
	assert.Equal(t, "https://www.quora.com/b", rows[2].WebsiteURL)
}

func TestFlattenRowCountAndOrder(t *testing.T) {
	var pages []types.PageLeads
	want := 0
	for p := 0; p < 4; p++ {
		page := types.PageLeads{URL: string(rune('a' + p))}
		for i := 0; i <= p; i++ {
			page.Interactions = append(page.Interactions, types.Interaction{Username: page.URL + string(rune('0'+i))})
		}
		want += len(page.Interactions)
		pages = append(pages, page)
	}

	rows := Flatten(pages)
	require.Len(t, rows, want)

	k := 0
	for _, p := range pages {
		for _, it := range p.Interactions {
			assert.Equal(t, it.Username, rows[k].Username)
			assert.Equal(t, p.URL, rows[k].WebsiteURL)
			assert.Equal(t, types.DataSourceQuora, rows[k].DataSource)
			k++
		}
	}
}

func TestFlattenEmpty(t *testing.T) {
	rows := Flatten(nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	rows = Flatten([]types.PageLeads{{URL: "u"}})
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestBucket(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3 hours ago", PeriodDay},
		{"1 HOUR", PeriodDay},
		{"5 hrs ago", PeriodDay},
		{"2hr", PeriodDay},
		{"yesterday", PeriodWeek},
		{"4 days ago", PeriodWeek},
		{"three days", PeriodWeek},
		{"Updated Thursday", PeriodWeek},
		{"2 weeks ago", PeriodMonth},
		{"3 months ago", PeriodQuarter},
		{"a year ago", PeriodYear},
		{"", PeriodUnknown},
		{"Jan 5", PeriodUnknown},
		{"shrub", PeriodUnknown},
		{"day and hour", PeriodDay},
		{"weeks and months", PeriodMonth},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Bucket(tt.in))
		})
	}
}

func TestBucketIsTotal(t *testing.T) {
	valid := map[string]bool{}
	for _, p := range Periods {
		valid[p] = true
	}
	for _, s := range []string{"", " ", "???", "Answered 2y", "édité il y a 3 jours", "hour", "HRS"} {
		assert.True(t, valid[Bucket(s)], s)
	}
}

func TestCountByPeriod(t *testing.T) {
	leads := []types.LeadRecord{
		{Timestamp: "2 hours ago"},
		{Timestamp: "yesterday"},
		{Timestamp: "3 days ago"},
		{Timestamp: ""},
	}
	got := CountByPeriod(leads)
	assert.Len(t, got, len(Periods))
	assert.Equal(t, 1, got[PeriodDay])
	assert.Equal(t, 2, got[PeriodWeek])
	assert.Equal(t, 0, got[PeriodYear])
	assert.Equal(t, 1, got[PeriodUnknown])
}
