// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package leadstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/leadify/pkg/types"
)

// RunInfo describes one saved run.
type RunInfo struct {
	ID         int64                   `json:"id" yaml:"id"`
	Query      string                  `json:"query" yaml:"query"`
	Topic      string                  `json:"topic" yaml:"topic"`
	Outcome    types.Outcome           `json:"outcome" yaml:"outcome"`
	URLs       []string                `json:"urls" yaml:"urls"`
	Extraction types.ExtractionSummary `json:"extraction" yaml:"extraction"`
	LeadCount  int                     `json:"lead_count" yaml:"lead_count"`
	StartedAt  time.Time               `json:"started_at" yaml:"started_at"`
}

// QueryOptions selects lead rows.
type QueryOptions struct {
	// RunID selects the run. Zero means the most recent run.
	RunID int64

	// Term keeps rows whose username or bio contains it, ignoring ASCII case.
	Term string

	// Limit caps the row count. Zero means no limit.
	Limit int
}

const runColumns = `r.id, r.query, r.topic, r.outcome, r.urls,
	r.extracted, r.empty, r.failed, r.not_attempted, r.started_at,
	(SELECT count(*) FROM leads l WHERE l.run_id = r.id)`

// Runs lists saved runs, newest first. Non-positive limit returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunInfo, error) {
	q := `SELECT ` + runColumns + ` FROM runs r ORDER BY r.id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		ri, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, ri)
	}
	return runs, rows.Err()
}

// Run returns a single run by ID.
func (s *Store) Run(ctx context.Context, id int64) (RunInfo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs r WHERE r.id = ?`, id)
	ri, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunInfo{}, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	return ri, err
}

// LatestRunID returns the ID of the most recent run, or ErrNoRuns.
func (s *Store) LatestRunID(ctx context.Context) (int64, error) {
	var id sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT max(id) FROM runs`).Scan(&id); err != nil {
		return 0, fmt.Errorf("querying latest run: %w", err)
	}
	if !id.Valid {
		return 0, ErrNoRuns
	}
	return id.Int64, nil
}

// Leads returns the lead rows of one run in their original order.
func (s *Store) Leads(ctx context.Context, opts QueryOptions) ([]types.LeadRecord, error) {
	runID, err := s.resolveRun(ctx, opts.RunID)
	if err != nil {
		return nil, err
	}

	var (
		qb   strings.Builder
		args = []any{runID}
	)
	qb.WriteString(
		`SELECT username, bio, post_type, timestamp, upvotes, links, data_source, website_url
		FROM leads WHERE run_id = ?`)

	if term := strings.TrimSpace(opts.Term); term != "" {
		pattern := "%" + escapeLike(term) + "%"
		qb.WriteString(` AND (username LIKE ? ESCAPE '\' OR bio LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	qb.WriteString(` ORDER BY position`)
	if opts.Limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, opts.Limit)
	}
	return s.queryLeads(ctx, qb.String(), args...)
}

// Top returns the n leads of a run with the most upvotes, highest first.
// Ties keep their original order.
func (s *Store) Top(ctx context.Context, runID int64, n int) ([]types.LeadRecord, error) {
	runID, err := s.resolveRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		n = types.DefaultTopN
	}
	return s.queryLeads(ctx,
		`SELECT username, bio, post_type, timestamp, upvotes, links, data_source, website_url
		FROM leads WHERE run_id = ? ORDER BY upvotes DESC, position LIMIT ?`,
		runID, n)
}

func (s *Store) resolveRun(ctx context.Context, id int64) (int64, error) {
	if id == 0 {
		return s.LatestRunID(ctx)
	}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM runs WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("looking up run %d: %w", id, err)
	}
	if exists == 0 {
		return 0, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	return id, nil
}

func (s *Store) queryLeads(ctx context.Context, query string, args ...any) ([]types.LeadRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying leads: %w", err)
	}
	defer rows.Close()

	leads := []types.LeadRecord{}
	for rows.Next() {
		var l types.LeadRecord
		if err := rows.Scan(&l.Username, &l.Bio, &l.PostType, &l.Timestamp,
			&l.Upvotes, &l.Links, &l.DataSource, &l.WebsiteURL); err != nil {
			return nil, fmt.Errorf("scanning lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunInfo, error) {
	var (
		ri       RunInfo
		outcome  string
		urlsJSON string
		started  string
	)
	err := sc.Scan(&ri.ID, &ri.Query, &ri.Topic, &outcome, &urlsJSON,
		&ri.Extraction.Extracted, &ri.Extraction.Empty, &ri.Extraction.Failed, &ri.Extraction.NotAttempted,
		&started, &ri.LeadCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunInfo{}, err
		}
		return RunInfo{}, fmt.Errorf("scanning run: %w", err)
	}
	ri.Outcome = types.Outcome(outcome)
	if err := json.Unmarshal([]byte(urlsJSON), &ri.URLs); err != nil {
		return RunInfo{}, fmt.Errorf("decoding urls of run %d: %w", ri.ID, err)
	}
	if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
		ri.StartedAt = t
	}
	return ri, nil
}

// escapeLike escapes LIKE wildcards so term matches literally.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}
