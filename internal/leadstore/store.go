// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package leadstore keeps a local history of pipeline runs and their lead
// rows in SQLite so results can be listed, filtered and exported later.
package leadstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/leadify/pkg/types"
)

const dbFile = "leads.db"

// ErrNoRuns is returned when a query targets the latest run and none exist.
var ErrNoRuns = errors.New("no saved runs")

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// Store manages the run history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates dataDir/leads.db and its schema.
func Open(cfg types.StoreConfig) (*Store, error) {
	dir := cfg.DataDir
	if dir == "" {
		dir = types.DefaultDataDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			query TEXT NOT NULL,
			topic TEXT NOT NULL,
			outcome TEXT NOT NULL,
			urls TEXT NOT NULL,
			extracted INTEGER NOT NULL DEFAULT 0,
			empty INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0,
			not_attempted INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS leads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			username TEXT NOT NULL,
			bio TEXT NOT NULL,
			post_type TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			upvotes INTEGER NOT NULL,
			links TEXT NOT NULL,
			data_source TEXT NOT NULL,
			website_url TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_leads_run_id ON leads(run_id, position)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun stores res and its lead rows in one transaction and returns the
// new run ID.
func (s *Store) SaveRun(ctx context.Context, res *types.RunResult) (int64, error) {
	if res == nil {
		return 0, fmt.Errorf("nil run result")
	}

	urlsJSON, err := json.Marshal(res.URLs)
	if err != nil {
		return 0, fmt.Errorf("encoding urls: %w", err)
	}
	if res.URLs == nil {
		urlsJSON = []byte("[]")
	}

	started := res.StartedAt
	if started.IsZero() {
		started = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	r, err := tx.ExecContext(ctx,
		`INSERT INTO runs (query, topic, outcome, urls, extracted, empty, failed, not_attempted, started_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.Query, res.Topic, string(res.Outcome), string(urlsJSON),
		res.Extraction.Extracted, res.Extraction.Empty, res.Extraction.Failed, res.Extraction.NotAttempted,
		started.UTC().Format(time.RFC3339Nano), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := r.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO leads (run_id, position, username, bio, post_type, timestamp, upvotes, links, data_source, website_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range res.Leads {
		_, err := stmt.ExecContext(ctx,
			runID, i, l.Username, l.Bio, l.PostType, l.Timestamp,
			l.Upvotes, l.Links, l.DataSource, l.WebsiteURL,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting lead %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// DeleteRun removes a run and its leads.
func (s *Store) DeleteRun(ctx context.Context, id int64) error {
	r, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run %d: %w", id, err)
	}
	if n, _ := r.RowsAffected(); n == 0 {
		return fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	return nil
}
