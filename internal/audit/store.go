// Package audit keeps the history of enforcement runs in SQLite.
//
// It uses modernc.org/sqlite, so no cgo is required. One row is written per
// run together with every archive or delete action that run performed.
package audit

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/KaramelBytes/docuflow-cli/internal/retention"
)

//go:embed schema.sql
var schema string

// Run is a persisted enforcement run.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DryRun     bool      `json:"dry_run"`
	Department string    `json:"department,omitempty"`
	Trigger    string    `json:"trigger,omitempty"`
	Archived   int       `json:"archived"`
	Deleted    int       `json:"deleted"`
	Scanned    int       `json:"scanned"`
	Errors     int       `json:"errors"`
}

// Store is the run history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating audit directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying audit schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RecordRun stores stats and their actions. department is empty for a run
// over every configured department; trigger says what started it (cli,
// schedule).
func (s *Store) RecordRun(ctx context.Context, stats *retention.Stats, department, trigger string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, dry_run, department, triggered_by, archived, deleted, scanned, errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.RunID,
		stats.StartedAt.UTC().Format(time.RFC3339Nano),
		stats.FinishedAt.UTC().Format(time.RFC3339Nano),
		stats.DryRun,
		department,
		trigger,
		stats.Archived,
		stats.Deleted,
		stats.Scanned,
		stats.Errors,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, a := range stats.Actions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_actions (run_id, seq, kind, department, source, destination)
			VALUES (?, ?, ?, ?, ?, ?)`,
			stats.RunID, i, string(a.Kind), a.Department, a.Source, a.Destination)
		if err != nil {
			return fmt.Errorf("insert action: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, started_at, finished_at, dry_run, department, triggered_by, archived, deleted, scanned, errors
		FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r               Run
			started, finish string
		)
		if err := rows.Scan(&r.ID, &started, &finish, &r.DryRun, &r.Department, &r.Trigger,
			&r.Archived, &r.Deleted, &r.Scanned, &r.Errors); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finish)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Actions returns the actions recorded for a run in execution order.
func (s *Store) Actions(ctx context.Context, runID string) ([]retention.Action, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, department, source, destination
		FROM run_actions WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	var out []retention.Action
	for rows.Next() {
		var (
			a    retention.Action
			kind string
		)
		if err := rows.Scan(&kind, &a.Department, &a.Source, &a.Destination); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.Kind = retention.ActionKind(kind)
		out = append(out, a)
	}
	return out, rows.Err()
}
