// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists hypothesis runs in SQLite. Each run is stored
// as a JSON document alongside a few indexed columns, with an FTS5 index
// over the goal and executive summary for keyword search.
package store

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

	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// Store manages the hypothesis run SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the run database at cfg.Path, creating the
// schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is empty")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			goal TEXT NOT NULL,
			domain TEXT,
			status TEXT NOT NULL,
			summary TEXT,
			doc TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_domain ON runs(domain)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='runs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE runs_fts USING fts5(goal, summary, content=runs, content_rowid=rowid)`,
			`CREATE TRIGGER runs_ai AFTER INSERT ON runs BEGIN
				INSERT INTO runs_fts(rowid, goal, summary) VALUES (new.rowid, new.goal, new.summary);
			END`,
			`CREATE TRIGGER runs_ad AFTER DELETE ON runs BEGIN
				INSERT INTO runs_fts(runs_fts, rowid, goal, summary) VALUES('delete', old.rowid, old.goal, old.summary);
			END`,
			`CREATE TRIGGER runs_au AFTER UPDATE ON runs BEGIN
				INSERT INTO runs_fts(runs_fts, rowid, goal, summary) VALUES('delete', old.rowid, old.goal, old.summary);
				INSERT INTO runs_fts(rowid, goal, summary) VALUES (new.rowid, new.goal, new.summary);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// CreateRun inserts a new run. The run ID must already be set.
func (s *Store) CreateRun(ctx context.Context, run *types.HypothesisRun) error {
	if run.ID == "" {
		return fmt.Errorf("run ID is empty")
	}
	if run.Status == "" {
		run.Status = types.StatusPending
	}
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	doc, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshaling run: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, goal, domain, status, summary, doc, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Goal, string(run.Domain), string(run.Status),
		run.ExecutiveSummary, string(doc),
		run.CreatedAt.Format(time.RFC3339Nano), run.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun loads a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*types.HypothesisRun, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM runs WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}

	var run types.HypothesisRun
	if err := json.Unmarshal([]byte(doc), &run); err != nil {
		return nil, fmt.Errorf("parsing run %s: %w", id, err)
	}
	return &run, nil
}

// UpdateRun saves the run's current state, validating the status
// transition against the stored record. Terminal runs are immutable.
func (s *Store) UpdateRun(ctx context.Context, run *types.HypothesisRun) error {
	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM runs WHERE id = ?`, run.ID).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("run %s not found", run.ID)
	}
	if err != nil {
		return fmt.Errorf("loading run %s: %w", run.ID, err)
	}

	if !validTransition(types.RunStatus(stored), run.Status) {
		return fmt.Errorf("invalid status transition %s -> %s for run %s", stored, run.Status, run.ID)
	}

	run.UpdatedAt = time.Now().UTC()
	doc, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshaling run: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE runs SET goal = ?, domain = ?, status = ?, summary = ?, doc = ?, updated_at = ?
		 WHERE id = ?`,
		run.Goal, string(run.Domain), string(run.Status),
		run.ExecutiveSummary, string(doc),
		run.UpdatedAt.Format(time.RFC3339Nano), run.ID,
	)
	if err != nil {
		return fmt.Errorf("updating run %s: %w", run.ID, err)
	}
	return nil
}

// validTransition reports whether a stored status may move to next.
// A run may always be re-saved in its current non-terminal status.
func validTransition(from, to types.RunStatus) bool {
	if from.Terminal() {
		return false
	}
	if from == to {
		return true
	}
	switch from {
	case types.StatusPending:
		return to == types.StatusRunning || to == types.StatusFailed || to == types.StatusCancelled
	case types.StatusRunning:
		return to == types.StatusCompleted || to == types.StatusFailed || to == types.StatusCancelled
	}
	return false
}

// DeleteRun removes a run. Only terminal runs may be deleted.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM runs WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return fmt.Errorf("loading run %s: %w", id, err)
	}
	if !types.RunStatus(status).Terminal() {
		return fmt.Errorf("run %s is %s; only completed, failed, or cancelled runs can be deleted", id, status)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting run %s: %w", id, err)
	}
	return nil
}

// RunSummary is a single row in a run listing.
type RunSummary struct {
	ID        string              `json:"id"`
	Goal      string              `json:"goal"`
	Domain    types.MedicalDomain `json:"domain,omitempty"`
	Status    types.RunStatus     `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// ListOptions filter a run listing.
type ListOptions struct {
	Status types.RunStatus
	Domain types.MedicalDomain
	Limit  int
}

// ListRuns returns run summaries, newest first.
func (s *Store) ListRuns(ctx context.Context, opts ListOptions) ([]RunSummary, error) {
	query := `SELECT id, goal, domain, status, created_at, updated_at FROM runs`
	var conds []string
	var args []any
	if opts.Status != "" {
		conds = append(conds, `status = ?`)
		args = append(args, string(opts.Status))
	}
	if opts.Domain != "" {
		conds = append(conds, `domain = ?`)
		args = append(args, string(opts.Domain))
	}
	for i, cond := range conds {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// SearchRuns returns runs whose goal or executive summary matches the
// FTS5 expression, newest first.
func (s *Store) SearchRuns(ctx context.Context, match string, limit int) ([]RunSummary, error) {
	if match == "" {
		return nil, fmt.Errorf("search expression is empty")
	}
	query := `SELECT r.id, r.goal, r.domain, r.status, r.created_at, r.updated_at
		 FROM runs_fts f JOIN runs r ON r.rowid = f.rowid
		 WHERE runs_fts MATCH ?
		 ORDER BY r.created_at DESC`
	args := []any{match}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching runs: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func scanSummaries(rows *sql.Rows) ([]RunSummary, error) {
	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var domain, status, created, updated string
		if err := rows.Scan(&rs.ID, &rs.Goal, &domain, &status, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		rs.Domain = types.MedicalDomain(domain)
		rs.Status = types.RunStatus(status)
		rs.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		rs.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}
	return out, nil
}
