package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Default SQLite configuration constants.
const (
	defaultBusyTimeout  = 5 * time.Second
	defaultMaxOpenConns = 1 // SQLite serializes writers; one connection avoids SQLITE_BUSY churn
)

// schema holds the persisted layout. The two UNIQUE constraints are the
// concurrency discipline for score submission: upserts target them
// directly so duplicate rows cannot exist even under concurrent writes.
const schema = `
CREATE TABLE IF NOT EXISTS criteria (
    id          TEXT PRIMARY KEY,
    event_id    TEXT NOT NULL,
    name        TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    weight      REAL NOT NULL CHECK (weight > 0),
    max_score   REAL NOT NULL CHECK (max_score > 0),
    ord         INTEGER NOT NULL,
    UNIQUE (event_id, ord)
);
CREATE INDEX IF NOT EXISTS idx_criteria_event ON criteria(event_id);

CREATE TABLE IF NOT EXISTS projects (
    id           TEXT PRIMARY KEY,
    event_id     TEXT NOT NULL,
    status       TEXT NOT NULL CHECK (status IN ('draft','submitted','under_review','finalist','winner')),
    submitted_at INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_projects_event ON projects(event_id);

CREATE TABLE IF NOT EXISTS scores (
    id          TEXT PRIMARY KEY,
    project_id  TEXT NOT NULL,
    judge_id    TEXT NOT NULL,
    event_id    TEXT NOT NULL,
    total_score REAL NOT NULL CHECK (total_score >= 0 AND total_score <= 10),
    comments    TEXT NOT NULL DEFAULT '',
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL,
    UNIQUE (judge_id, project_id)
);
CREATE INDEX IF NOT EXISTS idx_scores_project ON scores(project_id);
CREATE INDEX IF NOT EXISTS idx_scores_event ON scores(event_id);

CREATE TABLE IF NOT EXISTS score_details (
    score_id    TEXT NOT NULL,
    criteria_id TEXT NOT NULL,
    score       REAL NOT NULL CHECK (score >= 0),
    PRIMARY KEY (score_id, criteria_id),
    FOREIGN KEY (score_id) REFERENCES scores(id)
);
`

// SQLiteStore implements Store on an embedded SQLite database.
type SQLiteStore struct {
	db           *sql.DB
	busyTimeout  time.Duration
	maxOpenConns int
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at dsn and
// applies the schema. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(dsn string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		busyTimeout:  defaultBusyTimeout,
		maxOpenConns: defaultMaxOpenConns,
	}
	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)

	if _, err := db.Exec(fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout.Milliseconds())); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s.db = db
	return s, nil
}

// Stats returns table counts for monitoring gauges.
func (s *SQLiteStore) Stats(ctx context.Context) (int, int, error) {
	var projects, scores int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&projects); err != nil {
		return 0, 0, fmt.Errorf("count projects: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scores`).Scan(&scores); err != nil {
		return 0, 0, fmt.Errorf("count scores: %w", err)
	}
	return projects, scores, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// unixOrZero converts a stored nanosecond timestamp back to time.Time,
// keeping the zero value for never-submitted projects.
func unixOrZero(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// nanosOrZero is the inverse of unixOrZero.
func nanosOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
