package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// UpsertProject writes one project into the status read model. The feed
// is at-least-once, so replays overwrite with identical values.
func (s *SQLiteStore) UpsertProject(ctx context.Context, p model.Project) error {
	if p.ID == "" || p.EventID == "" || !p.Status.Valid() {
		return fmt.Errorf("project %q: %w", p.ID, ErrInvalidProject)
	}

	start := time.Now()
	defer func() {
		metrics.RecordRepositoryWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, event_id, status, submitted_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			event_id     = excluded.event_id,
			status       = excluded.status,
			submitted_at = excluded.submitted_at`,
		p.ID, p.EventID, string(p.Status), nanosOrZero(p.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	return nil
}

// GetProject returns a project by id.
func (s *SQLiteStore) GetProject(ctx context.Context, projectID string) (model.Project, error) {
	var (
		p           model.Project
		status      string
		submittedNS int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, event_id, status, submitted_at FROM projects WHERE id = ?`,
		projectID,
	).Scan(&p.ID, &p.EventID, &status, &submittedNS)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, ErrNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("get project: %w", err)
	}
	p.Status = model.ProjectStatus(status)
	p.SubmittedAt = unixOrZero(submittedNS)
	return p, nil
}

// ListProjects returns all projects of an event.
func (s *SQLiteStore) ListProjects(ctx context.Context, eventID string) ([]model.Project, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, status, submitted_at FROM projects WHERE event_id = ?`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []model.Project
	for rows.Next() {
		var (
			p           model.Project
			status      string
			submittedNS int64
		)
		if err := rows.Scan(&p.ID, &p.EventID, &status, &submittedNS); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.Status = model.ProjectStatus(status)
		p.SubmittedAt = unixOrZero(submittedNS)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// CountScorable returns the number of submitted-or-later projects for
// the event.
func (s *SQLiteStore) CountScorable(ctx context.Context, eventID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE event_id = ? AND status != 'draft'`,
		eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count scorable projects: %w", err)
	}
	return n, nil
}
