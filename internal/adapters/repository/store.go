// Package repository persists score records and the project read model.
package repository

import (
	"context"

	"github.com/okian/podium/internal/domain/model"
)

// Store provides read/write access to the judging state.
//
// Writes honor two unique constraints: (judge_id, project_id) on scores
// and (score_id, criteria_id) on score details. Both are enforced with
// single-statement upserts, never read-then-write sequences, so
// concurrent submissions for the same pair can never produce a second
// row.
type Store interface {
	// SaveScore upserts the score row and all of its detail rows in one
	// transaction. A failure leaves previously committed rows untouched.
	// Returns the score id (the existing row's id on resubmission) and
	// whether an existing row was updated.
	SaveScore(ctx context.Context, score model.Score, details []model.ScoreDetail) (string, bool, error)

	// GetScore returns the score row for a (judge, project) pair.
	// Returns ErrNotFound if the judge has not scored the project.
	GetScore(ctx context.Context, judgeID, projectID string) (model.Score, error)

	// ListDetails returns the detail rows of a score, ordered by criterion id.
	ListDetails(ctx context.Context, scoreID string) ([]model.ScoreDetail, error)

	// JudgeTotals returns every judge's stored total for a project.
	// One row per judge is guaranteed by the unique constraint.
	JudgeTotals(ctx context.Context, projectID string) ([]float64, error)

	// TotalsByProject returns judge totals grouped by project for an event.
	TotalsByProject(ctx context.Context, eventID string) (map[string][]float64, error)

	// CountScoredBy returns the number of distinct projects the judge
	// has scored within the event.
	CountScoredBy(ctx context.Context, judgeID, eventID string) (int, error)

	// UpsertProject writes one project into the status read model.
	UpsertProject(ctx context.Context, p model.Project) error

	// GetProject returns a project by id. Returns ErrNotFound if unknown.
	GetProject(ctx context.Context, projectID string) (model.Project, error)

	// ListProjects returns all projects of an event.
	ListProjects(ctx context.Context, eventID string) ([]model.Project, error)

	// CountScorable returns the number of submitted-or-later projects
	// for the event.
	CountScorable(ctx context.Context, eventID string) (int, error)

	// PutCriterion writes one criterion row. Criteria are configured by
	// event admins elsewhere; this is the ingestion point for that feed.
	PutCriterion(ctx context.Context, c model.Criterion) error

	// ListCriteria returns the configured criteria of an event, ordered
	// by display order then id. May be empty; fallback is the registry's
	// concern.
	ListCriteria(ctx context.Context, eventID string) ([]model.Criterion, error)

	// Stats returns table counts for monitoring gauges.
	Stats(ctx context.Context) (projects, scores int, err error)

	// Close releases the underlying database handle.
	Close() error
}
