package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// SaveScore upserts the score row and its details in one transaction.
//
// The score insert targets the (judge_id, project_id) unique constraint
// with ON CONFLICT DO UPDATE, so a resubmitting judge updates their
// existing row in place: created_at survives, updated_at refreshes, and
// the row count for the pair stays at one no matter how the calls
// interleave. Detail rows use the same discipline on
// (score_id, criteria_id).
func (s *SQLiteStore) SaveScore(ctx context.Context, score model.Score, details []model.ScoreDetail) (string, bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Within the transaction this existence check cannot race: SQLite
	// admits a single writer and the upsert below is keyed on the same
	// unique constraint.
	var updated bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM scores WHERE judge_id = ? AND project_id = ?)`,
		score.JudgeID, score.ProjectID,
	).Scan(&updated)
	if err != nil {
		return "", false, fmt.Errorf("check existing score: %w", err)
	}

	var scoreID string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO scores (id, project_id, judge_id, event_id, total_score, comments, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (judge_id, project_id) DO UPDATE SET
			total_score = excluded.total_score,
			comments    = excluded.comments,
			updated_at  = excluded.updated_at
		RETURNING id`,
		score.ID, score.ProjectID, score.JudgeID, score.EventID,
		score.TotalScore, score.Comments,
		score.CreatedAt.UnixNano(), score.UpdatedAt.UnixNano(),
	).Scan(&scoreID)
	if err != nil {
		return "", false, fmt.Errorf("upsert score: %w", err)
	}

	for _, d := range details {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO score_details (score_id, criteria_id, score)
			VALUES (?, ?, ?)
			ON CONFLICT (score_id, criteria_id) DO UPDATE SET
				score = excluded.score`,
			scoreID, d.CriteriaID, d.Score,
		); err != nil {
			return "", false, fmt.Errorf("upsert score detail %q: %w", d.CriteriaID, err)
		}
	}

	// A resubmission replaces the detail set wholesale: rows for criteria
	// absent from this call are stale and would make the stored details
	// disagree with the stored total.
	if len(details) == 0 {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM score_details WHERE score_id = ?`, scoreID,
		); err != nil {
			return "", false, fmt.Errorf("clear score details: %w", err)
		}
	} else {
		args := make([]interface{}, 0, len(details)+1)
		args = append(args, scoreID)
		placeholders := make([]string, 0, len(details))
		for _, d := range details {
			placeholders = append(placeholders, "?")
			args = append(args, d.CriteriaID)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM score_details WHERE score_id = ? AND criteria_id NOT IN (`+strings.Join(placeholders, ", ")+`)`,
			args...,
		); err != nil {
			return "", false, fmt.Errorf("prune stale score details: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", false, fmt.Errorf("commit score: %w", err)
	}
	return scoreID, updated, nil
}

// GetScore returns the score row for a (judge, project) pair.
func (s *SQLiteStore) GetScore(ctx context.Context, judgeID, projectID string) (model.Score, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	var (
		sc                   model.Score
		createdNS, updatedNS int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, judge_id, event_id, total_score, comments, created_at, updated_at
		FROM scores
		WHERE judge_id = ? AND project_id = ?`,
		judgeID, projectID,
	).Scan(&sc.ID, &sc.ProjectID, &sc.JudgeID, &sc.EventID, &sc.TotalScore, &sc.Comments, &createdNS, &updatedNS)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Score{}, ErrNotFound
	}
	if err != nil {
		return model.Score{}, fmt.Errorf("get score: %w", err)
	}
	sc.CreatedAt = time.Unix(0, createdNS)
	sc.UpdatedAt = time.Unix(0, updatedNS)
	return sc, nil
}

// ListDetails returns the detail rows of a score, ordered by criterion id.
func (s *SQLiteStore) ListDetails(ctx context.Context, scoreID string) ([]model.ScoreDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT score_id, criteria_id, score
		FROM score_details
		WHERE score_id = ?
		ORDER BY criteria_id`,
		scoreID,
	)
	if err != nil {
		return nil, fmt.Errorf("list score details: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var details []model.ScoreDetail
	for rows.Next() {
		var d model.ScoreDetail
		if err := rows.Scan(&d.ScoreID, &d.CriteriaID, &d.Score); err != nil {
			return nil, fmt.Errorf("scan score detail: %w", err)
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score details: %w", err)
	}
	return details, nil
}

// JudgeTotals returns every judge's stored total for a project. The
// unique constraint guarantees one row per judge, so no dedup is needed.
func (s *SQLiteStore) JudgeTotals(ctx context.Context, projectID string) ([]float64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	rows, err := s.db.QueryContext(ctx,
		`SELECT total_score FROM scores WHERE project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query judge totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []float64
	for rows.Next() {
		var t float64
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan judge total: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate judge totals: %w", err)
	}
	return totals, nil
}

// TotalsByProject returns judge totals grouped by project for an event.
// A single query feeds the whole leaderboard computation.
func (s *SQLiteStore) TotalsByProject(ctx context.Context, eventID string) (map[string][]float64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	rows, err := s.db.QueryContext(ctx,
		`SELECT project_id, total_score FROM scores WHERE event_id = ?`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query event totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	totals := make(map[string][]float64)
	for rows.Next() {
		var (
			projectID string
			t         float64
		)
		if err := rows.Scan(&projectID, &t); err != nil {
			return nil, fmt.Errorf("scan event total: %w", err)
		}
		totals[projectID] = append(totals[projectID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event totals: %w", err)
	}
	return totals, nil
}

// CountScoredBy returns how many distinct projects the judge has scored
// within the event.
func (s *SQLiteStore) CountScoredBy(ctx context.Context, judgeID, eventID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT project_id) FROM scores WHERE judge_id = ? AND event_id = ?`,
		judgeID, eventID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count scored projects: %w", err)
	}
	return n, nil
}
