package repository

import (
	"context"
	"fmt"

	"github.com/okian/podium/internal/domain/model"
)

// PutCriterion writes one criterion row. Event admins own criteria
// configuration; the engine only ingests and reads it.
func (s *SQLiteStore) PutCriterion(ctx context.Context, c model.Criterion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO criteria (id, event_id, name, description, weight, max_score, ord)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name        = excluded.name,
			description = excluded.description,
			weight      = excluded.weight,
			max_score   = excluded.max_score,
			ord         = excluded.ord`,
		c.ID, c.EventID, c.Name, c.Description, c.Weight, c.MaxScore, c.Order,
	)
	if err != nil {
		return fmt.Errorf("upsert criterion: %w", err)
	}
	return nil
}

// ListCriteria returns the configured criteria of an event ordered by
// display order, ties by id. May be empty; the registry handles fallback.
func (s *SQLiteStore) ListCriteria(ctx context.Context, eventID string) ([]model.Criterion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, name, description, weight, max_score, ord
		FROM criteria
		WHERE event_id = ?
		ORDER BY ord, id`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var crits []model.Criterion
	for rows.Next() {
		var c model.Criterion
		if err := rows.Scan(&c.ID, &c.EventID, &c.Name, &c.Description, &c.Weight, &c.MaxScore, &c.Order); err != nil {
			return nil, fmt.Errorf("scan criterion: %w", err)
		}
		crits = append(crits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate criteria: %w", err)
	}
	return crits, nil
}
