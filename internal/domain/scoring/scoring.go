// Package scoring implements the score aggregation arithmetic.
//
// Two levels of aggregation exist: a judge's per-criterion raw ratings
// collapse into a single weighted normalized total in [0,10], and the
// totals from all judges of a project collapse into an unweighted mean.
// Every other package computes through these functions; the formulas are
// implemented nowhere else.
package scoring

import (
	"errors"
	"fmt"

	"github.com/okian/podium/internal/domain/model"
)

// MaxTotal is the upper bound of a normalized judge total.
const MaxTotal = 10.0

// Sentinel kinds for rating validation errors.
var (
	ErrUnknownCriterion = errors.New("criterion does not belong to event")
	ErrRatingOutOfRange = errors.New("rating outside criterion range")
)

// ValidateRatings checks every rating against the event's criteria:
// the criterion must exist for the event and the raw value must fall in
// [0, MaxScore]. The first offending criterion is named in the error.
func ValidateRatings(criteria []model.Criterion, ratings map[string]float64) error {
	byID := make(map[string]model.Criterion, len(criteria))
	for _, c := range criteria {
		byID[c.ID] = c
	}
	for id, raw := range ratings {
		c, ok := byID[id]
		if !ok {
			return fmt.Errorf("criterion %q: %w", id, ErrUnknownCriterion)
		}
		if raw < 0 || raw > c.MaxScore {
			return fmt.Errorf("criterion %q: score %.2f not in [0, %.2f]: %w", id, raw, c.MaxScore, ErrRatingOutOfRange)
		}
	}
	return nil
}

// JudgeTotal computes one judge's weighted normalized total over the
// event's criteria. Each raw rating is rescaled to 0..10 against the
// criterion's max, weighted, and divided by the total weight. Criteria
// the judge has not rated count as raw 0. A degenerate zero total
// weight yields 0.
//
// Callers validate ratings first; JudgeTotal clamps nothing.
func JudgeTotal(criteria []model.Criterion, ratings map[string]float64) float64 {
	var weightedSum, totalWeight float64
	for _, c := range criteria {
		totalWeight += c.Weight
		raw, ok := ratings[c.ID]
		if !ok || c.MaxScore == 0 {
			continue
		}
		normalized := raw / c.MaxScore * MaxTotal
		weightedSum += normalized * c.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

// Aggregate computes a project's aggregate from its judges' totals: the
// plain arithmetic mean (every judge counts equally) and the judge count.
// A project with no scores yet has a nil average, not an error.
func Aggregate(totals []float64) (*float64, int) {
	if len(totals) == 0 {
		return nil, 0
	}
	var sum float64
	for _, t := range totals {
		sum += t
	}
	avg := sum / float64(len(totals))
	return &avg, len(totals)
}
