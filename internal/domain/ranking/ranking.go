// Package ranking orders eligible projects into a leaderboard.
//
// The ordering is a total order: scored projects sort before unscored
// ones; scored projects by average descending with ties broken by earlier
// submission then project id; unscored projects by submission time then
// id. Repeated calls over the same inputs always produce the same order.
package ranking

import (
	"sort"

	"github.com/okian/podium/internal/domain/model"
)

// Aggregate carries a project's read-time aggregate into ranking.
type Aggregate struct {
	Average    *float64
	JudgeCount int
}

// Entry is one leaderboard row. It is derived on read and never stored.
type Entry struct {
	ProjectID    string   `json:"project_id"`
	Rank         int      `json:"rank"`
	AverageScore *float64 `json:"average_score"`
	JudgeCount   int      `json:"judge_count"`
	PreviousRank *int     `json:"previous_rank,omitempty"`
}

// Delta returns previous_rank - rank when a prior snapshot was applied:
// positive means the project moved up, negative down. Nil without one.
func (e Entry) Delta() *int {
	if e.PreviousRank == nil {
		return nil
	}
	d := *e.PreviousRank - e.Rank
	return &d
}

// Rank orders the scorable projects among the given ones by aggregate
// score and assigns 1-based ranks. Projects absent from aggs (or present
// with a nil average) rank after all scored projects.
func Rank(projects []model.Project, aggs map[string]Aggregate) []Entry {
	eligible := make([]model.Project, 0, len(projects))
	for _, p := range projects {
		if p.Status.Scorable() {
			eligible = append(eligible, p)
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		return less(eligible[i], eligible[j], aggs)
	})

	entries := make([]Entry, len(eligible))
	for i, p := range eligible {
		agg := aggs[p.ID]
		entries[i] = Entry{
			ProjectID:    p.ID,
			Rank:         i + 1,
			AverageScore: agg.Average,
			JudgeCount:   agg.JudgeCount,
		}
	}
	return entries
}

// less reports whether a ranks strictly before b.
func less(a, b model.Project, aggs map[string]Aggregate) bool {
	avgA := aggs[a.ID].Average
	avgB := aggs[b.ID].Average

	// Scored before unscored.
	if (avgA != nil) != (avgB != nil) {
		return avgA != nil
	}
	if avgA != nil && *avgA != *avgB {
		return *avgA > *avgB
	}
	// Equal averages, or both unscored: earlier submission first.
	if !a.SubmittedAt.Equal(b.SubmittedAt) {
		return a.SubmittedAt.Before(b.SubmittedAt)
	}
	return a.ID < b.ID
}

// ApplySnapshot fills PreviousRank on each entry from a caller-supplied
// prior snapshot (project id -> rank). Snapshots are a caller concern;
// the engine never persists them. Projects absent from the snapshot keep
// a nil PreviousRank.
func ApplySnapshot(entries []Entry, snapshot map[string]int) []Entry {
	if len(snapshot) == 0 {
		return entries
	}
	for i := range entries {
		if prev, ok := snapshot[entries[i].ProjectID]; ok {
			p := prev
			entries[i].PreviousRank = &p
		}
	}
	return entries
}
