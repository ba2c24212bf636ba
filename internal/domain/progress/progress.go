// Package progress derives how far a judge is through their queue.
package progress

import (
	"context"
	"fmt"
)

// Source supplies the two counts progress is derived from. The repository
// adapter implements this; the tracker holds no state of its own.
type Source interface {
	// CountScorable returns the number of submitted-or-later projects
	// for the event. This is the judge's queue size.
	CountScorable(ctx context.Context, eventID string) (int, error)

	// CountScoredBy returns the number of distinct projects the judge
	// has a score row for within the event.
	CountScoredBy(ctx context.Context, judgeID, eventID string) (int, error)
}

// Report is one judge's completion state for an event.
type Report struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Remaining returns how many projects still await a score from the judge.
func (r Report) Remaining() int {
	if r.Total < r.Completed {
		return 0
	}
	return r.Total - r.Completed
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithSource sets the backing count source.
func WithSource(src Source) Option {
	return func(t *Tracker) {
		if src != nil {
			t.source = src
		}
	}
}

// Tracker computes judge progress reports.
type Tracker struct {
	source Source
}

// NewTracker creates a Tracker with configuration options.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Progress reports completed and total scorable projects for the judge.
func (t *Tracker) Progress(ctx context.Context, judgeID, eventID string) (Report, error) {
	total, err := t.source.CountScorable(ctx, eventID)
	if err != nil {
		return Report{}, fmt.Errorf("count scorable projects: %w", err)
	}
	completed, err := t.source.CountScoredBy(ctx, judgeID, eventID)
	if err != nil {
		return Report{}, fmt.Errorf("count scored projects: %w", err)
	}
	return Report{Completed: completed, Total: total}, nil
}
