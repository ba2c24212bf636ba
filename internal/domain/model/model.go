// Package model contains domain models passed between layers.
package model

import "time"

// ProjectStatus tracks a project's position in the competition lifecycle.
type ProjectStatus string

// Project lifecycle statuses.
const (
	StatusDraft       ProjectStatus = "draft"
	StatusSubmitted   ProjectStatus = "submitted"
	StatusUnderReview ProjectStatus = "under_review"
	StatusFinalist    ProjectStatus = "finalist"
	StatusWinner      ProjectStatus = "winner"
)

// Scorable reports whether judges may score a project in this status.
// Only submitted projects (or later stages) are eligible.
func (s ProjectStatus) Scorable() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusFinalist, StatusWinner:
		return true
	default:
		return false
	}
}

// Valid reports whether s is a known lifecycle status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusFinalist, StatusWinner:
		return true
	default:
		return false
	}
}

// Project mirrors the external project status feed. The engine consumes
// id, event, status and submission time; project content stays with the
// owning service.
type Project struct {
	ID          string
	EventID     string
	Status      ProjectStatus
	SubmittedAt time.Time // zero until the project is submitted
}

// Criterion is one weighted axis of evaluation for an event.
type Criterion struct {
	ID          string
	EventID     string
	Name        string
	Description string
	Weight      float64 // strictly positive
	MaxScore    float64 // strictly positive upper bound for raw ratings
	Order       int     // display and iteration order, unique per event
}

// Score is one judge's aggregate verdict for one project. At most one
// Score exists per (judge, project) pair; resubmission updates it in place.
type Score struct {
	ID         string
	ProjectID  string
	JudgeID    string
	EventID    string
	TotalScore float64 // weighted normalized total in [0,10]
	Comments   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ScoreDetail holds the raw rating a judge gave for one criterion,
// in [0, Criterion.MaxScore]. At most one per (score, criterion) pair.
type ScoreDetail struct {
	ScoreID    string
	CriteriaID string
	Score      float64
}

// FeedUpdate is one delivery from the project status feed. UpdateID
// identifies the delivery for idempotency; the feed is at-least-once.
type FeedUpdate struct {
	UpdateID string
	Project  Project
}
