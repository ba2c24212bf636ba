// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/progress"
	"github.com/okian/podium/internal/domain/ranking"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// SubmitScore validates and upserts one judge's submission.
	SubmitScore(ctx context.Context, req service.SubmitRequest) (service.SubmitResult, error)

	// Read operations expose aggregates, rankings, and progress.
	ProjectAggregate(ctx context.Context, projectID string) (service.Aggregate, error)
	Leaderboard(ctx context.Context, eventID string, snapshot map[string]int) ([]ranking.Entry, error)
	JudgeProgress(ctx context.Context, judgeID, eventID string) (progress.Report, error)

	// EnqueueFeedUpdate pushes a project status update for async
	// application. Returns false on backpressure.
	EnqueueFeedUpdate(ctx context.Context, u model.FeedUpdate) bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	scoresHandler      *ScoresHandler
	leaderboardHandler *LeaderboardHandler
	aggregateHandler   *AggregateHandler
	progressHandler    *ProgressHandler
	projectsHandler    *ProjectsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		scoresHandler:      NewScoresHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		aggregateHandler:   NewAggregateHandler(deps),
		progressHandler:    NewProgressHandler(deps),
		projectsHandler:    NewProjectsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/scores", MetricsMiddleware(s.scoresHandler.HandleSubmitScore, "scores"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/aggregate/", MetricsMiddleware(s.aggregateHandler.HandleGetAggregate, "aggregate"))
	mux.HandleFunc("/progress", MetricsMiddleware(s.progressHandler.HandleGetProgress, "progress"))
	mux.HandleFunc("/projects", MetricsMiddleware(s.projectsHandler.HandleProjectUpdate, "projects"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
