// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/podium/internal/app"
)

// ScoreDependencies defines the interface for score submission.
type ScoreDependencies interface {
	SubmitScore(ctx context.Context, req service.SubmitRequest) (service.SubmitResult, error)
}

// ScoresHandler handles score submission requests.
type ScoresHandler struct {
	deps ScoreDependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandleSubmitScore handles POST /scores requests. Resubmission by the
// same judge for the same project is the normal upsert path and returns
// 200 like a first submission.
func (h *ScoresHandler) HandleSubmitScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, err := h.deps.SubmitScore(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			writeError(w, http.StatusNotFound, "not_found", err)
		case errors.Is(err, service.ErrInvalidRequest),
			errors.Is(err, service.ErrEventMismatch),
			errors.Is(err, service.ErrNotScorable):
			writeError(w, http.StatusBadRequest, "bad_request", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}
