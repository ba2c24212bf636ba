// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/podium/internal/domain/progress"
)

// ProgressDependencies defines the interface for judge progress reads.
type ProgressDependencies interface {
	JudgeProgress(ctx context.Context, judgeID, eventID string) (progress.Report, error)
}

// ProgressHandler handles judge progress requests.
type ProgressHandler struct {
	deps ProgressDependencies
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps ProgressDependencies) *ProgressHandler {
	return &ProgressHandler{deps: deps}
}

// HandleGetProgress handles GET /progress?judge_id=J&event_id=E requests.
func (h *ProgressHandler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_progress"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	judgeID := strings.TrimSpace(r.URL.Query().Get("judge_id"))
	eventID := strings.TrimSpace(r.URL.Query().Get("event_id"))
	if judgeID == "" || eventID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	report, err := h.deps.JudgeProgress(r.Context(), judgeID, eventID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
