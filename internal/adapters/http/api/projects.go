// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
)

// ProjectFeedDependencies defines the interface for feed ingestion.
type ProjectFeedDependencies interface {
	dedupe.Deduper
	EnqueueFeedUpdate(ctx context.Context, u model.FeedUpdate) bool
}

// ProjectsHandler ingests the external project status feed.
type ProjectsHandler struct {
	deps ProjectFeedDependencies
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(deps ProjectFeedDependencies) *ProjectsHandler {
	return &ProjectsHandler{deps: deps}
}

// projectUpdateRequest mirrors one delivery from the project status feed.
type projectUpdateRequest struct {
	UpdateID    string `json:"update_id"`
	ProjectID   string `json:"project_id"`
	EventID     string `json:"event_id"`
	Status      string `json:"status"`
	SubmittedAt string `json:"submitted_at"` // RFC3339; empty for drafts
}

func (p projectUpdateRequest) validate() error {
	switch {
	case strings.TrimSpace(p.UpdateID) == "":
		return errors.New("missing update_id")
	case strings.TrimSpace(p.ProjectID) == "":
		return errors.New("missing project_id")
	case strings.TrimSpace(p.EventID) == "":
		return errors.New("missing event_id")
	}
	if !model.ProjectStatus(p.Status).Valid() {
		return errors.New("unknown status")
	}
	if p.SubmittedAt != "" {
		if _, err := time.Parse(time.RFC3339, p.SubmittedAt); err != nil {
			return errors.New("invalid submitted_at; must be RFC3339")
		}
	}
	return nil
}

// HandleProjectUpdate handles POST /projects requests. Deliveries carry
// an update_id for idempotency; a replayed id acks as a duplicate.
func (h *ProjectsHandler) HandleProjectUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.project_update"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req projectUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.UpdateID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	var submittedAt time.Time
	if req.SubmittedAt != "" {
		submittedAt, _ = time.Parse(time.RFC3339, req.SubmittedAt)
	}
	update := model.FeedUpdate{
		UpdateID: req.UpdateID,
		Project: model.Project{
			ID:          req.ProjectID,
			EventID:     req.EventID,
			Status:      model.ProjectStatus(req.Status),
			SubmittedAt: submittedAt,
		},
	}
	if ok := h.deps.EnqueueFeedUpdate(r.Context(), update); !ok {
		// Roll back the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.UpdateID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
