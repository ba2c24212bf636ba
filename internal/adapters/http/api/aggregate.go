// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/podium/internal/app"
)

// AggregateDependencies defines the interface for aggregate reads.
type AggregateDependencies interface {
	ProjectAggregate(ctx context.Context, projectID string) (service.Aggregate, error)
}

// AggregateHandler handles per-project aggregate requests.
type AggregateHandler struct {
	deps AggregateDependencies
}

// NewAggregateHandler creates a new aggregate handler.
func NewAggregateHandler(deps AggregateDependencies) *AggregateHandler {
	return &AggregateHandler{deps: deps}
}

// HandleGetAggregate handles GET /aggregate/{project_id} requests.
// A project nobody has scored returns a null average, not an error.
func (h *AggregateHandler) HandleGetAggregate(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_aggregate"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	projectID := strings.TrimPrefix(r.URL.Path, "/aggregate/")
	if projectID == "" || strings.Contains(projectID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	agg, err := h.deps.ProjectAggregate(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, agg)
}
