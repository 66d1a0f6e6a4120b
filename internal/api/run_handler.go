package api

import (
	"net/http"
	"strconv"

	"github.com/phrazzld/carousel-api/internal/api/shared"
	"github.com/phrazzld/carousel-api/internal/domain"
	"github.com/phrazzld/carousel-api/internal/store"
)

// Page size bounds for GET /api/runs.
const (
	defaultRunListLimit = 50
	maxRunListLimit     = 200
)

// RunHandler serves the generation run log.
type RunHandler struct {
	runs store.RunReader
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(runs store.RunReader) *RunHandler {
	return &RunHandler{runs: runs}
}

// ListRuns handles GET /api/runs?limit=n.
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRunListLimit {
			HandleAPIError(w, r, domain.NewValidationError("limit", "must be between 1 and 200", nil), "")
			return
		}
		limit = n
	}

	runs, err := h.runs.ListRuns(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list runs")
		return
	}

	out := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, runToResponse(run))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// GetRun handles GET /api/runs/{id}.
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	run, err := h.runs.GetRun(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get run")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, runToResponse(run))
}
