package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/carousel-api/internal/api/shared"
)

// StyleHandler serves the style catalog.
type StyleHandler struct {
	styles StyleCatalog
}

// NewStyleHandler creates a new StyleHandler.
func NewStyleHandler(styles StyleCatalog) *StyleHandler {
	return &StyleHandler{styles: styles}
}

// ListStyles handles GET /api/styles.
func (h *StyleHandler) ListStyles(w http.ResponseWriter, r *http.Request) {
	all := h.styles.List()
	out := make([]StyleSummary, 0, len(all))
	for _, s := range all {
		out = append(out, styleToSummary(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// GetStyle handles GET /api/styles/{id}.
func (h *StyleHandler) GetStyle(w http.ResponseWriter, r *http.Request) {
	s, err := h.styles.Get(chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, styleToResponse(s))
}
