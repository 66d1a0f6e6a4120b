package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/carousel-api/internal/api/shared"
	"github.com/phrazzld/carousel-api/internal/domain"
	"github.com/phrazzld/carousel-api/internal/platform/logger"
	"github.com/phrazzld/carousel-api/internal/style"
)

// RunIDHeader carries the ID a generation pass was recorded under.
const RunIDHeader = "X-Run-ID"

// CarouselGenerator runs one generation pass under a caller-chosen run ID.
type CarouselGenerator interface {
	GenerateRun(ctx context.Context, runID uuid.UUID, req domain.CarouselRequest) ([]domain.SlideResult, error)
}

// StyleCatalog resolves styles by ID.
type StyleCatalog interface {
	Get(id string) (*style.Style, error)
	List() []*style.Style
}

// CarouselHandler handles carousel generation requests.
type CarouselHandler struct {
	generator CarouselGenerator
	styles    StyleCatalog
}

// NewCarouselHandler creates a new CarouselHandler.
func NewCarouselHandler(generator CarouselGenerator, styles StyleCatalog) *CarouselHandler {
	return &CarouselHandler{
		generator: generator,
		styles:    styles,
	}
}

// GenerateCarousel handles POST /api/carousels.
func (h *CarouselHandler) GenerateCarousel(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), nil)

	var req CarouselRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		if errors.Is(err, shared.ErrBodyTooLarge) {
			HandleAPIError(w, r, err, "")
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}
	if err := checkDuplicateIDs(req.Slides); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	domainReq, err := h.resolve(req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	runID := uuid.New()
	w.Header().Set(RunIDHeader, runID.String())

	total, images := domainReq.ElementCount()
	log.Info("generating carousel",
		"run_id", runID.String(),
		"style_id", domainReq.StyleID,
		"slides", len(domainReq.Slides),
		"elements", total,
		"images", images)

	results, err := h.generator.GenerateRun(r.Context(), runID, domainReq)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate carousel")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, slidesToResponse(results))
}

// resolve builds the domain request, filling template and slides from the
// named style when the payload leaves them out.
func (h *CarouselHandler) resolve(req CarouselRequest) (domain.CarouselRequest, error) {
	out := req.toDomain()
	if req.StyleID == "" {
		return out, nil
	}

	st, err := h.styles.Get(req.StyleID)
	if err != nil {
		return domain.CarouselRequest{}, err
	}

	base := st.Request(req.Concept)
	if len(out.Slides) == 0 {
		out.Slides = base.Slides
	}
	if strings.TrimSpace(out.GlobalTemplate) == "" {
		out.GlobalTemplate = base.GlobalTemplate
	}
	return out, nil
}

// checkDuplicateIDs rejects element IDs repeated within one slide. IDs
// repeated across slides are accepted.
func checkDuplicateIDs(slides []SlideRequest) error {
	for slideIdx, slide := range slides {
		seen := make(map[string]bool, len(slide.Elements))
		for elemIdx, elem := range slide.Elements {
			if seen[elem.ID] {
				return domain.NewValidationError(
					fmt.Sprintf("slides[%d].elements[%d].id", slideIdx, elemIdx),
					fmt.Sprintf("%q is duplicated within the slide", elem.ID),
					nil)
			}
			seen[elem.ID] = true
		}
	}
	return nil
}
