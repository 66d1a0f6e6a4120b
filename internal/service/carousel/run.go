package carousel

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/carousel-api/internal/domain"
	"github.com/phrazzld/carousel-api/internal/generation"
	"github.com/phrazzld/carousel-api/internal/store"
)

const recordTimeout = 5 * time.Second

// Error kinds stored with failed runs.
const (
	errorKindInvalidRequest = "invalid_request"
	errorKindUnavailable    = "upstream_unavailable"
	errorKindBlocked        = "content_blocked"
	errorKindFailed         = "generation_failed"
	errorKindCanceled       = "canceled"
	errorKindInternal       = "internal"
)

// errorKind classifies err for the run log.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidElementID), errors.Is(err, domain.ErrInvalidElementKind),
		errors.Is(err, domain.ErrValidation):
		return errorKindInvalidRequest
	case errors.Is(err, generation.ErrUpstreamUnavailable):
		return errorKindUnavailable
	case errors.Is(err, generation.ErrContentBlocked):
		return errorKindBlocked
	case errors.Is(err, context.Canceled):
		return errorKindCanceled
	case errors.Is(err, generation.ErrGenerationFailed):
		return errorKindFailed
	default:
		return errorKindInternal
	}
}

// record writes the run log entry for one pass. Failures are logged and
// never affect the pass result.
func (s *Service) record(
	ctx context.Context,
	log *slog.Logger,
	runID uuid.UUID,
	req domain.CarouselRequest,
	elapsed time.Duration,
	passErr error,
) {
	total, images := req.ElementCount()
	run := &store.Run{
		ID:           runID,
		Concept:      req.Concept,
		StyleID:      req.StyleID,
		SlideCount:   len(req.Slides),
		ElementCount: total,
		ImageCount:   images,
		Status:       store.RunStatusSucceeded,
		ErrorKind:    errorKind(passErr),
		Duration:     elapsed,
		CreatedAt:    time.Now().UTC(),
	}
	if passErr != nil {
		run.Status = store.RunStatusFailed
	}

	// The run is recorded even when the request context was canceled.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := s.runs.Record(recordCtx, run); err != nil {
		log.WarnContext(ctx, "failed to record run", "error", err)
	}
}
