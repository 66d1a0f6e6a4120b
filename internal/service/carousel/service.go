package carousel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/carousel-api/internal/domain"
	"github.com/phrazzld/carousel-api/internal/extract"
	"github.com/phrazzld/carousel-api/internal/generation"
	"github.com/phrazzld/carousel-api/internal/platform/logger"
	"github.com/phrazzld/carousel-api/internal/prompt"
	"github.com/phrazzld/carousel-api/internal/store"
	"golang.org/x/sync/errgroup"
)

// Pipeline states, logged as a pass progresses.
const (
	stateComposing       = "composing"
	stateTextGenerating  = "text_generating"
	stateExtracting      = "extracting"
	stateImageGenerating = "image_generating"
	stateAssembling      = "assembling"
	stateDone            = "done"
	stateFailed          = "failed"
)

// Service runs carousel generation passes. It holds no per-request state and
// is safe for concurrent use.
type Service struct {
	gen                 generation.Generator
	logger              *slog.Logger
	runs                store.RunStore
	maxConcurrentImages int
	refineDescriptions  bool
}

// NewService creates a Service that generates content through gen.
func NewService(gen generation.Generator, logger *slog.Logger, opts ...Option) (*Service, error) {
	if gen == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	s := &Service{
		gen:                 gen,
		logger:              logger.With("component", "carousel_service"),
		runs:                store.NoopRunStore{},
		maxConcurrentImages: DefaultMaxConcurrentImages,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Generate runs one pass under a fresh run ID.
func (s *Service) Generate(ctx context.Context, req domain.CarouselRequest) ([]domain.SlideResult, error) {
	return s.GenerateRun(ctx, uuid.New(), req)
}

// GenerateRun runs one generation pass for req and records it under runID.
// The result has one SlideResult per input slide, in input order, and one
// entry per element keyed by element ID. On any error the result is nil.
func (s *Service) GenerateRun(
	ctx context.Context,
	runID uuid.UUID,
	req domain.CarouselRequest,
) ([]domain.SlideResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With("run_id", runID.String())
	start := time.Now()

	results, err := s.generate(ctx, log, req)

	s.record(ctx, log, runID, req, time.Since(start), err)
	if err != nil {
		log.DebugContext(ctx, "carousel state", "state", stateFailed, "error", err)
		return nil, err
	}
	log.DebugContext(ctx, "carousel state", "state", stateDone,
		"slides", len(results),
		"duration_ms", time.Since(start).Milliseconds())
	return results, nil
}

func (s *Service) generate(
	ctx context.Context,
	log *slog.Logger,
	req domain.CarouselRequest,
) ([]domain.SlideResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	total, images := req.ElementCount()
	if dups := req.DuplicateElementIDs(); len(dups) > 0 {
		log.WarnContext(ctx, "duplicate element ids share the first matching response line",
			"ids", dups)
	}

	log.DebugContext(ctx, "carousel state", "state", stateComposing,
		"slides", len(req.Slides),
		"elements", total,
		"images", images)
	globalPrompt := prompt.ComposeGlobalPrompt(req)

	log.DebugContext(ctx, "carousel state", "state", stateTextGenerating,
		"prompt_length", len(globalPrompt))
	text, err := s.gen.GenerateText(ctx, globalPrompt)
	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "carousel state", "state", stateExtracting,
		"response_length", len(text))
	results, tasks := s.describe(ctx, log, req, text)

	log.DebugContext(ctx, "carousel state", "state", stateImageGenerating, "images", len(tasks))
	if err := s.render(ctx, req, tasks); err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "carousel state", "state", stateAssembling)
	for _, task := range tasks {
		results[task.slide].Content[task.elem.ID] = domain.ElementResult{
			Kind:             domain.ElementKindImage,
			Image:            task.image.Data,
			MIMEType:         task.image.MIMEType,
			ImageDescription: task.description,
		}
	}
	return results, nil
}

// imageTask is the intermediate artifact between the describe and render
// stages: one image element and the description it will be rendered from.
type imageTask struct {
	slide       int
	elem        domain.ElementRequest
	description string
	// missing is set when the combined response had no description.
	missing bool
	image   *generation.Image
}

// describe extracts every element's value from text. Text elements are filled
// in directly; image elements become tasks for the render stage.
func (s *Service) describe(
	ctx context.Context,
	log *slog.Logger,
	req domain.CarouselRequest,
	text string,
) ([]domain.SlideResult, []*imageTask) {
	results := make([]domain.SlideResult, len(req.Slides))
	var tasks []*imageTask
	misses := 0

	for slideIdx, slide := range req.Slides {
		results[slideIdx] = domain.SlideResult{
			SlideIndex: slideIdx,
			Content:    make(map[string]domain.ElementResult, len(slide.Elements)),
		}

		for _, elem := range slide.Elements {
			value, ok := extract.Extract(text, elem.ID)
			found := ok && value != ""
			if !found {
				misses++
			}

			if elem.Kind == domain.ElementKindImage {
				tasks = append(tasks, &imageTask{
					slide:       slideIdx,
					elem:        elem,
					description: value,
					missing:     !found,
				})
				continue
			}

			if !found {
				value = domain.FallbackText
			}
			results[slideIdx].Content[elem.ID] = domain.ElementResult{
				Kind: domain.ElementKindText,
				Text: value,
			}
		}
	}

	if misses > 0 {
		log.WarnContext(ctx, "element ids missing from generated text, using fallbacks",
			"missing", misses)
	}
	return results, tasks
}

// render generates every task's image, at most maxConcurrentImages at a time.
// The first failure cancels the remaining calls and is returned.
func (s *Service) render(ctx context.Context, req domain.CarouselRequest, tasks []*imageTask) error {
	if len(tasks) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrentImages)

	for _, task := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			if task.missing {
				description, err := s.fallbackDescription(gctx, req, task)
				if err != nil {
					return err
				}
				task.description = description
			}

			img, err := s.gen.GenerateImage(gctx, task.description, task.elem.EffectiveAspectRatio())
			if err != nil {
				return err
			}
			if img == nil {
				return fmt.Errorf("%w: generator returned no image", generation.ErrGenerationFailed)
			}
			task.image = img
			return nil
		})
	}

	return g.Wait()
}

// fallbackDescription supplies the description for an image element the
// combined response did not cover: a dedicated text call when refinement is
// enabled, then the concept-based default.
func (s *Service) fallbackDescription(
	ctx context.Context,
	req domain.CarouselRequest,
	task *imageTask,
) (string, error) {
	if s.refineDescriptions {
		elementPrompt := prompt.ComposeElementPrompt(
			slideContextPrompt(req, task.slide),
			prompt.ImageDescriptionInstruction(task.elem.Instruction),
		)
		refined, err := s.gen.GenerateText(ctx, elementPrompt)
		if err != nil {
			return "", err
		}
		if refined = strings.TrimSpace(refined); refined != "" {
			return refined, nil
		}
	}
	return domain.FallbackImageDescription(req.Concept), nil
}

// slideContextPrompt is the global context for a per-element prompt: the
// template with the concept applied plus the slide's own context.
func slideContextPrompt(req domain.CarouselRequest, slideIdx int) string {
	base := prompt.ApplyConcept(req.GlobalTemplate, req.Concept)
	if local := strings.TrimSpace(req.Slides[slideIdx].LocalContext); local != "" {
		return base + "\n\nSlide context: " + local
	}
	return base
}
