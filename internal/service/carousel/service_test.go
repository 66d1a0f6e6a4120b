package carousel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/carousel-api/internal/domain"
	"github.com/phrazzld/carousel-api/internal/generation"
	"github.com/phrazzld/carousel-api/internal/mocks"
	"github.com/phrazzld/carousel-api/internal/platform/logger"
	"github.com/phrazzld/carousel-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestService(t *testing.T, gen generation.Generator, opts ...Option) *Service {
	t.Helper()
	log, _ := logger.NewTestLogger()
	svc, err := NewService(gen, log, opts...)
	require.NoError(t, err)
	return svc
}

// imageFor returns a generator image callback that encodes the description
// into the image bytes, so tests can check which description produced which image.
func imageFor(_ context.Context, description, aspectRatio string) (*generation.Image, error) {
	return &generation.Image{
		Data:     []byte(description + "@" + aspectRatio),
		MIMEType: "image/png",
	}, nil
}

func twoSlideRequest() domain.CarouselRequest {
	return domain.CarouselRequest{
		Concept:        "artisan coffee",
		GlobalTemplate: "Theme: {prompt}",
		Slides: []domain.SlideRequest{
			{Elements: []domain.ElementRequest{
				{ID: "title1", Kind: domain.ElementKindText, Instruction: "write a title"},
				{ID: "photo1", Kind: domain.ElementKindImage, Instruction: "a latte", AspectRatio: "1:1"},
			}},
			{Elements: []domain.ElementRequest{
				{ID: "title2", Kind: domain.ElementKindText, Instruction: "write another title"},
				{ID: "photo2", Kind: domain.ElementKindImage, Instruction: "beans"},
			}},
		},
	}
}

const twoSlideResponse = "title1: Morning Ritual\nphoto1: A latte on an oak table\n" +
	"title2: From Bean to Cup\nphoto2: Roasted beans in warm light"

func TestNewService(t *testing.T) {
	t.Parallel()

	log, _ := logger.NewTestLogger()

	_, err := NewService(nil, log)
	assert.Error(t, err)

	_, err = NewService(&mocks.MockGenerator{}, nil)
	assert.Error(t, err)

	svc, err := NewService(&mocks.MockGenerator{}, log, WithMaxConcurrentImages(0), WithRunStore(nil))
	require.NoError(t, err)
	assert.Equal(t, 1, svc.maxConcurrentImages)
	assert.IsType(t, store.NoopRunStore{}, svc.runs)
}

func TestGenerate_ArtisanCoffeeExample(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{Text: "headline: Wake Up To Artistry"}
	svc := newTestService(t, gen)

	req := domain.CarouselRequest{
		Concept:        "artisan coffee",
		GlobalTemplate: "Theme: {prompt}",
		Slides: []domain.SlideRequest{
			{Elements: []domain.ElementRequest{
				{ID: "headline", Kind: domain.ElementKindText, Instruction: "write a tagline"},
			}},
		},
	}

	results, err := svc.Generate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, []domain.SlideResult{{
		SlideIndex: 0,
		Content: map[string]domain.ElementResult{
			"headline": {Kind: domain.ElementKindText, Text: "Wake Up To Artistry"},
		},
	}}, results)

	calls := gen.TextCalls()
	require.Len(t, calls, 1, "exactly one text call")
	assert.True(t, strings.HasPrefix(calls[0], "Theme: artisan coffee"))
	assert.Empty(t, gen.ImageCalls())
}

func TestGenerate_TextAndImages(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{Text: twoSlideResponse, GenerateImageFn: imageFor}
	svc := newTestService(t, gen)

	results, err := svc.Generate(context.Background(), twoSlideRequest())

	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 0, results[0].SlideIndex)
	assert.Equal(t, "Morning Ritual", results[0].Content["title1"].Text)
	photo1 := results[0].Content["photo1"]
	assert.Equal(t, domain.ElementKindImage, photo1.Kind)
	assert.Equal(t, "A latte on an oak table", photo1.ImageDescription)
	assert.Equal(t, []byte("A latte on an oak table@1:1"), photo1.Image)
	assert.Equal(t, "image/png", photo1.MIMEType)

	assert.Equal(t, 1, results[1].SlideIndex)
	assert.Equal(t, "From Bean to Cup", results[1].Content["title2"].Text)
	assert.Equal(t, []byte("Roasted beans in warm light@16:9"), results[1].Content["photo2"].Image,
		"default aspect ratio is applied")

	assert.Len(t, gen.TextCalls(), 1)
	assert.Len(t, gen.ImageCalls(), 2)
}

func TestGenerate_PreservesIDsAndOrder(t *testing.T) {
	t.Parallel()

	var slides []domain.SlideRequest
	var lines []string
	for s := 0; s < 5; s++ {
		var elems []domain.ElementRequest
		for e := 0; e < 3; e++ {
			id := fmt.Sprintf("s%d-e%d", s, e)
			kind := domain.ElementKindText
			if e == 2 {
				kind = domain.ElementKindImage
			}
			elems = append(elems, domain.ElementRequest{ID: id, Kind: kind, Instruction: "x"})
			lines = append(lines, id+": value "+id)
		}
		slides = append(slides, domain.SlideRequest{Elements: elems})
	}

	// Later slides finish their images first.
	gen := &mocks.MockGenerator{
		Text: strings.Join(lines, "\n"),
		GenerateImageFn: func(ctx context.Context, description, aspectRatio string) (*generation.Image, error) {
			var slide int
			_, _ = fmt.Sscanf(description, "value s%d", &slide)
			time.Sleep(time.Duration(5-slide) * 5 * time.Millisecond)
			return imageFor(ctx, description, aspectRatio)
		},
	}
	svc := newTestService(t, gen, WithMaxConcurrentImages(5))

	results, err := svc.Generate(context.Background(), domain.CarouselRequest{Slides: slides})

	require.NoError(t, err)
	require.Len(t, results, len(slides))
	for s, slide := range slides {
		assert.Equal(t, s, results[s].SlideIndex)
		require.Len(t, results[s].Content, len(slide.Elements))
		for _, elem := range slide.Elements {
			got, ok := results[s].Content[elem.ID]
			require.True(t, ok, "missing %s", elem.ID)
			assert.Equal(t, elem.Kind, got.Kind)
			if elem.Kind == domain.ElementKindImage {
				assert.Equal(t, "value "+elem.ID, got.ImageDescription)
				assert.Equal(t, []byte("value "+elem.ID+"@16:9"), got.Image)
			} else {
				assert.Equal(t, "value "+elem.ID, got.Text)
			}
		}
	}
}

func TestGenerate_FallbacksOnMiss(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{Text: "unrelated chatter", GenerateImageFn: imageFor}
	svc := newTestService(t, gen)

	results, err := svc.Generate(context.Background(), twoSlideRequest())

	require.NoError(t, err)
	assert.Equal(t, domain.FallbackText, results[0].Content["title1"].Text)
	assert.Equal(t, domain.FallbackText, results[1].Content["title2"].Text)
	assert.Equal(t, "A vibrant image for artisan coffee", results[0].Content["photo1"].ImageDescription)

	for _, call := range gen.ImageCalls() {
		assert.Equal(t, "A vibrant image for artisan coffee", call.Description)
	}
	assert.Len(t, gen.TextCalls(), 1, "no refinement calls when disabled")
}

func TestGenerate_EmptyValueUsesFallback(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{Text: "title1:\nphoto1:   \n", GenerateImageFn: imageFor}
	svc := newTestService(t, gen)

	req := twoSlideRequest()
	req.Slides = req.Slides[:1]
	results, err := svc.Generate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, domain.FallbackText, results[0].Content["title1"].Text)
	assert.Equal(t, "A vibrant image for artisan coffee", results[0].Content["photo1"].ImageDescription)
}

func TestGenerate_ImageFailureFailsWholeRequest(t *testing.T) {
	t.Parallel()

	var imageCalls atomic.Int32
	gen := &mocks.MockGenerator{
		Text: twoSlideResponse,
		GenerateImageFn: func(ctx context.Context, description, aspectRatio string) (*generation.Image, error) {
			if imageCalls.Add(1) == 2 {
				return nil, fmt.Errorf("%w: upstream status 500", generation.ErrGenerationFailed)
			}
			return imageFor(ctx, description, aspectRatio)
		},
	}
	runs := &mocks.MockRunStore{}
	svc := newTestService(t, gen, WithMaxConcurrentImages(1), WithRunStore(runs))

	results, err := svc.Generate(context.Background(), twoSlideRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrGenerationFailed)
	assert.Nil(t, results, "no partial results")

	recorded := runs.Runs()
	require.Len(t, recorded, 1)
	assert.Equal(t, store.RunStatusFailed, recorded[0].Status)
	assert.Equal(t, errorKindFailed, recorded[0].ErrorKind)
}

func TestGenerate_TextFailureStopsPipeline(t *testing.T) {
	t.Parallel()

	gen := mocks.NewMockGeneratorWithError(generation.ErrUpstreamUnavailable)
	svc := newTestService(t, gen)

	results, err := svc.Generate(context.Background(), twoSlideRequest())

	assert.Nil(t, results)
	assert.ErrorIs(t, err, generation.ErrUpstreamUnavailable)
	assert.Empty(t, gen.ImageCalls(), "no image calls after a text failure")
}

func TestGenerate_InvalidElementIDRejectedBeforeUpstream(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"bad:id", " headline", "headline "} {
		t.Run(id, func(t *testing.T) {
			t.Parallel()

			gen := &mocks.MockGenerator{Text: id + ": Hello"}
			svc := newTestService(t, gen)

			req := domain.CarouselRequest{Concept: "tea", Slides: []domain.SlideRequest{
				{Elements: []domain.ElementRequest{{ID: id, Kind: domain.ElementKindText}}},
			}}
			results, err := svc.Generate(context.Background(), req)

			assert.Nil(t, results)
			assert.ErrorIs(t, err, domain.ErrInvalidElementID)
			assert.Empty(t, gen.TextCalls())
		})
	}
}

func TestGenerate_EmptySlides(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{Text: "nothing to extract"}
	svc := newTestService(t, gen)

	results, err := svc.Generate(context.Background(), domain.CarouselRequest{Concept: "tea", GlobalTemplate: "{prompt}"})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGenerate_DuplicateIDsShareFirstMatch(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{Text: "title: First\ntitle: Second"}
	svc := newTestService(t, gen)

	req := domain.CarouselRequest{Slides: []domain.SlideRequest{
		{Elements: []domain.ElementRequest{{ID: "title", Kind: domain.ElementKindText}}},
		{Elements: []domain.ElementRequest{{ID: "title", Kind: domain.ElementKindText}}},
	}}
	results, err := svc.Generate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "First", results[0].Content["title"].Text)
	assert.Equal(t, "First", results[1].Content["title"].Text)
}

func TestGenerate_RespectsConcurrencyBound(t *testing.T) {
	t.Parallel()

	var inFlight, peak atomic.Int32
	gen := &mocks.MockGenerator{
		GenerateTextFn: func(_ context.Context, _ string) (string, error) { return "", nil },
		GenerateImageFn: func(ctx context.Context, description, aspectRatio string) (*generation.Image, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			return imageFor(ctx, description, aspectRatio)
		},
	}
	svc := newTestService(t, gen, WithMaxConcurrentImages(2))

	var elems []domain.ElementRequest
	for i := 0; i < 8; i++ {
		elems = append(elems, domain.ElementRequest{ID: fmt.Sprintf("img%d", i), Kind: domain.ElementKindImage})
	}
	_, err := svc.Generate(context.Background(), domain.CarouselRequest{Slides: []domain.SlideRequest{{Elements: elems}}})

	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Len(t, gen.ImageCalls(), 8)
}

func TestGenerate_FailureCancelsInFlightImages(t *testing.T) {
	t.Parallel()

	var canceled atomic.Int32
	gen := &mocks.MockGenerator{
		Text: twoSlideResponse,
		GenerateImageFn: func(ctx context.Context, description, _ string) (*generation.Image, error) {
			if strings.HasPrefix(description, "A latte") {
				return nil, generation.ErrContentBlocked
			}
			select {
			case <-ctx.Done():
				canceled.Add(1)
				return nil, fmt.Errorf("%w: %w", generation.ErrGenerationFailed, ctx.Err())
			case <-time.After(5 * time.Second):
				return nil, errors.New("image call was not canceled")
			}
		},
	}
	svc := newTestService(t, gen, WithMaxConcurrentImages(2))

	_, err := svc.Generate(context.Background(), twoSlideRequest())

	assert.ErrorIs(t, err, generation.ErrContentBlocked)
	assert.LessOrEqual(t, canceled.Load(), int32(1))
}

func TestGenerate_RefinesMissingDescriptions(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var prompts []string
	gen := &mocks.MockGenerator{
		GenerateTextFn: func(_ context.Context, p string) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			prompts = append(prompts, p)
			if len(prompts) == 1 {
				return "title1: Morning Ritual\nphoto1: A latte on oak", nil
			}
			return "  A sack of freshly roasted beans  \n", nil
		},
		GenerateImageFn: imageFor,
	}
	svc := newTestService(t, gen, WithImageDescriptionRefinement(true))

	req := twoSlideRequest()
	req.Slides[1].LocalContext = "Origins"
	results, err := svc.Generate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "A latte on oak", results[0].Content["photo1"].ImageDescription, "found descriptions are not refined")
	assert.Equal(t, "A sack of freshly roasted beans", results[1].Content["photo2"].ImageDescription)
	assert.Equal(t, domain.FallbackText, results[1].Content["title2"].Text, "text elements are never refined")

	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], "Theme: artisan coffee")
	assert.Contains(t, prompts[1], "Slide context: Origins")
	assert.Contains(t, prompts[1], "based on the instruction: 'beans'")
}

func TestGenerate_RefinementFailureFailsRequest(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	gen := &mocks.MockGenerator{
		GenerateTextFn: func(_ context.Context, _ string) (string, error) {
			if calls.Add(1) == 1 {
				return "", nil
			}
			return "", generation.ErrGenerationFailed
		},
		GenerateImageFn: imageFor,
	}
	svc := newTestService(t, gen, WithImageDescriptionRefinement(true), WithMaxConcurrentImages(1))

	results, err := svc.Generate(context.Background(), twoSlideRequest())

	assert.Nil(t, results)
	assert.ErrorIs(t, err, generation.ErrGenerationFailed)
}

func TestGenerate_BlankRefinementFallsBack(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{
		GenerateTextFn:  func(_ context.Context, _ string) (string, error) { return " ", nil },
		GenerateImageFn: imageFor,
	}
	svc := newTestService(t, gen, WithImageDescriptionRefinement(true))

	results, err := svc.Generate(context.Background(), twoSlideRequest())

	require.NoError(t, err)
	assert.Equal(t, "A vibrant image for artisan coffee", results[0].Content["photo1"].ImageDescription)
}

func TestGenerate_NilImageIsFailure(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{Text: twoSlideResponse}
	svc := newTestService(t, gen)

	_, err := svc.Generate(context.Background(), twoSlideRequest())

	assert.ErrorIs(t, err, generation.ErrGenerationFailed)
}

func TestGenerateRun_RecordsRun(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{Text: twoSlideResponse, GenerateImageFn: imageFor}
	runs := &mocks.MockRunStore{}
	svc := newTestService(t, gen, WithRunStore(runs))

	req := twoSlideRequest()
	req.StyleID = "minimal"
	runID := uuid.New()
	_, err := svc.GenerateRun(context.Background(), runID, req)
	require.NoError(t, err)

	recorded := runs.Runs()
	require.Len(t, recorded, 1)
	run := recorded[0]
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, "artisan coffee", run.Concept)
	assert.Equal(t, "minimal", run.StyleID)
	assert.Equal(t, 2, run.SlideCount)
	assert.Equal(t, 4, run.ElementCount)
	assert.Equal(t, 2, run.ImageCount)
	assert.Equal(t, store.RunStatusSucceeded, run.Status)
	assert.Empty(t, run.ErrorKind)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestGenerateRun_RecordFailureDoesNotAffectResult(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{Text: "headline: Hi"}
	runs := &mocks.MockRunStore{
		RecordFn: func(context.Context, *store.Run) error { return errors.New("database down") },
	}
	svc := newTestService(t, gen, WithRunStore(runs))

	req := domain.CarouselRequest{Slides: []domain.SlideRequest{
		{Elements: []domain.ElementRequest{{ID: "headline", Kind: domain.ElementKindText}}},
	}}
	results, err := svc.Generate(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "Hi", results[0].Content["headline"].Text)
}

func TestGenerateRun_RecordsCanceledRequest(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	gen := &mocks.MockGenerator{
		GenerateTextFn: func(ctx context.Context, _ string) (string, error) {
			cancel()
			return "", fmt.Errorf("%w: %w", generation.ErrGenerationFailed, ctx.Err())
		},
	}
	runs := &mocks.MockRunStore{
		RecordFn: func(ctx context.Context, _ *store.Run) error { return ctx.Err() },
	}
	svc := newTestService(t, gen, WithRunStore(runs))

	_, err := svc.Generate(ctx, twoSlideRequest())

	require.Error(t, err)
	recorded := runs.Runs()
	require.Len(t, recorded, 1)
	assert.Equal(t, errorKindCanceled, recorded[0].ErrorKind)
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("slide 0: %w", domain.ErrInvalidElementID), errorKindInvalidRequest},
		{domain.ErrInvalidElementKind, errorKindInvalidRequest},
		{generation.ErrUpstreamUnavailable, errorKindUnavailable},
		{generation.ErrContentBlocked, errorKindBlocked},
		{generation.ErrGenerationFailed, errorKindFailed},
		{fmt.Errorf("%w: %w", generation.ErrGenerationFailed, context.Canceled), errorKindCanceled},
		{errors.New("other"), errorKindInternal},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, errorKind(tc.err), "error: %v", tc.err)
	}
}
