package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/carousel-api/internal/api/shared"
	"github.com/phrazzld/carousel-api/internal/domain"
	"github.com/phrazzld/carousel-api/internal/store"
	"github.com/phrazzld/carousel-api/internal/style"
	"github.com/stretchr/testify/require"
)

// fakeCarouselGenerator records the request it was asked to generate.
type fakeCarouselGenerator struct {
	fn func(ctx context.Context, req domain.CarouselRequest) ([]domain.SlideResult, error)

	mu    sync.Mutex
	calls []domain.CarouselRequest
	runID uuid.UUID
}

func (f *fakeCarouselGenerator) GenerateRun(
	ctx context.Context,
	runID uuid.UUID,
	req domain.CarouselRequest,
) ([]domain.SlideResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.runID = runID
	f.mu.Unlock()

	if f.fn != nil {
		return f.fn(ctx, req)
	}
	return []domain.SlideResult{}, nil
}

func (f *fakeCarouselGenerator) lastRequest(t *testing.T) domain.CarouselRequest {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls, "generator was not called")
	return f.calls[len(f.calls)-1]
}

func (f *fakeCarouselGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// newTestRouter mounts the handlers the way cmd/server does, without auth.
func newTestRouter(t *testing.T, gen CarouselGenerator, runs store.RunReader) http.Handler {
	t.Helper()

	catalog, err := style.Default()
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Post("/api/carousels", NewCarouselHandler(gen, catalog).GenerateCarousel)

	styles := NewStyleHandler(catalog)
	r.Get("/api/styles", styles.ListStyles)
	r.Get("/api/styles/{id}", styles.GetStyle)

	if runs != nil {
		runHandler := NewRunHandler(runs)
		r.Get("/api/runs", runHandler.ListRuns)
		r.Get("/api/runs/{id}", runHandler.GetRun)
	}
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()
	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}
