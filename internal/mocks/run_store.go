package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/carousel-api/internal/store"
)

// MockRunStore implements store.RunStore and store.RunReader for testing.
// Recorded runs are served back by GetRun and ListRuns unless the
// corresponding function field is set.
type MockRunStore struct {
	// RecordFn allows test cases to mock the Record behavior
	RecordFn func(ctx context.Context, run *store.Run) error

	// GetRunFn allows test cases to mock the GetRun behavior
	GetRunFn func(ctx context.Context, id uuid.UUID) (*store.Run, error)

	// ListRunsFn allows test cases to mock the ListRuns behavior
	ListRunsFn func(ctx context.Context, limit int) ([]*store.Run, error)

	mu   sync.Mutex
	runs []store.Run
}

var (
	_ store.RunStore  = (*MockRunStore)(nil)
	_ store.RunReader = (*MockRunStore)(nil)
)

// Record implements store.RunStore
func (m *MockRunStore) Record(ctx context.Context, run *store.Run) error {
	m.mu.Lock()
	m.runs = append(m.runs, *run)
	m.mu.Unlock()

	if m.RecordFn != nil {
		return m.RecordFn(ctx, run)
	}
	return nil
}

// GetRun implements store.RunReader
func (m *MockRunStore) GetRun(ctx context.Context, id uuid.UUID) (*store.Run, error) {
	if m.GetRunFn != nil {
		return m.GetRunFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.runs {
		if m.runs[i].ID == id {
			run := m.runs[i]
			return &run, nil
		}
	}
	return nil, store.ErrRunNotFound
}

// ListRuns implements store.RunReader, newest recorded first.
func (m *MockRunStore) ListRuns(ctx context.Context, limit int) ([]*store.Run, error) {
	if m.ListRunsFn != nil {
		return m.ListRunsFn(ctx, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*store.Run, 0, len(m.runs))
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		run := m.runs[i]
		out = append(out, &run)
	}
	return out, nil
}

// Runs returns a copy of every run passed to Record.
func (m *MockRunStore) Runs() []store.Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]store.Run(nil), m.runs...)
}
