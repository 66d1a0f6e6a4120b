package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunStatus is the outcome of one carousel generation pass.
type RunStatus string

// Run statuses
const (
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// Run is the log entry written for each generation pass. It holds counts and
// outcome only, never generated content.
type Run struct {
	ID           uuid.UUID
	Concept      string
	StyleID      string
	SlideCount   int
	ElementCount int
	ImageCount   int
	Status       RunStatus
	// ErrorKind is a short classification of the failure, empty on success.
	ErrorKind string
	Duration  time.Duration
	CreatedAt time.Time
}

// Validate checks the fields the run log requires.
func (r *Run) Validate() error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("%w: run id cannot be empty", ErrInvalidEntity)
	}
	switch r.Status {
	case RunStatusSucceeded, RunStatusFailed:
	default:
		return fmt.Errorf("%w: unknown run status %q", ErrInvalidEntity, r.Status)
	}
	if r.SlideCount < 0 || r.ElementCount < 0 || r.ImageCount < 0 {
		return fmt.Errorf("%w: counts cannot be negative", ErrInvalidEntity)
	}
	return nil
}

// RunStore records generation runs.
type RunStore interface {
	// Record persists run. It returns ErrInvalidEntity for a run that fails
	// validation and ErrDuplicate for an ID that was already recorded.
	Record(ctx context.Context, run *Run) error
}

// RunReader reads back recorded runs, newest first.
type RunReader interface {
	// GetRun returns the run with id, or ErrRunNotFound.
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)

	// ListRuns returns at most limit runs ordered by creation time, newest first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
}

// NoopRunStore discards every run. It is used when no database is configured.
type NoopRunStore struct{}

// Record implements RunStore.
func (NoopRunStore) Record(_ context.Context, run *Run) error {
	return run.Validate()
}

// GetRun implements RunReader; nothing is ever found.
func (NoopRunStore) GetRun(_ context.Context, _ uuid.UUID) (*Run, error) {
	return nil, ErrRunNotFound
}

// ListRuns implements RunReader; the list is always empty.
func (NoopRunStore) ListRuns(_ context.Context, _ int) ([]*Run, error) {
	return []*Run{}, nil
}

var (
	_ RunStore  = NoopRunStore{}
	_ RunReader = NoopRunStore{}
)
