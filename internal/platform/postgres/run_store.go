package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/carousel-api/internal/platform/logger"
	"github.com/phrazzld/carousel-api/internal/store"
)

// maxListLimit caps ListRuns regardless of the requested limit.
const maxListLimit = 200

// PostgresRunStore implements store.RunStore and store.RunReader using PostgreSQL.
type PostgresRunStore struct {
	db store.DBTX
}

var (
	_ store.RunStore  = (*PostgresRunStore)(nil)
	_ store.RunReader = (*PostgresRunStore)(nil)
)

// NewPostgresRunStore creates a new PostgresRunStore
func NewPostgresRunStore(db store.DBTX) *PostgresRunStore {
	return &PostgresRunStore{db: db}
}

// Record inserts run. A zero CreatedAt is set to the current time.
func (s *PostgresRunStore) Record(ctx context.Context, run *store.Run) error {
	log := logger.FromContextOrDefault(ctx, nil)

	if err := run.Validate(); err != nil {
		return err
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO carousel_runs (id, concept, style_id, slide_count, element_count,
			image_count, status, error_kind, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.Concept,
		run.StyleID,
		run.SlideCount,
		run.ElementCount,
		run.ImageCount,
		string(run.Status),
		run.ErrorKind,
		run.Duration.Milliseconds(),
		run.CreatedAt,
	)
	if err != nil {
		log.ErrorContext(ctx, "failed to record run",
			"run_id", run.ID,
			"error", err)
		return fmt.Errorf("failed to record run: %w", MapError(err))
	}

	return nil
}

// GetRun returns the run with id, or store.ErrRunNotFound.
func (s *PostgresRunStore) GetRun(ctx context.Context, id uuid.UUID) (*store.Run, error) {
	query := `
		SELECT id, concept, style_id, slide_count, element_count, image_count,
			status, error_kind, duration_ms, created_at
		FROM carousel_runs
		WHERE id = $1
	`

	run, err := scanRun(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if IsNotFound(err) {
			return nil, store.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", MapError(err))
	}
	return run, nil
}

// ListRuns returns at most limit runs, newest first. Limits outside
// 1..maxListLimit are clamped.
func (s *PostgresRunStore) ListRuns(ctx context.Context, limit int) ([]*store.Run, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	query := `
		SELECT id, concept, style_id, slide_count, element_count, image_count,
			status, error_kind, duration_ms, created_at
		FROM carousel_runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	runs := make([]*store.Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*store.Run, error) {
	var (
		run        store.Run
		status     string
		durationMS int64
	)
	err := row.Scan(
		&run.ID,
		&run.Concept,
		&run.StyleID,
		&run.SlideCount,
		&run.ElementCount,
		&run.ImageCount,
		&status,
		&run.ErrorKind,
		&durationMS,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Status = store.RunStatus(status)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
