package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/music-exporter/internal/models"
	"github.com/desertthunder/music-exporter/internal/shared"
)

// RunRepository implements models.Repository[*models.Run] for export run history.
type RunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Run] = (*RunRepository)(nil)

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(ctx context.Context, run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)
	run.SetSequence(sequence)

	query := `
		INSERT INTO runs (id, sequence, platforms, status, existing, fetched, kept, duplicates, error_message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	counts := run.Counts()
	_, err = r.db.ExecContext(ctx, query,
		id,
		sequence,
		strings.Join(run.Platforms(), ","),
		string(run.Status()),
		counts.Existing,
		counts.Fetched,
		counts.Kept,
		counts.Duplicates,
		nullString(run.ErrorMessage()),
		run.StartedAt(),
		run.FinishedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Finish stores the terminal status, counts and error of a run created with [RunRepository.Create].
func (r *RunRepository) Finish(ctx context.Context, run *models.Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		UPDATE runs
		SET status = ?, existing = ?, fetched = ?, kept = ?, duplicates = ?, error_message = ?, finished_at = ?
		WHERE id = ?
	`

	counts := run.Counts()
	result, err := r.db.ExecContext(ctx, query,
		string(run.Status()),
		counts.Existing,
		counts.Fetched,
		counts.Kept,
		counts.Duplicates,
		nullString(run.ErrorMessage()),
		run.FinishedAt(),
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: run %s", ErrNotFound, run.ID())
	}

	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(ctx context.Context, id string) (*models.Run, error) {
	query := `
		SELECT id, sequence, platforms, status, existing, fetched, kept, duplicates, error_message, started_at, finished_at
		FROM runs
		WHERE id = ?
	`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", ErrNotFound, id)
	}
	return run, err
}

// List returns the most recent runs first. A limit of zero or less returns every run.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*models.Run, error) {
	if limit <= 0 {
		limit = -1
	}

	query := `
		SELECT id, sequence, platforms, status, existing, fetched, kept, duplicates, error_message, started_at, finished_at
		FROM runs
		ORDER BY sequence DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRun scans a row from [sql.Row] or [sql.Rows] into a [models.Run]
func scanRun(row scanner) (*models.Run, error) {
	var (
		id         string
		sequence   int
		platforms  string
		status     string
		counts     models.RunCounts
		errMessage sql.NullString
		startedAt  time.Time
		finishedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &platforms, &status,
		&counts.Existing, &counts.Fetched, &counts.Kept, &counts.Duplicates,
		&errMessage, &startedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	var finished *time.Time
	if finishedAt.Valid {
		finished = &finishedAt.Time
	}

	var names []string
	if platforms != "" {
		names = strings.Split(platforms, ",")
	}

	return models.RestoreRun(id, sequence, names, models.RunStatus(status), counts, errMessage.String, startedAt, finished), nil
}
