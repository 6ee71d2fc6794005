package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for the journal.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateRun inserts a RUNNING run. A duplicate key returns ErrDuplicateRun.
func (r *Repository) CreateRun(ctx context.Context, kind, key string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO workflow_runs (kind, key, status, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW()) RETURNING id`,
		kind, key, string(RunRunning)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrDuplicateRun
		}
		return 0, err
	}
	return id, nil
}

// ReopenRun flips a FAILED run back to RUNNING and clears its journal so the
// chain can be retried. A run in any other state returns ErrDuplicateRun.
func (r *Repository) ReopenRun(ctx context.Context, key string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`UPDATE workflow_runs SET status=$1, updated_at=NOW()
		 WHERE key=$2 AND status=$3 RETURNING id`,
		string(RunRunning), key, string(RunFailed)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrDuplicateRun
	}
	if err != nil {
		return 0, err
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM workflow_steps WHERE run_id=$1`, id); err != nil {
		return 0, err
	}
	return id, nil
}

// RecordStep appends a step outcome to the run journal.
func (r *Repository) RecordStep(ctx context.Context, runID int64, seq int, name string, status StepStatus, detail string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO workflow_steps (run_id, seq, name, status, detail, finished_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())`,
		runID, seq, name, string(status), detail)
	return err
}

// FinishRun closes the run with a terminal status.
func (r *Repository) FinishRun(ctx context.Context, runID int64, status RunStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE workflow_runs SET status=$1, updated_at=NOW() WHERE id=$2`,
		string(status), runID)
	return err
}

// GetRun loads a run and its step records by key.
func (r *Repository) GetRun(ctx context.Context, key string) (Run, []StepRecord, error) {
	var run Run
	err := r.pool.QueryRow(ctx,
		`SELECT id, kind, key, status, created_at, updated_at FROM workflow_runs WHERE key=$1`,
		key).Scan(&run.ID, &run.Kind, &run.Key, &run.Status, &run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, nil, ErrRunNotFound
	}
	if err != nil {
		return Run{}, nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, run_id, seq, name, status, detail, finished_at
		 FROM workflow_steps WHERE run_id=$1 ORDER BY seq`, run.ID)
	if err != nil {
		return Run{}, nil, err
	}
	defer rows.Close()

	var steps []StepRecord
	for rows.Next() {
		var step StepRecord
		var finishedAt time.Time
		if err := rows.Scan(&step.ID, &step.RunID, &step.Seq, &step.Name, &step.Status, &step.Detail, &finishedAt); err != nil {
			return Run{}, nil, err
		}
		step.FinishedAt = finishedAt
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, err
	}
	return run, steps, nil
}
