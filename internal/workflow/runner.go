package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Store persists workflow runs and their step outcomes.
type Store interface {
	CreateRun(ctx context.Context, kind, key string) (int64, error)
	// ReopenRun resets a FAILED run so the chain can be attempted again.
	// Runs in any other state stay closed and return ErrDuplicateRun.
	ReopenRun(ctx context.Context, key string) (int64, error)
	RecordStep(ctx context.Context, runID int64, seq int, name string, status StepStatus, detail string) error
	FinishRun(ctx context.Context, runID int64, status RunStatus) error
	GetRun(ctx context.Context, key string) (Run, []StepRecord, error)
}

// Step is one compensable unit of a workflow. Each step commits its own
// database transaction; the chain as a whole is journaled, not atomic.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Metrics receives run outcome counters. Optional.
type Metrics interface {
	ObserveWorkflowRun(kind string, status string)
}

// Runner executes workflow steps in order, journaling every outcome.
type Runner struct {
	store   Store
	logger  *slog.Logger
	metrics Metrics
}

// NewRunner constructs a Runner. Store must be non-nil; metrics may be nil.
func NewRunner(store Store, logger *slog.Logger, metrics Metrics) *Runner {
	return &Runner{store: store, logger: logger, metrics: metrics}
}

// Execute runs steps sequentially under a journaled run identified by key.
// A failing step stops the chain: its error and name are recorded, the run is
// marked FAILED and the error returned. Completed prior steps are not
// compensated; the journal makes the partial state reportable. Re-executing
// the key of a FAILED run reopens it with a fresh journal, so callers can
// retry after a transient failure; COMPLETED and RUNNING keys stay closed
// with ErrDuplicateRun.
func (r *Runner) Execute(ctx context.Context, kind, key string, steps []Step) error {
	runID, err := r.store.CreateRun(ctx, kind, key)
	if errors.Is(err, ErrDuplicateRun) {
		runID, err = r.store.ReopenRun(ctx, key)
	}
	if err != nil {
		return err
	}
	for i, step := range steps {
		if err := step.Run(ctx); err != nil {
			_ = r.store.RecordStep(ctx, runID, i+1, step.Name, StepFailed, err.Error())
			_ = r.store.FinishRun(ctx, runID, RunFailed)
			r.observe(kind, RunFailed)
			if r.logger != nil {
				r.logger.Error("workflow step failed",
					slog.String("kind", kind),
					slog.String("key", key),
					slog.String("step", step.Name),
					slog.Any("error", err))
			}
			return fmt.Errorf("workflow %s: step %s: %w", kind, step.Name, err)
		}
		if err := r.store.RecordStep(ctx, runID, i+1, step.Name, StepCompleted, ""); err != nil {
			return err
		}
	}
	if err := r.store.FinishRun(ctx, runID, RunCompleted); err != nil {
		return err
	}
	r.observe(kind, RunCompleted)
	return nil
}

// Inspect returns the journal for a run key.
func (r *Runner) Inspect(ctx context.Context, key string) (Run, []StepRecord, error) {
	return r.store.GetRun(ctx, key)
}

func (r *Runner) observe(kind string, status RunStatus) {
	if r.metrics != nil {
		r.metrics.ObserveWorkflowRun(kind, string(status))
	}
}
