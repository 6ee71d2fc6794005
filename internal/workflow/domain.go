package workflow

import (
	"errors"
	"time"
)

// RunStatus is the lifecycle of a journaled workflow run.
type RunStatus string

const (
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

// StepStatus records the outcome of a single step.
type StepStatus string

const (
	StepCompleted StepStatus = "COMPLETED"
	StepFailed    StepStatus = "FAILED"
)

// Run is the persisted header of a multi-step workflow execution. Each
// user-triggered effect chain (order creation, payment confirmation, delivery)
// gets exactly one run keyed by a deterministic token, so a crash mid-sequence
// is distinguishable from full success instead of leaving silent partial
// writes.
type Run struct {
	ID        int64
	Key       string
	Kind      string
	Status    RunStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StepRecord is one journaled step within a run.
type StepRecord struct {
	ID         int64
	RunID      int64
	Seq        int
	Name       string
	Status     StepStatus
	Detail     string
	FinishedAt time.Time
}

var (
	// ErrDuplicateRun indicates the run key was already journaled.
	ErrDuplicateRun = errors.New("workflow: run already executed")
	// ErrRunNotFound indicates no run exists for the key.
	ErrRunNotFound = errors.New("workflow: run not found")
)
