package workflow

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and by deployments that
// run without journal persistence.
type MemoryStore struct {
	mu     sync.Mutex
	runs   map[string]*Run
	byID   map[int64]*Run
	steps  map[int64][]StepRecord
	nextID int64
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:  make(map[string]*Run),
		byID:  make(map[int64]*Run),
		steps: make(map[int64][]StepRecord),
	}
}

// CreateRun registers a new run, rejecting duplicate keys.
func (s *MemoryStore) CreateRun(ctx context.Context, kind, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[key]; ok {
		return 0, ErrDuplicateRun
	}
	s.nextID++
	now := time.Now()
	run := &Run{ID: s.nextID, Key: key, Kind: kind, Status: RunRunning, CreatedAt: now, UpdatedAt: now}
	s.runs[key] = run
	s.byID[run.ID] = run
	return run.ID, nil
}

// ReopenRun resets a FAILED run for a fresh attempt, discarding the old
// journal. Non-failed runs stay closed.
func (s *MemoryStore) ReopenRun(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[key]
	if !ok {
		return 0, ErrRunNotFound
	}
	if run.Status != RunFailed {
		return 0, ErrDuplicateRun
	}
	run.Status = RunRunning
	run.UpdatedAt = time.Now()
	s.steps[run.ID] = nil
	return run.ID, nil
}

// RecordStep appends a step outcome.
func (s *MemoryStore) RecordStep(ctx context.Context, runID int64, seq int, name string, status StepStatus, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps[runID] = append(s.steps[runID], StepRecord{
		RunID:      runID,
		Seq:        seq,
		Name:       name,
		Status:     status,
		Detail:     detail,
		FinishedAt: time.Now(),
	})
	return nil
}

// FinishRun sets the terminal status.
func (s *MemoryStore) FinishRun(ctx context.Context, runID int64, status RunStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run, ok := s.byID[runID]; ok {
		run.Status = status
		run.UpdatedAt = time.Now()
	}
	return nil
}

// GetRun returns the run and its journal by key.
func (s *MemoryStore) GetRun(ctx context.Context, key string) (Run, []StepRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run, ok := s.runs[key]
	if !ok {
		return Run{}, nil, ErrRunNotFound
	}
	steps := append([]StepRecord(nil), s.steps[run.ID]...)
	return *run, steps, nil
}
