package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunnerJournalsCompletedSteps(t *testing.T) {
	store := NewMemoryStore()
	runner := NewRunner(store, nil, nil)
	ctx := context.Background()

	var order []string
	steps := []Step{
		{Name: "insert_order", Run: func(ctx context.Context) error {
			order = append(order, "insert_order")
			return nil
		}},
		{Name: "create_invoice", Run: func(ctx context.Context) error {
			order = append(order, "create_invoice")
			return nil
		}},
	}

	require.NoError(t, runner.Execute(ctx, "order.create", "ORD-1", steps))
	require.Equal(t, []string{"insert_order", "create_invoice"}, order)

	run, records, err := runner.Inspect(ctx, "ORD-1")
	require.NoError(t, err)
	require.Equal(t, RunCompleted, run.Status)
	require.Len(t, records, 2)
	require.Equal(t, StepCompleted, records[0].Status)
	require.Equal(t, "create_invoice", records[1].Name)
}

func TestRunnerStopsChainOnFailure(t *testing.T) {
	store := NewMemoryStore()
	runner := NewRunner(store, nil, nil)
	ctx := context.Background()

	boom := errors.New("insert failed")
	thirdRan := false
	steps := []Step{
		{Name: "complete_payment", Run: func(ctx context.Context) error { return nil }},
		{Name: "update_order", Run: func(ctx context.Context) error { return boom }},
		{Name: "insert_transactions", Run: func(ctx context.Context) error {
			thirdRan = true
			return nil
		}},
	}

	err := runner.Execute(ctx, "payment.confirm", "PAY-1", steps)
	require.ErrorIs(t, err, boom)
	require.False(t, thirdRan)

	run, records, err := runner.Inspect(ctx, "PAY-1")
	require.NoError(t, err)
	require.Equal(t, RunFailed, run.Status)
	require.Len(t, records, 2)
	require.Equal(t, StepCompleted, records[0].Status)
	require.Equal(t, StepFailed, records[1].Status)
	require.Equal(t, "update_order", records[1].Name)
	require.Contains(t, records[1].Detail, "insert failed")
}

func TestRunnerRejectsDuplicateKey(t *testing.T) {
	store := NewMemoryStore()
	runner := NewRunner(store, nil, nil)
	ctx := context.Background()

	steps := []Step{{Name: "noop", Run: func(ctx context.Context) error { return nil }}}
	require.NoError(t, runner.Execute(ctx, "order.create", "ORD-2", steps))
	require.ErrorIs(t, runner.Execute(ctx, "order.create", "ORD-2", steps), ErrDuplicateRun)
}

func TestRunnerRetriesFailedRun(t *testing.T) {
	store := NewMemoryStore()
	runner := NewRunner(store, nil, nil)
	ctx := context.Background()

	fail := true
	steps := []Step{
		{Name: "complete_payment", Run: func(ctx context.Context) error {
			if fail {
				return errors.New("connection reset")
			}
			return nil
		}},
		{Name: "advance_order", Run: func(ctx context.Context) error { return nil }},
	}

	require.Error(t, runner.Execute(ctx, "payment.confirm", "PAY-2", steps))

	// The fault clears; the same key reopens the failed run with a fresh
	// journal instead of staying bricked.
	fail = false
	require.NoError(t, runner.Execute(ctx, "payment.confirm", "PAY-2", steps))

	run, records, err := runner.Inspect(ctx, "PAY-2")
	require.NoError(t, err)
	require.Equal(t, RunCompleted, run.Status)
	require.Len(t, records, 2)
	require.Equal(t, StepCompleted, records[0].Status)
	require.Equal(t, StepCompleted, records[1].Status)

	// A completed run stays closed.
	require.ErrorIs(t, runner.Execute(ctx, "payment.confirm", "PAY-2", steps), ErrDuplicateRun)
}
