package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/freshchain/freshchain/internal/analytics"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeStockAudit triggers the nightly stock and order drift audit.
	TaskTypeStockAudit = "stock:audit"
	// TaskTypeIdempotencyCleanup prunes expired idempotency keys.
	TaskTypeIdempotencyCleanup = "maintenance:idempotency_cleanup"
	// TaskTypeAnalyticsWarmup rebuilds the analytics summary cache ahead of demand.
	TaskTypeAnalyticsWarmup = "analytics:warmup"
)

// StockAuditPayload carries scheduling metadata for the audit run.
type StockAuditPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewStockAuditTask constructs an Asynq task for the stock audit.
func NewStockAuditTask(at time.Time) (*asynq.Task, error) {
	payload := StockAuditPayload{ScheduledFor: at}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeStockAudit, body, asynq.Queue(QueueDefault)), nil
}

// IdempotencyCleanupPayload configures the retention window.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewIdempotencyCleanupTask constructs an Asynq task for key cleanup.
func NewIdempotencyCleanupTask(retentionHours int) (*asynq.Task, error) {
	payload := IdempotencyCleanupPayload{RetentionHours: retentionHours}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeIdempotencyCleanup, body, asynq.Queue(QueueDefault)), nil
}

// AnalyticsWarmupPayload carries scheduling metadata for cache warmup.
type AnalyticsWarmupPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewAnalyticsWarmupTask constructs an Asynq task for analytics warmup.
func NewAnalyticsWarmupTask(at time.Time) (*asynq.Task, error) {
	payload := AnalyticsWarmupPayload{ScheduledFor: at}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAnalyticsWarmup, body, asynq.Queue(QueueDefault)), nil
}

// SummarySource computes the analytics summary, typically *analytics.Service.
type SummarySource interface {
	Summary(ctx context.Context) (analytics.Summary, error)
}

// HandleAnalyticsWarmup returns a handler that populates the analytics cache.
func HandleAnalyticsWarmup(source SummarySource) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AnalyticsWarmupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if source == nil {
			return nil
		}
		if _, err := source.Summary(ctx); err != nil {
			return fmt.Errorf("analytics warmup: %w", err)
		}
		return nil
	}
}
