package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/freshchain/freshchain/internal/shared"
)

// HandleIdempotencyCleanup returns a handler that prunes expired idempotency keys.
func HandleIdempotencyCleanup(store *shared.IdempotencyStore, logger *slog.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload IdempotencyCleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.RetentionHours <= 0 {
			payload.RetentionHours = 72
		}
		retention := time.Duration(payload.RetentionHours) * time.Hour
		pruned, err := store.Cleanup(ctx, retention)
		if err != nil {
			if logger != nil {
				logger.Error("idempotency cleanup failed", slog.Any("error", err))
			}
			return err
		}
		if logger != nil {
			logger.Info("idempotency cleanup done",
				slog.Duration("retention", retention),
				slog.Int64("pruned", pruned))
		}
		return nil
	}
}
