package shared

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ChangeFeedChannel is the redis pub/sub channel for table change notifications.
const ChangeFeedChannel = "freshchain.changes"

// ChangeEvent tells subscribers that rows in a table changed. Delivery is
// at-least-once and unordered; consumers re-fetch, they never apply the event
// as a delta.
type ChangeEvent struct {
	Table string    `json:"table"`
	At    time.Time `json:"at"`
}

// ChangeFeed publishes change notifications over redis pub/sub.
type ChangeFeed struct {
	client *redis.Client
	logger *slog.Logger
}

// NewChangeFeed constructs the feed. A nil client disables publishing.
func NewChangeFeed(client *redis.Client, logger *slog.Logger) *ChangeFeed {
	return &ChangeFeed{client: client, logger: logger}
}

// Publish emits a change notification for each table. Failures are logged and
// swallowed: the feed exists for UI freshness only, correctness never depends
// on it.
func (f *ChangeFeed) Publish(ctx context.Context, tables ...string) {
	if f == nil || f.client == nil {
		return
	}
	now := time.Now().UTC()
	for _, table := range tables {
		payload, err := json.Marshal(ChangeEvent{Table: table, At: now})
		if err != nil {
			continue
		}
		if err := f.client.Publish(ctx, ChangeFeedChannel, payload).Err(); err != nil && f.logger != nil {
			f.logger.Warn("change feed publish", slog.String("table", table), slog.Any("error", err))
		}
	}
}
