package analytics

import (
	"context"
)

// RepositoryPort describes aggregate queries used by Service.
type RepositoryPort interface {
	MaterialStats(ctx context.Context) (int64, float64, error)
	ListLowStock(ctx context.Context, threshold int64) ([]LowStockItem, error)
	CountPendingRejections(ctx context.Context) (int64, error)
	CountPendingReturns(ctx context.Context) (int64, error)
	OrdersByStatus(ctx context.Context) ([]StatusCount, float64, error)
}

// Service builds the dashboard summary, cached per version in Redis.
type Service struct {
	repo      RepositoryPort
	cache     *Cache
	threshold int64
}

// NewService constructs analytics service. threshold is the low-stock cutoff.
func NewService(repo RepositoryPort, cache *Cache, threshold int64) *Service {
	if threshold <= 0 {
		threshold = 10
	}
	return &Service{repo: repo, cache: cache, threshold: threshold}
}

// Summary returns the dashboard aggregate, served from cache when the
// current version has one.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	key, err := s.cache.BuildKey(ctx, keySummary(s.threshold))
	if err != nil {
		return Summary{}, err
	}
	var summary Summary
	err = s.cache.FetchJSON(ctx, key, &summary, func(ctx context.Context) (interface{}, error) {
		return s.build(ctx)
	})
	return summary, err
}

// Invalidate bumps the cache version after a write elsewhere.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// WatchChangeFeed subscribes to table change notifications and bumps the
// cache version on every event, so the next Summary read rebuilds from the
// database. Returns after the subscription is confirmed; delivery runs in
// the background until ctx is cancelled. Without Redis this is a no-op.
func (s *Service) WatchChangeFeed(ctx context.Context, channel string) error {
	if s.cache == nil || s.cache.client == nil {
		return nil
	}
	pubsub := s.cache.client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				_ = s.Invalidate(ctx)
			}
		}
	}()
	return nil
}

func (s *Service) build(ctx context.Context) (Summary, error) {
	var summary Summary
	count, value, err := s.repo.MaterialStats(ctx)
	if err != nil {
		return Summary{}, err
	}
	summary.TotalMaterials = count
	summary.TotalStockValue = value

	if summary.LowStock, err = s.repo.ListLowStock(ctx, s.threshold); err != nil {
		return Summary{}, err
	}
	if summary.PendingRejections, err = s.repo.CountPendingRejections(ctx); err != nil {
		return Summary{}, err
	}
	if summary.PendingReturns, err = s.repo.CountPendingReturns(ctx); err != nil {
		return Summary{}, err
	}
	if summary.OrdersByStatus, summary.TotalOrderValue, err = s.repo.OrdersByStatus(ctx); err != nil {
		return Summary{}, err
	}
	return summary, nil
}
