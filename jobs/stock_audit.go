package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// StockAuditJob cross-checks persisted totals against their line items and
// flags stock rows that drifted out of range.
type StockAuditJob struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
	clock  func() time.Time
}

// NewStockAuditJob initialises the audit handler.
func NewStockAuditJob(pool *pgxpool.Pool, logger *slog.Logger) *StockAuditJob {
	return &StockAuditJob{
		Pool:   pool,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the audit logic.
func (j *StockAuditJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("stock audit: handler not configured")
	}
	var payload StockAuditPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	start := j.now()
	logger := j.logger()
	logger.Info("starting stock audit")

	var orderDrift, itemDrift, negativeStock int
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		var err error
		orderDrift, err = j.scanOrderTotals(grpCtx, logger)
		return err
	})
	grp.Go(func() error {
		var err error
		itemDrift, err = j.scanItemTotals(grpCtx, logger)
		return err
	})
	grp.Go(func() error {
		var err error
		negativeStock, err = j.scanNegativeStock(grpCtx, logger)
		return err
	})
	if err := grp.Wait(); err != nil {
		logger.Error("stock audit failed", slog.Any("error", err))
		return err
	}

	logger.Info("completed stock audit",
		slog.Int("order_drift", orderDrift),
		slog.Int("item_drift", itemDrift),
		slog.Int("negative_stock", negativeStock),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// scanOrderTotals flags orders whose stored total no longer matches the sum
// of their line items.
func (j *StockAuditJob) scanOrderTotals(ctx context.Context, logger *slog.Logger) (int, error) {
	rows, err := j.Pool.Query(ctx, `
		SELECT o.id, o.order_number, o.total_amount::double precision, COALESCE(SUM(oi.total_price), 0)::double precision
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		GROUP BY o.id, o.order_number, o.total_amount
		ORDER BY o.id`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	drift := 0
	for rows.Next() {
		var id int64
		var number string
		var stored, computed float64
		if err := rows.Scan(&id, &number, &stored, &computed); err != nil {
			return drift, err
		}
		if math.Abs(stored-computed) < 0.01 {
			continue
		}
		drift++
		logger.Warn("order total drift",
			slog.Int64("order_id", id),
			slog.String("order_number", number),
			slog.Float64("stored", stored),
			slog.Float64("computed", computed),
		)
	}
	return drift, rows.Err()
}

// scanItemTotals flags line items where total_price departed from quantity*unit_price.
func (j *StockAuditJob) scanItemTotals(ctx context.Context, logger *slog.Logger) (int, error) {
	rows, err := j.Pool.Query(ctx, `
		SELECT id, order_id, quantity, unit_price::double precision, total_price::double precision
		FROM order_items
		ORDER BY id`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	drift := 0
	for rows.Next() {
		var id, orderID int64
		var quantity int
		var unitPrice, totalPrice float64
		if err := rows.Scan(&id, &orderID, &quantity, &unitPrice, &totalPrice); err != nil {
			return drift, err
		}
		expected := float64(quantity) * unitPrice
		if math.Abs(totalPrice-expected) < 0.01 {
			continue
		}
		drift++
		logger.Warn("order item drift",
			slog.Int64("item_id", id),
			slog.Int64("order_id", orderID),
			slog.Float64("stored", totalPrice),
			slog.Float64("computed", expected),
		)
	}
	return drift, rows.Err()
}

// scanNegativeStock should always come back empty: stock writes clamp at zero.
func (j *StockAuditJob) scanNegativeStock(ctx context.Context, logger *slog.Logger) (int, error) {
	rows, err := j.Pool.Query(ctx, `SELECT id, name, quantity FROM materials WHERE quantity < 0 ORDER BY id`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	found := 0
	for rows.Next() {
		var id int64
		var name string
		var quantity int
		if err := rows.Scan(&id, &name, &quantity); err != nil {
			return found, err
		}
		found++
		logger.Error("negative stock detected",
			slog.Int64("material_id", id),
			slog.String("name", name),
			slog.Int("quantity", quantity),
		)
	}
	return found, rows.Err()
}

func (j *StockAuditJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeStockAudit))
	}
	return slog.Default().With(slog.String("job", TaskTypeStockAudit))
}

func (j *StockAuditJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
