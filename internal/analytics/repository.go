package analytics

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides read-only aggregate queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// MaterialStats returns the catalog size and the total stock value.
func (r *Repository) MaterialStats(ctx context.Context) (int64, float64, error) {
	var count int64
	var value float64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(price * quantity), 0) FROM materials`).
		Scan(&count, &value)
	return count, value, err
}

// ListLowStock returns materials at or below the threshold.
func (r *Repository) ListLowStock(ctx context.Context, threshold int64) ([]LowStockItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, category, quantity, price
FROM materials WHERE quantity <= $1 ORDER BY quantity ASC, name ASC`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LowStockItem
	for rows.Next() {
		var item LowStockItem
		if err := rows.Scan(&item.MaterialID, &item.Name, &item.Category, &item.Quantity, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CountPendingRejections counts open quality write-offs.
func (r *Repository) CountPendingRejections(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rejected_items WHERE status='pending'`).Scan(&count)
	return count, err
}

// CountPendingReturns counts open return requests.
func (r *Repository) CountPendingReturns(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM returns WHERE status='pending'`).Scan(&count)
	return count, err
}

// OrdersByStatus buckets orders per status with the overall order value.
func (r *Repository) OrdersByStatus(ctx context.Context) ([]StatusCount, float64, error) {
	var totalValue float64
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM orders`).Scan(&totalValue); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var counts []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, 0, err
		}
		counts = append(counts, sc)
	}
	return counts, totalValue, rows.Err()
}
