package returns

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a new return request.
func (r *Repository) Insert(ctx context.Context, ret Return) (Return, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO returns (return_number, product_name, quantity, reason, created_by, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		ret.Number, ret.ProductName, ret.Quantity, ret.Reason, ret.CreatedBy, ret.Status).
		Scan(&ret.ID, &ret.CreatedAt, &ret.UpdatedAt)
	return ret, err
}

// Get fetches one return request.
func (r *Repository) Get(ctx context.Context, id int64) (Return, error) {
	var ret Return
	err := r.pool.QueryRow(ctx, `SELECT id, return_number, product_name, quantity, reason, COALESCE(created_by,''), status, created_at, updated_at
FROM returns WHERE id=$1`, id).
		Scan(&ret.ID, &ret.Number, &ret.ProductName, &ret.Quantity, &ret.Reason, &ret.CreatedBy, &ret.Status, &ret.CreatedAt, &ret.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Return{}, ErrNotFound
	}
	return ret, err
}

// List returns all return requests, newest first.
func (r *Repository) List(ctx context.Context) ([]Return, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, return_number, product_name, quantity, reason, COALESCE(created_by,''), status, created_at, updated_at
FROM returns ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Return
	for rows.Next() {
		var ret Return
		if err := rows.Scan(&ret.ID, &ret.Number, &ret.ProductName, &ret.Quantity, &ret.Reason, &ret.CreatedBy, &ret.Status, &ret.CreatedAt, &ret.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ret)
	}
	return out, rows.Err()
}

// UpdateStatus changes a return's status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE returns SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
