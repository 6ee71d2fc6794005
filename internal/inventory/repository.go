package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshchain/freshchain/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const materialColumns = `id, name, category, COALESCE(color, ''), price, quantity, created_at, updated_at`

// List returns materials matching the filters plus the match count.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Material, int, error) {
	countSQL := `SELECT COUNT(*) FROM materials WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Search != "" {
		countSQL += ` AND name ILIKE $` + itoa(argNum)
		args = append(args, "%"+filters.Search+"%")
		argNum++
	}
	if filters.Category != "" {
		countSQL += ` AND category = $` + itoa(argNum)
		args = append(args, filters.Category)
		argNum++
	}

	var total int
	if err := r.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	p := shared.NewPagination(filters.Page, filters.PerPage, total)

	dataSQL := `SELECT ` + materialColumns + ` FROM materials WHERE 1=1`
	args2 := []any{}
	argNum2 := 1
	if filters.Search != "" {
		dataSQL += ` AND name ILIKE $` + itoa(argNum2)
		args2 = append(args2, "%"+filters.Search+"%")
		argNum2++
	}
	if filters.Category != "" {
		dataSQL += ` AND category = $` + itoa(argNum2)
		args2 = append(args2, filters.Category)
		argNum2++
	}
	dataSQL += ` ORDER BY name LIMIT $` + itoa(argNum2) + ` OFFSET $` + itoa(argNum2+1)
	args2 = append(args2, p.PerPage, p.Offset())

	rows, err := r.pool.Query(ctx, dataSQL, args2...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	materials, err := scanMaterials(rows)
	if err != nil {
		return nil, 0, err
	}
	return materials, total, nil
}

// Get fetches one material by id.
func (r *Repository) Get(ctx context.Context, id int64) (Material, error) {
	var m Material
	err := r.pool.QueryRow(ctx, `SELECT `+materialColumns+` FROM materials WHERE id=$1`, id).
		Scan(&m.ID, &m.Name, &m.Category, &m.Color, &m.Price, &m.Quantity, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Material{}, ErrNotFound
	}
	if err != nil {
		return Material{}, err
	}
	return m, nil
}

// Create inserts a material and returns it with generated fields.
func (r *Repository) Create(ctx context.Context, m Material) (Material, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO materials (name, category, color, price, quantity, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		m.Name, m.Category, m.Color, m.Price, m.Quantity).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return Material{}, err
	}
	return m, nil
}

// Update replaces editable material fields.
func (r *Repository) Update(ctx context.Context, id int64, m Material) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE materials SET name=$1, category=$2, color=$3, price=$4, quantity=$5, updated_at=NOW() WHERE id=$6`,
		m.Name, m.Category, m.Color, m.Price, m.Quantity, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a material.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM materials WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustQuantity applies a stock delta in one statement. GREATEST clamps
// decrements at zero; increments are applied exactly. Returns the resulting
// quantity.
func (r *Repository) AdjustQuantity(ctx context.Context, id int64, delta int64) (int64, error) {
	var newQty int64
	err := r.pool.QueryRow(ctx,
		`UPDATE materials SET quantity = GREATEST(0, quantity + $1), updated_at=NOW()
		 WHERE id=$2 RETURNING quantity`,
		delta, id).Scan(&newQty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return newQty, nil
}

// ListBelow returns materials with quantity at or below the threshold.
func (r *Repository) ListBelow(ctx context.Context, threshold int64) ([]Material, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+materialColumns+` FROM materials WHERE quantity <= $1 ORDER BY quantity, name`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMaterials(rows)
}

func scanMaterials(rows pgx.Rows) ([]Material, error) {
	var materials []Material
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Category, &m.Color, &m.Price, &m.Quantity, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		materials = append(materials, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return materials, nil
}

// itoa converts int to string for dynamic query building.
func itoa(i int) string {
	return fmt.Sprintf("%d", i)
}
