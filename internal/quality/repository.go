package quality

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

// InsertRejection stores a new rejection record.
func (r *Repository) InsertRejection(ctx context.Context, item RejectedItem) (RejectedItem, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO rejected_items (product_id, product_name, quantity, reason, seller_id, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW()) RETURNING id, created_at, updated_at`,
		item.ProductID, item.ProductName, item.Quantity, item.Reason, item.SellerID, item.Status).
		Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}

// GetRejection fetches one rejection record.
func (r *Repository) GetRejection(ctx context.Context, id int64) (RejectedItem, error) {
	var item RejectedItem
	err := r.pool.QueryRow(ctx, `SELECT id, COALESCE(product_id,0), product_name, quantity, reason, COALESCE(seller_id,''), status, created_at, updated_at
FROM rejected_items WHERE id=$1`, id).
		Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Reason, &item.SellerID, &item.Status, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return RejectedItem{}, ErrNotFound
	}
	return item, err
}

// ListRejections returns all rejection records, newest first.
func (r *Repository) ListRejections(ctx context.Context) ([]RejectedItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, COALESCE(product_id,0), product_name, quantity, reason, COALESCE(seller_id,''), status, created_at, updated_at
FROM rejected_items ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RejectedItem
	for rows.Next() {
		var item RejectedItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Reason, &item.SellerID, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateRejectionStatus changes a rejection's status.
func (r *Repository) UpdateRejectionStatus(ctx context.Context, id int64, status RejectionStatus) error {
	tag, err := r.pool.Exec(ctx, `UPDATE rejected_items SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertMessage appends a chat message.
func (r *Repository) InsertMessage(ctx context.Context, msg ChatMessage) (ChatMessage, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO chat_messages (rejected_item_id, sender_id, message, created_at)
VALUES ($1,$2,$3,NOW()) RETURNING id, created_at`,
		msg.RejectedItemID, msg.SenderID, msg.Message).Scan(&msg.ID, &msg.CreatedAt)
	return msg, err
}

// ListMessages returns a thread in posting order.
func (r *Repository) ListMessages(ctx context.Context, rejectedItemID int64) ([]ChatMessage, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, rejected_item_id, sender_id, message, created_at
FROM chat_messages WHERE rejected_item_id=$1 ORDER BY created_at ASC, id ASC`, rejectedItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var msgs []ChatMessage
	for rows.Next() {
		var msg ChatMessage
		if err := rows.Scan(&msg.ID, &msg.RejectedItemID, &msg.SenderID, &msg.Message, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

// InsertInspection stores a food condition record.
func (r *Repository) InsertInspection(ctx context.Context, rec FoodCondition) (FoodCondition, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO food_conditions (product_id, product_name, condition, fit_for_processing, inspector_id, notes, inspection_date)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
		nullInt(rec.ProductID), rec.ProductName, rec.Condition, rec.FitForProcessing, rec.InspectorID, rec.Notes, rec.InspectionDate).
		Scan(&rec.ID)
	return rec, err
}

// ListInspections returns condition checks, newest first.
func (r *Repository) ListInspections(ctx context.Context) ([]FoodCondition, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, COALESCE(product_id,0), product_name, condition, fit_for_processing, inspector_id, COALESCE(notes,''), inspection_date
FROM food_conditions ORDER BY inspection_date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var recs []FoodCondition
	for rows.Next() {
		var rec FoodCondition
		if err := rows.Scan(&rec.ID, &rec.ProductID, &rec.ProductName, &rec.Condition, &rec.FitForProcessing, &rec.InspectorID, &rec.Notes, &rec.InspectionDate); err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}
