package procurement

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshchain/freshchain/internal/platform/db"
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

// TxRepository exposes transactional operations.
type TxRepository interface {
	CreateOrder(ctx context.Context, order Order) (int64, error)
	InsertOrderItem(ctx context.Context, item OrderItem) (int64, error)
	UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus) error
	CreateInvoice(ctx context.Context, inv Invoice) (int64, error)
	InsertInvoiceItem(ctx context.Context, item InvoiceItem) error
	CreatePayment(ctx context.Context, payment Payment) (int64, error)
	CompletePayment(ctx context.Context, id int64, paidAt time.Time) error
	InsertTransaction(ctx context.Context, txn Transaction) (int64, error)
	ApproveOrderTransactions(ctx context.Context, orderID int64) error
	InsertSupplierHistory(ctx context.Context, entry SupplierHistory) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const orderColumns = `id, order_number, status, total_amount, supplier_name, COALESCE(supplier_contact,''),
COALESCE(account_number,''), COALESCE(delivery_date, 'epoch'::timestamptz), COALESCE(notes,''), order_date,
COALESCE(created_by,''), created_at, updated_at`

// GetOrder returns an order header with its items.
func (r *Repository) GetOrder(ctx context.Context, id int64) (Order, []OrderItem, error) {
	var o Order
	err := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id).
		Scan(&o.ID, &o.Number, &o.Status, &o.TotalAmount, &o.SupplierName, &o.SupplierContact,
			&o.AccountNumber, &o.DeliveryDate, &o.Notes, &o.OrderDate, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, nil, ErrNotFound
		}
		return Order{}, nil, err
	}
	items, err := r.listOrderItems(ctx, id)
	if err != nil {
		return Order{}, nil, err
	}
	return o, items, nil
}

func (r *Repository) listOrderItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, COALESCE(product_id,0), product_name, quantity, unit_price, total_price
FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice, &item.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListOrders returns orders newest first with an optional status filter.
func (r *Repository) ListOrders(ctx context.Context, filters ListFilters) ([]Order, int, error) {
	where := ``
	args := []any{}
	if filters.Status != "" {
		where = ` WHERE status=$1`
		args = append(args, filters.Status)
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	p := shared.NewPagination(filters.Page, filters.PerPage, total)
	query := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY created_at DESC LIMIT $` +
		strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, p.PerPage, p.Offset())
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Number, &o.Status, &o.TotalAmount, &o.SupplierName, &o.SupplierContact,
			&o.AccountNumber, &o.DeliveryDate, &o.Notes, &o.OrderDate, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

const paymentColumns = `p.id, p.payment_number, COALESCE(p.order_id,0), COALESCE(o.order_number,''), p.amount, p.status,
p.payment_method, COALESCE(p.bank_name,''), COALESCE(p.account_number,''), COALESCE(p.payment_code,''),
COALESCE(p.qr_code_url,''), COALESCE(p.paid_at, 'epoch'::timestamptz), p.created_at`

const paymentJoin = ` FROM payments p LEFT JOIN orders o ON o.id = p.order_id`

// GetPayment fetches a payment by ID.
func (r *Repository) GetPayment(ctx context.Context, id int64) (Payment, error) {
	var p Payment
	err := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+paymentJoin+` WHERE p.id=$1`, id).
		Scan(&p.ID, &p.Number, &p.OrderID, &p.OrderNumber, &p.Amount, &p.Status, &p.Method,
			&p.BankName, &p.AccountNumber, &p.PaymentCode, &p.QRCodeURL, &p.PaidAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, ErrNotFound
	}
	return p, err
}

// GetPaymentByOrder fetches the payment synthesized for an order.
func (r *Repository) GetPaymentByOrder(ctx context.Context, orderID int64) (Payment, error) {
	var p Payment
	err := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+paymentJoin+` WHERE p.order_id=$1 ORDER BY p.id LIMIT 1`, orderID).
		Scan(&p.ID, &p.Number, &p.OrderID, &p.OrderNumber, &p.Amount, &p.Status, &p.Method,
			&p.BankName, &p.AccountNumber, &p.PaymentCode, &p.QRCodeURL, &p.PaidAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payment{}, ErrNotFound
	}
	return p, err
}

// ListPayments returns payments newest first with their order numbers.
func (r *Repository) ListPayments(ctx context.Context) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+paymentJoin+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.Number, &p.OrderID, &p.OrderNumber, &p.Amount, &p.Status, &p.Method,
			&p.BankName, &p.AccountNumber, &p.PaymentCode, &p.QRCodeURL, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetInvoiceByOrder fetches the invoice mirrored from an order, with items.
func (r *Repository) GetInvoiceByOrder(ctx context.Context, orderID int64) (Invoice, []InvoiceItem, error) {
	var inv Invoice
	err := r.pool.QueryRow(ctx, `SELECT id, invoice_number, order_id, total_amount, status, created_at
FROM invoices WHERE order_id=$1 ORDER BY id LIMIT 1`, orderID).
		Scan(&inv.ID, &inv.Number, &inv.OrderID, &inv.TotalAmount, &inv.Status, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, nil, ErrNotFound
		}
		return Invoice{}, nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT id, invoice_id, product_name, quantity, price
FROM invoice_items WHERE invoice_id=$1 ORDER BY id`, inv.ID)
	if err != nil {
		return Invoice{}, nil, err
	}
	defer rows.Close()
	var items []InvoiceItem
	for rows.Next() {
		var item InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return Invoice{}, nil, err
		}
		items = append(items, item)
	}
	return inv, items, rows.Err()
}

// ListInvoices returns invoices newest first.
func (r *Repository) ListInvoices(ctx context.Context) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, invoice_number, order_id, total_amount, status, created_at
FROM invoices ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var invoices []Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(&inv.ID, &inv.Number, &inv.OrderID, &inv.TotalAmount, &inv.Status, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// ListTransactionsByOrder returns ledger entries for an order, oldest first.
func (r *Repository) ListTransactionsByOrder(ctx context.Context, orderID int64) ([]Transaction, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, COALESCE(payment_id,0), COALESCE(invoice_id,0), product_name,
quantity, amount, status, COALESCE(notes,''), transaction_date
FROM transactions WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var txns []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.OrderID, &t.PaymentID, &t.InvoiceID, &t.ProductName,
			&t.Quantity, &t.Amount, &t.Status, &t.Notes, &t.TransactionDate); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// ListSupplierHistory returns arrival records, newest first. Zero orderID lists all.
func (r *Repository) ListSupplierHistory(ctx context.Context, orderID int64) ([]SupplierHistory, error) {
	query := `SELECT id, order_id, supplier_name, COALESCE(supplier_phone,''), product_name, quantity,
arrival_date, stock_status, COALESCE(notes,'') FROM supplier_history`
	args := []any{}
	if orderID != 0 {
		query += ` WHERE order_id=$1`
		args = append(args, orderID)
	}
	query += ` ORDER BY arrival_date DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []SupplierHistory
	for rows.Next() {
		var e SupplierHistory
		if err := rows.Scan(&e.ID, &e.OrderID, &e.SupplierName, &e.SupplierPhone, &e.ProductName,
			&e.Quantity, &e.ArrivalDate, &e.StockStatus, &e.Notes); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (tx *txRepo) CreateOrder(ctx context.Context, order Order) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO orders (order_number, status, total_amount, supplier_name, supplier_contact,
account_number, delivery_date, notes, order_date, created_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW()) RETURNING id`,
		order.Number, order.Status, order.TotalAmount, order.SupplierName, order.SupplierContact,
		order.AccountNumber, nullTime(order.DeliveryDate), order.Notes, defaultTime(order.OrderDate), order.CreatedBy).Scan(&id)
	return id, err
}

func (tx *txRepo) InsertOrderItem(ctx context.Context, item OrderItem) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, total_price)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		item.OrderID, nullInt(item.ProductID), item.ProductName, item.Quantity, item.UnitPrice, item.TotalPrice).Scan(&id)
	return id, err
}

func (tx *txRepo) UpdateOrderStatus(ctx context.Context, id int64, status OrderStatus) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE orders SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) CreateInvoice(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO invoices (invoice_number, order_id, total_amount, status, created_at)
VALUES ($1,$2,$3,$4,NOW()) RETURNING id`, inv.Number, inv.OrderID, inv.TotalAmount, inv.Status).Scan(&id)
	return id, err
}

func (tx *txRepo) InsertInvoiceItem(ctx context.Context, item InvoiceItem) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO invoice_items (invoice_id, product_name, quantity, price)
VALUES ($1,$2,$3,$4)`, item.InvoiceID, item.ProductName, item.Quantity, item.Price)
	return err
}

func (tx *txRepo) CreatePayment(ctx context.Context, payment Payment) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO payments (payment_number, order_id, amount, status, payment_method,
bank_name, account_number, payment_code, qr_code_url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW()) RETURNING id`,
		payment.Number, nullInt(payment.OrderID), payment.Amount, payment.Status, payment.Method,
		payment.BankName, payment.AccountNumber, payment.PaymentCode, payment.QRCodeURL).Scan(&id)
	return id, err
}

func (tx *txRepo) CompletePayment(ctx context.Context, id int64, paidAt time.Time) error {
	tag, err := tx.tx.Exec(ctx, `UPDATE payments SET status=$1, paid_at=$2 WHERE id=$3`, PaymentStatusCompleted, paidAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (tx *txRepo) InsertTransaction(ctx context.Context, txn Transaction) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO transactions (order_id, payment_id, invoice_id, product_name, quantity,
amount, status, notes, transaction_date)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		txn.OrderID, nullInt(txn.PaymentID), nullInt(txn.InvoiceID), txn.ProductName, txn.Quantity,
		txn.Amount, txn.Status, txn.Notes, defaultTime(txn.TransactionDate)).Scan(&id)
	return id, err
}

// ApproveOrderTransactions marks every ledger entry of the order approved,
// whatever state each row was in.
func (tx *txRepo) ApproveOrderTransactions(ctx context.Context, orderID int64) error {
	_, err := tx.tx.Exec(ctx, `UPDATE transactions SET status=$1 WHERE order_id=$2`,
		TransactionStatusApproved, orderID)
	return err
}

func (tx *txRepo) InsertSupplierHistory(ctx context.Context, entry SupplierHistory) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO supplier_history (order_id, supplier_name, supplier_phone, product_name,
quantity, arrival_date, stock_status, notes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		entry.OrderID, entry.SupplierName, entry.SupplierPhone, entry.ProductName,
		entry.Quantity, defaultTime(entry.ArrivalDate), entry.StockStatus, entry.Notes)
	return err
}

func nullInt(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func defaultTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
