package procurement

import (
	"errors"
	"time"
)

// OrderStatus is the fulfillment state of a purchase order.
type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "draft"
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusInTransit  OrderStatus = "in_transit"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus tracks a payment record.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// InvoiceStatus tracks an invoice record.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// TransactionStatus tracks a per-item ledger entry.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusRejected TransactionStatus = "rejected"
)

// Order is the purchase order header. Supplier fields and item snapshots are
// denormalized at creation time and never rewritten by later catalog edits.
type Order struct {
	ID              int64
	Number          string
	Status          OrderStatus
	TotalAmount     float64
	SupplierName    string
	SupplierContact string
	AccountNumber   string
	DeliveryDate    time.Time
	Notes           string
	OrderDate       time.Time
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrderItem is one order line. ProductID is zero for free-form quick-order
// lines that reference no catalog material.
type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	Quantity    int64
	UnitPrice   float64
	TotalPrice  float64
}

// Invoice mirrors the order at creation time.
type Invoice struct {
	ID          int64
	Number      string
	OrderID     int64
	TotalAmount float64
	Status      InvoiceStatus
	CreatedAt   time.Time
}

// InvoiceItem is a snapshot of an order line on the invoice.
type InvoiceItem struct {
	ID          int64
	InvoiceID   int64
	ProductName string
	Quantity    int64
	Price       float64
}

// Payment is the payable record synthesized per order.
type Payment struct {
	ID            int64
	Number        string
	OrderID       int64
	OrderNumber   string
	Amount        float64
	Status        PaymentStatus
	Method        string
	BankName      string
	AccountNumber string
	PaymentCode   string
	QRCodeURL     string
	PaidAt        time.Time
	CreatedAt     time.Time
}

// Transaction is one per-item ledger entry fanned out on payment confirmation.
type Transaction struct {
	ID              int64
	OrderID         int64
	PaymentID       int64
	InvoiceID       int64
	ProductName     string
	Quantity        int64
	Amount          float64
	Status          TransactionStatus
	Notes           string
	TransactionDate time.Time
}

// SupplierHistory is one arrival record written per order item at delivery.
type SupplierHistory struct {
	ID            int64
	OrderID       int64
	SupplierName  string
	SupplierPhone string
	ProductName   string
	Quantity      int64
	ArrivalDate   time.Time
	StockStatus   string
	Notes         string
}

// OrderDetail aggregates an order with every downstream record for export.
type OrderDetail struct {
	Order        Order
	Items        []OrderItem
	Invoice      Invoice
	InvoiceItems []InvoiceItem
	Payment      Payment
	Transactions []Transaction
	History      []SupplierHistory
}

// ListFilters narrow order listings.
type ListFilters struct {
	Status  OrderStatus
	Page    int
	PerPage int
}

var (
	ErrNotFound         = errors.New("procurement: not found")
	ErrValidation       = errors.New("procurement: validation failed")
	ErrInvalidState     = errors.New("procurement: invalid state transition")
	ErrOrderLinkMissing = errors.New("procurement: payment has no linked order")
)
