package procurement

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/freshchain/freshchain/internal/inventory"
	"github.com/freshchain/freshchain/internal/shared"
	"github.com/freshchain/freshchain/internal/workflow"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetOrder(ctx context.Context, id int64) (Order, []OrderItem, error)
	GetPayment(ctx context.Context, id int64) (Payment, error)
	GetPaymentByOrder(ctx context.Context, orderID int64) (Payment, error)
	GetInvoiceByOrder(ctx context.Context, orderID int64) (Invoice, []InvoiceItem, error)
	ListOrders(ctx context.Context, filters ListFilters) ([]Order, int, error)
	ListPayments(ctx context.Context) ([]Payment, error)
	ListInvoices(ctx context.Context) ([]Invoice, error)
	ListTransactionsByOrder(ctx context.Context, orderID int64) ([]Transaction, error)
	ListSupplierHistory(ctx context.Context, orderID int64) ([]SupplierHistory, error)
}

// InventoryPort exposes the material catalog and the stock primitive.
type InventoryPort interface {
	Get(ctx context.Context, id int64) (inventory.Material, error)
	AdjustStock(ctx context.Context, actor shared.Actor, id int64, delta int64, reason string) (inventory.Adjustment, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// FeedPort publishes change notifications after successful workflows.
type FeedPort interface {
	Publish(ctx context.Context, tables ...string)
}

// IdempotencyPort guards externally-triggered confirmations.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Service orchestrates the procurement workflow engine.
type Service struct {
	repo        RepositoryPort
	inventory   InventoryPort
	runner      *workflow.Runner
	audit       AuditPort
	feed        FeedPort
	idempotency IdempotencyPort
}

// NewService constructs procurement service.
func NewService(repo RepositoryPort, inv InventoryPort, runner *workflow.Runner, audit AuditPort, feed FeedPort, idem IdempotencyPort) *Service {
	return &Service{repo: repo, inventory: inv, runner: runner, audit: audit, feed: feed, idempotency: idem}
}

// OrderItemInput references a catalog material; name and price are snapshotted
// from the catalog at creation time.
type OrderItemInput struct {
	ProductID int64
	Quantity  int64
}

// CreateOrderInput describes creation payload.
type CreateOrderInput struct {
	SupplierName    string
	SupplierContact string
	AccountNumber   string
	DeliveryDate    time.Time
	Notes           string
	Items           []OrderItemInput
}

// OrderBundle is everything the order.create workflow produced.
type OrderBundle struct {
	Order   Order
	Items   []OrderItem
	Invoice Invoice
	Payment Payment
}

// CreateOrder runs the order.create workflow: a draft order + items, a
// mirrored invoice, and a pending bank-transfer payment. Each step commits in its own
// transaction and is journaled, so a crash mid-chain leaves a reportable
// failed run instead of a silently partial order.
func (s *Service) CreateOrder(ctx context.Context, actor shared.Actor, input CreateOrderInput) (OrderBundle, error) {
	if input.SupplierName == "" {
		return OrderBundle{}, fmt.Errorf("%w: supplier name required", ErrValidation)
	}
	if len(input.Items) == 0 {
		return OrderBundle{}, fmt.Errorf("%w: minimal 1 item", ErrValidation)
	}

	items := make([]OrderItem, 0, len(input.Items))
	var total float64
	for _, line := range input.Items {
		if line.ProductID <= 0 || line.Quantity <= 0 || line.Quantity > 999999 {
			return OrderBundle{}, fmt.Errorf("%w: item product and quantity required", ErrValidation)
		}
		material, err := s.inventory.Get(ctx, line.ProductID)
		if err != nil {
			return OrderBundle{}, fmt.Errorf("resolve product %d: %w", line.ProductID, err)
		}
		itemTotal := round2(float64(line.Quantity) * material.Price)
		items = append(items, OrderItem{
			ProductID:   material.ID,
			ProductName: material.Name,
			Quantity:    line.Quantity,
			UnitPrice:   material.Price,
			TotalPrice:  itemTotal,
		})
		total += itemTotal
	}
	total = round2(total)

	order := Order{
		Number:          generateNumber("ORD"),
		Status:          OrderStatusDraft,
		TotalAmount:     total,
		SupplierName:    input.SupplierName,
		SupplierContact: input.SupplierContact,
		AccountNumber:   input.AccountNumber,
		DeliveryDate:    input.DeliveryDate,
		Notes:           input.Notes,
		OrderDate:       time.Now(),
		CreatedBy:       actor.ID,
	}
	invoice := Invoice{Number: generateNumber("INV"), TotalAmount: total, Status: InvoiceStatusPending}
	payment := Payment{
		Number:        generateNumber("PAY"),
		Amount:        total,
		Status:        PaymentStatusPending,
		Method:        "bank_transfer",
		AccountNumber: input.AccountNumber,
	}

	steps := []workflow.Step{
		{Name: "insert_order", Run: func(ctx context.Context) error {
			return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
				orderID, err := tx.CreateOrder(ctx, order)
				if err != nil {
					return err
				}
				order.ID = orderID
				for i := range items {
					items[i].OrderID = orderID
					itemID, err := tx.InsertOrderItem(ctx, items[i])
					if err != nil {
						return err
					}
					items[i].ID = itemID
				}
				return nil
			})
		}},
		{Name: "create_invoice", Run: func(ctx context.Context) error {
			return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
				invoice.OrderID = order.ID
				invoiceID, err := tx.CreateInvoice(ctx, invoice)
				if err != nil {
					return err
				}
				invoice.ID = invoiceID
				for _, item := range items {
					err := tx.InsertInvoiceItem(ctx, InvoiceItem{
						InvoiceID:   invoiceID,
						ProductName: item.ProductName,
						Quantity:    item.Quantity,
						Price:       item.UnitPrice,
					})
					if err != nil {
						return err
					}
				}
				return nil
			})
		}},
		{Name: "create_payment", Run: func(ctx context.Context) error {
			return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
				payment.OrderID = order.ID
				paymentID, err := tx.CreatePayment(ctx, payment)
				if err != nil {
					return err
				}
				payment.ID = paymentID
				return nil
			})
		}},
	}
	if err := s.runner.Execute(ctx, "order.create", order.Number, steps); err != nil {
		return OrderBundle{}, err
	}

	s.recordAudit(ctx, actor, "ORDER_CREATE", order.ID, map[string]any{"number": order.Number, "total": total})
	s.publish(ctx, tableOrders, tableInvoices, tablePayments)
	payment.OrderNumber = order.Number
	return OrderBundle{Order: order, Items: items, Invoice: invoice, Payment: payment}, nil
}

// QuickItemInput is a free-form scan-to-pay line with no catalog reference.
type QuickItemInput struct {
	ProductName string
	Quantity    int64
	UnitPrice   float64
}

// CreateQuickOrderInput describes the scan-to-pay payload.
type CreateQuickOrderInput struct {
	SupplierName  string
	BankName      string
	AccountNumber string
	Notes         string
	Items         []QuickItemInput
}

// CreateQuickOrder creates a scan-to-pay order: free-form items, no catalog
// lookup, and a payment carrying a QR code URL for the buyer to scan.
func (s *Service) CreateQuickOrder(ctx context.Context, actor shared.Actor, input CreateQuickOrderInput) (OrderBundle, error) {
	if len(input.Items) == 0 {
		return OrderBundle{}, fmt.Errorf("%w: minimal 1 item", ErrValidation)
	}
	items := make([]OrderItem, 0, len(input.Items))
	var total float64
	for _, line := range input.Items {
		if line.ProductName == "" || line.Quantity <= 0 || line.UnitPrice <= 0 {
			return OrderBundle{}, fmt.Errorf("%w: item name, quantity and price required", ErrValidation)
		}
		itemTotal := round2(float64(line.Quantity) * line.UnitPrice)
		items = append(items, OrderItem{
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  itemTotal,
		})
		total += itemTotal
	}
	total = round2(total)

	order := Order{
		Number:       generateNumber("ORD"),
		Status:       OrderStatusPending,
		TotalAmount:  total,
		SupplierName: defaultString(input.SupplierName, "Unknown"),
		Notes:        input.Notes,
		OrderDate:    time.Now(),
		CreatedBy:    actor.ID,
	}
	code := uuid.NewSHA1(uuid.Nil, []byte("PAY:"+order.Number)).String()
	payment := Payment{
		Number:        generateNumber("PAY"),
		Amount:        total,
		Status:        PaymentStatusPending,
		Method:        "qr_transfer",
		BankName:      input.BankName,
		AccountNumber: input.AccountNumber,
		PaymentCode:   code,
		QRCodeURL:     "https://api.qrserver.com/v1/create-qr-code/?size=200x200&data=" + code,
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		orderID, err := tx.CreateOrder(ctx, order)
		if err != nil {
			return err
		}
		order.ID = orderID
		for i := range items {
			items[i].OrderID = orderID
			itemID, err := tx.InsertOrderItem(ctx, items[i])
			if err != nil {
				return err
			}
			items[i].ID = itemID
		}
		payment.OrderID = orderID
		paymentID, err := tx.CreatePayment(ctx, payment)
		if err != nil {
			return err
		}
		payment.ID = paymentID
		return nil
	})
	if err != nil {
		return OrderBundle{}, err
	}

	s.recordAudit(ctx, actor, "QUICK_ORDER_CREATE", order.ID, map[string]any{"number": order.Number, "total": total})
	s.publish(ctx, tableOrders, tablePayments)
	payment.OrderNumber = order.Number
	return OrderBundle{Order: order, Items: items, Payment: payment}, nil
}

// MarkOrderPaid settles a scan-to-pay order: pending order goes straight to
// paid and its payment is completed. Regular orders are settled through
// MarkPaymentPaid instead.
func (s *Service) MarkOrderPaid(ctx context.Context, actor shared.Actor, orderID int64) error {
	order, _, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != OrderStatusPending {
		return ErrInvalidState
	}
	payment, err := s.repo.GetPaymentByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	now := time.Now()
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.CompletePayment(ctx, payment.ID, now); err != nil {
			return err
		}
		return tx.UpdateOrderStatus(ctx, orderID, OrderStatusPaid)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "ORDER_PAID", orderID, map[string]any{"number": order.Number})
	s.publish(ctx, tableOrders, tablePayments)
	return nil
}

// ListOrders returns orders with the unfiltered total for the status filter.
func (s *Service) ListOrders(ctx context.Context, filters ListFilters) ([]Order, int, error) {
	return s.repo.ListOrders(ctx, filters)
}

// ListPayments returns all payments with their order numbers.
func (s *Service) ListPayments(ctx context.Context) ([]Payment, error) {
	return s.repo.ListPayments(ctx)
}

// ListInvoices returns all invoices.
func (s *Service) ListInvoices(ctx context.Context) ([]Invoice, error) {
	return s.repo.ListInvoices(ctx)
}

// ListSupplierHistory returns arrival records, optionally scoped to one order.
func (s *Service) ListSupplierHistory(ctx context.Context, orderID int64) ([]SupplierHistory, error) {
	return s.repo.ListSupplierHistory(ctx, orderID)
}

// GetOrderDetail aggregates an order with its invoice, payment, ledger and
// arrival history for detail views and document export.
func (s *Service) GetOrderDetail(ctx context.Context, orderID int64) (OrderDetail, error) {
	order, items, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return OrderDetail{}, err
	}
	detail := OrderDetail{Order: order, Items: items}
	if inv, invItems, err := s.repo.GetInvoiceByOrder(ctx, orderID); err == nil {
		detail.Invoice = inv
		detail.InvoiceItems = invItems
	}
	if payment, err := s.repo.GetPaymentByOrder(ctx, orderID); err == nil {
		detail.Payment = payment
	}
	if txns, err := s.repo.ListTransactionsByOrder(ctx, orderID); err == nil {
		detail.Transactions = txns
	}
	if history, err := s.repo.ListSupplierHistory(ctx, orderID); err == nil {
		detail.History = history
	}
	return detail, nil
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "procurement",
		EntityID: fmt.Sprintf("%d", entityID),
		Meta:     meta,
	})
}

func (s *Service) publish(ctx context.Context, tables ...string) {
	if s.feed != nil {
		s.feed.Publish(ctx, tables...)
	}
}

func generateNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func defaultString(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
