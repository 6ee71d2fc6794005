package procurement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshchain/freshchain/internal/inventory"
	"github.com/freshchain/freshchain/internal/shared"
	"github.com/freshchain/freshchain/internal/workflow"
)

type fakeRepo struct {
	nextID       int64
	orders       map[int64]Order
	orderItems   map[int64][]OrderItem
	invoices     map[int64]Invoice
	invoiceItems map[int64][]InvoiceItem
	payments     map[int64]Payment
	transactions []Transaction
	history      []SupplierHistory

	failInvoice         bool
	failCompletePayment bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		nextID:       1,
		orders:       map[int64]Order{},
		orderItems:   map[int64][]OrderItem{},
		invoices:     map[int64]Invoice{},
		invoiceItems: map[int64][]InvoiceItem{},
		payments:     map[int64]Payment{},
	}
}

func (f *fakeRepo) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &fakeTx{repo: f})
}

func (f *fakeRepo) GetOrder(_ context.Context, id int64) (Order, []OrderItem, error) {
	o, ok := f.orders[id]
	if !ok {
		return Order{}, nil, ErrNotFound
	}
	return o, f.orderItems[id], nil
}

func (f *fakeRepo) GetPayment(_ context.Context, id int64) (Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return p, nil
}

func (f *fakeRepo) GetPaymentByOrder(_ context.Context, orderID int64) (Payment, error) {
	for _, p := range f.payments {
		if p.OrderID == orderID {
			return p, nil
		}
	}
	return Payment{}, ErrNotFound
}

func (f *fakeRepo) GetInvoiceByOrder(_ context.Context, orderID int64) (Invoice, []InvoiceItem, error) {
	for _, inv := range f.invoices {
		if inv.OrderID == orderID {
			return inv, f.invoiceItems[inv.ID], nil
		}
	}
	return Invoice{}, nil, ErrNotFound
}

func (f *fakeRepo) ListOrders(_ context.Context, filters ListFilters) ([]Order, int, error) {
	var out []Order
	for _, o := range f.orders {
		if filters.Status != "" && o.Status != filters.Status {
			continue
		}
		out = append(out, o)
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListPayments(_ context.Context) ([]Payment, error) {
	var out []Payment
	for _, p := range f.payments {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeRepo) ListInvoices(_ context.Context) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range f.invoices {
		out = append(out, inv)
	}
	return out, nil
}

func (f *fakeRepo) ListTransactionsByOrder(_ context.Context, orderID int64) ([]Transaction, error) {
	var out []Transaction
	for _, t := range f.transactions {
		if t.OrderID == orderID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListSupplierHistory(_ context.Context, orderID int64) ([]SupplierHistory, error) {
	var out []SupplierHistory
	for _, e := range f.history {
		if orderID != 0 && e.OrderID != orderID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type fakeTx struct {
	repo *fakeRepo
}

func (tx *fakeTx) CreateOrder(_ context.Context, order Order) (int64, error) {
	order.ID = tx.repo.id()
	tx.repo.orders[order.ID] = order
	return order.ID, nil
}

func (tx *fakeTx) InsertOrderItem(_ context.Context, item OrderItem) (int64, error) {
	item.ID = tx.repo.id()
	tx.repo.orderItems[item.OrderID] = append(tx.repo.orderItems[item.OrderID], item)
	return item.ID, nil
}

func (tx *fakeTx) UpdateOrderStatus(_ context.Context, id int64, status OrderStatus) error {
	o, ok := tx.repo.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	tx.repo.orders[id] = o
	return nil
}

func (tx *fakeTx) CreateInvoice(_ context.Context, inv Invoice) (int64, error) {
	if tx.repo.failInvoice {
		return 0, errors.New("invoice insert refused")
	}
	inv.ID = tx.repo.id()
	tx.repo.invoices[inv.ID] = inv
	return inv.ID, nil
}

func (tx *fakeTx) InsertInvoiceItem(_ context.Context, item InvoiceItem) error {
	item.ID = tx.repo.id()
	tx.repo.invoiceItems[item.InvoiceID] = append(tx.repo.invoiceItems[item.InvoiceID], item)
	return nil
}

func (tx *fakeTx) CreatePayment(_ context.Context, payment Payment) (int64, error) {
	payment.ID = tx.repo.id()
	tx.repo.payments[payment.ID] = payment
	return payment.ID, nil
}

func (tx *fakeTx) CompletePayment(_ context.Context, id int64, paidAt time.Time) error {
	if tx.repo.failCompletePayment {
		return errors.New("connection reset")
	}
	p, ok := tx.repo.payments[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = PaymentStatusCompleted
	p.PaidAt = paidAt
	tx.repo.payments[id] = p
	return nil
}

func (tx *fakeTx) InsertTransaction(_ context.Context, txn Transaction) (int64, error) {
	txn.ID = tx.repo.id()
	tx.repo.transactions = append(tx.repo.transactions, txn)
	return txn.ID, nil
}

func (tx *fakeTx) ApproveOrderTransactions(_ context.Context, orderID int64) error {
	for i, t := range tx.repo.transactions {
		if t.OrderID == orderID {
			tx.repo.transactions[i].Status = TransactionStatusApproved
		}
	}
	return nil
}

func (tx *fakeTx) InsertSupplierHistory(_ context.Context, entry SupplierHistory) error {
	entry.ID = tx.repo.id()
	tx.repo.history = append(tx.repo.history, entry)
	return nil
}

type fakeInventory struct {
	materials map[int64]inventory.Material
}

func (f *fakeInventory) Get(_ context.Context, id int64) (inventory.Material, error) {
	m, ok := f.materials[id]
	if !ok {
		return inventory.Material{}, inventory.ErrNotFound
	}
	return m, nil
}

func (f *fakeInventory) AdjustStock(_ context.Context, _ shared.Actor, id int64, delta int64, _ string) (inventory.Adjustment, error) {
	m, ok := f.materials[id]
	if !ok {
		return inventory.Adjustment{}, inventory.ErrNotFound
	}
	m.Quantity += delta
	if m.Quantity < 0 {
		m.Quantity = 0
	}
	f.materials[id] = m
	return inventory.Adjustment{MaterialID: id, Delta: delta, NewQuantity: m.Quantity}, nil
}

type fakeAudit struct {
	logs []shared.AuditLog
}

func (f *fakeAudit) Record(_ context.Context, log shared.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

type fakeFeed struct {
	tables []string
}

func (f *fakeFeed) Publish(_ context.Context, tables ...string) {
	f.tables = append(f.tables, tables...)
}

type fakeIdem struct {
	keys map[string]bool
}

func (f *fakeIdem) CheckAndInsert(_ context.Context, key, _ string) error {
	if f.keys == nil {
		f.keys = map[string]bool{}
	}
	if f.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	f.keys[key] = true
	return nil
}

func (f *fakeIdem) Delete(_ context.Context, key string) error {
	delete(f.keys, key)
	return nil
}

type fixture struct {
	repo   *fakeRepo
	inv    *fakeInventory
	audit  *fakeAudit
	feed   *fakeFeed
	runner *workflow.Runner
	svc    *Service
}

func newFixture() *fixture {
	repo := newFakeRepo()
	inv := &fakeInventory{materials: map[int64]inventory.Material{
		1: {ID: 1, Name: "Rice", Category: "Grains", Price: 12000, Quantity: 100},
		2: {ID: 2, Name: "Cooking Oil", Category: "Oils", Price: 25000, Quantity: 40},
	}}
	audit := &fakeAudit{}
	feed := &fakeFeed{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := workflow.NewRunner(workflow.NewMemoryStore(), logger, nil)
	svc := NewService(repo, inv, runner, audit, feed, &fakeIdem{})
	return &fixture{repo: repo, inv: inv, audit: audit, feed: feed, runner: runner, svc: svc}
}

var buyer = shared.Actor{ID: "buyer-1"}

func TestCreateOrderCascade(t *testing.T) {
	f := newFixture()

	bundle, err := f.svc.CreateOrder(context.Background(), buyer, CreateOrderInput{
		SupplierName:    "Tani Makmur",
		SupplierContact: "0812000111",
		Items:           []OrderItemInput{{ProductID: 1, Quantity: 10}},
	})
	require.NoError(t, err)

	assert.Equal(t, OrderStatusDraft, bundle.Order.Status)
	assert.Equal(t, float64(120000), bundle.Order.TotalAmount)
	require.Len(t, bundle.Items, 1)
	assert.Equal(t, "Rice", bundle.Items[0].ProductName)
	assert.Equal(t, float64(12000), bundle.Items[0].UnitPrice, "unit price snapshotted from catalog")
	assert.Equal(t, float64(120000), bundle.Items[0].TotalPrice)

	assert.Equal(t, bundle.Order.ID, bundle.Invoice.OrderID)
	assert.Equal(t, float64(120000), bundle.Invoice.TotalAmount)
	assert.Equal(t, InvoiceStatusPending, bundle.Invoice.Status)

	assert.Equal(t, PaymentStatusPending, bundle.Payment.Status)
	assert.Equal(t, "bank_transfer", bundle.Payment.Method)
	assert.Equal(t, float64(120000), bundle.Payment.Amount)

	run, steps, err := f.runner.Inspect(context.Background(), bundle.Order.Number)
	require.NoError(t, err)
	assert.Equal(t, workflow.RunCompleted, run.Status)
	assert.Len(t, steps, 3)
}

func TestCreateOrderStartsAsDraft(t *testing.T) {
	f := newFixture()

	bundle, err := f.svc.CreateOrder(context.Background(), buyer, CreateOrderInput{
		SupplierName: "Tani Makmur",
		Items:        []OrderItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, OrderStatusDraft, bundle.Order.Status)

	// Scan-to-pay orders are awaiting payment from the moment they exist.
	quick, err := f.svc.CreateQuickOrder(context.Background(), buyer, CreateQuickOrderInput{
		Items: []QuickItemInput{{ProductName: "Salt", Quantity: 1, UnitPrice: 5000}},
	})
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, quick.Order.Status)
}

func TestCreateOrderPriceSnapshotSurvivesCatalogEdit(t *testing.T) {
	f := newFixture()

	bundle, err := f.svc.CreateOrder(context.Background(), buyer, CreateOrderInput{
		SupplierName: "Tani Makmur",
		Items:        []OrderItemInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	m := f.inv.materials[1]
	m.Price = 99999
	f.inv.materials[1] = m

	_, items, err := f.repo.GetOrder(context.Background(), bundle.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(12000), items[0].UnitPrice)
}

func TestCreateOrderRequiresItems(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateOrder(context.Background(), buyer, CreateOrderInput{SupplierName: "Tani Makmur"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateOrder(context.Background(), buyer, CreateOrderInput{
		SupplierName: "Tani Makmur",
		Items:        []OrderItemInput{{ProductID: 404, Quantity: 1}},
	})
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestCreateOrderJournalsFailedStep(t *testing.T) {
	f := newFixture()
	f.repo.failInvoice = true

	_, err := f.svc.CreateOrder(context.Background(), buyer, CreateOrderInput{
		SupplierName: "Tani Makmur",
		Items:        []OrderItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.Error(t, err)

	// The order step committed before the invoice step failed; the journal
	// records the partial state instead of hiding it.
	require.Len(t, f.repo.orders, 1)
	var number string
	for _, o := range f.repo.orders {
		number = o.Number
	}
	run, steps, err := f.runner.Inspect(context.Background(), number)
	require.NoError(t, err)
	assert.Equal(t, workflow.RunFailed, run.Status)
	require.Len(t, steps, 2)
	assert.Equal(t, workflow.StepFailed, steps[1].Status)
	assert.Equal(t, "create_invoice", steps[1].Name)
}

func TestMarkPaymentPaidCascade(t *testing.T) {
	f := newFixture()
	bundle, err := f.svc.CreateOrder(context.Background(), buyer, CreateOrderInput{
		SupplierName: "Tani Makmur",
		Items:        []OrderItemInput{{ProductID: 1, Quantity: 10}},
	})
	require.NoError(t, err)

	err = f.svc.MarkPaymentPaid(context.Background(), buyer, bundle.Payment.ID)
	require.NoError(t, err)

	payment, err := f.repo.GetPayment(context.Background(), bundle.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusCompleted, payment.Status)
	assert.False(t, payment.PaidAt.IsZero())

	order, _, err := f.repo.GetOrder(context.Background(), bundle.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusProcessing, order.Status)

	txns, err := f.repo.ListTransactionsByOrder(context.Background(), bundle.Order.ID)
	require.NoError(t, err)
	require.Len(t, txns, 1, "one ledger entry per order item")
	assert.Equal(t, TransactionStatusApproved, txns[0].Status)
	assert.Equal(t, float64(120000), txns[0].Amount)
	assert.Equal(t, "Auto-approved upon payment confirmation", txns[0].Notes)
}

func TestMarkPaymentPaidTwiceRejected(t *testing.T) {
	f := newFixture()
	bundle, err := f.svc.CreateOrder(context.Background(), buyer, CreateOrderInput{
		SupplierName: "Tani Makmur",
		Items:        []OrderItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkPaymentPaid(context.Background(), buyer, bundle.Payment.ID))
	err = f.svc.MarkPaymentPaid(context.Background(), buyer, bundle.Payment.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	txns, _ := f.repo.ListTransactionsByOrder(context.Background(), bundle.Order.ID)
	assert.Len(t, txns, 1, "no double fan-out")
}

func TestMarkPaymentPaidIdempotencyGuard(t *testing.T) {
	f := newFixture()
	bundle, err := f.svc.CreateOrder(context.Background(), buyer, CreateOrderInput{
		SupplierName: "Tani Makmur",
		Items:        []OrderItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkPaymentPaid(context.Background(), buyer, bundle.Payment.ID))

	// Force the status back as a lost-update double-delivery would; the
	// idempotency key still blocks a second fan-out.
	p := f.repo.payments[bundle.Payment.ID]
	p.Status = PaymentStatusPending
	f.repo.payments[bundle.Payment.ID] = p

	err = f.svc.MarkPaymentPaid(context.Background(), buyer, bundle.Payment.ID)
	assert.ErrorIs(t, err, shared.ErrIdempotencyConflict)
}

func TestMarkPaymentPaidRetryAfterTransientFailure(t *testing.T) {
	f := newFixture()
	bundle, err := f.svc.CreateOrder(context.Background(), buyer, CreateOrderInput{
		SupplierName: "Tani Makmur",
		Items:        []OrderItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	f.repo.failCompletePayment = true
	err = f.svc.MarkPaymentPaid(context.Background(), buyer, bundle.Payment.ID)
	require.Error(t, err)

	// The fault clears; confirming again must not be bricked by the
	// journal row or the idempotency key left over from the failed run.
	f.repo.failCompletePayment = false
	require.NoError(t, f.svc.MarkPaymentPaid(context.Background(), buyer, bundle.Payment.ID))

	payment, err := f.repo.GetPayment(context.Background(), bundle.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusCompleted, payment.Status)

	order, _, err := f.repo.GetOrder(context.Background(), bundle.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusProcessing, order.Status)

	txns, err := f.repo.ListTransactionsByOrder(context.Background(), bundle.Order.ID)
	require.NoError(t, err)
	assert.Len(t, txns, 1, "retry re-runs the cascade exactly once")

	run, _, err := f.runner.Inspect(context.Background(), "PAY:"+payment.Number)
	require.NoError(t, err)
	assert.Equal(t, workflow.RunCompleted, run.Status)
}

func TestMarkPaymentPaidWithoutOrderLink(t *testing.T) {
	f := newFixture()
	var paymentID int64
	err := f.repo.WithTx(context.Background(), func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreatePayment(ctx, Payment{Number: "PAY-orphan", Amount: 5000, Status: PaymentStatusPending})
		paymentID = id
		return err
	})
	require.NoError(t, err)

	err = f.svc.MarkPaymentPaid(context.Background(), buyer, paymentID)
	assert.ErrorIs(t, err, ErrOrderLinkMissing)
}

func TestDeliveryCascade(t *testing.T) {
	f := newFixture()
	bundle, err := f.svc.CreateOrder(context.Background(), buyer, CreateOrderInput{
		SupplierName:    "Tani Makmur",
		SupplierContact: "0812000111",
		Items: []OrderItemInput{
			{ProductID: 1, Quantity: 10},
			{ProductID: 2, Quantity: 4},
		},
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.MarkPaymentPaid(context.Background(), buyer, bundle.Payment.ID))

	err = f.svc.AdvanceFulfillment(context.Background(), buyer, bundle.Order.ID, OrderStatusInTransit)
	require.NoError(t, err)
	err = f.svc.AdvanceFulfillment(context.Background(), buyer, bundle.Order.ID, OrderStatusDelivered)
	require.NoError(t, err)

	order, _, err := f.repo.GetOrder(context.Background(), bundle.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusDelivered, order.Status)

	history, err := f.repo.ListSupplierHistory(context.Background(), bundle.Order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2, "one arrival row per item")
	for _, entry := range history {
		assert.Equal(t, "Tani Makmur", entry.SupplierName)
		assert.Equal(t, "received", entry.StockStatus)
		assert.Equal(t, "Delivered from order "+bundle.Order.Number, entry.Notes)
	}

	assert.Equal(t, int64(110), f.inv.materials[1].Quantity, "rice restocked 100+10")
	assert.Equal(t, int64(44), f.inv.materials[2].Quantity, "oil restocked 40+4")
}

func TestDeliveryApprovesAllTransactions(t *testing.T) {
	f := newFixture()
	bundle, err := f.svc.CreateOrder(context.Background(), buyer, CreateOrderInput{
		SupplierName: "Tani Makmur",
		Items:        []OrderItemInput{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.MarkPaymentPaid(context.Background(), buyer, bundle.Payment.ID))

	// A manually rejected ledger entry gets swept along with the rest on
	// delivery, not skipped.
	f.repo.transactions = append(f.repo.transactions, Transaction{
		OrderID: bundle.Order.ID,
		Amount:  1000,
		Status:  TransactionStatusRejected,
	})

	require.NoError(t, f.svc.AdvanceFulfillment(context.Background(), buyer, bundle.Order.ID, OrderStatusInTransit))
	require.NoError(t, f.svc.AdvanceFulfillment(context.Background(), buyer, bundle.Order.ID, OrderStatusDelivered))

	txns, err := f.repo.ListTransactionsByOrder(context.Background(), bundle.Order.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	for _, txn := range txns {
		assert.Equal(t, TransactionStatusApproved, txn.Status)
	}
}

func TestDeliverySupplierFallback(t *testing.T) {
	f := newFixture()
	bundle, err := f.svc.CreateQuickOrder(context.Background(), buyer, CreateQuickOrderInput{
		Items: []QuickItemInput{{ProductName: "Salt", Quantity: 3, UnitPrice: 5000}},
	})
	require.NoError(t, err)
	require.NoError(t, f.svc.MarkOrderPaid(context.Background(), buyer, bundle.Order.ID))

	// Quick orders skip the payment.confirm cascade; walk the order into the
	// fulfillment chain directly.
	o := f.repo.orders[bundle.Order.ID]
	o.Status = OrderStatusProcessing
	o.SupplierName = ""
	f.repo.orders[bundle.Order.ID] = o

	require.NoError(t, f.svc.AdvanceFulfillment(context.Background(), buyer, bundle.Order.ID, OrderStatusDelivered))

	history, err := f.repo.ListSupplierHistory(context.Background(), bundle.Order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Unknown", history[0].SupplierName)
}

func TestAdvanceFulfillmentRejectsInvalidTransitions(t *testing.T) {
	f := newFixture()
	bundle, err := f.svc.CreateOrder(context.Background(), buyer, CreateOrderInput{
		SupplierName: "Tani Makmur",
		Items:        []OrderItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	// draft is not yet in the fulfillment chain
	err = f.svc.AdvanceFulfillment(context.Background(), buyer, bundle.Order.ID, OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, f.svc.MarkPaymentPaid(context.Background(), buyer, bundle.Payment.ID))
	require.NoError(t, f.svc.AdvanceFulfillment(context.Background(), buyer, bundle.Order.ID, OrderStatusDelivered))

	// delivered is terminal
	err = f.svc.AdvanceFulfillment(context.Background(), buyer, bundle.Order.ID, OrderStatusInTransit)
	assert.ErrorIs(t, err, ErrInvalidState)
	err = f.svc.AdvanceFulfillment(context.Background(), buyer, bundle.Order.ID, OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestQuickOrderCarriesQRCode(t *testing.T) {
	f := newFixture()
	bundle, err := f.svc.CreateQuickOrder(context.Background(), buyer, CreateQuickOrderInput{
		SupplierName:  "Warung Segar",
		BankName:      "BCA",
		AccountNumber: "1234567890",
		Items:         []QuickItemInput{{ProductName: "Salt", Quantity: 2, UnitPrice: 5000}},
	})
	require.NoError(t, err)

	assert.Equal(t, float64(10000), bundle.Order.TotalAmount)
	assert.NotEmpty(t, bundle.Payment.PaymentCode)
	assert.Contains(t, bundle.Payment.QRCodeURL, bundle.Payment.PaymentCode)

	require.NoError(t, f.svc.MarkOrderPaid(context.Background(), buyer, bundle.Order.ID))
	order, _, _ := f.repo.GetOrder(context.Background(), bundle.Order.ID)
	assert.Equal(t, OrderStatusPaid, order.Status)
	payment, _ := f.repo.GetPayment(context.Background(), bundle.Payment.ID)
	assert.Equal(t, PaymentStatusCompleted, payment.Status)
}
