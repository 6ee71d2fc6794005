package procurement

import (
	"context"
	"fmt"
	"time"

	"github.com/freshchain/freshchain/internal/shared"
	"github.com/freshchain/freshchain/internal/workflow"
)

// MarkPaymentPaid confirms a payment and runs the payment.confirm workflow:
// the payment is completed with a paid_at timestamp, the linked order moves to
// processing, and one approved ledger transaction is written per order item.
// The idempotency store keyed on the payment number makes repeated
// confirmations of the same payment a no-op conflict instead of a double
// fan-out.
func (s *Service) MarkPaymentPaid(ctx context.Context, actor shared.Actor, paymentID int64) error {
	payment, err := s.repo.GetPayment(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.OrderID == 0 {
		return ErrOrderLinkMissing
	}
	if payment.Status != PaymentStatusPending {
		return ErrInvalidState
	}
	order, items, err := s.repo.GetOrder(ctx, payment.OrderID)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("PAY:%s", payment.Number)
	inserted := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "procurement.payment"); err != nil {
			return err
		}
		inserted = true
	}

	invoice, _, invErr := s.repo.GetInvoiceByOrder(ctx, payment.OrderID)
	now := time.Now()
	steps := []workflow.Step{
		{Name: "complete_payment", Run: func(ctx context.Context) error {
			return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
				return tx.CompletePayment(ctx, paymentID, now)
			})
		}},
		{Name: "advance_order", Run: func(ctx context.Context) error {
			return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
				return tx.UpdateOrderStatus(ctx, order.ID, OrderStatusProcessing)
			})
		}},
		{Name: "approve_transactions", Run: func(ctx context.Context) error {
			return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
				for _, item := range items {
					txn := Transaction{
						OrderID:         order.ID,
						PaymentID:       paymentID,
						ProductName:     item.ProductName,
						Quantity:        item.Quantity,
						Amount:          item.TotalPrice,
						Status:          TransactionStatusApproved,
						Notes:           "Auto-approved upon payment confirmation",
						TransactionDate: now,
					}
					if invErr == nil {
						txn.InvoiceID = invoice.ID
					}
					if _, err := tx.InsertTransaction(ctx, txn); err != nil {
						return err
					}
				}
				return nil
			})
		}},
	}
	if err := s.runner.Execute(ctx, "payment.confirm", key, steps); err != nil {
		if inserted {
			_ = s.idempotency.Delete(ctx, key)
		}
		return err
	}

	s.recordAudit(ctx, actor, "PAYMENT_CONFIRM", paymentID, map[string]any{
		"number": payment.Number,
		"order":  order.Number,
	})
	s.publish(ctx, tablePayments, tableOrders, tableTransactions)
	return nil
}
