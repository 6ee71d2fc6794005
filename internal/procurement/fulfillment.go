package procurement

import (
	"context"
	"fmt"
	"time"

	"github.com/freshchain/freshchain/internal/shared"
	"github.com/freshchain/freshchain/internal/workflow"
)

// forwardTransitions lists the allowed fulfillment moves. Skipping in_transit
// is allowed; moving backwards or out of delivered never is.
var forwardTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing: {OrderStatusInTransit, OrderStatusDelivered},
	OrderStatusInTransit:  {OrderStatusDelivered},
}

func transitionAllowed(from, to OrderStatus) bool {
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AdvanceFulfillment moves an order forward through the fulfillment chain.
// Reaching delivered triggers the order.deliver workflow: one supplier_history
// arrival row per item, bulk approval of the order's ledger transactions, and
// a stock increment per catalog-linked item.
func (s *Service) AdvanceFulfillment(ctx context.Context, actor shared.Actor, orderID int64, next OrderStatus) error {
	order, items, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !transitionAllowed(order.Status, next) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidState, order.Status, next)
	}

	if next != OrderStatusDelivered {
		err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			return tx.UpdateOrderStatus(ctx, orderID, next)
		})
		if err != nil {
			return err
		}
		s.recordAudit(ctx, actor, "ORDER_ADVANCE", orderID, map[string]any{"number": order.Number, "status": next})
		s.publish(ctx, tableOrders)
		return nil
	}

	now := time.Now()
	deliveryNote := fmt.Sprintf("Delivered from order %s", order.Number)
	steps := []workflow.Step{
		{Name: "mark_delivered", Run: func(ctx context.Context) error {
			return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
				return tx.UpdateOrderStatus(ctx, orderID, OrderStatusDelivered)
			})
		}},
		{Name: "record_supplier_history", Run: func(ctx context.Context) error {
			return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
				for _, item := range items {
					entry := SupplierHistory{
						OrderID:       orderID,
						SupplierName:  defaultString(order.SupplierName, "Unknown"),
						SupplierPhone: order.SupplierContact,
						ProductName:   item.ProductName,
						Quantity:      item.Quantity,
						ArrivalDate:   now,
						StockStatus:   "received",
						Notes:         deliveryNote,
					}
					if err := tx.InsertSupplierHistory(ctx, entry); err != nil {
						return err
					}
				}
				return nil
			})
		}},
		{Name: "approve_transactions", Run: func(ctx context.Context) error {
			return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
				return tx.ApproveOrderTransactions(ctx, orderID)
			})
		}},
		{Name: "restock_items", Run: func(ctx context.Context) error {
			for _, item := range items {
				if item.ProductID == 0 {
					continue
				}
				if _, err := s.inventory.AdjustStock(ctx, actor, item.ProductID, item.Quantity, deliveryNote); err != nil {
					return err
				}
			}
			return nil
		}},
	}
	key := fmt.Sprintf("DELIVER:%s", order.Number)
	if err := s.runner.Execute(ctx, "order.deliver", key, steps); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "ORDER_DELIVERED", orderID, map[string]any{"number": order.Number})
	s.publish(ctx, tableOrders, tableSupplierHistory, tableTransactions, tableProducts)
	return nil
}
