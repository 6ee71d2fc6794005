package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/freshchain/freshchain/internal/inventory"
	"github.com/freshchain/freshchain/internal/shared"
	"github.com/freshchain/freshchain/internal/workflow"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	InsertRejection(ctx context.Context, item RejectedItem) (RejectedItem, error)
	ListRejections(ctx context.Context) ([]RejectedItem, error)
	GetRejection(ctx context.Context, id int64) (RejectedItem, error)
	UpdateRejectionStatus(ctx context.Context, id int64, status RejectionStatus) error
	InsertMessage(ctx context.Context, msg ChatMessage) (ChatMessage, error)
	ListMessages(ctx context.Context, rejectedItemID int64) ([]ChatMessage, error)
	InsertInspection(ctx context.Context, rec FoodCondition) (FoodCondition, error)
	ListInspections(ctx context.Context) ([]FoodCondition, error)
}

// InventoryPort exposes the catalog and the single stock primitive.
type InventoryPort interface {
	Get(ctx context.Context, id int64) (inventory.Material, error)
	AdjustStock(ctx context.Context, actor shared.Actor, id int64, delta int64, reason string) (inventory.Adjustment, error)
}

// RolePort answers admin lookups against the external identity provider's
// role table.
type RolePort interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// FeedPort publishes change notifications.
type FeedPort interface {
	Publish(ctx context.Context, tables ...string)
}

// Service handles quality control: rejections, dispute chat, inspections.
type Service struct {
	repo      RepositoryPort
	inventory InventoryPort
	roles     RolePort
	runner    *workflow.Runner
	audit     AuditPort
	feed      FeedPort
}

// NewService constructs quality service.
func NewService(repo RepositoryPort, inv InventoryPort, roles RolePort, runner *workflow.Runner, audit AuditPort, feed FeedPort) *Service {
	return &Service{repo: repo, inventory: inv, roles: roles, runner: runner, audit: audit, feed: feed}
}

// RejectInput describes a rejection payload.
type RejectInput struct {
	ProductID int64
	Quantity  int64
	Reason    string
	SellerID  string
}

// RejectMaterial writes off stock for a failed inspection. Admin-only: the
// acting user must hold the admin role. The material.reject workflow inserts
// the pending rejection record and then decrements stock through the clamped
// adjustment primitive, so writing off more than is on hand floors at zero.
func (s *Service) RejectMaterial(ctx context.Context, actor shared.Actor, input RejectInput) (RejectedItem, error) {
	admin, err := s.roles.IsAdmin(ctx, actor.ID)
	if err != nil {
		return RejectedItem{}, err
	}
	if !admin {
		return RejectedItem{}, shared.ErrForbidden
	}
	if input.ProductID <= 0 || input.Quantity <= 0 || input.Quantity > 999999 {
		return RejectedItem{}, fmt.Errorf("%w: product and quantity required", ErrValidation)
	}
	if input.Reason == "" || len(input.Reason) > 1000 {
		return RejectedItem{}, fmt.Errorf("%w: reason required, max 1000 chars", ErrValidation)
	}
	material, err := s.inventory.Get(ctx, input.ProductID)
	if err != nil {
		return RejectedItem{}, err
	}

	item := RejectedItem{
		ProductID:   material.ID,
		ProductName: material.Name,
		Quantity:    input.Quantity,
		Reason:      input.Reason,
		SellerID:    input.SellerID,
		Status:      RejectionStatusPending,
	}
	key := fmt.Sprintf("REJECT:%d:%d", material.ID, time.Now().UnixNano())
	steps := []workflow.Step{
		{Name: "insert_rejection", Run: func(ctx context.Context) error {
			created, err := s.repo.InsertRejection(ctx, item)
			if err != nil {
				return err
			}
			item = created
			return nil
		}},
		{Name: "write_off_stock", Run: func(ctx context.Context) error {
			_, err := s.inventory.AdjustStock(ctx, actor, material.ID, -input.Quantity, input.Reason)
			return err
		}},
	}
	if err := s.runner.Execute(ctx, "material.reject", key, steps); err != nil {
		return RejectedItem{}, err
	}

	s.recordAudit(ctx, actor, "MATERIAL_REJECT", item.ID, map[string]any{
		"product":  material.Name,
		"quantity": input.Quantity,
	})
	s.publish(ctx, "rejected_items", "products")
	return item, nil
}

// ResolveRejection closes a pending rejection record.
func (s *Service) ResolveRejection(ctx context.Context, actor shared.Actor, id int64) error {
	item, err := s.repo.GetRejection(ctx, id)
	if err != nil {
		return err
	}
	if item.Status != RejectionStatusPending {
		return fmt.Errorf("%w: rejection already %s", ErrValidation, item.Status)
	}
	if err := s.repo.UpdateRejectionStatus(ctx, id, RejectionStatusResolved); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "REJECTION_RESOLVE", id, nil)
	s.publish(ctx, "rejected_items")
	return nil
}

// ListRejections returns rejection records, newest first.
func (s *Service) ListRejections(ctx context.Context) ([]RejectedItem, error) {
	return s.repo.ListRejections(ctx)
}

// PostMessage appends one message to a rejection's dispute thread.
func (s *Service) PostMessage(ctx context.Context, actor shared.Actor, rejectedItemID int64, message string) (ChatMessage, error) {
	if message == "" || len(message) > 1000 {
		return ChatMessage{}, fmt.Errorf("%w: message required, max 1000 chars", ErrValidation)
	}
	if _, err := s.repo.GetRejection(ctx, rejectedItemID); err != nil {
		return ChatMessage{}, err
	}
	msg, err := s.repo.InsertMessage(ctx, ChatMessage{
		RejectedItemID: rejectedItemID,
		SenderID:       actor.ID,
		Message:        message,
	})
	if err != nil {
		return ChatMessage{}, err
	}
	s.publish(ctx, "chat_messages")
	return msg, nil
}

// ListMessages returns a rejection's thread in posting order.
func (s *Service) ListMessages(ctx context.Context, rejectedItemID int64) ([]ChatMessage, error) {
	return s.repo.ListMessages(ctx, rejectedItemID)
}

// InspectionInput describes a condition check payload.
type InspectionInput struct {
	ProductID        int64
	ProductName      string
	Condition        string
	FitForProcessing bool
	Notes            string
}

// RecordInspection stores a food condition check. Informational only; any
// stock consequence goes through RejectMaterial.
func (s *Service) RecordInspection(ctx context.Context, actor shared.Actor, input InspectionInput) (FoodCondition, error) {
	name := input.ProductName
	if input.ProductID > 0 {
		material, err := s.inventory.Get(ctx, input.ProductID)
		if err != nil {
			return FoodCondition{}, err
		}
		name = material.Name
	}
	if name == "" || input.Condition == "" {
		return FoodCondition{}, fmt.Errorf("%w: product and condition required", ErrValidation)
	}
	if len(input.Notes) > 1000 {
		return FoodCondition{}, fmt.Errorf("%w: notes max 1000 chars", ErrValidation)
	}
	rec, err := s.repo.InsertInspection(ctx, FoodCondition{
		ProductID:        input.ProductID,
		ProductName:      name,
		Condition:        input.Condition,
		FitForProcessing: input.FitForProcessing,
		InspectorID:      actor.ID,
		Notes:            input.Notes,
		InspectionDate:   time.Now(),
	})
	if err != nil {
		return FoodCondition{}, err
	}
	s.publish(ctx, "food_conditions")
	return rec, nil
}

// ListInspections returns condition checks, newest first.
func (s *Service) ListInspections(ctx context.Context) ([]FoodCondition, error) {
	return s.repo.ListInspections(ctx)
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "quality",
		EntityID: fmt.Sprintf("%d", entityID),
		Meta:     meta,
	})
}

func (s *Service) publish(ctx context.Context, tables ...string) {
	if s.feed != nil {
		s.feed.Publish(ctx, tables...)
	}
}
