package inventory

import (
	"context"
	"fmt"
	"strings"

	"github.com/freshchain/freshchain/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	List(ctx context.Context, filters ListFilters) ([]Material, int, error)
	Get(ctx context.Context, id int64) (Material, error)
	Create(ctx context.Context, material Material) (Material, error)
	Update(ctx context.Context, id int64, material Material) error
	Delete(ctx context.Context, id int64) error
	AdjustQuantity(ctx context.Context, id int64, delta int64) (int64, error)
	ListBelow(ctx context.Context, threshold int64) ([]Material, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// FeedPort publishes change notifications after successful writes.
type FeedPort interface {
	Publish(ctx context.Context, tables ...string)
}

// Service coordinates the material catalog and the stock ledger.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	feed  FeedPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, feed FeedPort) *Service {
	return &Service{repo: repo, audit: audit, feed: feed}
}

// List returns materials matching the filters with the unfiltered total.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Material, int, error) {
	return s.repo.List(ctx, filters)
}

// Get fetches one material.
func (s *Service) Get(ctx context.Context, id int64) (Material, error) {
	if id <= 0 {
		return Material{}, ErrValidation
	}
	return s.repo.Get(ctx, id)
}

// Create validates and persists a new material.
func (s *Service) Create(ctx context.Context, actor shared.Actor, material Material) (Material, error) {
	if err := validate(material); err != nil {
		return Material{}, err
	}
	created, err := s.repo.Create(ctx, material)
	if err != nil {
		return Material{}, err
	}
	s.recordAudit(ctx, actor, "MATERIAL_CREATE", created.ID, map[string]any{"name": created.Name})
	s.publish(ctx)
	return created, nil
}

// Update validates and replaces material fields.
func (s *Service) Update(ctx context.Context, actor shared.Actor, id int64, material Material) error {
	if id <= 0 {
		return ErrValidation
	}
	if err := validate(material); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, material); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "MATERIAL_UPDATE", id, map[string]any{"name": material.Name})
	s.publish(ctx)
	return nil
}

// Delete removes a material from the catalog.
func (s *Service) Delete(ctx context.Context, actor shared.Actor, id int64) error {
	if id <= 0 {
		return ErrValidation
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "MATERIAL_DELETE", id, nil)
	s.publish(ctx)
	return nil
}

// AdjustStock is the single stock mutation primitive. Every caller (delivery
// replenishment, quality rejection write-off) goes through it; the update is
// one atomic SQL statement that clamps decrements at zero, so concurrent
// adjustments of the same material cannot lose updates or go negative.
func (s *Service) AdjustStock(ctx context.Context, actor shared.Actor, id int64, delta int64, reason string) (Adjustment, error) {
	if id <= 0 {
		return Adjustment{}, ErrValidation
	}
	if delta == 0 {
		return Adjustment{}, ErrZeroDelta
	}
	newQty, err := s.repo.AdjustQuantity(ctx, id, delta)
	if err != nil {
		return Adjustment{}, err
	}
	adj := Adjustment{MaterialID: id, Delta: delta, NewQuantity: newQty, Reason: reason}
	s.recordAudit(ctx, actor, "STOCK_ADJUST", id, map[string]any{
		"delta":        delta,
		"new_quantity": newQty,
		"reason":       reason,
	})
	s.publish(ctx)
	return adj, nil
}

// LowStock lists materials at or below the threshold.
func (s *Service) LowStock(ctx context.Context, threshold int64) ([]Material, error) {
	if threshold < 0 {
		threshold = 0
	}
	return s.repo.ListBelow(ctx, threshold)
}

func validate(m Material) error {
	name := strings.TrimSpace(m.Name)
	switch {
	case name == "" || len(name) > 200:
		return fmt.Errorf("%w: name required, max 200 chars", ErrValidation)
	case strings.TrimSpace(m.Category) == "" || len(m.Category) > 100:
		return fmt.Errorf("%w: category required, max 100 chars", ErrValidation)
	case len(m.Color) > 50:
		return fmt.Errorf("%w: color max 50 chars", ErrValidation)
	case m.Price <= 0 || m.Price > 999999.99:
		return fmt.Errorf("%w: price must be positive and below 1,000,000", ErrValidation)
	case m.Quantity < 0 || m.Quantity > 999999:
		return fmt.Errorf("%w: quantity must be between 0 and 999,999", ErrValidation)
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "material",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	})
}

func (s *Service) publish(ctx context.Context) {
	if s.feed != nil {
		s.feed.Publish(ctx, "products")
	}
}
