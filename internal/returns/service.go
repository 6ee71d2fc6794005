package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/freshchain/freshchain/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Insert(ctx context.Context, ret Return) (Return, error)
	Get(ctx context.Context, id int64) (Return, error)
	List(ctx context.Context) ([]Return, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// FeedPort publishes change notifications.
type FeedPort interface {
	Publish(ctx context.Context, tables ...string)
}

// Service handles return requests.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	feed  FeedPort
}

// NewService constructs returns service.
func NewService(repo RepositoryPort, audit AuditPort, feed FeedPort) *Service {
	return &Service{repo: repo, audit: audit, feed: feed}
}

// CreateInput describes a return request payload.
type CreateInput struct {
	ProductName string
	Quantity    int64
	Reason      string
}

// Create records a pending return request.
func (s *Service) Create(ctx context.Context, actor shared.Actor, input CreateInput) (Return, error) {
	if input.ProductName == "" || len(input.ProductName) > 200 {
		return Return{}, fmt.Errorf("%w: product name required, max 200 chars", ErrValidation)
	}
	if input.Quantity <= 0 || input.Quantity > 999999 {
		return Return{}, fmt.Errorf("%w: quantity must be between 1 and 999,999", ErrValidation)
	}
	if input.Reason == "" || len(input.Reason) > 1000 {
		return Return{}, fmt.Errorf("%w: reason required, max 1000 chars", ErrValidation)
	}
	ret, err := s.repo.Insert(ctx, Return{
		Number:      fmt.Sprintf("RET-%d", time.Now().UnixNano()),
		ProductName: input.ProductName,
		Quantity:    input.Quantity,
		Reason:      input.Reason,
		CreatedBy:   actor.ID,
		Status:      StatusPending,
	})
	if err != nil {
		return Return{}, err
	}
	s.recordAudit(ctx, actor, "RETURN_CREATE", ret.ID, map[string]any{"number": ret.Number})
	s.publish(ctx)
	return ret, nil
}

// UpdateStatus moves a pending return to approved or rejected. Record-only:
// stock is untouched either way.
func (s *Service) UpdateStatus(ctx context.Context, actor shared.Actor, id int64, status Status) error {
	if status != StatusApproved && status != StatusRejected {
		return fmt.Errorf("%w: status must be approved or rejected", ErrValidation)
	}
	ret, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if ret.Status != StatusPending {
		return fmt.Errorf("%w: return already %s", ErrValidation, ret.Status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "RETURN_STATUS", id, map[string]any{"status": status})
	s.publish(ctx)
	return nil
}

// List returns all return requests, newest first.
func (s *Service) List(ctx context.Context) ([]Return, error) {
	return s.repo.List(ctx)
}

func (s *Service) recordAudit(ctx context.Context, actor shared.Actor, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "return",
		EntityID: fmt.Sprintf("%d", entityID),
		Meta:     meta,
	})
}

func (s *Service) publish(ctx context.Context) {
	if s.feed != nil {
		s.feed.Publish(ctx, "returns")
	}
}
