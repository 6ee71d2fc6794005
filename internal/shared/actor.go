package shared

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Actor identifies the user performing a workflow operation. Identity and
// session lifecycle live in an external provider; the application only needs
// a stable opaque id and the admin flag resolved from user_roles.
type Actor struct {
	ID    string
	Admin bool
}

// Anonymous reports whether no acting user was supplied.
func (a Actor) Anonymous() bool {
	return a.ID == ""
}

type actorContextKey struct{}

// ContextWithActor stores the acting user in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the acting user from context.
func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorContextKey{}).(Actor)
	return actor
}

// RoleStore resolves roles for external identity-provider user ids.
type RoleStore struct {
	pool *pgxpool.Pool
}

// NewRoleStore constructs the store.
func NewRoleStore(pool *pgxpool.Pool) *RoleStore {
	return &RoleStore{pool: pool}
}

// IsAdmin reports whether the user holds the admin role.
func (s *RoleStore) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if s == nil || userID == "" {
		return false, nil
	}
	var role string
	err := s.pool.QueryRow(ctx, `SELECT role FROM user_roles WHERE user_id=$1 AND role='admin'`, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
