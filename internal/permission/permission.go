// Package permission holds the role checks evaluated at the HTTP boundary
// before any account operation runs.
package permission

import (
	"context"

	"gas-stock/internal/data/entity"

	"github.com/google/uuid"
)

// Principal is the authenticated caller as loaded for the current request.
type Principal struct {
	UserID  uuid.UUID
	IsStaff bool
	Role    entity.Role
}

func NewPrincipal(account *entity.Account) Principal {
	return Principal{
		UserID:  account.User.ID,
		IsStaff: account.User.IsStaff,
		Role:    account.Profile.Role,
	}
}

func IsAdmin(p Principal) bool {
	return p.IsStaff || p.Role == entity.RoleAdmin
}

func IsManager(p Principal) bool {
	return p.Role == entity.RoleAdmin || p.Role == entity.RoleManager
}

func IsDeliveryStaff(p Principal) bool {
	return IsManager(p) || p.Role == entity.RoleDelivery
}

func IsCustomer(p Principal) bool {
	return p.Role == entity.RoleCustomer
}

func CanViewProfile(p Principal, target uuid.UUID) bool {
	return p.UserID == target || p.IsStaff || IsManager(p)
}

func CanModifyProfile(p Principal, target uuid.UUID) bool {
	return p.UserID == target || p.IsStaff || p.Role == entity.RoleAdmin
}

// CanDeleteUser only rules out deleting yourself; the admin check is separate.
func CanDeleteUser(p Principal, target uuid.UUID) bool {
	return p.UserID != target
}

type contextKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
