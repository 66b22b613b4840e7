package auth

import (
	"context"

	"github.com/google/uuid"
	appsales "github.com/taller/backend/internal/application/sales"
)

type roleContextKey struct{}

// WithRole returns a context carrying the authenticated user's role.
// The HTTP middleware sets it after validating the token.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleContextKey{}, role)
}

// RoleFromContext returns the authenticated role, empty if none was set
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleContextKey{}).(string)
	return role
}

// Known roles
const (
	RoleAdmin      = "admin"
	RoleSeller     = "seller"
	RoleTechnician = "technician"
)

// roleCapabilities maps each role to the capabilities it is granted.
// Admin passes every check; absent roles get nothing.
var roleCapabilities = map[string]map[string]bool{
	RoleSeller: {
		appsales.CapabilityCreateSale:    true,
		appsales.CapabilityEditSale:      true,
		appsales.CapabilityRecordPayment: true,
	},
	RoleTechnician: {},
}

// RoleCapabilityChecker grants capabilities by the role carried in the
// request context. Cancelling a sale is admin-only.
type RoleCapabilityChecker struct{}

// NewRoleCapabilityChecker creates a RoleCapabilityChecker
func NewRoleCapabilityChecker() *RoleCapabilityChecker {
	return &RoleCapabilityChecker{}
}

// Can reports whether the user's role grants the capability
func (RoleCapabilityChecker) Can(ctx context.Context, _ uuid.UUID, capability string) (bool, error) {
	role := RoleFromContext(ctx)
	if role == RoleAdmin {
		return true, nil
	}
	caps, ok := roleCapabilities[role]
	if !ok {
		return false, nil
	}
	return caps[capability], nil
}

var _ appsales.CapabilityChecker = (*RoleCapabilityChecker)(nil)
