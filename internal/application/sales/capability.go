package sales

import (
	"context"

	"github.com/google/uuid"
)

// Capabilities checked before sale write operations
const (
	CapabilityCreateSale    = "sales.create"
	CapabilityEditSale      = "sales.edit"
	CapabilityCancelSale    = "sales.cancel"
	CapabilityRecordPayment = "sales.record_payment"
)

// CapabilityChecker answers whether a user may perform an operation.
// The HTTP layer resolves the user from the JWT; the service only asks the
// question and maps a "no" to a forbidden error.
type CapabilityChecker interface {
	Can(ctx context.Context, userID uuid.UUID, capability string) (bool, error)
}

// AllowAllCapabilityChecker grants everything. Used in tests and when the
// deployment does not configure role restrictions.
type AllowAllCapabilityChecker struct{}

// Can always returns true
func (AllowAllCapabilityChecker) Can(_ context.Context, _ uuid.UUID, _ string) (bool, error) {
	return true, nil
}
