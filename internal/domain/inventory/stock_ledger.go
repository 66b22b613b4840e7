package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller/backend/internal/domain/catalog"
	"github.com/taller/backend/internal/domain/shared"
)

// OversellPolicy controls what happens when an OUT movement would take the
// stock projection below zero.
type OversellPolicy string

const (
	// OversellAllow lets stock go negative silently
	OversellAllow OversellPolicy = "allow"
	// OversellWarn lets stock go negative and marks the result so callers can log it
	OversellWarn OversellPolicy = "warn"
	// OversellReject refuses the movement with a business rule error
	OversellReject OversellPolicy = "reject"
)

// IsValid returns true if the policy is one of the known values
func (p OversellPolicy) IsValid() bool {
	return p == OversellAllow || p == OversellWarn || p == OversellReject
}

// RecordResult is what the ledger hands back for a single movement: the
// appended entry plus whether it drove the projection negative under the
// warn policy.
type RecordResult struct {
	Movement     *StockMovement
	Oversold     bool
	StockAfter   decimal.Decimal
	BelowMinimum bool
}

// StockLedger is the domain service that owns every stock mutation. All
// changes to Product.CurrentStock flow through here: the service computes
// the before/after pair from the product it is handed, appends a movement
// and moves the projection in one step. Callers are responsible for loading
// the product under a row lock and persisting both objects in the same
// transaction.
type StockLedger struct {
	policy OversellPolicy
}

// NewStockLedger creates a ledger service with the given oversell policy.
// An unknown policy falls back to warn.
func NewStockLedger(policy OversellPolicy) *StockLedger {
	if !policy.IsValid() {
		policy = OversellWarn
	}
	return &StockLedger{policy: policy}
}

// Policy returns the configured oversell policy
func (l *StockLedger) Policy() OversellPolicy {
	return l.policy
}

// Record appends a movement for the product and applies it to the projection.
// The product's CurrentStock at call time is frozen into the movement as
// StockBefore; StockAfter is derived from it, never recomputed later.
func (l *StockLedger) Record(
	product *catalog.Product,
	direction MovementDirection,
	quantity decimal.Decimal,
	unitPrice decimal.Decimal,
	reason MovementReason,
	userID uuid.UUID,
) (*RecordResult, error) {
	if product == nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product cannot be nil")
	}

	stockBefore := product.CurrentStock
	stockAfter := stockBefore.Add(quantity)
	if direction == MovementOut {
		stockAfter = stockBefore.Sub(quantity)
	}

	oversold := false
	if direction == MovementOut && stockAfter.IsNegative() {
		switch l.policy {
		case OversellReject:
			return nil, shared.NewBusinessRuleError("INSUFFICIENT_STOCK",
				"Insufficient stock for product "+product.Code)
		case OversellWarn:
			oversold = true
		}
	}

	movement, err := NewStockMovement(product.ID, direction, quantity, unitPrice,
		stockBefore, stockAfter, reason, userID)
	if err != nil {
		return nil, err
	}

	product.ApplyStockDelta(stockAfter)

	return &RecordResult{
		Movement:     movement,
		Oversold:     oversold,
		StockAfter:   stockAfter,
		BelowMinimum: product.IsBelowMinimum(),
	}, nil
}

// Add records a positive manual adjustment
func (l *StockLedger) Add(
	product *catalog.Product,
	quantity decimal.Decimal,
	unitPrice decimal.Decimal,
	reason MovementReason,
	userID uuid.UUID,
) (*RecordResult, error) {
	return l.Record(product, MovementIn, quantity, unitPrice, reason, userID)
}

// Subtract records a negative manual adjustment
func (l *StockLedger) Subtract(
	product *catalog.Product,
	quantity decimal.Decimal,
	unitPrice decimal.Decimal,
	reason MovementReason,
	userID uuid.UUID,
) (*RecordResult, error) {
	return l.Record(product, MovementOut, quantity, unitPrice, reason, userID)
}

// SetTo moves the projection to an absolute target value by recording a
// movement for the difference. When the target equals the current projection
// there is nothing to explain, so no row is written and (nil, nil) is
// returned.
func (l *StockLedger) SetTo(
	product *catalog.Product,
	target decimal.Decimal,
	unitPrice decimal.Decimal,
	reason MovementReason,
	userID uuid.UUID,
) (*RecordResult, error) {
	if product == nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product cannot be nil")
	}
	if target.IsNegative() {
		return nil, shared.NewValidationError("INVALID_TARGET", "Target stock cannot be negative")
	}

	diff := target.Sub(product.CurrentStock)
	if diff.IsZero() {
		return nil, nil
	}
	if diff.IsPositive() {
		return l.Record(product, MovementIn, diff, unitPrice, reason, userID)
	}
	return l.Record(product, MovementOut, diff.Neg(), unitPrice, reason, userID)
}
