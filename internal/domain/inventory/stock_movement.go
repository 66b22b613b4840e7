package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller/backend/internal/domain/shared"
)

// MovementDirection represents the direction of a stock movement
type MovementDirection string

const (
	// MovementIn represents stock entering inventory
	MovementIn MovementDirection = "IN"
	// MovementOut represents stock leaving inventory
	MovementOut MovementDirection = "OUT"
)

// IsValid returns true if the direction is valid
func (d MovementDirection) IsValid() bool {
	return d == MovementIn || d == MovementOut
}

// String returns the string representation of MovementDirection
func (d MovementDirection) String() string {
	return string(d)
}

// MovementReason is the closed enumeration of reasons a movement can carry.
// The ledger rejects anything outside this set so history stays
// machine-verifiable instead of string-matched.
type MovementReason string

const (
	ReasonSale             MovementReason = "SALE"
	ReasonSaleUpdate       MovementReason = "SALE_UPDATE"
	ReasonSaleCancellation MovementReason = "SALE_CANCELLATION"
	ReasonManualAdjustment MovementReason = "MANUAL_ADJUSTMENT"
	ReasonBulkAdjustment   MovementReason = "BULK_ADJUSTMENT"
	ReasonInitialStock     MovementReason = "INITIAL_STOCK"
)

// IsValid returns true if the reason is part of the closed enumeration
func (r MovementReason) IsValid() bool {
	switch r {
	case ReasonSale, ReasonSaleUpdate, ReasonSaleCancellation,
		ReasonManualAdjustment, ReasonBulkAdjustment, ReasonInitialStock:
		return true
	}
	return false
}

// String returns the string representation of MovementReason
func (r MovementReason) String() string {
	return string(r)
}

// StockMovement is an immutable ledger entry explaining one stock change.
// Rows are append-only: corrections are made with new compensating entries,
// never by updating or deleting existing ones. StockBefore and StockAfter are
// frozen at write time so the per-product history can be audited after the
// fact regardless of later movements.
type StockMovement struct {
	shared.BaseEntity
	ProductID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_stock_movement_product"`
	Direction    MovementDirection `gorm:"type:varchar(10);not null"`
	Quantity     decimal.Decimal   `gorm:"type:decimal(18,4);not null"` // Always positive, sign comes from Direction
	UnitPrice    decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	TotalCost    decimal.Decimal   `gorm:"type:decimal(18,4);not null"` // Quantity * UnitPrice
	Reason       MovementReason    `gorm:"type:varchar(30);not null;index"`
	Notes        string            `gorm:"type:varchar(500)"`
	StockBefore  decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	StockAfter   decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	SaleID       *uuid.UUID        `gorm:"type:uuid;index"` // Source sale, when the reason is sale-related
	SaleDetailID *uuid.UUID        `gorm:"type:uuid"`       // Source line item
	MovementDate time.Time         `gorm:"type:timestamptz;not null;index"`
	UserID       uuid.UUID         `gorm:"type:uuid;not null"` // Acting user
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement creates a new ledger entry.
// stockAfter must equal stockBefore + quantity for IN movements and
// stockBefore - quantity for OUT movements; a mismatch is an invariant
// violation, not an input error.
func NewStockMovement(
	productID uuid.UUID,
	direction MovementDirection,
	quantity decimal.Decimal,
	unitPrice decimal.Decimal,
	stockBefore decimal.Decimal,
	stockAfter decimal.Decimal,
	reason MovementReason,
	userID uuid.UUID,
) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewValidationError("INVALID_DIRECTION", "Invalid movement direction")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if !reason.IsValid() {
		return nil, shared.NewValidationError("INVALID_REASON", "Invalid movement reason")
	}
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_USER", "Acting user cannot be empty")
	}

	expected := stockBefore.Add(quantity)
	if direction == MovementOut {
		expected = stockBefore.Sub(quantity)
	}
	if !stockAfter.Equal(expected) {
		return nil, shared.NewInvariantViolation("STOCK_BALANCE_MISMATCH",
			"Stock after does not match stock before plus signed quantity")
	}

	return &StockMovement{
		BaseEntity:   shared.NewBaseEntity(),
		ProductID:    productID,
		Direction:    direction,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		TotalCost:    quantity.Mul(unitPrice),
		Reason:       reason,
		StockBefore:  stockBefore,
		StockAfter:   stockAfter,
		MovementDate: time.Now(),
		UserID:       userID,
	}, nil
}

// WithNotes sets the free-form notes for the movement
func (m *StockMovement) WithNotes(notes string) *StockMovement {
	m.Notes = notes
	return m
}

// WithSale links the movement to its source sale and line item
func (m *StockMovement) WithSale(saleID, saleDetailID uuid.UUID) *StockMovement {
	m.SaleID = &saleID
	m.SaleDetailID = &saleDetailID
	return m
}

// WithMovementDate overrides the movement date
func (m *StockMovement) WithMovementDate(date time.Time) *StockMovement {
	m.MovementDate = date
	return m
}

// SignedQuantity returns the quantity with sign based on direction
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	if m.Direction == MovementOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// IsReversalOf reports whether this movement restores exactly what the other
// one applied (opposite direction, same product and quantity).
func (m *StockMovement) IsReversalOf(other *StockMovement) bool {
	return m.ProductID == other.ProductID &&
		m.Direction != other.Direction &&
		m.Quantity.Equal(other.Quantity)
}
