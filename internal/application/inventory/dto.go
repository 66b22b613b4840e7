package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller/backend/internal/domain/inventory"
)

// AdjustmentMode selects how the quantity is applied
type AdjustmentMode string

const (
	AdjustAdd      AdjustmentMode = "add"
	AdjustSubtract AdjustmentMode = "subtract"
	AdjustSet      AdjustmentMode = "set"
)

// AdjustStockRequest is a manual stock adjustment for one product
type AdjustStockRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Mode      string          `json:"mode" binding:"required,oneof=add subtract set"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     string          `json:"notes"`
}

// BulkAdjustItem is one product in a bulk adjustment
type BulkAdjustItem struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Target    decimal.Decimal `json:"target" binding:"required"`
}

// BulkAdjustRequest sets absolute stock levels for many products at once,
// e.g. after a physical inventory count
type BulkAdjustRequest struct {
	Items []BulkAdjustItem `json:"items" binding:"required,min=1,dive"`
	Notes string           `json:"notes"`
}

// MovementListFilter filters the movement history listing
type MovementListFilter struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// MovementResponse is the API representation of a ledger entry
type MovementResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Direction    string          `json:"direction"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	Reason       string          `json:"reason"`
	Notes        string          `json:"notes,omitempty"`
	StockBefore  decimal.Decimal `json:"stock_before"`
	StockAfter   decimal.Decimal `json:"stock_after"`
	SaleID       *uuid.UUID      `json:"sale_id,omitempty"`
	MovementDate time.Time       `json:"movement_date"`
	UserID       uuid.UUID       `json:"user_id"`
}

// AdjustStockResponse reports the outcome of one adjustment
type AdjustStockResponse struct {
	Movement   *MovementResponse `json:"movement,omitempty"` // nil when the adjustment was a no-op
	StockAfter decimal.Decimal   `json:"stock_after"`
	Oversold   bool              `json:"oversold"`
}

// ToMovementResponse converts a ledger entry to its API representation
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:           m.ID,
		ProductID:    m.ProductID,
		Direction:    m.Direction.String(),
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		TotalCost:    m.TotalCost,
		Reason:       m.Reason.String(),
		Notes:        m.Notes,
		StockBefore:  m.StockBefore,
		StockAfter:   m.StockAfter,
		SaleID:       m.SaleID,
		MovementDate: m.MovementDate,
		UserID:       m.UserID,
	}
}
