package catalog

import (
	"github.com/shopspring/decimal"
	"github.com/taller/backend/internal/domain/shared"
)

// Event types for the catalog context
const (
	EventTypeProductCreated       = "catalog.product.created"
	EventTypeProductStatusChanged = "catalog.product.status_changed"
	EventTypeStockBelowMinimum    = "catalog.product.stock_below_minimum"
)

// ProductCreatedEvent is emitted when a product is created
type ProductCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewProductCreatedEvent creates a new ProductCreatedEvent
func NewProductCreatedEvent(product *Product) *ProductCreatedEvent {
	return &ProductCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductCreated, "Product", product.ID),
		Code:            product.Code,
		Name:            product.Name,
	}
}

// ProductStatusChangedEvent is emitted when a product changes status
type ProductStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus ProductStatus `json:"old_status"`
	NewStatus ProductStatus `json:"new_status"`
}

// NewProductStatusChangedEvent creates a new ProductStatusChangedEvent
func NewProductStatusChangedEvent(product *Product, old, new ProductStatus) *ProductStatusChangedEvent {
	return &ProductStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProductStatusChanged, "Product", product.ID),
		OldStatus:       old,
		NewStatus:       new,
	}
}

// StockBelowMinimumEvent is emitted when the projection drops below the reorder threshold
type StockBelowMinimumEvent struct {
	shared.BaseDomainEvent
	Code         string          `json:"code"`
	CurrentStock decimal.Decimal `json:"current_stock"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
}

// NewStockBelowMinimumEvent creates a new StockBelowMinimumEvent
func NewStockBelowMinimumEvent(product *Product) *StockBelowMinimumEvent {
	return &StockBelowMinimumEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowMinimum, "Product", product.ID),
		Code:            product.Code,
		CurrentStock:    product.CurrentStock,
		MinimumStock:    product.MinimumStock,
	}
}
