package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/taller/backend/internal/domain/shared"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "ACTIVE"
	ProductStatusInactive     ProductStatus = "INACTIVE"
	ProductStatusDiscontinued ProductStatus = "DISCONTINUED"
)

// IsValid checks if the status is a valid ProductStatus
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive, ProductStatusDiscontinued:
		return true
	}
	return false
}

// String returns the string representation of ProductStatus
func (s ProductStatus) String() string {
	return string(s)
}

// Product is the aggregate root for catalog items.
// CurrentStock is a projection of the stock movement ledger: it must equal the
// signed sum of all movements for the product. It is only mutated through the
// inventory ledger service, never written directly by other code paths.
type Product struct {
	shared.BaseAggregateRoot
	Name          string          `gorm:"type:varchar(200);not null"`
	Code          string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description   string          `gorm:"type:varchar(500)"`
	CurrentStock  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	MinimumStock  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Reorder threshold
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status        ProductStatus   `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product in active status with zero stock
func NewProduct(name, code string, purchasePrice, salePrice, minimumStock decimal.Decimal) (*Product, error) {
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Product name cannot be empty")
	}
	if code == "" {
		return nil, shared.NewValidationError("INVALID_CODE", "Product code cannot be empty")
	}
	if purchasePrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Purchase price cannot be negative")
	}
	if salePrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Sale price cannot be negative")
	}
	if minimumStock.IsNegative() {
		return nil, shared.NewValidationError("INVALID_MINIMUM_STOCK", "Minimum stock cannot be negative")
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Code:              code,
		CurrentStock:      decimal.Zero,
		MinimumStock:      minimumStock,
		PurchasePrice:     purchasePrice,
		SalePrice:         salePrice,
		Status:            ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// ApplyStockDelta moves the projection to the given post-movement value.
// Only the inventory ledger service may call this; it carries the invariant
// that stockAfter was derived from CurrentStock under the product row lock.
func (p *Product) ApplyStockDelta(stockAfter decimal.Decimal) {
	p.CurrentStock = stockAfter
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	if p.IsBelowMinimum() {
		p.AddDomainEvent(NewStockBelowMinimumEvent(p))
	}
}

// UpdateDetails updates the display fields of the product
func (p *Product) UpdateDetails(name, description string) error {
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Product name cannot be empty")
	}
	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// UpdatePrices updates purchase and sale prices
func (p *Product) UpdatePrices(purchasePrice, salePrice decimal.Decimal) error {
	if purchasePrice.IsNegative() || salePrice.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Prices cannot be negative")
	}
	p.PurchasePrice = purchasePrice
	p.SalePrice = salePrice
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetMinimumStock sets the reorder threshold
func (p *Product) SetMinimumStock(quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return shared.NewValidationError("INVALID_MINIMUM_STOCK", "Minimum stock cannot be negative")
	}
	p.MinimumStock = quantity
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// ChangeStatus transitions the product to the given status.
// Products referenced by sales or repair orders are never hard-deleted,
// they are deactivated or discontinued instead.
func (p *Product) ChangeStatus(status ProductStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("INVALID_STATUS", "Invalid product status")
	}
	if p.Status == status {
		return nil
	}
	old := p.Status
	p.Status = status
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStatusChangedEvent(p, old, status))
	return nil
}

// IsActive returns true if the product can be sold
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsBelowMinimum returns true if current stock is below the reorder threshold
func (p *Product) IsBelowMinimum() bool {
	return p.MinimumStock.GreaterThan(decimal.Zero) && p.CurrentStock.LessThan(p.MinimumStock)
}

// HasStock returns true if the projection can cover the requested quantity
func (p *Product) HasStock(quantity decimal.Decimal) bool {
	return p.CurrentStock.GreaterThanOrEqual(quantity)
}
