package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller/backend/internal/domain/catalog"
)

// CreateProductRequest creates a product, optionally with opening stock
type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Code          string          `json:"code" binding:"required"`
	Description   string          `json:"description"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	MinimumStock  decimal.Decimal `json:"minimum_stock"`
	InitialStock  decimal.Decimal `json:"initial_stock"`
}

// UpdateProductRequest updates product details and prices
type UpdateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	MinimumStock  decimal.Decimal `json:"minimum_stock"`
}

// ChangeProductStatusRequest flips the product status
type ChangeProductStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE INACTIVE DISCONTINUED"`
}

// ProductListFilter filters the product listing
type ProductListFilter struct {
	Search       string `form:"search"`
	Status       string `form:"status"`
	BelowMinimum bool   `form:"below_minimum"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

// ProductResponse is the API representation of a product
type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Code          string          `json:"code"`
	Description   string          `json:"description,omitempty"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	MinimumStock  decimal.Decimal `json:"minimum_stock"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Status        string          `json:"status"`
	BelowMinimum  bool            `json:"below_minimum"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToProductResponse converts a Product aggregate to its API representation
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:            product.ID,
		Name:          product.Name,
		Code:          product.Code,
		Description:   product.Description,
		CurrentStock:  product.CurrentStock,
		MinimumStock:  product.MinimumStock,
		PurchasePrice: product.PurchasePrice,
		SalePrice:     product.SalePrice,
		Status:        product.Status.String(),
		BelowMinimum:  product.IsBelowMinimum(),
		CreatedAt:     product.CreatedAt,
		UpdatedAt:     product.UpdatedAt,
	}
}
