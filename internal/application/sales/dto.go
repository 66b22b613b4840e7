package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller/backend/internal/domain/sales"
)

// SaleItemRequest is one line item in a create or edit request
type SaleItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateSaleRequest is the request to create a sale
type CreateSaleRequest struct {
	CustomerID     uuid.UUID         `json:"customer_id" binding:"required"`
	SaleType       string            `json:"sale_type" binding:"required,oneof=CASH CREDIT"`
	AdvancePayment decimal.Decimal   `json:"advance_payment"`
	Items          []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// EditSaleRequest replaces the line items of a sale
type EditSaleRequest struct {
	Items []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CancelSaleRequest cancels a sale
type CancelSaleRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreditPaymentRequest applies a payment to a credit sale
type CreditPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Method string          `json:"method" binding:"required"`
	Notes  string          `json:"notes"`
}

// SaleListFilter filters the sale listing
type SaleListFilter struct {
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status"`
	SaleType   string     `form:"sale_type"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// SaleDetailResponse is one line item in a response
type SaleDetailResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// SaleResponse is the API representation of a sale
type SaleResponse struct {
	ID             uuid.UUID            `json:"id"`
	SaleNumber     string               `json:"sale_number"`
	CustomerID     uuid.UUID            `json:"customer_id"`
	SellerID       uuid.UUID            `json:"seller_id"`
	SaleType       string               `json:"sale_type"`
	Total          decimal.Decimal      `json:"total"`
	AdvancePayment decimal.Decimal      `json:"advance_payment"`
	PendingBalance decimal.Decimal      `json:"pending_balance"`
	Status         string               `json:"status"`
	Notes          string               `json:"notes,omitempty"`
	Details        []SaleDetailResponse `json:"details"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// ToSaleResponse converts a Sale aggregate to its API representation
func ToSaleResponse(sale *sales.Sale) SaleResponse {
	details := make([]SaleDetailResponse, 0, len(sale.Details))
	for _, d := range sale.Details {
		details = append(details, SaleDetailResponse{
			ID:         d.ID,
			ProductID:  d.ProductID,
			Quantity:   d.Quantity,
			UnitPrice:  d.UnitPrice,
			TotalPrice: d.TotalPrice,
		})
	}

	return SaleResponse{
		ID:             sale.ID,
		SaleNumber:     sale.SaleNumber,
		CustomerID:     sale.CustomerID,
		SellerID:       sale.SellerID,
		SaleType:       sale.SaleType.String(),
		Total:          sale.Total,
		AdvancePayment: sale.AdvancePayment,
		PendingBalance: sale.PendingBalance,
		Status:         sale.Status.String(),
		Notes:          sale.Notes,
		Details:        details,
		CreatedAt:      sale.CreatedAt,
		UpdatedAt:      sale.UpdatedAt,
	}
}

// toSaleLines converts request items to domain lines
func toSaleLines(items []SaleItemRequest) []sales.SaleLine {
	lines := make([]sales.SaleLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, sales.SaleLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return lines
}
