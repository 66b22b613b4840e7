package workshop

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller/backend/internal/domain/workshop"
)

// CreateRepairOrderRequest registers a device for repair
type CreateRepairOrderRequest struct {
	CustomerID        uuid.UUID       `json:"customer_id" binding:"required"`
	DeviceDescription string          `json:"device_description" binding:"required"`
	ReportedIssue     string          `json:"reported_issue" binding:"required"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	AdvancePayment    decimal.Decimal `json:"advance_payment"`
}

// DiagnoseRequest records the technician's diagnosis and the final cost
type DiagnoseRequest struct {
	Diagnosis string          `json:"diagnosis" binding:"required"`
	TotalCost decimal.Decimal `json:"total_cost" binding:"required"`
}

// TransitionRequest moves a repair order along its lifecycle
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderPaymentRequest applies a payment to a repair order
type OrderPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Method string          `json:"method" binding:"required"`
}

// RepairOrderResponse is the API representation of a repair order
type RepairOrderResponse struct {
	ID                uuid.UUID       `json:"id"`
	OrderNumber       string          `json:"order_number"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	TechnicianID      *uuid.UUID      `json:"technician_id,omitempty"`
	DeviceDescription string          `json:"device_description"`
	ReportedIssue     string          `json:"reported_issue"`
	Diagnosis         string          `json:"diagnosis,omitempty"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	AdvancePayment    decimal.Decimal `json:"advance_payment"`
	PendingBalance    decimal.Decimal `json:"pending_balance"`
	Status            string          `json:"status"`
	Notes             string          `json:"notes,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ToRepairOrderResponse converts a RepairOrder aggregate to its API representation
func ToRepairOrderResponse(order *workshop.RepairOrder) RepairOrderResponse {
	return RepairOrderResponse{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		CustomerID:        order.CustomerID,
		TechnicianID:      order.TechnicianID,
		DeviceDescription: order.DeviceDescription,
		ReportedIssue:     order.ReportedIssue,
		Diagnosis:         order.Diagnosis,
		TotalCost:         order.TotalCost,
		AdvancePayment:    order.AdvancePayment,
		PendingBalance:    order.PendingBalance,
		Status:            order.Status.String(),
		Notes:             order.Notes,
		CreatedAt:         order.CreatedAt,
	}
}

// QuoteLineRequest is one line on a quote
type QuoteLineRequest struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateQuoteRequest creates a draft quote
type CreateQuoteRequest struct {
	CustomerID uuid.UUID          `json:"customer_id" binding:"required"`
	ValidUntil time.Time          `json:"valid_until" binding:"required"`
	Lines      []QuoteLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// QuoteItemResponse is one line in a quote response
type QuoteItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// QuoteResponse is the API representation of a quote
type QuoteResponse struct {
	ID          uuid.UUID           `json:"id"`
	QuoteNumber string              `json:"quote_number"`
	CustomerID  uuid.UUID           `json:"customer_id"`
	Total       decimal.Decimal     `json:"total"`
	ValidUntil  time.Time           `json:"valid_until"`
	Status      string              `json:"status"`
	Items       []QuoteItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ToQuoteResponse converts a Quote aggregate to its API representation
func ToQuoteResponse(quote *workshop.Quote) QuoteResponse {
	items := make([]QuoteItemResponse, 0, len(quote.Items))
	for _, item := range quote.Items {
		items = append(items, QuoteItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return QuoteResponse{
		ID:          quote.ID,
		QuoteNumber: quote.QuoteNumber,
		CustomerID:  quote.CustomerID,
		Total:       quote.Total,
		ValidUntil:  quote.ValidUntil,
		Status:      quote.Status.String(),
		Items:       items,
		CreatedAt:   quote.CreatedAt,
	}
}

// ListFilter is the shared listing filter for workshop entities
type ListFilter struct {
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}
