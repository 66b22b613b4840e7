package sales

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller/backend/internal/domain/shared"
)

// Event types for the sales context
const (
	EventTypeSaleCreated           = "sales.sale.created"
	EventTypeSaleUpdated           = "sales.sale.updated"
	EventTypeSaleCancelled         = "sales.sale.cancelled"
	EventTypeCreditPaymentRecorded = "sales.sale.credit_payment_recorded"
)

// SaleCreatedEvent is emitted when a sale is created
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleNumber string          `json:"sale_number"`
	CustomerID uuid.UUID       `json:"customer_id"`
	SaleType   SaleType        `json:"sale_type"`
	Total      decimal.Decimal `json:"total"`
	Status     SaleStatus      `json:"status"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(sale *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, "Sale", sale.ID),
		SaleNumber:      sale.SaleNumber,
		CustomerID:      sale.CustomerID,
		SaleType:        sale.SaleType,
		Total:           sale.Total,
		Status:          sale.Status,
	}
}

// SaleUpdatedEvent is emitted when the line items of a sale are replaced
type SaleUpdatedEvent struct {
	shared.BaseDomainEvent
	SaleNumber    string          `json:"sale_number"`
	PreviousTotal decimal.Decimal `json:"previous_total"`
	NewTotal      decimal.Decimal `json:"new_total"`
}

// NewSaleUpdatedEvent creates a new SaleUpdatedEvent
func NewSaleUpdatedEvent(sale *Sale, previousTotal decimal.Decimal) *SaleUpdatedEvent {
	return &SaleUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleUpdated, "Sale", sale.ID),
		SaleNumber:      sale.SaleNumber,
		PreviousTotal:   previousTotal,
		NewTotal:        sale.Total,
	}
}

// SaleCancelledEvent is emitted when a sale is cancelled
type SaleCancelledEvent struct {
	shared.BaseDomainEvent
	SaleNumber string    `json:"sale_number"`
	ActorID    uuid.UUID `json:"actor_id"`
	Reason     string    `json:"reason"`
}

// NewSaleCancelledEvent creates a new SaleCancelledEvent
func NewSaleCancelledEvent(sale *Sale, actorID uuid.UUID, reason string) *SaleCancelledEvent {
	return &SaleCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCancelled, "Sale", sale.ID),
		SaleNumber:      sale.SaleNumber,
		ActorID:         actorID,
		Reason:          reason,
	}
}

// CreditPaymentRecordedEvent is emitted when a payment is applied to a credit sale
type CreditPaymentRecordedEvent struct {
	shared.BaseDomainEvent
	SaleNumber     string          `json:"sale_number"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	PendingBalance decimal.Decimal `json:"pending_balance"`
	Status         SaleStatus      `json:"status"`
}

// NewCreditPaymentRecordedEvent creates a new CreditPaymentRecordedEvent
func NewCreditPaymentRecordedEvent(sale *Sale, amount decimal.Decimal, method string) *CreditPaymentRecordedEvent {
	return &CreditPaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditPaymentRecorded, "Sale", sale.ID),
		SaleNumber:      sale.SaleNumber,
		Amount:          amount,
		Method:          method,
		PendingBalance:  sale.PendingBalance,
		Status:          sale.Status,
	}
}
