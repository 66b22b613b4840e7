package workshop

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller/backend/internal/domain/shared"
)

// QuoteStatus represents the lifecycle of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "DRAFT"
	QuoteStatusSent     QuoteStatus = "SENT"
	QuoteStatusApproved QuoteStatus = "APPROVED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
	QuoteStatusExpired  QuoteStatus = "EXPIRED"
)

// IsValid returns true if the status is valid
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusApproved,
		QuoteStatusRejected, QuoteStatusExpired:
		return true
	}
	return false
}

// String returns the string representation of QuoteStatus
func (s QuoteStatus) String() string {
	return string(s)
}

// QuoteItem is a priced line on a quote. Quotes never touch stock.
type QuoteItem struct {
	shared.BaseEntity
	QuoteID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(300);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (QuoteItem) TableName() string {
	return "quote_items"
}

// QuoteLine is the input for one quote line
type QuoteLine struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// Quote is the aggregate root for customer quotes.
// Lifecycle: DRAFT -> SENT -> APPROVED | REJECTED | EXPIRED.
type Quote struct {
	shared.BaseAggregateRoot
	QuoteNumber string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ValidUntil  time.Time       `gorm:"type:timestamptz;not null"`
	Status      QuoteStatus     `gorm:"type:varchar(20);not null;index"`
	Notes       string          `gorm:"type:text"`
	Items       []QuoteItem     `gorm:"foreignKey:QuoteID"`
}

// TableName returns the table name for GORM
func (Quote) TableName() string {
	return "quotes"
}

// NewQuote creates a draft quote with its line items
func NewQuote(
	quoteNumber string,
	customerID uuid.UUID,
	lines []QuoteLine,
	validUntil time.Time,
	createdBy uuid.UUID,
) (*Quote, error) {
	if quoteNumber == "" {
		return nil, shared.NewValidationError("INVALID_QUOTE_NUMBER", "Quote number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("EMPTY_QUOTE", "Quote must have at least one line item")
	}
	if validUntil.Before(time.Now()) {
		return nil, shared.NewValidationError("INVALID_VALIDITY", "Valid-until date must be in the future")
	}

	quote := &Quote{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithCreator(createdBy),
		QuoteNumber:       quoteNumber,
		CustomerID:        customerID,
		ValidUntil:        validUntil,
		Status:            QuoteStatusDraft,
	}

	total := decimal.Zero
	for _, line := range lines {
		if line.Description == "" {
			return nil, shared.NewValidationError("INVALID_DESCRIPTION", "Quote line description cannot be empty")
		}
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewValidationError("INVALID_QUANTITY", "Quote line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return nil, shared.NewValidationError("INVALID_PRICE", "Quote line unit price cannot be negative")
		}
		item := QuoteItem{
			BaseEntity:  shared.NewBaseEntity(),
			QuoteID:     quote.ID,
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TotalPrice:  line.Quantity.Mul(line.UnitPrice),
		}
		total = total.Add(item.TotalPrice)
		quote.Items = append(quote.Items, item)
	}
	quote.Total = total

	return quote, nil
}

// Send marks the quote as sent to the customer
func (q *Quote) Send() error {
	if q.Status != QuoteStatusDraft {
		return shared.NewBusinessRuleError("INVALID_TRANSITION",
			fmt.Sprintf("Only draft quotes can be sent, current status is %s", q.Status))
	}
	q.Status = QuoteStatusSent
	q.UpdatedAt = time.Now()
	q.IncrementVersion()
	return nil
}

// Approve marks a sent quote as approved by the customer
func (q *Quote) Approve() error {
	return q.resolve(QuoteStatusApproved)
}

// Reject marks a sent quote as rejected by the customer
func (q *Quote) Reject() error {
	return q.resolve(QuoteStatusRejected)
}

func (q *Quote) resolve(status QuoteStatus) error {
	if q.Status != QuoteStatusSent {
		return shared.NewBusinessRuleError("INVALID_TRANSITION",
			fmt.Sprintf("Only sent quotes can be resolved, current status is %s", q.Status))
	}
	if q.IsExpired(time.Now()) {
		q.Status = QuoteStatusExpired
		return shared.NewBusinessRuleError("QUOTE_EXPIRED", "Quote validity has lapsed")
	}
	q.Status = status
	q.UpdatedAt = time.Now()
	q.IncrementVersion()
	return nil
}

// MarkExpired flips a sent quote past its validity date to expired
func (q *Quote) MarkExpired(now time.Time) bool {
	if q.Status == QuoteStatusSent && q.IsExpired(now) {
		q.Status = QuoteStatusExpired
		q.UpdatedAt = now
		q.IncrementVersion()
		return true
	}
	return false
}

// IsExpired reports whether the validity window has lapsed
func (q *Quote) IsExpired(now time.Time) bool {
	return now.After(q.ValidUntil)
}
