package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller/backend/internal/domain/shared"
)

// SaleType represents how the sale is paid
type SaleType string

const (
	// SaleTypeCash is paid in full at creation
	SaleTypeCash SaleType = "CASH"
	// SaleTypeCredit carries a pending balance settled by later payments
	SaleTypeCredit SaleType = "CREDIT"
)

// IsValid returns true if the sale type is valid
func (t SaleType) IsValid() bool {
	return t == SaleTypeCash || t == SaleTypeCredit
}

// String returns the string representation of SaleType
func (t SaleType) String() string {
	return string(t)
}

// SaleStatus represents the lifecycle status of a sale
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusPaid      SaleStatus = "PAID"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// IsValid returns true if the status is valid
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusPending, SaleStatusPaid, SaleStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// SaleDetail is a line item owned by its sale. On edit the previous details
// are replaced by a new revision; the stock history survives in the movement
// ledger, not here.
type SaleDetail struct {
	shared.BaseEntity
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (SaleDetail) TableName() string {
	return "sale_details"
}

// SaleLine is the input for one line item
type SaleLine struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// Sale is the aggregate root for the sale lifecycle.
// Status machine: PENDING <-> PAID -> CANCELLED. Cancelled is terminal.
// For cash sales the pending balance is always zero and the sale is paid at
// creation; for credit sales pending balance = total - advance payment.
type Sale struct {
	shared.BaseAggregateRoot
	SaleNumber     string          `gorm:"type:varchar(20);not null;uniqueIndex"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleType       SaleType        `gorm:"type:varchar(10);not null"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AdvancePayment decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PendingBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status         SaleStatus      `gorm:"type:varchar(20);not null;index"`
	Notes          string          `gorm:"type:text"`
	Details        []SaleDetail    `gorm:"foreignKey:SaleID"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a sale with its line items and derives total, pending
// balance and status from the sale type.
func NewSale(
	saleNumber string,
	customerID uuid.UUID,
	sellerID uuid.UUID,
	saleType SaleType,
	lines []SaleLine,
	advancePayment decimal.Decimal,
	createdBy uuid.UUID,
) (*Sale, error) {
	if saleNumber == "" {
		return nil, shared.NewValidationError("INVALID_SALE_NUMBER", "Sale number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer cannot be empty")
	}
	if sellerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_SELLER", "Seller cannot be empty")
	}
	if !saleType.IsValid() {
		return nil, shared.NewValidationError("INVALID_SALE_TYPE", "Invalid sale type")
	}
	if advancePayment.IsNegative() {
		return nil, shared.NewValidationError("INVALID_ADVANCE", "Advance payment cannot be negative")
	}

	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithCreator(createdBy),
		SaleNumber:        saleNumber,
		CustomerID:        customerID,
		SellerID:          sellerID,
		SaleType:          saleType,
	}

	if err := sale.setDetails(lines); err != nil {
		return nil, err
	}
	if err := sale.derivePayment(advancePayment); err != nil {
		return nil, err
	}

	sale.AddDomainEvent(NewSaleCreatedEvent(sale))
	return sale, nil
}

// setDetails builds the line items and recomputes the total
func (s *Sale) setDetails(lines []SaleLine) error {
	if len(lines) == 0 {
		return shared.NewValidationError("EMPTY_SALE", "Sale must have at least one line item")
	}

	details := make([]SaleDetail, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return shared.NewValidationError("INVALID_PRODUCT", "Line item product cannot be empty")
		}
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewValidationError("INVALID_QUANTITY", "Line item quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return shared.NewValidationError("INVALID_PRICE", "Line item unit price cannot be negative")
		}

		detail := SaleDetail{
			BaseEntity: shared.NewBaseEntity(),
			SaleID:     s.ID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.Quantity.Mul(line.UnitPrice),
		}
		total = total.Add(detail.TotalPrice)
		details = append(details, detail)
	}

	s.Details = details
	s.Total = total
	return nil
}

// derivePayment sets advance, pending balance and status from the sale type
func (s *Sale) derivePayment(advancePayment decimal.Decimal) error {
	switch s.SaleType {
	case SaleTypeCash:
		// Cash sales are settled in full at creation regardless of input
		s.AdvancePayment = s.Total
		s.PendingBalance = decimal.Zero
		s.Status = SaleStatusPaid
	case SaleTypeCredit:
		if advancePayment.GreaterThan(s.Total) {
			return shared.NewValidationError("INVALID_ADVANCE",
				"Advance payment cannot exceed the sale total")
		}
		s.AdvancePayment = advancePayment
		s.PendingBalance = s.Total.Sub(advancePayment)
		if s.PendingBalance.LessThanOrEqual(decimal.Zero) {
			s.Status = SaleStatusPaid
		} else {
			s.Status = SaleStatusPending
		}
	}
	return nil
}

// ReplaceDetails swaps the line items for a new revision and re-derives the
// totals and status. The previous details are returned so the caller can
// append the compensating ledger movements for them. Only allowed while the
// sale is not cancelled; the same-day window is checked by the caller before
// the transaction opens.
func (s *Sale) ReplaceDetails(lines []SaleLine, actorID uuid.UUID) ([]SaleDetail, error) {
	if s.Status == SaleStatusCancelled {
		return nil, shared.NewBusinessRuleError("SALE_CANCELLED", "Cannot edit a cancelled sale")
	}

	previous := s.Details
	previousTotal := s.Total

	if err := s.setDetails(lines); err != nil {
		s.Details = previous
		s.Total = previousTotal
		return nil, err
	}
	if err := s.derivePayment(s.AdvancePayment); err != nil {
		s.Details = previous
		s.Total = previousTotal
		return nil, err
	}

	s.appendNote(fmt.Sprintf("edited by %s: total %s -> %s",
		actorID, previousTotal.StringFixed(2), s.Total.StringFixed(2)))
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	s.AddDomainEvent(NewSaleUpdatedEvent(s, previousTotal))

	return previous, nil
}

// Cancel marks the sale as cancelled and records who did it and why.
// Stock restoration happens in the ledger, driven by the caller; the
// original movements are never touched.
func (s *Sale) Cancel(actorID uuid.UUID, reason string) error {
	if s.Status == SaleStatusCancelled {
		return shared.NewBusinessRuleError("ALREADY_CANCELLED", "Sale is already cancelled")
	}
	if reason == "" {
		return shared.NewValidationError("INVALID_REASON", "Cancellation reason cannot be empty")
	}

	s.Status = SaleStatusCancelled
	s.appendNote(fmt.Sprintf("cancelled by %s: %s", actorID, reason))
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	s.AddDomainEvent(NewSaleCancelledEvent(s, actorID, reason))
	return nil
}

// RecordCreditPayment applies a payment against the pending balance.
// The amount must satisfy 0 < amount <= pending balance; anything else is
// rejected outright, never clamped.
func (s *Sale) RecordCreditPayment(amount decimal.Decimal, method, notes string, actorID uuid.UUID) error {
	if s.SaleType != SaleTypeCredit {
		return shared.NewBusinessRuleError("NOT_CREDIT_SALE", "Payments only apply to credit sales")
	}
	if s.Status == SaleStatusCancelled {
		return shared.NewBusinessRuleError("SALE_CANCELLED", "Cannot record a payment on a cancelled sale")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(s.PendingBalance) {
		return shared.NewValidationError("AMOUNT_EXCEEDS_BALANCE",
			fmt.Sprintf("Payment %s exceeds pending balance %s",
				amount.StringFixed(2), s.PendingBalance.StringFixed(2)))
	}

	s.AdvancePayment = s.AdvancePayment.Add(amount)
	s.PendingBalance = s.PendingBalance.Sub(amount)
	if s.PendingBalance.LessThanOrEqual(decimal.Zero) {
		s.Status = SaleStatusPaid
	}

	line := fmt.Sprintf("payment %s via %s by %s", amount.StringFixed(2), method, actorID)
	if notes != "" {
		line += ": " + notes
	}
	s.appendNote(line)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	s.AddDomainEvent(NewCreditPaymentRecordedEvent(s, amount, method))
	return nil
}

// IsSameDay reports whether the sale was created on the same calendar day as
// the given time, in that time's location. Edits and cancellations are only
// allowed inside this window.
func (s *Sale) IsSameDay(now time.Time) bool {
	created := s.CreatedAt.In(now.Location())
	return created.Year() == now.Year() &&
		created.Month() == now.Month() &&
		created.Day() == now.Day()
}

// IsCancelled returns true if the sale is cancelled
func (s *Sale) IsCancelled() bool {
	return s.Status == SaleStatusCancelled
}

// appendNote adds one timestamped audit line to the notes
func (s *Sale) appendNote(line string) {
	stamped := fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04:05"), line)
	if s.Notes == "" {
		s.Notes = stamped
		return
	}
	s.Notes += "\n" + stamped
}
