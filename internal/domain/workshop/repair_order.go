package workshop

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller/backend/internal/domain/shared"
)

// RepairOrderStatus represents the workshop lifecycle of a repair order
type RepairOrderStatus string

const (
	RepairStatusReceived   RepairOrderStatus = "RECEIVED"
	RepairStatusInProgress RepairOrderStatus = "IN_PROGRESS"
	RepairStatusRepaired   RepairOrderStatus = "REPAIRED"
	RepairStatusDelivered  RepairOrderStatus = "DELIVERED"
	RepairStatusCancelled  RepairOrderStatus = "CANCELLED"
)

// IsValid returns true if the status is valid
func (s RepairOrderStatus) IsValid() bool {
	switch s {
	case RepairStatusReceived, RepairStatusInProgress, RepairStatusRepaired,
		RepairStatusDelivered, RepairStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of RepairOrderStatus
func (s RepairOrderStatus) String() string {
	return string(s)
}

// repairTransitions is the allowed forward path plus cancellation
var repairTransitions = map[RepairOrderStatus][]RepairOrderStatus{
	RepairStatusReceived:   {RepairStatusInProgress, RepairStatusCancelled},
	RepairStatusInProgress: {RepairStatusRepaired, RepairStatusCancelled},
	RepairStatusRepaired:   {RepairStatusDelivered, RepairStatusCancelled},
	RepairStatusDelivered:  {},
	RepairStatusCancelled:  {},
}

// RepairOrder is the aggregate root for device repairs. It shares the
// pending-balance derivation with Sale but never touches stock.
type RepairOrder struct {
	shared.BaseAggregateRoot
	OrderNumber       string            `gorm:"type:varchar(20);not null;uniqueIndex"`
	CustomerID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	TechnicianID      *uuid.UUID        `gorm:"type:uuid;index"`
	DeviceDescription string            `gorm:"type:varchar(300);not null"`
	ReportedIssue     string            `gorm:"type:varchar(1000);not null"`
	Diagnosis         string            `gorm:"type:varchar(1000)"`
	TotalCost         decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	AdvancePayment    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	PendingBalance    decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	Status            RepairOrderStatus `gorm:"type:varchar(20);not null;index"`
	Notes             string            `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (RepairOrder) TableName() string {
	return "repair_orders"
}

// NewRepairOrder creates a repair order in received status
func NewRepairOrder(
	orderNumber string,
	customerID uuid.UUID,
	deviceDescription string,
	reportedIssue string,
	totalCost decimal.Decimal,
	advancePayment decimal.Decimal,
	createdBy uuid.UUID,
) (*RepairOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewValidationError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer cannot be empty")
	}
	if deviceDescription == "" {
		return nil, shared.NewValidationError("INVALID_DEVICE", "Device description cannot be empty")
	}
	if reportedIssue == "" {
		return nil, shared.NewValidationError("INVALID_ISSUE", "Reported issue cannot be empty")
	}
	if totalCost.IsNegative() {
		return nil, shared.NewValidationError("INVALID_COST", "Total cost cannot be negative")
	}
	if advancePayment.IsNegative() {
		return nil, shared.NewValidationError("INVALID_ADVANCE", "Advance payment cannot be negative")
	}
	if advancePayment.GreaterThan(totalCost) {
		return nil, shared.NewValidationError("INVALID_ADVANCE", "Advance payment cannot exceed total cost")
	}

	return &RepairOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithCreator(createdBy),
		OrderNumber:       orderNumber,
		CustomerID:        customerID,
		DeviceDescription: deviceDescription,
		ReportedIssue:     reportedIssue,
		TotalCost:         totalCost,
		AdvancePayment:    advancePayment,
		PendingBalance:    totalCost.Sub(advancePayment),
		Status:            RepairStatusReceived,
	}, nil
}

// TransitionTo moves the order along the workshop lifecycle
func (o *RepairOrder) TransitionTo(status RepairOrderStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError("INVALID_STATUS", "Invalid repair order status")
	}
	for _, allowed := range repairTransitions[o.Status] {
		if allowed == status {
			o.Status = status
			o.UpdatedAt = time.Now()
			o.IncrementVersion()
			return nil
		}
	}
	return shared.NewBusinessRuleError("INVALID_TRANSITION",
		fmt.Sprintf("Cannot move repair order from %s to %s", o.Status, status))
}

// SetDiagnosis records the technician's diagnosis and optionally adjusts the
// cost quoted to the customer
func (o *RepairOrder) SetDiagnosis(diagnosis string, totalCost decimal.Decimal, technicianID uuid.UUID) error {
	if o.Status == RepairStatusDelivered || o.Status == RepairStatusCancelled {
		return shared.NewBusinessRuleError("ORDER_CLOSED", "Cannot diagnose a closed repair order")
	}
	if diagnosis == "" {
		return shared.NewValidationError("INVALID_DIAGNOSIS", "Diagnosis cannot be empty")
	}
	if totalCost.IsNegative() {
		return shared.NewValidationError("INVALID_COST", "Total cost cannot be negative")
	}
	if o.AdvancePayment.GreaterThan(totalCost) {
		return shared.NewValidationError("INVALID_COST", "Total cost cannot drop below payments received")
	}

	o.Diagnosis = diagnosis
	o.TotalCost = totalCost
	o.PendingBalance = totalCost.Sub(o.AdvancePayment)
	o.TechnicianID = &technicianID
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// RecordPayment applies a payment against the pending balance with the same
// bounds as sale credit payments: reject out-of-range amounts, never clamp.
func (o *RepairOrder) RecordPayment(amount decimal.Decimal, method string, actorID uuid.UUID) error {
	if o.Status == RepairStatusCancelled {
		return shared.NewBusinessRuleError("ORDER_CANCELLED", "Cannot record a payment on a cancelled order")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(o.PendingBalance) {
		return shared.NewValidationError("AMOUNT_EXCEEDS_BALANCE",
			fmt.Sprintf("Payment %s exceeds pending balance %s",
				amount.StringFixed(2), o.PendingBalance.StringFixed(2)))
	}

	o.AdvancePayment = o.AdvancePayment.Add(amount)
	o.PendingBalance = o.PendingBalance.Sub(amount)
	o.appendNote(fmt.Sprintf("payment %s via %s by %s", amount.StringFixed(2), method, actorID))
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// IsClosed returns true once the order reached a terminal status
func (o *RepairOrder) IsClosed() bool {
	return o.Status == RepairStatusDelivered || o.Status == RepairStatusCancelled
}

func (o *RepairOrder) appendNote(line string) {
	stamped := fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04:05"), line)
	if o.Notes == "" {
		o.Notes = stamped
		return
	}
	o.Notes += "\n" + stamped
}
