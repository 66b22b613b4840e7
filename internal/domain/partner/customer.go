package partner

import (
	"time"

	"github.com/taller/backend/internal/domain/shared"
)

// Customer is the aggregate root for the people the shop sells to and
// repairs devices for. Customers referenced by sales or orders are
// deactivated, never hard-deleted.
type Customer struct {
	shared.BaseAggregateRoot
	Name       string `gorm:"type:varchar(200);not null"`
	DocumentID string `gorm:"type:varchar(20);uniqueIndex"` // DNI or RUC
	Phone      string `gorm:"type:varchar(20)"`
	Email      string `gorm:"type:varchar(200)"`
	Address    string `gorm:"type:varchar(300)"`
	Active     bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates an active customer
func NewCustomer(name, documentID, phone, email, address string) (*Customer, error) {
	if name == "" {
		return nil, shared.NewValidationError("INVALID_NAME", "Customer name cannot be empty")
	}

	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		DocumentID:        documentID,
		Phone:             phone,
		Email:             email,
		Address:           address,
		Active:            true,
	}, nil
}

// Update updates the customer's contact information
func (c *Customer) Update(name, documentID, phone, email, address string) error {
	if name == "" {
		return shared.NewValidationError("INVALID_NAME", "Customer name cannot be empty")
	}
	c.Name = name
	c.DocumentID = documentID
	c.Phone = phone
	c.Email = email
	c.Address = address
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Deactivate marks the customer as inactive
func (c *Customer) Deactivate() {
	if !c.Active {
		return
	}
	c.Active = false
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Activate marks the customer as active
func (c *Customer) Activate() {
	if c.Active {
		return
	}
	c.Active = true
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}
