package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/taller/backend/internal/domain/shared"
)

// CustomerRepository defines persistence operations for the Customer aggregate
type CustomerRepository interface {
	// FindByID finds a customer by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByDocumentID finds a customer by document number
	FindByDocumentID(ctx context.Context, documentID string) (*Customer, error)

	// FindAll finds customers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// ExistsByDocumentID checks if a document number is already registered
	ExistsByDocumentID(ctx context.Context, documentID string) (bool, error)

	// Count counts customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
