package sales

import (
	"context"

	"github.com/google/uuid"
	"github.com/taller/backend/internal/domain/shared"
)

// SaleRepository defines persistence operations for the Sale aggregate
type SaleRepository interface {
	// FindByID finds a sale with its details
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByIDForUpdate finds a sale with its details and takes a row-level
	// lock on the sale row. Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByNumber finds a sale by its unique sale number
	FindByNumber(ctx context.Context, saleNumber string) (*Sale, error)

	// FindAll finds sales matching the filter, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, error)

	// FindByCustomer lists sales for a customer, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]Sale, error)

	// Save creates or updates a sale with its details
	Save(ctx context.Context, sale *Sale) error

	// SaveWithLock updates a sale with an optimistic version check
	SaveWithLock(ctx context.Context, sale *Sale) error

	// ReplaceDetails deletes the stored line items of a sale and inserts the
	// given revision. Used on edit, inside the same transaction as the
	// compensating stock movements.
	ReplaceDetails(ctx context.Context, saleID uuid.UUID, details []SaleDetail) error

	// Count counts sales matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
