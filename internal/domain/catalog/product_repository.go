package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/taller/backend/internal/domain/shared"
)

// ProductRepository defines persistence operations for the Product aggregate
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate finds a product and takes a row-level lock on it.
	// Must be called inside a transaction; the lock is held until commit or
	// rollback, serializing concurrent stock mutations of the same product.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by its unique code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// FindAll finds products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindBelowMinimum finds products whose stock is below the reorder threshold
	FindBelowMinimum(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// SaveWithLock updates a product with an optimistic version check
	SaveWithLock(ctx context.Context, product *Product) error

	// ExistsByCode checks if a product code is already taken
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// Count counts products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
