package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller/backend/internal/domain/shared"
)

// StockMovementRepository defines persistence operations for the stock
// movement ledger. The ledger is append-only: there are no update or delete
// operations here on purpose.
type StockMovementRepository interface {
	// Save appends a single movement
	Save(ctx context.Context, movement *StockMovement) error

	// SaveAll appends a batch of movements
	SaveAll(ctx context.Context, movements []*StockMovement) error

	// FindByID finds a movement by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)

	// FindByProduct lists movements for a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]StockMovement, error)

	// FindBySale lists the movements linked to a sale, oldest first
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]StockMovement, error)

	// SumByProduct returns the signed sum of all movements for a product.
	// Used to audit the projection against the ledger.
	SumByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)

	// CountByProduct counts movements for a product
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}
