package workshop

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taller/backend/internal/domain/shared"
)

// RepairOrderRepository defines persistence operations for repair orders
type RepairOrderRepository interface {
	// FindByID finds a repair order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*RepairOrder, error)

	// FindByNumber finds a repair order by its unique order number
	FindByNumber(ctx context.Context, orderNumber string) (*RepairOrder, error)

	// FindAll finds repair orders matching the filter, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]RepairOrder, error)

	// FindByCustomer lists repair orders for a customer, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]RepairOrder, error)

	// Save creates or updates a repair order
	Save(ctx context.Context, order *RepairOrder) error

	// SaveWithLock updates a repair order with an optimistic version check
	SaveWithLock(ctx context.Context, order *RepairOrder) error

	// Count counts repair orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// QuoteRepository defines persistence operations for quotes
type QuoteRepository interface {
	// FindByID finds a quote with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Quote, error)

	// FindByNumber finds a quote by its unique quote number
	FindByNumber(ctx context.Context, quoteNumber string) (*Quote, error)

	// FindAll finds quotes matching the filter, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]Quote, error)

	// FindSentExpiredBefore lists sent quotes whose validity lapsed before the cutoff
	FindSentExpiredBefore(ctx context.Context, cutoff time.Time) ([]Quote, error)

	// Save creates or updates a quote with its items
	Save(ctx context.Context, quote *Quote) error

	// Count counts quotes matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
