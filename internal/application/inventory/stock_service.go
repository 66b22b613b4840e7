package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/taller/backend/internal/domain/catalog"
	"github.com/taller/backend/internal/domain/inventory"
	"github.com/taller/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockService handles manual and bulk stock adjustments and the movement
// history. Sale-driven movements live in the sales service; this one covers
// everything a warehouse operator does by hand.
type StockService struct {
	scope          TransactionScope
	movementRepo   inventory.StockMovementRepository
	ledger         *inventory.StockLedger
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	scope TransactionScope,
	movementRepo inventory.StockMovementRepository,
	ledger *inventory.StockLedger,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		scope:        scope,
		movementRepo: movementRepo,
		ledger:       ledger,
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher for events raised by adjustments,
// such as a product dropping below its reorder threshold
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Adjust applies one manual adjustment: add, subtract or set-to-target.
// A set that matches the current projection writes no movement.
func (s *StockService) Adjust(ctx context.Context, actorID uuid.UUID, req AdjustStockRequest) (*AdjustStockResponse, error) {
	var (
		response AdjustStockResponse
		product  *catalog.Product
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByIDForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}

		unitPrice := req.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = product.PurchasePrice
		}

		var result *inventory.RecordResult
		switch AdjustmentMode(req.Mode) {
		case AdjustAdd:
			result, err = s.ledger.Add(product, req.Quantity, unitPrice,
				inventory.ReasonManualAdjustment, actorID)
		case AdjustSubtract:
			result, err = s.ledger.Subtract(product, req.Quantity, unitPrice,
				inventory.ReasonManualAdjustment, actorID)
		case AdjustSet:
			result, err = s.ledger.SetTo(product, req.Quantity, unitPrice,
				inventory.ReasonManualAdjustment, actorID)
		default:
			return shared.NewValidationError("INVALID_MODE", "Unknown adjustment mode")
		}
		if err != nil {
			return err
		}

		if result == nil {
			// Set to the current value: nothing to record
			response = AdjustStockResponse{StockAfter: product.CurrentStock}
			return nil
		}

		if req.Notes != "" {
			result.Movement.WithNotes(req.Notes)
		}
		if result.Oversold {
			s.logger.Warn("stock went negative on manual adjustment",
				zap.String("product_code", product.Code),
				zap.String("stock_after", result.StockAfter.String()))
		}

		if err := repos.MovementRepo().Save(ctx, result.Movement); err != nil {
			return err
		}
		if err := repos.ProductRepo().SaveWithLock(ctx, product); err != nil {
			return err
		}

		movement := ToMovementResponse(result.Movement)
		response = AdjustStockResponse{
			Movement:   &movement,
			StockAfter: result.StockAfter,
			Oversold:   result.Oversold,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)
	return &response, nil
}

// BulkAdjust sets absolute stock levels for many products in one
// transaction. Products already at their target write no movement; the whole
// batch commits or rolls back together.
func (s *StockService) BulkAdjust(ctx context.Context, actorID uuid.UUID, req BulkAdjustRequest) ([]AdjustStockResponse, error) {
	var (
		responses []AdjustStockResponse
		touched   []*catalog.Product
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		responses = responses[:0]
		touched = touched[:0]
		for _, item := range req.Items {
			product, err := repos.ProductRepo().FindByIDForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			touched = append(touched, product)

			result, err := s.ledger.SetTo(product, item.Target, product.PurchasePrice,
				inventory.ReasonBulkAdjustment, actorID)
			if err != nil {
				return err
			}
			if result == nil {
				responses = append(responses, AdjustStockResponse{StockAfter: product.CurrentStock})
				continue
			}

			if req.Notes != "" {
				result.Movement.WithNotes(req.Notes)
			}
			if err := repos.MovementRepo().Save(ctx, result.Movement); err != nil {
				return err
			}
			if err := repos.ProductRepo().SaveWithLock(ctx, product); err != nil {
				return err
			}

			movement := ToMovementResponse(result.Movement)
			responses = append(responses, AdjustStockResponse{
				Movement:   &movement,
				StockAfter: result.StockAfter,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, touched...)
	return responses, nil
}

// publishEvents drains the pending events of the adjusted products after the
// transaction commits
func (s *StockService) publishEvents(ctx context.Context, products ...*catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	var events []shared.DomainEvent
	for _, product := range products {
		events = append(events, product.GetDomainEvents()...)
	}
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish stock events", zap.Error(err))
	}
	for _, product := range products {
		product.ClearDomainEvents()
	}
}

// History lists the movement ledger for a product, newest first
func (s *StockService) History(ctx context.Context, productID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	movements, err := s.movementRepo.FindByProduct(ctx, productID, shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "movement_date",
		OrderDir: "desc",
	})
	if err != nil {
		return nil, 0, err
	}

	total, err := s.movementRepo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		responses = append(responses, ToMovementResponse(&movements[i]))
	}
	return responses, total, nil
}

// Audit compares a product's projection against the signed sum of its
// ledger. A mismatch is an invariant violation: it is reported, never
// silently corrected.
func (s *StockService) Audit(ctx context.Context, productID uuid.UUID) error {
	var projection, ledgerSum decimal.Decimal

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}
		sum, err := repos.MovementRepo().SumByProduct(ctx, productID)
		if err != nil {
			return err
		}
		projection = product.CurrentStock
		ledgerSum = sum
		return nil
	})
	if err != nil {
		return err
	}

	if !projection.Equal(ledgerSum) {
		s.logger.Error("stock projection diverged from ledger",
			zap.String("product_id", productID.String()),
			zap.String("projection", projection.String()),
			zap.String("ledger_sum", ledgerSum.String()))
		return shared.NewInvariantViolation("PROJECTION_LEDGER_MISMATCH",
			"Product stock projection does not match the movement ledger")
	}
	return nil
}
