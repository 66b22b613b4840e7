package catalog

import (
	"context"

	"github.com/google/uuid"
	appinventory "github.com/taller/backend/internal/application/inventory"
	"github.com/taller/backend/internal/domain/catalog"
	"github.com/taller/backend/internal/domain/inventory"
	"github.com/taller/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product catalog operations. Opening stock goes
// through the ledger like every other stock change, so a freshly created
// product already has a verifiable movement history.
type ProductService struct {
	scope          appinventory.TransactionScope
	productRepo    catalog.ProductRepository
	ledger         *inventory.StockLedger
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	scope appinventory.TransactionScope,
	productRepo catalog.ProductRepository,
	ledger *inventory.StockLedger,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		scope:       scope,
		productRepo: productRepo,
		ledger:      ledger,
		logger:      logger,
	}
}

// SetEventPublisher sets the publisher for catalog lifecycle events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a product. When initial stock is given, the product row and
// its initial_stock movement are written in the same transaction.
func (s *ProductService) Create(ctx context.Context, actorID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewConflictError("CODE_TAKEN", "Product code is already in use")
	}

	product, err := catalog.NewProduct(req.Name, req.Code, req.PurchasePrice,
		req.SalePrice, req.MinimumStock)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description
	product.SetCreatedBy(actorID)

	if req.InitialStock.IsNegative() {
		return nil, shared.NewValidationError("INVALID_INITIAL_STOCK", "Initial stock cannot be negative")
	}

	err = s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return err
		}
		if req.InitialStock.IsZero() {
			return nil
		}

		result, err := s.ledger.Add(product, req.InitialStock, req.PurchasePrice,
			inventory.ReasonInitialStock, actorID)
		if err != nil {
			return err
		}
		if err := repos.MovementRepo().Save(ctx, result.Movement); err != nil {
			return err
		}
		return repos.ProductRepo().SaveWithLock(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)
	response := ToProductResponse(product)
	return &response, nil
}

// Update updates product details, prices and the reorder threshold
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.UpdateDetails(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := product.UpdatePrices(req.PurchasePrice, req.SalePrice); err != nil {
		return nil, err
	}
	if err := product.SetMinimumStock(req.MinimumStock); err != nil {
		return nil, err
	}

	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// ChangeStatus flips the product status. Products are never hard-deleted.
func (s *ProductService) ChangeStatus(ctx context.Context, productID uuid.UUID, req ChangeProductStatusRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := product.ChangeStatus(catalog.ProductStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product)
	response := ToProductResponse(product)
	return &response, nil
}

// publishEvents drains the product's pending events after its changes are
// persisted
func (s *ProductService) publishEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish product events",
			zap.String("product_code", product.Code), zap.Error(err))
	}
	product.ClearDomainEvents()
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetByCode retrieves a product by its unique code
func (s *ProductService) GetByCode(ctx context.Context, code string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	var (
		products []catalog.Product
		err      error
	)
	if filter.BelowMinimum {
		products, err = s.productRepo.FindBelowMinimum(ctx, domainFilter)
	} else {
		products, err = s.productRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, ToProductResponse(&products[i]))
	}
	return responses, total, nil
}
