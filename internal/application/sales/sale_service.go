package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taller/backend/internal/domain/catalog"
	"github.com/taller/backend/internal/domain/inventory"
	"github.com/taller/backend/internal/domain/notification"
	"github.com/taller/backend/internal/domain/numbering"
	"github.com/taller/backend/internal/domain/partner"
	"github.com/taller/backend/internal/domain/sales"
	"github.com/taller/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SaleService drives the sale lifecycle: create, edit, cancel, credit
// payment. Every write runs inside one transaction scope so the sale, its
// details, the stock movements and the projection updates commit or roll
// back together. The same-day window and capability checks happen before
// the transaction opens, to fail fast without touching the database.
type SaleService struct {
	scope          TransactionScope
	saleRepo       sales.SaleRepository
	customerRepo   partner.CustomerRepository
	numbers        *numbering.Service
	ledger         *inventory.StockLedger
	capabilities   CapabilityChecker
	queue          notification.Queue
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewSaleService creates a new SaleService
func NewSaleService(
	scope TransactionScope,
	saleRepo sales.SaleRepository,
	customerRepo partner.CustomerRepository,
	numbers *numbering.Service,
	ledger *inventory.StockLedger,
	capabilities CapabilityChecker,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		scope:        scope,
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		numbers:      numbers,
		ledger:       ledger,
		capabilities: capabilities,
		logger:       logger,
		now:          time.Now,
	}
}

// SetNotificationQueue sets the queue used to enqueue fire-and-forget
// notification jobs after successful creates
func (s *SaleService) SetNotificationQueue(queue notification.Queue) {
	s.queue = queue
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a sale with its line items, records one out movement per
// line and updates the stock projections, all in one transaction. The sale
// number is issued before the transaction opens; the numbering counter is
// serialized on its own row lock, so the number is unique either way.
func (s *SaleService) Create(ctx context.Context, sellerID uuid.UUID, req CreateSaleRequest) (*SaleResponse, error) {
	if err := s.require(ctx, sellerID, CapabilityCreateSale); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.Active {
		return nil, shared.NewBusinessRuleError("INACTIVE_CUSTOMER", "Customer is inactive")
	}

	saleNumber, err := s.numbers.NextSaleNumber(ctx)
	if err != nil {
		return nil, err
	}

	sale, err := sales.NewSale(saleNumber, req.CustomerID, sellerID,
		sales.SaleType(req.SaleType), toSaleLines(req.Items), req.AdvancePayment, sellerID)
	if err != nil {
		return nil, err
	}

	var touched []*catalog.Product
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		touched = touched[:0]
		for i := range sale.Details {
			detail := &sale.Details[i]
			product, err := s.recordSaleMovement(ctx, repos, sale, detail,
				inventory.MovementOut, inventory.ReasonSale, sellerID, "")
			if err != nil {
				return err
			}
			touched = append(touched, product)
		}
		return repos.SaleRepo().Save(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sale, touched...)
	s.notify(ctx, sale, customer)

	response := ToSaleResponse(sale)
	return &response, nil
}

// Edit replaces the line items of a same-day sale. The reversal is explicit
// at the ledger level: one in movement per old detail and one out movement
// per new detail, both with the sale_update reason, in the same transaction
// as the detail swap. The projection is never mutated without a movement.
func (s *SaleService) Edit(ctx context.Context, saleID, actorID uuid.UUID, req EditSaleRequest) (*SaleResponse, error) {
	if err := s.require(ctx, actorID, CapabilityEditSale); err != nil {
		return nil, err
	}
	if err := s.checkSameDay(ctx, saleID); err != nil {
		return nil, err
	}

	var (
		sale    *sales.Sale
		touched []*catalog.Product
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.SaleRepo().FindByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		previous, err := sale.ReplaceDetails(toSaleLines(req.Items), actorID)
		if err != nil {
			return err
		}

		touched = touched[:0]
		// Give back the stock of the old revision
		for i := range previous {
			detail := &previous[i]
			product, err := s.recordSaleMovement(ctx, repos, sale, detail,
				inventory.MovementIn, inventory.ReasonSaleUpdate, actorID,
				"reversal of previous revision")
			if err != nil {
				return err
			}
			touched = append(touched, product)
		}
		// Take the stock of the new revision
		for i := range sale.Details {
			detail := &sale.Details[i]
			product, err := s.recordSaleMovement(ctx, repos, sale, detail,
				inventory.MovementOut, inventory.ReasonSaleUpdate, actorID, "")
			if err != nil {
				return err
			}
			touched = append(touched, product)
		}

		if err := repos.SaleRepo().ReplaceDetails(ctx, sale.ID, sale.Details); err != nil {
			return err
		}
		return repos.SaleRepo().SaveWithLock(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sale, touched...)
	response := ToSaleResponse(sale)
	return &response, nil
}

// Cancel cancels a same-day sale. One in movement per detail restores the
// stock; the original out movements stay in the ledger untouched.
func (s *SaleService) Cancel(ctx context.Context, saleID, actorID uuid.UUID, req CancelSaleRequest) (*SaleResponse, error) {
	if err := s.require(ctx, actorID, CapabilityCancelSale); err != nil {
		return nil, err
	}
	if err := s.checkSameDay(ctx, saleID); err != nil {
		return nil, err
	}

	var (
		sale    *sales.Sale
		touched []*catalog.Product
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.SaleRepo().FindByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}

		if err := sale.Cancel(actorID, req.Reason); err != nil {
			return err
		}

		touched = touched[:0]
		for i := range sale.Details {
			detail := &sale.Details[i]
			product, err := s.recordSaleMovement(ctx, repos, sale, detail,
				inventory.MovementIn, inventory.ReasonSaleCancellation, actorID,
				req.Reason)
			if err != nil {
				return err
			}
			touched = append(touched, product)
		}

		return repos.SaleRepo().SaveWithLock(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sale, touched...)
	response := ToSaleResponse(sale)
	return &response, nil
}

// RecordCreditPayment applies a payment against a credit sale's pending
// balance. No stock interaction.
func (s *SaleService) RecordCreditPayment(ctx context.Context, saleID, actorID uuid.UUID, req CreditPaymentRequest) (*SaleResponse, error) {
	if err := s.require(ctx, actorID, CapabilityRecordPayment); err != nil {
		return nil, err
	}

	var sale *sales.Sale
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		sale, err = repos.SaleRepo().FindByIDForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if err := sale.RecordCreditPayment(req.Amount, req.Method, req.Notes, actorID); err != nil {
			return err
		}
		return repos.SaleRepo().SaveWithLock(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, sale)
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByID retrieves a sale by ID
func (s *SaleService) GetByID(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByNumber retrieves a sale by its sale number
func (s *SaleService) GetByNumber(ctx context.Context, saleNumber string) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByNumber(ctx, saleNumber)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves sales with filtering and pagination
func (s *SaleService) List(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}
	domainFilter.Filters = make(map[string]interface{})
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.SaleType != "" {
		domainFilter.Filters["sale_type"] = filter.SaleType
	}

	var (
		found []sales.Sale
		err   error
	)
	if filter.CustomerID != nil {
		found, err = s.saleRepo.FindByCustomer(ctx, *filter.CustomerID, domainFilter)
	} else {
		found, err = s.saleRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.saleRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SaleResponse, 0, len(found))
	for i := range found {
		responses = append(responses, ToSaleResponse(&found[i]))
	}
	return responses, total, nil
}

// recordSaleMovement loads the product under a row lock, appends a ledger
// movement linked to the sale detail and persists both. The row lock is held
// until the surrounding transaction ends. The loaded product is returned so
// the caller can publish the events the stock change raised on it.
func (s *SaleService) recordSaleMovement(
	ctx context.Context,
	repos TransactionalRepositories,
	sale *sales.Sale,
	detail *sales.SaleDetail,
	direction inventory.MovementDirection,
	reason inventory.MovementReason,
	actorID uuid.UUID,
	notes string,
) (*catalog.Product, error) {
	product, err := repos.ProductRepo().FindByIDForUpdate(ctx, detail.ProductID)
	if err != nil {
		return nil, err
	}
	if direction == inventory.MovementOut && !product.IsActive() {
		return nil, shared.NewValidationError("INACTIVE_PRODUCT",
			fmt.Sprintf("Product %s is not sellable", product.Code))
	}

	result, err := s.ledger.Record(product, direction, detail.Quantity,
		detail.UnitPrice, reason, actorID)
	if err != nil {
		return nil, err
	}
	result.Movement.WithSale(sale.ID, detail.ID)
	if notes != "" {
		result.Movement.WithNotes(notes)
	}

	if result.Oversold {
		s.logger.Warn("stock went negative",
			zap.String("product_code", product.Code),
			zap.String("sale_number", sale.SaleNumber),
			zap.String("stock_after", result.StockAfter.String()))
	}

	if err := repos.MovementRepo().Save(ctx, result.Movement); err != nil {
		return nil, err
	}
	if err := repos.ProductRepo().SaveWithLock(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// checkSameDay loads the sale outside the transaction and rejects the
// operation when the creation-day window has closed. This is a business
// rule, not input validation, so it carries its own kind.
func (s *SaleService) checkSameDay(ctx context.Context, saleID uuid.UUID) error {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return err
	}
	if !sale.IsSameDay(s.now()) {
		return shared.NewBusinessRuleError("OUTSIDE_SAME_DAY_WINDOW",
			"Sales can only be edited or cancelled on their creation day")
	}
	return nil
}

func (s *SaleService) require(ctx context.Context, userID uuid.UUID, capability string) error {
	if s.capabilities == nil {
		return nil
	}
	allowed, err := s.capabilities.Can(ctx, userID, capability)
	if err != nil {
		return err
	}
	if !allowed {
		return shared.ErrForbidden
	}
	return nil
}

// publishEvents drains the pending events of the sale and of every product
// touched by its ledger movements. Runs after the transaction commits, so
// handlers only see changes that are actually persisted.
func (s *SaleService) publishEvents(ctx context.Context, sale *sales.Sale, products ...*catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	events := sale.GetDomainEvents()
	for _, product := range products {
		events = append(events, product.GetDomainEvents()...)
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish sale events",
			zap.String("sale_number", sale.SaleNumber), zap.Error(err))
	}
	sale.ClearDomainEvents()
	for _, product := range products {
		product.ClearDomainEvents()
	}
}

// notify enqueues a fire-and-forget notification job. Queue errors are
// logged and swallowed; delivery never blocks or fails the sale.
func (s *SaleService) notify(ctx context.Context, sale *sales.Sale, customer *partner.Customer) {
	if s.queue == nil {
		return
	}

	var channels []notification.Channel
	if customer.Email != "" {
		channels = append(channels, notification.ChannelEmail)
	}
	if customer.Phone != "" {
		channels = append(channels, notification.ChannelWhatsapp)
	}
	if len(channels) == 0 {
		return
	}

	recipient := customer.Email
	if recipient == "" {
		recipient = customer.Phone
	}
	message := fmt.Sprintf("Venta %s registrada por %s", sale.SaleNumber, sale.Total.StringFixed(2))

	job, err := notification.NewJob(sale.ID, notification.SubjectSale, recipient, message, channels...)
	if err != nil {
		s.logger.Warn("failed to build notification job", zap.Error(err))
		return
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("sale_number", sale.SaleNumber), zap.Error(err))
	}
}
