package workshop

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taller/backend/internal/domain/numbering"
	"github.com/taller/backend/internal/domain/shared"
	"github.com/taller/backend/internal/domain/workshop"
	"go.uber.org/zap"
)

// RepairOrderService handles the workshop repair lifecycle. Repair orders
// never touch stock; they share the numbering and pending-balance patterns
// with sales.
type RepairOrderService struct {
	orderRepo workshop.RepairOrderRepository
	numbers   *numbering.Service
	logger    *zap.Logger
}

// NewRepairOrderService creates a new RepairOrderService
func NewRepairOrderService(
	orderRepo workshop.RepairOrderRepository,
	numbers *numbering.Service,
	logger *zap.Logger,
) *RepairOrderService {
	return &RepairOrderService{
		orderRepo: orderRepo,
		numbers:   numbers,
		logger:    logger,
	}
}

// Create registers a repair order with a monthly-scoped order number
func (s *RepairOrderService) Create(ctx context.Context, actorID uuid.UUID, req CreateRepairOrderRequest) (*RepairOrderResponse, error) {
	orderNumber, err := s.numbers.NextOrderNumber(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	order, err := workshop.NewRepairOrder(orderNumber, req.CustomerID,
		req.DeviceDescription, req.ReportedIssue, req.TotalCost, req.AdvancePayment, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToRepairOrderResponse(order)
	return &response, nil
}

// Diagnose records the diagnosis and adjusts the quoted cost
func (s *RepairOrderService) Diagnose(ctx context.Context, orderID, technicianID uuid.UUID, req DiagnoseRequest) (*RepairOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.SetDiagnosis(req.Diagnosis, req.TotalCost, technicianID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToRepairOrderResponse(order)
	return &response, nil
}

// Transition moves the order along the workshop lifecycle
func (s *RepairOrderService) Transition(ctx context.Context, orderID uuid.UUID, req TransitionRequest) (*RepairOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.TransitionTo(workshop.RepairOrderStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToRepairOrderResponse(order)
	return &response, nil
}

// RecordPayment applies a payment against the order's pending balance
func (s *RepairOrderService) RecordPayment(ctx context.Context, orderID, actorID uuid.UUID, req OrderPaymentRequest) (*RepairOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.RecordPayment(req.Amount, req.Method, actorID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToRepairOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a repair order by ID
func (s *RepairOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*RepairOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToRepairOrderResponse(order)
	return &response, nil
}

// List retrieves repair orders with filtering and pagination
func (s *RepairOrderService) List(ctx context.Context, filter ListFilter) ([]RepairOrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	var (
		orders []workshop.RepairOrder
		err    error
	)
	if filter.CustomerID != nil {
		orders, err = s.orderRepo.FindByCustomer(ctx, *filter.CustomerID, domainFilter)
	} else {
		orders, err = s.orderRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]RepairOrderResponse, 0, len(orders))
	for i := range orders {
		responses = append(responses, ToRepairOrderResponse(&orders[i]))
	}
	return responses, total, nil
}
