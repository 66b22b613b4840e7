package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/taller/backend/internal/domain/shared"
	"github.com/taller/backend/internal/domain/workshop"
	"gorm.io/gorm"
)

// GormRepairOrderRepository implements RepairOrderRepository using GORM
type GormRepairOrderRepository struct {
	db *gorm.DB
}

// NewGormRepairOrderRepository creates a new GormRepairOrderRepository
func NewGormRepairOrderRepository(db *gorm.DB) *GormRepairOrderRepository {
	return &GormRepairOrderRepository{db: db}
}

// FindByID finds a repair order by ID
func (r *GormRepairOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*workshop.RepairOrder, error) {
	var order workshop.RepairOrder
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber finds a repair order by its unique order number
func (r *GormRepairOrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*workshop.RepairOrder, error) {
	var order workshop.RepairOrder
	if err := r.db.WithContext(ctx).First(&order, "order_number = ?", orderNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds repair orders matching the filter, newest first
func (r *GormRepairOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]workshop.RepairOrder, error) {
	var orders []workshop.RepairOrder
	query := r.applyFilter(r.db.WithContext(ctx).Model(&workshop.RepairOrder{}), filter)
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByCustomer lists repair orders for a customer, newest first
func (r *GormRepairOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) ([]workshop.RepairOrder, error) {
	var orders []workshop.RepairOrder
	query := r.db.WithContext(ctx).
		Model(&workshop.RepairOrder{}).
		Where("customer_id = ?", customerID)
	query = r.applyFilter(query, filter)
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save creates or updates a repair order
func (r *GormRepairOrderRepository) Save(ctx context.Context, order *workshop.RepairOrder) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// SaveWithLock updates a repair order with an optimistic version check
func (r *GormRepairOrderRepository) SaveWithLock(ctx context.Context, order *workshop.RepairOrder) error {
	result := r.db.WithContext(ctx).
		Model(order).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]interface{}{
			"technician_id":   order.TechnicianID,
			"diagnosis":       order.Diagnosis,
			"total_cost":      order.TotalCost,
			"advance_payment": order.AdvancePayment,
			"pending_balance": order.PendingBalance,
			"status":          order.Status,
			"notes":           order.Notes,
			"version":         order.Version,
			"updated_at":      order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewConflictError("OPTIMISTIC_LOCK_FAILED",
			"Repair order was modified by another transaction")
	}
	return nil
}

// Count counts repair orders matching the filter
func (r *GormRepairOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&workshop.RepairOrder{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormRepairOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query.Order(filter.SortClause("created_at DESC"))
}

func (r *GormRepairOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_number ILIKE ? OR device_description ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "technician_id":
			query = query.Where("technician_id = ?", value)
		}
	}
	return query
}

var _ workshop.RepairOrderRepository = (*GormRepairOrderRepository)(nil)
