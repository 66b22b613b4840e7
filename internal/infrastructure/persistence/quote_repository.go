package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/taller/backend/internal/domain/shared"
	"github.com/taller/backend/internal/domain/workshop"
	"gorm.io/gorm"
)

// GormQuoteRepository implements QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// FindByID finds a quote with its items
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*workshop.Quote, error) {
	var quote workshop.Quote
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&quote, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// FindByNumber finds a quote by its unique quote number
func (r *GormQuoteRepository) FindByNumber(ctx context.Context, quoteNumber string) (*workshop.Quote, error) {
	var quote workshop.Quote
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&quote, "quote_number = ?", quoteNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// FindAll finds quotes matching the filter, newest first
func (r *GormQuoteRepository) FindAll(ctx context.Context, filter shared.Filter) ([]workshop.Quote, error) {
	var quotes []workshop.Quote
	query := r.applyFilter(r.db.WithContext(ctx).Model(&workshop.Quote{}).Preload("Items"), filter)
	if err := query.Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// FindSentExpiredBefore lists sent quotes whose validity lapsed before the cutoff
func (r *GormQuoteRepository) FindSentExpiredBefore(ctx context.Context, cutoff time.Time) ([]workshop.Quote, error) {
	var quotes []workshop.Quote
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status = ? AND valid_until < ?", workshop.QuoteStatusSent, cutoff).
		Order("valid_until ASC").
		Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// Save creates or updates a quote with its items
func (r *GormQuoteRepository) Save(ctx context.Context, quote *workshop.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

// Count counts quotes matching the filter
func (r *GormQuoteRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&workshop.Quote{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormQuoteRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query.Order(filter.SortClause("created_at DESC"))
}

func (r *GormQuoteRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("quote_number ILIKE ?", "%"+filter.Search+"%")
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		}
	}
	return query
}

var _ workshop.QuoteRepository = (*GormQuoteRepository)(nil)
