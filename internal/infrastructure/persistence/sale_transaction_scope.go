package persistence

import (
	"context"

	appsales "github.com/taller/backend/internal/application/sales"
	"github.com/taller/backend/internal/domain/catalog"
	"github.com/taller/backend/internal/domain/inventory"
	"github.com/taller/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// GormSaleTransactionScope implements the sale TransactionScope using GORM
// transactions
type GormSaleTransactionScope struct {
	db *gorm.DB
}

// NewGormSaleTransactionScope creates a new GormSaleTransactionScope
func NewGormSaleTransactionScope(db *gorm.DB) *GormSaleTransactionScope {
	return &GormSaleTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormSaleTransactionScope) Execute(ctx context.Context, fn func(repos appsales.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormSaleTransactionalRepositories{tx: tx})
	})
}

type gormSaleTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormSaleTransactionalRepositories) SaleRepo() sales.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormSaleTransactionalRepositories) ProductRepo() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *gormSaleTransactionalRepositories) MovementRepo() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

var _ appsales.TransactionScope = (*GormSaleTransactionScope)(nil)
var _ appsales.TransactionalRepositories = (*gormSaleTransactionalRepositories)(nil)
