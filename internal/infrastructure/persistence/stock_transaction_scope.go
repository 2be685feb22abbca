package persistence

import (
	"context"

	appinv "github.com/wms/backend/internal/application/inventory"
	"github.com/wms/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormStockTransactionScope implements the stock service's
// TransactionScope using GORM transactions. Row locks taken inside the
// scope are held until the scope commits or rolls back.
type GormStockTransactionScope struct {
	db *gorm.DB
}

// NewGormStockTransactionScope creates a new GormStockTransactionScope
func NewGormStockTransactionScope(db *gorm.DB) *GormStockTransactionScope {
	return &GormStockTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormStockTransactionScope) Execute(ctx context.Context, fn func(repos appinv.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormStockRepositories{tx: tx}
		return fn(repos)
	})
}

// gormStockRepositories provides repositories scoped to one transaction
type gormStockRepositories struct {
	tx *gorm.DB
}

// Units returns the stock unit repository scoped to the current transaction
func (r *gormStockRepositories) Units() inventory.StockUnitRepository {
	return NewGormStockUnitRepository(r.tx)
}

// Transactions returns the transaction log repository scoped to the current transaction
func (r *gormStockRepositories) Transactions() inventory.StockTransactionRepository {
	return NewGormStockTransactionRepository(r.tx)
}

// Ensure GormStockTransactionScope implements TransactionScope
var _ appinv.TransactionScope = (*GormStockTransactionScope)(nil)

// Ensure gormStockRepositories implements TransactionalRepositories
var _ appinv.TransactionalRepositories = (*gormStockRepositories)(nil)
