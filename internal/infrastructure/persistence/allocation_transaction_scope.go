package persistence

import (
	"context"

	appalloc "github.com/wms/backend/internal/application/allocation"
	appful "github.com/wms/backend/internal/application/fulfillment"
	"github.com/wms/backend/internal/domain/allocation"
	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/domain/inventory"
	"gorm.io/gorm"
)

// GormAllocationTransactionScope implements the allocation and
// fulfillment transaction scopes using GORM transactions. One scope type
// backs both services; the repositories it hands out are supersets of
// what each consumer declares.
type GormAllocationTransactionScope struct {
	db *gorm.DB
}

// NewGormAllocationTransactionScope creates a new GormAllocationTransactionScope
func NewGormAllocationTransactionScope(db *gorm.DB) *GormAllocationTransactionScope {
	return &GormAllocationTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormAllocationTransactionScope) Execute(ctx context.Context, fn func(repos appalloc.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormAllocationRepositories{tx: tx})
	})
}

// GormFulfillmentTransactionScope adapts the same repositories to the
// fulfillment service's scope interface.
type GormFulfillmentTransactionScope struct {
	db *gorm.DB
}

// NewGormFulfillmentTransactionScope creates a new GormFulfillmentTransactionScope
func NewGormFulfillmentTransactionScope(db *gorm.DB) *GormFulfillmentTransactionScope {
	return &GormFulfillmentTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormFulfillmentTransactionScope) Execute(ctx context.Context, fn func(repos appful.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormAllocationRepositories{tx: tx})
	})
}

// gormAllocationRepositories provides repositories scoped to one transaction
type gormAllocationRepositories struct {
	tx *gorm.DB
}

// Units returns the stock unit repository scoped to the current transaction
func (r *gormAllocationRepositories) Units() inventory.StockUnitRepository {
	return NewGormStockUnitRepository(r.tx)
}

// Transactions returns the transaction log repository scoped to the current transaction
func (r *gormAllocationRepositories) Transactions() inventory.StockTransactionRepository {
	return NewGormStockTransactionRepository(r.tx)
}

// PickTasks returns the pick task repository scoped to the current transaction
func (r *gormAllocationRepositories) PickTasks() allocation.PickTaskRepository {
	return NewGormPickTaskRepository(r.tx)
}

// Orders returns the order repository scoped to the current transaction
func (r *gormAllocationRepositories) Orders() fulfillment.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// Waves returns the wave repository scoped to the current transaction
func (r *gormAllocationRepositories) Waves() fulfillment.WaveRepository {
	return NewGormWaveRepository(r.tx)
}

// Strategies returns the strategy repository scoped to the current transaction
func (r *gormAllocationRepositories) Strategies() allocation.StrategyRepository {
	return NewGormStrategyRepository(r.tx)
}

// Ensure the scope types implement their application interfaces
var (
	_ appalloc.TransactionScope          = (*GormAllocationTransactionScope)(nil)
	_ appful.TransactionScope            = (*GormFulfillmentTransactionScope)(nil)
	_ appalloc.TransactionalRepositories = (*gormAllocationRepositories)(nil)
	_ appful.TransactionalRepositories   = (*gormAllocationRepositories)(nil)
)
