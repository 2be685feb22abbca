package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
)

// GormStockTransactionRepository implements StockTransactionRepository
// using GORM. The table is append-only; the repository exposes no
// update or delete.
type GormStockTransactionRepository struct {
	db *gorm.DB
}

// NewGormStockTransactionRepository creates a new GormStockTransactionRepository
func NewGormStockTransactionRepository(db *gorm.DB) *GormStockTransactionRepository {
	return &GormStockTransactionRepository{db: db}
}

// Append persists a new transaction record
func (r *GormStockTransactionRepository) Append(ctx context.Context, tx *inventory.StockTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// ListByUnit returns all records for a stock unit, oldest first
func (r *GormStockTransactionRepository) ListByUnit(ctx context.Context, tenantID, stockUnitID uuid.UUID) ([]inventory.StockTransaction, error) {
	var records []inventory.StockTransaction
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND stock_unit_id = ?", tenantID, stockUnitID).
		Order("occurred_at ASC, created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListByTenantRange returns records in a time range, oldest first
func (r *GormStockTransactionRepository) ListByTenantRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]inventory.StockTransaction, error) {
	query := r.db.WithContext(ctx).
		Model(&inventory.StockTransaction{}).
		Where("tenant_id = ? AND occurred_at >= ? AND occurred_at < ?", tenantID, from, to)

	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "actor_id":
			query = query.Where("actor_id = ?", value)
		case "reference":
			query = query.Where("reference = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	query = query.Order("occurred_at " + ValidateSortOrder(filter.OrderDir))

	var records []inventory.StockTransaction
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// LatestForUnit returns the most recent record for a unit
func (r *GormStockTransactionRepository) LatestForUnit(ctx context.Context, tenantID, stockUnitID uuid.UUID) (*inventory.StockTransaction, error) {
	var record inventory.StockTransaction
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND stock_unit_id = ?", tenantID, stockUnitID).
		Order("occurred_at DESC, created_at DESC").
		First(&record).Error; err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

// Ensure GormStockTransactionRepository implements StockTransactionRepository
var _ inventory.StockTransactionRepository = (*GormStockTransactionRepository)(nil)
