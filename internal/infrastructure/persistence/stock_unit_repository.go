package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
)

// GormStockUnitRepository implements StockUnitRepository using GORM
type GormStockUnitRepository struct {
	db *gorm.DB
}

// NewGormStockUnitRepository creates a new GormStockUnitRepository
func NewGormStockUnitRepository(db *gorm.DB) *GormStockUnitRepository {
	return &GormStockUnitRepository{db: db}
}

// Create persists a new stock unit
func (r *GormStockUnitRepository) Create(ctx context.Context, unit *inventory.StockUnit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

// FindByID finds a stock unit by ID within a tenant
func (r *GormStockUnitRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockUnit, error) {
	var unit inventory.StockUnit
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&unit).Error; err != nil {
		return nil, translateError(err)
	}
	return &unit, nil
}

// FindByLPN finds a stock unit by its LPN within a tenant
func (r *GormStockUnitRepository) FindByLPN(ctx context.Context, tenantID uuid.UUID, lpn string) (*inventory.StockUnit, error) {
	var unit inventory.StockUnit
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND lpn = ?", tenantID, lpn).
		First(&unit).Error; err != nil {
		return nil, translateError(err)
	}
	return &unit, nil
}

// FindByLPNForUpdate finds a stock unit by LPN under an exclusive row lock
func (r *GormStockUnitRepository) FindByLPNForUpdate(ctx context.Context, tenantID uuid.UUID, lpn string) (*inventory.StockUnit, error) {
	var unit inventory.StockUnit
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND lpn = ?", tenantID, lpn).
		First(&unit).Error; err != nil {
		return nil, translateError(err)
	}
	return &unit, nil
}

// FindByIDForUpdate finds a stock unit by ID under an exclusive row lock
func (r *GormStockUnitRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*inventory.StockUnit, error) {
	var unit inventory.StockUnit
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&unit).Error; err != nil {
		return nil, translateError(err)
	}
	return &unit, nil
}

// FindConsolidationTarget finds an AVAILABLE unit matching the
// consolidation key under an exclusive row lock
func (r *GormStockUnitRepository) FindConsolidationTarget(ctx context.Context, tenantID uuid.UUID, key inventory.ConsolidationKey, excludeID uuid.UUID) (*inventory.StockUnit, error) {
	query := lockForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND product_id = ? AND location_id = ? AND depositor_id = ? AND batch_number = ? AND status = ?",
			tenantID, key.ProductID, key.LocationID, key.DepositorID, key.BatchNumber, inventory.UnitStatusAvailable)

	if key.ExpiryDate != nil {
		query = query.Where("expiry_date = ?", *key.ExpiryDate)
	} else {
		query = query.Where("expiry_date IS NULL")
	}
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	var unit inventory.StockUnit
	if err := query.Order("created_at ASC").First(&unit).Error; err != nil {
		return nil, translateError(err)
	}
	return &unit, nil
}

// FindAllocatable returns AVAILABLE units with unreserved headroom
// matching the query, each locked as part of the read
func (r *GormStockUnitRepository) FindAllocatable(ctx context.Context, tenantID uuid.UUID, query inventory.AllocationQuery) ([]inventory.StockUnit, error) {
	q := lockForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND warehouse_id = ? AND product_id = ? AND status = ? AND quantity > reserved_quantity",
			tenantID, query.WarehouseID, query.ProductID, inventory.UnitStatusAvailable)

	if query.RequiredBatch != "" {
		q = q.Where("batch_number = ?", query.RequiredBatch)
	}
	if query.MinExpiryDate != nil {
		q = q.Where("expiry_date IS NULL OR expiry_date >= ?", *query.MinExpiryDate)
	}

	var units []inventory.StockUnit
	if err := q.Order("fifo_date ASC").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// AvailableByWarehouse sums unreserved quantity per warehouse for a product
func (r *GormStockUnitRepository) AvailableByWarehouse(ctx context.Context, tenantID, productID uuid.UUID) ([]inventory.WarehouseAvailability, error) {
	var rows []inventory.WarehouseAvailability
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockUnit{}).
		Select("warehouse_id, COALESCE(SUM(quantity - reserved_quantity), 0) as available").
		Where("tenant_id = ? AND product_id = ? AND status = ?", tenantID, productID, inventory.UnitStatusAvailable).
		Group("warehouse_id").
		Order("available DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// List finds stock units for a tenant with filtering and paging
func (r *GormStockUnitRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]inventory.StockUnit, error) {
	var units []inventory.StockUnit
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&inventory.StockUnit{}).
			Where("tenant_id = ?", tenantID),
		filter,
	)

	if err := query.Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// Count counts stock units matching the filter
func (r *GormStockUnitRepository) Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&inventory.StockUnit{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByLPN reports whether an LPN is already in use within a tenant
func (r *GormStockUnitRepository) ExistsByLPN(ctx context.Context, tenantID uuid.UUID, lpn string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.StockUnit{}).
		Where("tenant_id = ? AND lpn = ?", tenantID, lpn).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save persists changes to an existing stock unit
func (r *GormStockUnitRepository) Save(ctx context.Context, unit *inventory.StockUnit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

// Delete removes a stock unit
func (r *GormStockUnitRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&inventory.StockUnit{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormStockUnitRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, StockUnitSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormStockUnitRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "location_id":
			query = query.Where("location_id = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "depositor_id":
			query = query.Where("depositor_id = ?", value)
		case "batch_number":
			query = query.Where("batch_number = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "has_reservation":
			if value == true {
				query = query.Where("reserved_quantity > 0")
			}
		case "expiring_before":
			query = query.Where("expiry_date IS NOT NULL AND expiry_date < ?", value)
		}
	}

	return query
}

// lockForUpdate adds SELECT ... FOR UPDATE on dialects that support it.
// SQLite serializes writers at the database level, so the clause is
// skipped there.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// translateError maps driver errors onto domain sentinels
func translateError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	case isLockTimeout(err):
		return shared.ErrLockTimeout
	default:
		return err
	}
}

// isLockTimeout detects postgres lock_timeout expiry (SQLSTATE 55P03)
func isLockTimeout(err error) bool {
	return err != nil && strings.Contains(err.Error(), "55P03")
}

// Ensure GormStockUnitRepository implements StockUnitRepository
var _ inventory.StockUnitRepository = (*GormStockUnitRepository)(nil)
