package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/masterdata"
)

// GormMasterDataLookup implements the read-only master data seam
// against the shared database.
type GormMasterDataLookup struct {
	db *gorm.DB
}

// NewGormMasterDataLookup creates a new GormMasterDataLookup
func NewGormMasterDataLookup(db *gorm.DB) *GormMasterDataLookup {
	return &GormMasterDataLookup{db: db}
}

// FindProduct finds a product by ID within a tenant
func (r *GormMasterDataLookup) FindProduct(ctx context.Context, tenantID, id uuid.UUID) (*masterdata.Product, error) {
	var product masterdata.Product
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error; err != nil {
		return nil, translateError(err)
	}
	return &product, nil
}

// FindLocation finds a location by ID within a tenant
func (r *GormMasterDataLookup) FindLocation(ctx context.Context, tenantID, id uuid.UUID) (*masterdata.Location, error) {
	var location masterdata.Location
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&location).Error; err != nil {
		return nil, translateError(err)
	}
	return &location, nil
}

// FindDepositor finds a depositor by ID within a tenant
func (r *GormMasterDataLookup) FindDepositor(ctx context.Context, tenantID, id uuid.UUID) (*masterdata.Depositor, error) {
	var depositor masterdata.Depositor
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&depositor).Error; err != nil {
		return nil, translateError(err)
	}
	return &depositor, nil
}

// FindWarehouse finds a warehouse by ID within a tenant
func (r *GormMasterDataLookup) FindWarehouse(ctx context.Context, tenantID, id uuid.UUID) (*masterdata.Warehouse, error) {
	var warehouse masterdata.Warehouse
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&warehouse).Error; err != nil {
		return nil, translateError(err)
	}
	return &warehouse, nil
}

// ListWarehousesByPriority returns active warehouses ordered by priority
func (r *GormMasterDataLookup) ListWarehousesByPriority(ctx context.Context, tenantID uuid.UUID) ([]masterdata.Warehouse, error) {
	var warehouses []masterdata.Warehouse
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("priority ASC, created_at ASC").
		Find(&warehouses).Error; err != nil {
		return nil, err
	}
	return warehouses, nil
}

// Ensure GormMasterDataLookup implements Lookup
var _ masterdata.Lookup = (*GormMasterDataLookup)(nil)
