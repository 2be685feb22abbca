// Package masterdata holds the read-only reference entities the
// inventory and allocation cores validate against. Master-data CRUD is
// owned by an external collaborator; this package only defines the
// lookup seam and the minimal row shapes needed to run standalone.
package masterdata

import (
	"context"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// Product is a sellable/storable item
type Product struct {
	shared.TenantAggregateRoot
	SKU    string `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_tenant_sku,priority:2"`
	Name   string `gorm:"type:varchar(200);not null"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// Uom is a unit of measure
type Uom struct {
	shared.TenantAggregateRoot
	Code string `gorm:"type:varchar(20);not null;uniqueIndex:idx_uom_tenant_code,priority:2"`
	Name string `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (Uom) TableName() string {
	return "uoms"
}

// Warehouse is a physical stock-holding site. Priority orders the
// warehouse within PRIORITY-mode allocation when a strategy carries no
// explicit list.
type Warehouse struct {
	shared.TenantAggregateRoot
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex:idx_warehouse_tenant_code,priority:2"`
	Name     string `gorm:"type:varchar(200);not null"`
	Priority int    `gorm:"not null;default:0"`
	Active   bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// Location is a storage position inside a warehouse
type Location struct {
	shared.TenantAggregateRoot
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;index"`
	Code        string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_location_tenant_code,priority:2"`
	Active      bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Location) TableName() string {
	return "locations"
}

// Depositor is a stock owner (the 3PL client whose goods sit in the warehouse)
type Depositor struct {
	shared.TenantAggregateRoot
	Code   string `gorm:"type:varchar(50);not null;uniqueIndex:idx_depositor_tenant_code,priority:2"`
	Name   string `gorm:"type:varchar(200);not null"`
	Active bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Depositor) TableName() string {
	return "depositors"
}

// Lookup is the read-only master-data seam consumed by the inventory and
// allocation cores. Implementations return shared.ErrNotFound for a
// missing row; the core treats that as a typed absence, never as an
// infrastructure failure.
type Lookup interface {
	// FindProduct finds a product by ID within a tenant
	FindProduct(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)

	// FindLocation finds a location by ID within a tenant
	FindLocation(ctx context.Context, tenantID, id uuid.UUID) (*Location, error)

	// FindDepositor finds a depositor by ID within a tenant
	FindDepositor(ctx context.Context, tenantID, id uuid.UUID) (*Depositor, error)

	// FindWarehouse finds a warehouse by ID within a tenant
	FindWarehouse(ctx context.Context, tenantID, id uuid.UUID) (*Warehouse, error)

	// ListWarehousesByPriority returns active warehouses ordered by
	// ascending priority, for PRIORITY-mode selection defaults
	ListWarehousesByPriority(ctx context.Context, tenantID uuid.UUID) ([]Warehouse, error)
}
