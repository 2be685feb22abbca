package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// ConsolidationKey identifies the set of attributes that must match for
// two stock units to be merged into one.
type ConsolidationKey struct {
	ProductID   uuid.UUID
	LocationID  uuid.UUID
	DepositorID uuid.UUID
	BatchNumber string
	ExpiryDate  *time.Time
}

// AllocationQuery narrows the candidate search for one order line in one
// warehouse. Constraints come from the order line (required batch,
// minimum remaining shelf life).
type AllocationQuery struct {
	WarehouseID   uuid.UUID
	ProductID     uuid.UUID
	RequiredBatch string     // empty means any batch
	MinExpiryDate *time.Time // units expiring before this are excluded
}

// WarehouseAvailability is one row of the per-warehouse availability
// ranking used by OPTIMAL warehouse selection.
type WarehouseAvailability struct {
	WarehouseID uuid.UUID
	Available   decimal.Decimal
}

// StockUnitRepository defines the persistence interface for stock units.
//
// The ForUpdate variants acquire an exclusive row lock (SELECT ... FOR
// UPDATE) that is held until the enclosing database transaction commits
// or rolls back. Callers must use them for every read that precedes a
// quantity or reservation mutation; the row lock is the only mechanism
// preventing concurrent over-allocation.
type StockUnitRepository interface {
	// Create persists a new stock unit
	Create(ctx context.Context, unit *StockUnit) error

	// FindByID finds a stock unit by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*StockUnit, error)

	// FindByLPN finds a stock unit by its LPN within a tenant
	FindByLPN(ctx context.Context, tenantID uuid.UUID, lpn string) (*StockUnit, error)

	// FindByLPNForUpdate finds a stock unit by LPN under an exclusive lock
	FindByLPNForUpdate(ctx context.Context, tenantID uuid.UUID, lpn string) (*StockUnit, error)

	// FindByIDForUpdate finds a stock unit by ID under an exclusive lock
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*StockUnit, error)

	// FindConsolidationTarget finds an AVAILABLE unit matching the key
	// under an exclusive lock, excluding excludeID. Returns
	// shared.ErrNotFound when no compatible unit exists.
	FindConsolidationTarget(ctx context.Context, tenantID uuid.UUID, key ConsolidationKey, excludeID uuid.UUID) (*StockUnit, error)

	// FindAllocatable returns AVAILABLE units with unreserved headroom
	// matching the query, each locked exclusively as part of the read.
	// Order is unspecified; the allocation engine sorts by policy.
	FindAllocatable(ctx context.Context, tenantID uuid.UUID, query AllocationQuery) ([]StockUnit, error)

	// AvailableByWarehouse sums quantity - reserved_quantity per warehouse
	// for a product, descending, for OPTIMAL warehouse ranking.
	AvailableByWarehouse(ctx context.Context, tenantID, productID uuid.UUID) ([]WarehouseAvailability, error)

	// List finds stock units for a tenant with filtering and paging
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]StockUnit, error)

	// Count counts stock units matching the filter
	Count(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// ExistsByLPN reports whether an LPN is already in use within a tenant
	ExistsByLPN(ctx context.Context, tenantID uuid.UUID, lpn string) (bool, error)

	// Save persists changes to an existing stock unit
	Save(ctx context.Context, unit *StockUnit) error

	// Delete removes a stock unit (only after a full-quantity merge)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// StockTransactionRepository defines the append-only persistence
// interface for the transaction log. There is no update or delete.
type StockTransactionRepository interface {
	// Append persists a new transaction record
	Append(ctx context.Context, tx *StockTransaction) error

	// ListByUnit returns all records for a stock unit, oldest first
	ListByUnit(ctx context.Context, tenantID, stockUnitID uuid.UUID) ([]StockTransaction, error)

	// ListByTenantRange returns records in a time range, oldest first,
	// for audit and billing extraction
	ListByTenantRange(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]StockTransaction, error)

	// LatestForUnit returns the most recent record for a unit (debugging aid)
	LatestForUnit(ctx context.Context, tenantID, stockUnitID uuid.UUID) (*StockTransaction, error)
}
