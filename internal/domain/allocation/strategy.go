package allocation

import (
	"time"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// PickingPolicy determines how candidate stock units are ordered during
// the inventory search.
type PickingPolicy string

const (
	// PickingPolicyFEFO picks earliest expiry first, null expiry last
	PickingPolicyFEFO PickingPolicy = "FEFO"
	// PickingPolicyLIFO picks the most recently arrived stock first
	PickingPolicyLIFO PickingPolicy = "LIFO"
	// PickingPolicyBestFit picks the largest units first to minimise task count
	PickingPolicyBestFit PickingPolicy = "BEST_FIT"
)

// IsValid returns true if the picking policy is valid
func (p PickingPolicy) IsValid() bool {
	switch p {
	case PickingPolicyFEFO, PickingPolicyLIFO, PickingPolicyBestFit:
		return true
	}
	return false
}

// String returns the string representation of PickingPolicy
func (p PickingPolicy) String() string {
	return string(p)
}

// PartialPolicy determines what happens when a line cannot be fully allocated
type PartialPolicy string

const (
	// PartialPolicyAllowPartial keeps whatever could be allocated
	PartialPolicyAllowPartial PartialPolicy = "ALLOW_PARTIAL"
	// PartialPolicyFillOrKill reverts the whole line unless fully satisfied
	PartialPolicyFillOrKill PartialPolicy = "FILL_OR_KILL"
)

// IsValid returns true if the partial policy is valid
func (p PartialPolicy) IsValid() bool {
	return p == PartialPolicyAllowPartial || p == PartialPolicyFillOrKill
}

// String returns the string representation of PartialPolicy
func (p PartialPolicy) String() string {
	return string(p)
}

// WarehouseMode determines how candidate warehouses are selected
type WarehouseMode string

const (
	// WarehouseModePriority visits warehouses in the configured order
	WarehouseModePriority WarehouseMode = "PRIORITY"
	// WarehouseModeOptimal ranks warehouses by available quantity descending
	WarehouseModeOptimal WarehouseMode = "OPTIMAL"
)

// IsValid returns true if the warehouse mode is valid
func (m WarehouseMode) IsValid() bool {
	return m == WarehouseModePriority || m == WarehouseModeOptimal
}

// String returns the string representation of WarehouseMode
func (m WarehouseMode) String() string {
	return string(m)
}

// WarehouseSelection holds the warehouse-selection part of a strategy.
// PriorityList is only consulted in PRIORITY mode; when it is empty the
// warehouse master data priority order applies. MaxSplits caps how many
// warehouses one line may be spread across.
type WarehouseSelection struct {
	Mode         WarehouseMode `json:"mode"`
	PriorityList []uuid.UUID   `json:"priority_list,omitempty"`
	MaxSplits    int           `json:"max_splits"`
}

// AllocationStrategy is the tenant-configured rule set driving the
// allocation engine. It is resolved once per allocation call and treated
// as read-only input for the duration of the run.
type AllocationStrategy struct {
	shared.TenantAggregateRoot
	Name          string             `gorm:"type:varchar(100);not null;uniqueIndex:idx_alloc_strategy_tenant_name,priority:2"`
	PickingPolicy PickingPolicy      `gorm:"type:varchar(20);not null"`
	PartialPolicy PartialPolicy      `gorm:"type:varchar(20);not null"`
	Warehouses    WarehouseSelection `gorm:"serializer:json;type:jsonb"`
	Active        bool               `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (AllocationStrategy) TableName() string {
	return "allocation_strategies"
}

// NewAllocationStrategy creates and validates a new allocation strategy
func NewAllocationStrategy(
	tenantID uuid.UUID,
	name string,
	picking PickingPolicy,
	partial PartialPolicy,
	warehouses WarehouseSelection,
) (*AllocationStrategy, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Strategy name cannot be empty")
	}
	s := &AllocationStrategy{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		PickingPolicy:       picking,
		PartialPolicy:       partial,
		Warehouses:          warehouses,
		Active:              true,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the strategy configuration. It runs both at creation
// time and when a stored strategy is loaded for an allocation run, so a
// row corrupted outside the application cannot steer the engine.
func (s *AllocationStrategy) Validate() error {
	if !s.PickingPolicy.IsValid() {
		return shared.NewDomainError("INVALID_PICKING_POLICY", "Unknown picking policy: "+string(s.PickingPolicy))
	}
	if !s.PartialPolicy.IsValid() {
		return shared.NewDomainError("INVALID_PARTIAL_POLICY", "Unknown partial policy: "+string(s.PartialPolicy))
	}
	if !s.Warehouses.Mode.IsValid() {
		return shared.NewDomainError("INVALID_WAREHOUSE_MODE", "Unknown warehouse selection mode: "+string(s.Warehouses.Mode))
	}
	if s.Warehouses.MaxSplits < 1 {
		return shared.NewDomainError("INVALID_MAX_SPLITS", "Max warehouse splits must be at least 1")
	}
	return nil
}

// Deactivate marks the strategy inactive so it is no longer resolved as
// a tenant default.
func (s *AllocationStrategy) Deactivate() {
	s.Active = false
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Activate marks the strategy active
func (s *AllocationStrategy) Activate() {
	s.Active = true
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
