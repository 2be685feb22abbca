package allocation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/allocation"
	"github.com/wms/backend/internal/domain/fulfillment"
)

// CreateStrategyCommand creates a new allocation strategy
type CreateStrategyCommand struct {
	TenantID   uuid.UUID
	Name       string
	Picking    allocation.PickingPolicy
	Partial    allocation.PartialPolicy
	Warehouses allocation.WarehouseSelection
}

// AllocateOrderCommand runs the allocation engine against one order.
// StrategyID is optional; when nil the tenant's first active strategy
// is used. StagingLocationID, when set, becomes the to-location of every
// pick task the run creates.
type AllocateOrderCommand struct {
	TenantID          uuid.UUID
	ActorID           uuid.UUID
	OrderID           uuid.UUID
	StrategyID        *uuid.UUID
	StagingLocationID *uuid.UUID
}

// AllocateWaveCommand runs the allocation engine against every order in
// a wave, under the wave's strategy.
type AllocateWaveCommand struct {
	TenantID uuid.UUID
	ActorID  uuid.UUID
	WaveID   uuid.UUID
}

// LineResult reports the allocation outcome for one order line
type LineResult struct {
	LineID    uuid.UUID
	ProductID uuid.UUID
	Requested decimal.Decimal
	Allocated decimal.Decimal
	Status    fulfillment.LineStatus
	TaskCount int
}

// OrderResult reports the allocation outcome for one order
type OrderResult struct {
	OrderID     uuid.UUID
	OrderNumber string
	Status      fulfillment.OrderStatus
	TaskCount   int
	Lines       []LineResult
}

// WaveResult reports the allocation outcome for a wave
type WaveResult struct {
	WaveID uuid.UUID
	Status fulfillment.WaveStatus
	Orders []OrderResult
}

// CompletePickCommand reports the executed quantity for one pick task.
// QuantityPicked may be less than the task quantity (short pick) or
// zero (nothing could be picked).
type CompletePickCommand struct {
	TenantID       uuid.UUID
	ActorID        uuid.UUID
	TaskID         uuid.UUID
	QuantityPicked decimal.Decimal
}

// CompletePickResult reports the state after pick confirmation
type CompletePickResult struct {
	Task      *allocation.PickTask
	Shortfall decimal.Decimal
}
