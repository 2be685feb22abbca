package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/inventory"
)

// ReceiveCommand puts new stock on the ledger
type ReceiveCommand struct {
	TenantID    uuid.UUID
	ActorID     uuid.UUID
	DepositorID uuid.UUID
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
	LocationID  uuid.UUID
	Quantity    decimal.Decimal
	LPN         string // optional; generated when empty
	BatchNumber string
	ExpiryDate  *time.Time
	Reference   string
}

// ReceiveResult reports the outcome of a receive
type ReceiveResult struct {
	Unit         *inventory.StockUnit
	Consolidated bool // true when the quantity merged into an existing unit
}

// MoveCommand relocates all or part of a stock unit
type MoveCommand struct {
	TenantID     uuid.UUID
	ActorID      uuid.UUID
	LPN          string
	ToLocationID uuid.UUID
	Quantity     *decimal.Decimal // nil means move the full quantity
	Reference    string
}

// MoveResult reports the outcome of a move
type MoveResult struct {
	Unit         *inventory.StockUnit // the unit now holding the moved quantity
	SourceID     uuid.UUID
	Consolidated bool
	Partial      bool
	SourceMerged bool // true when the source unit was deleted into the target
}

// AdjustCommand overwrites a unit's quantity to an absolute value
type AdjustCommand struct {
	TenantID    uuid.UUID
	ActorID     uuid.UUID
	LPN         string
	NewQuantity decimal.Decimal
	Reason      string
}

// ChangeStatusCommand moves a unit to a new status
type ChangeStatusCommand struct {
	TenantID uuid.UUID
	ActorID  uuid.UUID
	LPN      string
	Status   inventory.UnitStatus
	Reason   string
}
