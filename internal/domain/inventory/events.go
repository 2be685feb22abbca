package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// Event type constants for the stock ledger
const (
	EventTypeStockUnitCreated      = "inventory.stock_unit.created"
	EventTypeStockUnitMoved        = "inventory.stock_unit.moved"
	EventTypeStockUnitSplit        = "inventory.stock_unit.split"
	EventTypeStockUnitAdjusted     = "inventory.stock_unit.adjusted"
	EventTypeStockReserved         = "inventory.stock_unit.reserved"
	EventTypeStockReservationFreed = "inventory.stock_unit.reservation_released"
	EventTypeStockPicked           = "inventory.stock_unit.picked"
	EventTypeStockStatusChanged    = "inventory.stock_unit.status_changed"
)

const aggregateTypeStockUnit = "StockUnit"

// StockUnitCreatedEvent is emitted when a new stock unit enters the ledger
type StockUnitCreatedEvent struct {
	shared.BaseDomainEvent
	LPN       string          `json:"lpn"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// NewStockUnitCreatedEvent creates a new StockUnitCreatedEvent
func NewStockUnitCreatedEvent(u *StockUnit) *StockUnitCreatedEvent {
	return &StockUnitCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockUnitCreated, aggregateTypeStockUnit, u.ID, u.TenantID),
		LPN:             u.LPN,
		ProductID:       u.ProductID,
		Quantity:        u.Quantity,
	}
}

// StockUnitMovedEvent is emitted when a unit changes location in place
type StockUnitMovedEvent struct {
	shared.BaseDomainEvent
	LPN            string    `json:"lpn"`
	FromLocationID uuid.UUID `json:"from_location_id"`
	ToLocationID   uuid.UUID `json:"to_location_id"`
}

// NewStockUnitMovedEvent creates a new StockUnitMovedEvent
func NewStockUnitMovedEvent(u *StockUnit, from, to uuid.UUID) *StockUnitMovedEvent {
	return &StockUnitMovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockUnitMoved, aggregateTypeStockUnit, u.ID, u.TenantID),
		LPN:             u.LPN,
		FromLocationID:  from,
		ToLocationID:    to,
	}
}

// StockUnitSplitEvent is emitted when part of a unit moves to a new unit
type StockUnitSplitEvent struct {
	shared.BaseDomainEvent
	SourceLPN string          `json:"source_lpn"`
	ChildLPN  string          `json:"child_lpn"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// NewStockUnitSplitEvent creates a new StockUnitSplitEvent
func NewStockUnitSplitEvent(source, child *StockUnit) *StockUnitSplitEvent {
	return &StockUnitSplitEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockUnitSplit, aggregateTypeStockUnit, source.ID, source.TenantID),
		SourceLPN:       source.LPN,
		ChildLPN:        child.LPN,
		Quantity:        child.Quantity,
	}
}

// StockUnitAdjustedEvent is emitted when a unit quantity is overwritten
type StockUnitAdjustedEvent struct {
	shared.BaseDomainEvent
	LPN         string          `json:"lpn"`
	OldQuantity decimal.Decimal `json:"old_quantity"`
	NewQuantity decimal.Decimal `json:"new_quantity"`
}

// NewStockUnitAdjustedEvent creates a new StockUnitAdjustedEvent
func NewStockUnitAdjustedEvent(u *StockUnit, oldQty, newQty decimal.Decimal) *StockUnitAdjustedEvent {
	return &StockUnitAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockUnitAdjusted, aggregateTypeStockUnit, u.ID, u.TenantID),
		LPN:             u.LPN,
		OldQuantity:     oldQty,
		NewQuantity:     newQty,
	}
}

// StockReservedEvent is emitted when quantity is booked for a pick task
type StockReservedEvent struct {
	shared.BaseDomainEvent
	LPN      string          `json:"lpn"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(u *StockUnit, qty decimal.Decimal) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReserved, aggregateTypeStockUnit, u.ID, u.TenantID),
		LPN:             u.LPN,
		Quantity:        qty,
	}
}

// StockReservationReleasedEvent is emitted when a reservation is undone
type StockReservationReleasedEvent struct {
	shared.BaseDomainEvent
	LPN      string          `json:"lpn"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NewStockReservationReleasedEvent creates a new StockReservationReleasedEvent
func NewStockReservationReleasedEvent(u *StockUnit, qty decimal.Decimal) *StockReservationReleasedEvent {
	return &StockReservationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReservationFreed, aggregateTypeStockUnit, u.ID, u.TenantID),
		LPN:             u.LPN,
		Quantity:        qty,
	}
}

// StockPickedEvent is emitted when reserved stock is physically consumed
type StockPickedEvent struct {
	shared.BaseDomainEvent
	LPN      string          `json:"lpn"`
	Quantity decimal.Decimal `json:"quantity"`
}

// NewStockPickedEvent creates a new StockPickedEvent
func NewStockPickedEvent(u *StockUnit, qty decimal.Decimal) *StockPickedEvent {
	return &StockPickedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockPicked, aggregateTypeStockUnit, u.ID, u.TenantID),
		LPN:             u.LPN,
		Quantity:        qty,
	}
}

// StockStatusChangedEvent is emitted when a unit changes status
type StockStatusChangedEvent struct {
	shared.BaseDomainEvent
	LPN       string     `json:"lpn"`
	OldStatus UnitStatus `json:"old_status"`
	NewStatus UnitStatus `json:"new_status"`
}

// NewStockStatusChangedEvent creates a new StockStatusChangedEvent
func NewStockStatusChangedEvent(u *StockUnit, oldStatus, newStatus UnitStatus) *StockStatusChangedEvent {
	return &StockStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockStatusChanged, aggregateTypeStockUnit, u.ID, u.TenantID),
		LPN:             u.LPN,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}
