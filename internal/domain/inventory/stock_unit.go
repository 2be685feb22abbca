package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// UnitStatus represents the status of a stock unit
type UnitStatus string

const (
	UnitStatusAvailable  UnitStatus = "AVAILABLE"
	UnitStatusReserved   UnitStatus = "RESERVED"
	UnitStatusQuarantine UnitStatus = "QUARANTINE"
	UnitStatusDamaged    UnitStatus = "DAMAGED"
	UnitStatusMissing    UnitStatus = "MISSING"
)

// IsValid returns true if the unit status is valid
func (s UnitStatus) IsValid() bool {
	switch s {
	case UnitStatusAvailable, UnitStatusReserved, UnitStatusQuarantine, UnitStatusDamaged, UnitStatusMissing:
		return true
	}
	return false
}

// String returns the string representation of UnitStatus
func (s UnitStatus) String() string {
	return string(s)
}

// StockUnit represents one physical unit of stock (a "quant"): a quantity
// of a single product sitting in a single location under one batch/expiry,
// identified by its LPN. It is the aggregate root of the stock ledger.
//
// Invariants: quantity >= 0 and 0 <= reserved_quantity <= quantity. The
// same constraints exist as CHECK constraints in the schema as a last
// line of defense.
type StockUnit struct {
	shared.TenantAggregateRoot
	DepositorID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_unit_product_location,priority:1"`
	WarehouseID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	LocationID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_unit_product_location,priority:2"`
	LPN              string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_stock_unit_tenant_lpn,priority:2"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status           UnitStatus      `gorm:"type:varchar(20);not null;default:'AVAILABLE'"`
	BatchNumber      string          `gorm:"type:varchar(100);index"` // empty means no batch
	ExpiryDate       *time.Time      `gorm:"index"`
	FifoDate         time.Time       `gorm:"not null;index"` // arrival time, preserved across moves and splits
}

// TableName returns the table name for GORM
func (StockUnit) TableName() string {
	return "stock_units"
}

// NewStockUnit creates a new stock unit for freshly received goods.
// FifoDate is stamped with the receive time and never changes afterwards.
func NewStockUnit(
	tenantID, depositorID, productID, warehouseID, locationID uuid.UUID,
	lpn string,
	quantity decimal.Decimal,
	batchNumber string,
	expiryDate *time.Time,
) (*StockUnit, error) {
	if lpn == "" {
		return nil, shared.NewDomainError("INVALID_LPN", "LPN cannot be empty")
	}
	if depositorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_DEPOSITOR", "Depositor ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse ID cannot be empty")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	unit := &StockUnit{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DepositorID:         depositorID,
		ProductID:           productID,
		WarehouseID:         warehouseID,
		LocationID:          locationID,
		LPN:                 lpn,
		Quantity:            quantity,
		ReservedQuantity:    decimal.Zero,
		Status:              UnitStatusAvailable,
		BatchNumber:         batchNumber,
		ExpiryDate:          expiryDate,
		FifoDate:            time.Now(),
	}

	unit.AddDomainEvent(NewStockUnitCreatedEvent(unit))
	return unit, nil
}

// AvailableQuantity returns the quantity not yet booked by a reservation
func (u *StockUnit) AvailableQuantity() decimal.Decimal {
	return u.Quantity.Sub(u.ReservedQuantity)
}

// IsFullyReserved returns true when no headroom is left for new
// allocations, regardless of status.
func (u *StockUnit) IsFullyReserved() bool {
	return u.ReservedQuantity.GreaterThanOrEqual(u.Quantity)
}

// HasReservation returns true if any quantity is reserved on this unit
func (u *StockUnit) HasReservation() bool {
	return u.ReservedQuantity.GreaterThan(decimal.Zero)
}

// CanConsolidateWith reports whether other is a valid merge target for
// this unit: same tenant, depositor, product, batch and expiry, and the
// target is AVAILABLE. Location is not compared; during a move the
// source is still at its origin while the target sits at the
// destination.
func (u *StockUnit) CanConsolidateWith(other *StockUnit) bool {
	if other == nil || other.ID == u.ID {
		return false
	}
	if other.Status != UnitStatusAvailable {
		return false
	}
	if u.TenantID != other.TenantID ||
		u.DepositorID != other.DepositorID ||
		u.ProductID != other.ProductID ||
		u.BatchNumber != other.BatchNumber {
		return false
	}
	return equalExpiry(u.ExpiryDate, other.ExpiryDate)
}

// AddQuantity increases the unit quantity (receive consolidation or merge)
func (u *StockUnit) AddQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	u.Quantity = u.Quantity.Add(quantity)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// RemoveQuantity decreases the unit quantity without touching the
// reservation (partial move out). The remaining quantity must still
// cover the reserved quantity.
func (u *StockUnit) RemoveQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	remaining := u.Quantity.Sub(quantity)
	if remaining.IsNegative() {
		return shared.ErrInsufficientStock
	}
	if remaining.LessThan(u.ReservedQuantity) {
		return shared.NewDomainError("RESERVED_STOCK", "Cannot remove quantity that is reserved")
	}
	u.Quantity = remaining
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// Relocate changes the unit's location in place, preserving identity,
// reservation and fifo date.
func (u *StockUnit) Relocate(warehouseID, locationID uuid.UUID) error {
	if warehouseID == uuid.Nil || locationID == uuid.Nil {
		return shared.NewDomainError("INVALID_LOCATION", "Warehouse and location IDs cannot be empty")
	}
	from := u.LocationID
	u.WarehouseID = warehouseID
	u.LocationID = locationID
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	u.AddDomainEvent(NewStockUnitMovedEvent(u, from, locationID))
	return nil
}

// Split creates a new unit at the destination carrying the given quantity
// and the parent's product, depositor, batch, expiry and fifo date. The
// new unit starts with zero reservation and a fresh LPN.
func (u *StockUnit) Split(warehouseID, locationID uuid.UUID, quantity decimal.Decimal, lpn string) (*StockUnit, error) {
	if err := u.RemoveQuantity(quantity); err != nil {
		return nil, err
	}
	child := &StockUnit{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(u.TenantID),
		DepositorID:         u.DepositorID,
		ProductID:           u.ProductID,
		WarehouseID:         warehouseID,
		LocationID:          locationID,
		LPN:                 lpn,
		Quantity:            quantity,
		ReservedQuantity:    decimal.Zero,
		Status:              UnitStatusAvailable,
		BatchNumber:         u.BatchNumber,
		ExpiryDate:          u.ExpiryDate,
		FifoDate:            u.FifoDate,
	}
	u.AddDomainEvent(NewStockUnitSplitEvent(u, child))
	return child, nil
}

// AdjustTo overwrites the quantity to an absolute value (cycle count).
// Returns the absolute difference for the transaction record.
func (u *StockUnit) AdjustTo(quantity decimal.Decimal) (decimal.Decimal, error) {
	if quantity.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_QUANTITY", "Adjusted quantity cannot be negative")
	}
	if quantity.LessThan(u.ReservedQuantity) {
		return decimal.Zero, shared.NewDomainError("RESERVED_STOCK", "Adjusted quantity cannot undercut reservations")
	}
	diff := quantity.Sub(u.Quantity).Abs()
	old := u.Quantity
	u.Quantity = quantity
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	u.AddDomainEvent(NewStockUnitAdjustedEvent(u, old, quantity))
	return diff, nil
}

// Reserve books quantity on this unit for a pick task. The unit must be
// AVAILABLE and have enough unreserved headroom.
func (u *StockUnit) Reserve(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Reservation quantity must be positive")
	}
	if u.Status != UnitStatusAvailable {
		return shared.ErrInvalidState
	}
	if u.AvailableQuantity().LessThan(quantity) {
		return shared.ErrInsufficientStock
	}
	u.ReservedQuantity = u.ReservedQuantity.Add(quantity)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	u.AddDomainEvent(NewStockReservedEvent(u, quantity))
	return nil
}

// ReleaseReservation returns previously reserved quantity to available
// headroom without changing the physical quantity (allocation rollback).
func (u *StockUnit) ReleaseReservation(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}
	if u.ReservedQuantity.LessThan(quantity) {
		return shared.NewDomainError("INVALID_QUANTITY", "Release exceeds reserved quantity")
	}
	u.ReservedQuantity = u.ReservedQuantity.Sub(quantity)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	u.AddDomainEvent(NewStockReservationReleasedEvent(u, quantity))
	return nil
}

// ConfirmPick consumes reserved stock: both quantity and reserved
// quantity decrease by the picked amount.
func (u *StockUnit) ConfirmPick(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Pick quantity must be positive")
	}
	if u.ReservedQuantity.LessThan(quantity) {
		return shared.NewDomainError("INVALID_QUANTITY", "Pick exceeds reserved quantity")
	}
	u.Quantity = u.Quantity.Sub(quantity)
	u.ReservedQuantity = u.ReservedQuantity.Sub(quantity)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	u.AddDomainEvent(NewStockPickedEvent(u, quantity))
	return nil
}

// ChangeStatus moves the unit to a new status. A unit with outstanding
// reservations can only return to AVAILABLE; any other target would
// strand the reservations pointing at it.
func (u *StockUnit) ChangeStatus(status UnitStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown stock unit status")
	}
	if status == u.Status {
		return nil
	}
	if u.HasReservation() && status != UnitStatusAvailable {
		return shared.NewDomainError("RESERVED_STOCK", "Cannot change status of a unit with open reservations")
	}
	old := u.Status
	u.Status = status
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	u.AddDomainEvent(NewStockStatusChangedEvent(u, old, status))
	return nil
}

func equalExpiry(a, b *time.Time) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}
