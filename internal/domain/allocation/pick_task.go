package allocation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// PickTaskStatus represents the lifecycle state of a pick task
type PickTaskStatus string

const (
	PickTaskStatusPending    PickTaskStatus = "PENDING"
	PickTaskStatusAssigned   PickTaskStatus = "ASSIGNED"
	PickTaskStatusInProgress PickTaskStatus = "IN_PROGRESS"
	PickTaskStatusCompleted  PickTaskStatus = "COMPLETED"
	PickTaskStatusShort      PickTaskStatus = "SHORT"
)

// IsValid returns true if the pick task status is valid
func (s PickTaskStatus) IsValid() bool {
	switch s {
	case PickTaskStatusPending, PickTaskStatusAssigned, PickTaskStatusInProgress,
		PickTaskStatusCompleted, PickTaskStatusShort:
		return true
	}
	return false
}

// IsTerminal returns true for states that end the task lifecycle
func (s PickTaskStatus) IsTerminal() bool {
	return s == PickTaskStatusCompleted || s == PickTaskStatusShort
}

// String returns the string representation of PickTaskStatus
func (s PickTaskStatus) String() string {
	return string(s)
}

// PickTask records a reserved-but-not-yet-executed pick. It bridges the
// allocation engine (which creates tasks) and physical pick execution
// (which drives them to a terminal state).
type PickTask struct {
	shared.TenantAggregateRoot
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderLineID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	StockUnitID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	FromLocationID uuid.UUID       `gorm:"type:uuid;not null"`
	ToLocationID   *uuid.UUID      `gorm:"type:uuid"` // optional staging location
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityPicked decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status         PickTaskStatus  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
}

// TableName returns the table name for GORM
func (PickTask) TableName() string {
	return "pick_tasks"
}

// NewPickTask creates a pending pick task for a reserved quantity
func NewPickTask(
	tenantID, orderID, orderLineID, stockUnitID, fromLocationID uuid.UUID,
	quantity decimal.Decimal,
) (*PickTask, error) {
	if orderID == uuid.Nil || orderLineID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order and line IDs cannot be empty")
	}
	if stockUnitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STOCK_UNIT", "Stock unit ID cannot be empty")
	}
	if fromLocationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "From-location ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Pick quantity must be positive")
	}

	return &PickTask{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderID:             orderID,
		OrderLineID:         orderLineID,
		StockUnitID:         stockUnitID,
		FromLocationID:      fromLocationID,
		Quantity:            quantity,
		QuantityPicked:      decimal.Zero,
		Status:              PickTaskStatusPending,
	}, nil
}

// WithStagingLocation sets the optional to-location for the task
func (t *PickTask) WithStagingLocation(locationID uuid.UUID) *PickTask {
	t.ToLocationID = &locationID
	return t
}

// Assign moves the task from PENDING to ASSIGNED
func (t *PickTask) Assign() error {
	if t.Status != PickTaskStatusPending {
		return shared.ErrInvalidState
	}
	t.Status = PickTaskStatusAssigned
	t.touch()
	return nil
}

// Start moves the task to IN_PROGRESS
func (t *PickTask) Start() error {
	if t.Status != PickTaskStatusPending && t.Status != PickTaskStatusAssigned {
		return shared.ErrInvalidState
	}
	t.Status = PickTaskStatusInProgress
	t.touch()
	return nil
}

// Complete records the picked quantity and moves the task to COMPLETED,
// or to SHORT when less than the planned quantity could be picked.
func (t *PickTask) Complete(pickedQty decimal.Decimal) error {
	if t.Status.IsTerminal() {
		return shared.ErrInvalidState
	}
	if pickedQty.IsNegative() || pickedQty.GreaterThan(t.Quantity) {
		return shared.NewDomainError("INVALID_QUANTITY", "Picked quantity must be between 0 and the task quantity")
	}
	t.QuantityPicked = pickedQty
	if pickedQty.Equal(t.Quantity) {
		t.Status = PickTaskStatusCompleted
	} else {
		t.Status = PickTaskStatusShort
	}
	t.touch()
	return nil
}

// ShortfallQuantity returns the planned quantity that was not picked
func (t *PickTask) ShortfallQuantity() decimal.Decimal {
	return t.Quantity.Sub(t.QuantityPicked)
}

func (t *PickTask) touch() {
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}
