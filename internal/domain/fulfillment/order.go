package fulfillment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// OrderStatus represents the lifecycle state of a customer order.
// Transitions outside allocation (DRAFT→VERIFIED, RELEASED→PICKING, …)
// are owned by the order-lifecycle collaborator; the allocation core
// only reads the status and writes PLANNED.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusVerified  OrderStatus = "VERIFIED"
	OrderStatusPlanned   OrderStatus = "PLANNED"
	OrderStatusReleased  OrderStatus = "RELEASED"
	OrderStatusPicking   OrderStatus = "PICKING"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsAllocatable returns true if an order in this status may be allocated
func (s OrderStatus) IsAllocatable() bool {
	return s == OrderStatusDraft || s == OrderStatusVerified || s == OrderStatusPlanned
}

// LineStatus represents the fulfilment state of one order line
type LineStatus string

const (
	LineStatusShort     LineStatus = "SHORT"
	LineStatusPartial   LineStatus = "PARTIAL"
	LineStatusAllocated LineStatus = "ALLOCATED"
	LineStatusPicked    LineStatus = "PICKED"
)

// String returns the string representation of LineStatus
func (s LineStatus) String() string {
	return string(s)
}

// LineConstraints narrows which stock a line may be allocated from.
// A zero value places no constraint.
type LineConstraints struct {
	RequiredBatch    string `json:"required_batch,omitempty"`
	MinShelfLifeDays int    `json:"min_shelf_life_days,omitempty"`
}

// MinExpiryDate resolves the shelf-life constraint to the earliest
// acceptable expiry date, or nil when unconstrained.
func (c LineConstraints) MinExpiryDate(now time.Time) *time.Time {
	if c.MinShelfLifeDays <= 0 {
		return nil
	}
	d := now.AddDate(0, 0, c.MinShelfLifeDays)
	return &d
}

// OrderLine is one product demand within an order. Quantities are only
// mutated by the allocation engine and by pick completion.
type OrderLine struct {
	shared.BaseEntity
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	UomID        uuid.UUID       `gorm:"type:uuid;not null"`
	QtyOrdered   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QtyAllocated decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	QtyPicked    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status       LineStatus      `gorm:"type:varchar(20);not null;default:'SHORT'"`
	Constraints  LineConstraints `gorm:"serializer:json;type:jsonb"`
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "order_lines"
}

// NewOrderLine creates a new order line
func NewOrderLine(tenantID, orderID, productID, uomID uuid.UUID, qtyOrdered decimal.Decimal) (*OrderLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if qtyOrdered.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Ordered quantity must be positive")
	}
	return &OrderLine{
		BaseEntity:   shared.NewBaseEntity(),
		TenantID:     tenantID,
		OrderID:      orderID,
		ProductID:    productID,
		UomID:        uomID,
		QtyOrdered:   qtyOrdered,
		QtyAllocated: decimal.Zero,
		QtyPicked:    decimal.Zero,
		Status:       LineStatusShort,
	}, nil
}

// UnallocatedQuantity returns the demand not yet covered by reservations
func (l *OrderLine) UnallocatedQuantity() decimal.Decimal {
	return l.QtyOrdered.Sub(l.QtyAllocated)
}

// ApplyAllocation adds allocated quantity and re-derives the line status
func (l *OrderLine) ApplyAllocation(qty decimal.Decimal) error {
	if qty.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Allocated quantity cannot be negative")
	}
	if l.QtyAllocated.Add(qty).GreaterThan(l.QtyOrdered) {
		return shared.NewDomainError("INVALID_QUANTITY", "Allocation exceeds ordered quantity")
	}
	l.QtyAllocated = l.QtyAllocated.Add(qty)
	l.deriveStatus()
	l.UpdatedAt = time.Now()
	return nil
}

// MarkShort sets the line SHORT without touching quantities. Used by the
// fill-or-kill path after the in-memory rollback of a shortfall.
func (l *OrderLine) MarkShort() {
	l.Status = LineStatusShort
	l.UpdatedAt = time.Now()
}

// ApplyPick records picked quantity against the line. Short picks hand
// the unpicked remainder back to the unallocated pool.
func (l *OrderLine) ApplyPick(pickedQty, plannedQty decimal.Decimal) error {
	if pickedQty.IsNegative() || plannedQty.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Pick quantities must be positive")
	}
	if pickedQty.GreaterThan(plannedQty) {
		return shared.NewDomainError("INVALID_QUANTITY", "Picked quantity exceeds planned quantity")
	}
	shortfall := plannedQty.Sub(pickedQty)
	l.QtyPicked = l.QtyPicked.Add(pickedQty)
	l.QtyAllocated = l.QtyAllocated.Sub(shortfall)
	if l.QtyPicked.GreaterThanOrEqual(l.QtyOrdered) {
		l.Status = LineStatusPicked
	} else {
		l.deriveStatus()
	}
	l.UpdatedAt = time.Now()
	return nil
}

func (l *OrderLine) deriveStatus() {
	switch {
	case l.QtyAllocated.IsZero():
		l.Status = LineStatusShort
	case l.QtyAllocated.LessThan(l.QtyOrdered):
		l.Status = LineStatusPartial
	default:
		l.Status = LineStatusAllocated
	}
}

// Order is the customer order header as seen by the allocation core.
type Order struct {
	shared.TenantAggregateRoot
	Number      string      `gorm:"type:varchar(50);not null;uniqueIndex:idx_order_tenant_number,priority:2"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	WaveID      *uuid.UUID  `gorm:"type:uuid;index"`
	TaskCount   int         `gorm:"not null;default:0"` // pick tasks created by the last allocation run
	AllocatedAt *time.Time
	Lines       []OrderLine `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new draft order
func NewOrder(tenantID uuid.UUID, number string) (*Order, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Order number cannot be empty")
	}
	return &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Status:              OrderStatusDraft,
		Lines:               make([]OrderLine, 0),
	}, nil
}

// AddLine appends a new line to the order
func (o *Order) AddLine(productID, uomID uuid.UUID, qtyOrdered decimal.Decimal) (*OrderLine, error) {
	if !o.Status.IsAllocatable() {
		return nil, shared.ErrInvalidState
	}
	line, err := NewOrderLine(o.TenantID, o.ID, productID, uomID, qtyOrdered)
	if err != nil {
		return nil, err
	}
	o.Lines = append(o.Lines, *line)
	o.UpdatedAt = time.Now()
	return line, nil
}

// MarkPlanned stamps the allocation outcome on the order header
func (o *Order) MarkPlanned(taskCount int, at time.Time) error {
	if !o.Status.IsAllocatable() {
		return shared.ErrInvalidState
	}
	o.Status = OrderStatusPlanned
	o.TaskCount = taskCount
	o.AllocatedAt = &at
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}
