package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wms/backend/internal/domain/shared"
)

// TransactionType represents the type of stock transaction
type TransactionType string

const (
	TransactionTypeReceive      TransactionType = "RECEIVE"
	TransactionTypePutaway      TransactionType = "PUTAWAY"
	TransactionTypeMove         TransactionType = "MOVE"
	TransactionTypePick         TransactionType = "PICK"
	TransactionTypeShip         TransactionType = "SHIP"
	TransactionTypeAdjustment   TransactionType = "ADJUSTMENT"
	TransactionTypeStatusChange TransactionType = "STATUS_CHANGE"
	TransactionTypeSplit        TransactionType = "SPLIT"
	TransactionTypeMerge        TransactionType = "MERGE"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeReceive,
		TransactionTypePutaway,
		TransactionTypeMove,
		TransactionTypePick,
		TransactionTypeShip,
		TransactionTypeAdjustment,
		TransactionTypeStatusChange,
		TransactionTypeSplit,
		TransactionTypeMerge:
		return true
	}
	return false
}

// IsMovement returns true for types that represent a physical quantity
// movement and therefore require a positive quantity.
func (t TransactionType) IsMovement() bool {
	switch t {
	case TransactionTypeReceive,
		TransactionTypePutaway,
		TransactionTypeMove,
		TransactionTypePick,
		TransactionTypeShip,
		TransactionTypeSplit,
		TransactionTypeMerge:
		return true
	}
	return false
}

// IsIncrease returns true if this type increases the unit's quantity
func (t TransactionType) IsIncrease() bool {
	return t == TransactionTypeReceive || t == TransactionTypePutaway
}

// IsDecrease returns true if this type decreases the unit's quantity
func (t TransactionType) IsDecrease() bool {
	return t == TransactionTypePick || t == TransactionTypeShip
}

// StockTransaction is an immutable record of a quantity-affecting event
// on the stock ledger. Rows are append-only: corrections are new rows,
// never updates. Every ledger-mutating operation writes exactly one
// record inside the same database transaction as the mutation.
type StockTransaction struct {
	shared.BaseEntity
	TenantID       uuid.UUID         `gorm:"type:uuid;not null;index:idx_stock_tx_tenant_time,priority:1"`
	StockUnitID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_stock_tx_unit"`
	ProductID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	Type           TransactionType   `gorm:"type:varchar(20);not null;index"`
	Quantity       decimal.Decimal   `gorm:"type:decimal(18,4);not null"` // always positive; direction is implied by Type
	FromLocationID *uuid.UUID        `gorm:"type:uuid"`
	ToLocationID   *uuid.UUID        `gorm:"type:uuid"`
	Reference      string            `gorm:"type:varchar(100)"` // source document number
	ActorID        uuid.UUID         `gorm:"type:uuid;not null"`
	OccurredAt     time.Time         `gorm:"not null;index:idx_stock_tx_tenant_time,priority:2"`
	Metadata       map[string]string `gorm:"serializer:json;type:jsonb"` // free-form tags for billing extraction
}

// TableName returns the table name for GORM
func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// NewStockTransaction creates a new stock transaction record
func NewStockTransaction(
	tenantID, stockUnitID, productID uuid.UUID,
	txType TransactionType,
	quantity decimal.Decimal,
	actorID uuid.UUID,
) (*StockTransaction, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if stockUnitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STOCK_UNIT", "Stock unit ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}
	if txType.IsMovement() && quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive for movement types")
	}
	if quantity.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	return &StockTransaction{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		StockUnitID: stockUnitID,
		ProductID:   productID,
		Type:        txType,
		Quantity:    quantity,
		ActorID:     actorID,
		OccurredAt:  time.Now(),
		Metadata:    make(map[string]string),
	}, nil
}

// WithLocations sets the from/to locations for the record
func (t *StockTransaction) WithLocations(from, to *uuid.UUID) *StockTransaction {
	t.FromLocationID = from
	t.ToLocationID = to
	return t
}

// WithReference sets the source document reference
func (t *StockTransaction) WithReference(reference string) *StockTransaction {
	t.Reference = reference
	return t
}

// WithMetadata adds a metadata tag to the record
func (t *StockTransaction) WithMetadata(key, value string) *StockTransaction {
	if t.Metadata == nil {
		t.Metadata = make(map[string]string)
	}
	t.Metadata[key] = value
	return t
}

// MetadataKeyDirection tags ADJUSTMENT records with the sign of the
// overwrite, since the stored quantity is the absolute difference.
const (
	MetadataKeyDirection = "direction"
	DirectionIncrease    = "increase"
	DirectionDecrease    = "decrease"
)

// SignedQuantity returns the quantity signed by direction: positive for
// increases, negative for decreases, zero contribution otherwise. MOVE,
// SPLIT, MERGE and STATUS_CHANGE do not change a unit's net book
// quantity, so they contribute zero when replaying the ledger.
func (t *StockTransaction) SignedQuantity() decimal.Decimal {
	switch {
	case t.Type.IsIncrease():
		return t.Quantity
	case t.Type.IsDecrease():
		return t.Quantity.Neg()
	case t.Type == TransactionTypeAdjustment:
		if t.Metadata[MetadataKeyDirection] == DirectionDecrease {
			return t.Quantity.Neg()
		}
		return t.Quantity
	default:
		return decimal.Zero
	}
}
