package fulfillment

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineInput is one product demand on a new order
type OrderLineInput struct {
	ProductID        uuid.UUID
	UomID            uuid.UUID
	Quantity         decimal.Decimal
	RequiredBatch    string
	MinShelfLifeDays int
}

// CreateOrderCommand creates a draft order with its lines
type CreateOrderCommand struct {
	TenantID uuid.UUID
	Number   string
	Lines    []OrderLineInput
}

// CreateWaveCommand groups existing orders into a new wave under one
// allocation strategy
type CreateWaveCommand struct {
	TenantID   uuid.UUID
	Number     string
	StrategyID uuid.UUID
	OrderIDs   []uuid.UUID
}
