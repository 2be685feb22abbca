package fulfillment

import (
	"context"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// OrderRepository defines the persistence interface for orders as seen
// by the allocation core. The ForUpdate variant locks the header row so
// two concurrent allocation calls for the same order serialize.
type OrderRepository interface {
	// Create persists a new order with its lines
	Create(ctx context.Context, order *Order) error

	// FindByID finds an order (with lines) by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)

	// FindByIDForUpdate finds an order under an exclusive header lock
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Order, error)

	// ListByWave finds all orders belonging to a wave
	ListByWave(ctx context.Context, tenantID, waveID uuid.UUID) ([]Order, error)

	// List finds orders for a tenant
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Order, error)

	// Save persists header changes (status, allocation metrics)
	Save(ctx context.Context, order *Order) error

	// SaveLine persists changes to a single order line
	SaveLine(ctx context.Context, line *OrderLine) error

	// FindLineByID finds an order line by ID within a tenant
	FindLineByID(ctx context.Context, tenantID, lineID uuid.UUID) (*OrderLine, error)
}

// WaveRepository defines the persistence interface for waves
type WaveRepository interface {
	// Create persists a new wave
	Create(ctx context.Context, wave *Wave) error

	// FindByID finds a wave by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Wave, error)

	// FindByIDForUpdate finds a wave under an exclusive lock
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Wave, error)

	// Save persists changes to an existing wave
	Save(ctx context.Context, wave *Wave) error
}
