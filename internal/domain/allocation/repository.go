package allocation

import (
	"context"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// StrategyRepository defines the persistence interface for allocation strategies
type StrategyRepository interface {
	// FindByID finds a strategy by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*AllocationStrategy, error)

	// FindFirstActive returns the tenant's first active strategy (oldest
	// first). Returns shared.ErrNoActiveStrategy when none exists.
	FindFirstActive(ctx context.Context, tenantID uuid.UUID) (*AllocationStrategy, error)

	// List finds strategies for a tenant
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]AllocationStrategy, error)

	// Save creates or updates a strategy
	Save(ctx context.Context, strategy *AllocationStrategy) error
}

// PickTaskRepository defines the persistence interface for pick tasks
type PickTaskRepository interface {
	// Create persists a new pick task
	Create(ctx context.Context, task *PickTask) error

	// CreateAll persists multiple pick tasks in one statement
	CreateAll(ctx context.Context, tasks []*PickTask) error

	// FindByID finds a pick task by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*PickTask, error)

	// FindByIDForUpdate finds a pick task under an exclusive lock
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*PickTask, error)

	// ListByOrder returns all tasks created for an order
	ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]PickTask, error)

	// ListByLine returns all tasks created for an order line
	ListByLine(ctx context.Context, tenantID, orderLineID uuid.UUID) ([]PickTask, error)

	// Save persists changes to an existing pick task
	Save(ctx context.Context, task *PickTask) error
}
