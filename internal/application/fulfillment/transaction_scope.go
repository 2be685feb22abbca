package fulfillment

import (
	"context"

	"github.com/wms/backend/internal/domain/allocation"
	"github.com/wms/backend/internal/domain/fulfillment"
)

// TransactionScope provides atomic execution across order and wave
// repositories.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories bound to the
// scope's transaction.
type TransactionalRepositories interface {
	// Orders returns the order repository
	Orders() fulfillment.OrderRepository

	// Waves returns the wave repository
	Waves() fulfillment.WaveRepository

	// Strategies returns the allocation strategy repository
	Strategies() allocation.StrategyRepository

	// PickTasks returns the pick task repository
	PickTasks() allocation.PickTaskRepository
}
