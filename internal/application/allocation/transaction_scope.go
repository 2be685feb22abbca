package allocation

import (
	"context"

	"github.com/wms/backend/internal/domain/allocation"
	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/domain/inventory"
)

// TransactionScope provides atomic execution across the repositories an
// allocation run touches. Row locks taken inside the scope are held
// until the scope commits or rolls back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to repositories bound to the
// scope's transaction.
type TransactionalRepositories interface {
	// Units returns the stock unit repository
	Units() inventory.StockUnitRepository

	// Transactions returns the transaction log repository
	Transactions() inventory.StockTransactionRepository

	// PickTasks returns the pick task repository
	PickTasks() allocation.PickTaskRepository

	// Orders returns the order repository
	Orders() fulfillment.OrderRepository

	// Waves returns the wave repository
	Waves() fulfillment.WaveRepository

	// Strategies returns the allocation strategy repository
	Strategies() allocation.StrategyRepository
}
