package allocation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/allocation"
	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/masterdata"
	"github.com/wms/backend/internal/domain/shared"
)

// AllocationService turns order demand into stock reservations and pick
// tasks, driven by a tenant-configured strategy. One call is one
// transaction: every candidate read takes a row lock, so concurrent
// allocation runs against the same stock serialize at the database.
type AllocationService struct {
	scope      TransactionScope
	masterData masterdata.Lookup
	logger     *zap.Logger
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(scope TransactionScope, masterData masterdata.Lookup, logger *zap.Logger) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{
		scope:      scope,
		masterData: masterData,
		logger:     logger,
	}
}

// CreateStrategy validates and persists a new allocation strategy.
// Every warehouse named in a PRIORITY list must exist.
func (s *AllocationService) CreateStrategy(ctx context.Context, cmd CreateStrategyCommand) (*allocation.AllocationStrategy, error) {
	strategy, err := allocation.NewAllocationStrategy(cmd.TenantID, cmd.Name, cmd.Picking, cmd.Partial, cmd.Warehouses)
	if err != nil {
		return nil, err
	}
	for _, warehouseID := range cmd.Warehouses.PriorityList {
		if _, err := s.masterData.FindWarehouse(ctx, cmd.TenantID, warehouseID); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.Strategies().Save(ctx, strategy)
	})
	if err != nil {
		return nil, err
	}
	return strategy, nil
}

// SetStrategyActive flips the strategy's active flag. Inactive
// strategies stay addressable by ID but are never resolved as the
// tenant default.
func (s *AllocationService) SetStrategyActive(ctx context.Context, tenantID, strategyID uuid.UUID, active bool) (*allocation.AllocationStrategy, error) {
	var strategy *allocation.AllocationStrategy
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.Strategies().FindByID(ctx, tenantID, strategyID)
		if err != nil {
			return err
		}
		if active {
			found.Activate()
		} else {
			found.Deactivate()
		}
		if err := repos.Strategies().Save(ctx, found); err != nil {
			return err
		}
		strategy = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("allocation strategy updated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("strategy_id", strategyID.String()),
		zap.Bool("active", active),
	)
	return strategy, nil
}

// GetStrategy returns one strategy by ID
func (s *AllocationService) GetStrategy(ctx context.Context, tenantID, strategyID uuid.UUID) (*allocation.AllocationStrategy, error) {
	var strategy *allocation.AllocationStrategy
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.Strategies().FindByID(ctx, tenantID, strategyID)
		if err != nil {
			return err
		}
		strategy = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return strategy, nil
}

// ListStrategies returns the tenant's strategies matching the filter
func (s *AllocationService) ListStrategies(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]allocation.AllocationStrategy, error) {
	var strategies []allocation.AllocationStrategy
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.Strategies().List(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		strategies = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return strategies, nil
}

// AllocateOrder allocates every open line of one order. The order header
// is locked for the duration so two runs against the same order
// serialize; stock unit rows are locked as they are read.
func (s *AllocationService) AllocateOrder(ctx context.Context, cmd AllocateOrderCommand) (*OrderResult, error) {
	if cmd.StagingLocationID != nil {
		if _, err := s.masterData.FindLocation(ctx, cmd.TenantID, *cmd.StagingLocationID); err != nil {
			return nil, err
		}
	}

	var result *OrderResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		order, err := repos.Orders().FindByIDForUpdate(ctx, cmd.TenantID, cmd.OrderID)
		if err != nil {
			return err
		}
		strategy, err := s.resolveStrategy(ctx, repos, cmd.TenantID, cmd.StrategyID)
		if err != nil {
			return err
		}
		r, err := s.allocateOrder(ctx, repos, strategy, order, cmd.StagingLocationID)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order allocated",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("order_id", cmd.OrderID.String()),
		zap.Int("task_count", result.TaskCount),
	)
	return result, nil
}

// AllocateWave allocates every order in a wave under the wave's
// strategy. Orders already past allocation are skipped, not failed, so
// a partially processed wave can be re-run.
func (s *AllocationService) AllocateWave(ctx context.Context, cmd AllocateWaveCommand) (*WaveResult, error) {
	var result *WaveResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		wave, err := repos.Waves().FindByIDForUpdate(ctx, cmd.TenantID, cmd.WaveID)
		if err != nil {
			return err
		}
		if wave.Status != fulfillment.WaveStatusPlanning {
			return shared.ErrInvalidState
		}
		strategy, err := s.resolveStrategy(ctx, repos, cmd.TenantID, &wave.StrategyID)
		if err != nil {
			return err
		}

		orders, err := repos.Orders().ListByWave(ctx, cmd.TenantID, cmd.WaveID)
		if err != nil {
			return err
		}

		wr := &WaveResult{WaveID: wave.ID}
		for i := range orders {
			order, err := repos.Orders().FindByIDForUpdate(ctx, cmd.TenantID, orders[i].ID)
			if err != nil {
				return err
			}
			if !order.Status.IsAllocatable() {
				continue
			}
			or, err := s.allocateOrder(ctx, repos, strategy, order, nil)
			if err != nil {
				return err
			}
			wr.Orders = append(wr.Orders, *or)
		}

		if err := wave.MarkAllocated(); err != nil {
			return err
		}
		if err := repos.Waves().Save(ctx, wave); err != nil {
			return err
		}
		wr.Status = wave.Status
		result = wr
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wave allocated",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("wave_id", cmd.WaveID.String()),
		zap.Int("order_count", len(result.Orders)),
	)
	return result, nil
}

// allocateOrder runs the per-line algorithm for one locked order and
// stamps the outcome on the header.
func (s *AllocationService) allocateOrder(
	ctx context.Context,
	repos TransactionalRepositories,
	strategy *allocation.AllocationStrategy,
	order *fulfillment.Order,
	stagingLocationID *uuid.UUID,
) (*OrderResult, error) {
	if !order.Status.IsAllocatable() {
		return nil, shared.ErrInvalidState
	}

	now := time.Now()
	result := &OrderResult{OrderID: order.ID, OrderNumber: order.Number}

	for i := range order.Lines {
		line := &order.Lines[i]
		lr, err := s.allocateLine(ctx, repos, strategy, order, line, stagingLocationID, now)
		if err != nil {
			return nil, err
		}
		if err := repos.Orders().SaveLine(ctx, line); err != nil {
			return nil, err
		}
		result.TaskCount += lr.TaskCount
		result.Lines = append(result.Lines, lr)
	}

	if err := order.MarkPlanned(result.TaskCount, now); err != nil {
		return nil, err
	}
	if err := repos.Orders().Save(ctx, order); err != nil {
		return nil, err
	}
	result.Status = order.Status
	return result, nil
}

// allocateLine searches candidate warehouses for one line, buffering
// reservations and tasks in memory. The buffer is flushed only when the
// partial policy allows the outcome; a FILL_OR_KILL shortfall discards
// it and leaves the line untouched.
func (s *AllocationService) allocateLine(
	ctx context.Context,
	repos TransactionalRepositories,
	strategy *allocation.AllocationStrategy,
	order *fulfillment.Order,
	line *fulfillment.OrderLine,
	stagingLocationID *uuid.UUID,
	now time.Time,
) (LineResult, error) {
	result := LineResult{
		LineID:    line.ID,
		ProductID: line.ProductID,
		Requested: line.UnallocatedQuantity(),
		Allocated: decimal.Zero,
		Status:    line.Status,
	}
	remaining := line.UnallocatedQuantity()
	if remaining.LessThanOrEqual(decimal.Zero) {
		return result, nil
	}

	warehouses, err := s.candidateWarehouses(ctx, repos, strategy, line.TenantID, line.ProductID)
	if err != nil {
		return result, err
	}

	var (
		pendingUnits []*inventory.StockUnit
		pendingTasks []*allocation.PickTask
	)

	for _, warehouseID := range warehouses {
		if remaining.IsZero() {
			break
		}
		query := inventory.AllocationQuery{
			WarehouseID:   warehouseID,
			ProductID:     line.ProductID,
			RequiredBatch: line.Constraints.RequiredBatch,
			MinExpiryDate: line.Constraints.MinExpiryDate(now),
		}
		units, err := repos.Units().FindAllocatable(ctx, line.TenantID, query)
		if err != nil {
			return result, err
		}
		allocation.SortCandidates(strategy.PickingPolicy, units)

		for i := range units {
			if remaining.IsZero() {
				break
			}
			unit := &units[i]
			take := decimal.Min(remaining, unit.AvailableQuantity())
			if take.LessThanOrEqual(decimal.Zero) {
				continue
			}
			if err := unit.Reserve(take); err != nil {
				return result, err
			}
			task, err := allocation.NewPickTask(line.TenantID, order.ID, line.ID, unit.ID, unit.LocationID, take)
			if err != nil {
				return result, err
			}
			if stagingLocationID != nil {
				task.WithStagingLocation(*stagingLocationID)
			}
			pendingUnits = append(pendingUnits, unit)
			pendingTasks = append(pendingTasks, task)
			remaining = remaining.Sub(take)
		}
	}

	// Fill-or-kill reverts the whole line: nothing was persisted yet, so
	// dropping the buffer is the rollback.
	if remaining.GreaterThan(decimal.Zero) && strategy.PartialPolicy == allocation.PartialPolicyFillOrKill {
		line.MarkShort()
		result.Status = line.Status
		return result, nil
	}
	if len(pendingTasks) == 0 {
		line.MarkShort()
		result.Status = line.Status
		return result, nil
	}

	for _, unit := range pendingUnits {
		if err := repos.Units().Save(ctx, unit); err != nil {
			return result, err
		}
	}
	if err := repos.PickTasks().CreateAll(ctx, pendingTasks); err != nil {
		return result, err
	}

	allocated := result.Requested.Sub(remaining)
	if err := line.ApplyAllocation(allocated); err != nil {
		return result, err
	}
	result.Allocated = allocated
	result.Status = line.Status
	result.TaskCount = len(pendingTasks)
	return result, nil
}

// candidateWarehouses resolves the ordered warehouse list for one line.
// PRIORITY follows the strategy's configured order, falling back to the
// warehouse master data priority when the strategy carries no explicit
// list; OPTIMAL ranks by current unreserved availability, highest first.
// The list is cut to MaxSplits before any stock is searched: a warehouse
// inside the window that turns out to be empty does not open a slot for
// the next one.
func (s *AllocationService) candidateWarehouses(
	ctx context.Context,
	repos TransactionalRepositories,
	strategy *allocation.AllocationStrategy,
	tenantID, productID uuid.UUID,
) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if strategy.Warehouses.Mode == allocation.WarehouseModePriority {
		if len(strategy.Warehouses.PriorityList) > 0 {
			ids = strategy.Warehouses.PriorityList
		} else {
			warehouses, err := s.masterData.ListWarehousesByPriority(ctx, tenantID)
			if err != nil {
				return nil, err
			}
			ids = make([]uuid.UUID, 0, len(warehouses))
			for _, w := range warehouses {
				ids = append(ids, w.ID)
			}
		}
	} else {
		rows, err := repos.Units().AvailableByWarehouse(ctx, tenantID, productID)
		if err != nil {
			return nil, err
		}
		ids = make([]uuid.UUID, 0, len(rows))
		for _, row := range rows {
			if row.Available.GreaterThan(decimal.Zero) {
				ids = append(ids, row.WarehouseID)
			}
		}
	}
	if len(ids) > strategy.Warehouses.MaxSplits {
		ids = ids[:strategy.Warehouses.MaxSplits]
	}
	return ids, nil
}

// resolveStrategy loads the requested strategy, or the tenant's first
// active one when none was named. Stored strategies are re-validated
// before steering an allocation run.
func (s *AllocationService) resolveStrategy(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID uuid.UUID,
	strategyID *uuid.UUID,
) (*allocation.AllocationStrategy, error) {
	var (
		strategy *allocation.AllocationStrategy
		err      error
	)
	if strategyID != nil && *strategyID != uuid.Nil {
		strategy, err = repos.Strategies().FindByID(ctx, tenantID, *strategyID)
	} else {
		strategy, err = repos.Strategies().FindFirstActive(ctx, tenantID)
	}
	if err != nil {
		return nil, err
	}
	if err := strategy.Validate(); err != nil {
		return nil, err
	}
	return strategy, nil
}
