package fulfillment

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/allocation"
	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/domain/masterdata"
	"github.com/wms/backend/internal/domain/shared"
)

// OrderService manages orders and waves around the allocation engine:
// intake of demand and grouping into waves. Status transitions past
// allocation (release, ship) stay with the execution systems.
type OrderService struct {
	scope      TransactionScope
	masterData masterdata.Lookup
	logger     *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(scope TransactionScope, masterData masterdata.Lookup, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		scope:      scope,
		masterData: masterData,
		logger:     logger,
	}
}

// CreateOrder creates a draft order with its lines
func (s *OrderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*fulfillment.Order, error) {
	if len(cmd.Lines) == 0 {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order must have at least one line")
	}
	for _, input := range cmd.Lines {
		if _, err := s.masterData.FindProduct(ctx, cmd.TenantID, input.ProductID); err != nil {
			return nil, err
		}
	}

	order, err := fulfillment.NewOrder(cmd.TenantID, cmd.Number)
	if err != nil {
		return nil, err
	}
	for _, input := range cmd.Lines {
		if _, err := order.AddLine(input.ProductID, input.UomID, input.Quantity); err != nil {
			return nil, err
		}
		order.Lines[len(order.Lines)-1].Constraints = fulfillment.LineConstraints{
			RequiredBatch:    input.RequiredBatch,
			MinShelfLifeDays: input.MinShelfLifeDays,
		}
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("order_number", order.Number),
		zap.Int("line_count", len(order.Lines)),
	)
	return order, nil
}

// CreateWave creates a wave and attaches the given orders to it. Only
// orders that are still allocatable may join a wave.
func (s *OrderService) CreateWave(ctx context.Context, cmd CreateWaveCommand) (*fulfillment.Wave, error) {
	if len(cmd.OrderIDs) == 0 {
		return nil, shared.NewDomainError("INVALID_WAVE", "Wave must have at least one order")
	}

	wave, err := fulfillment.NewWave(cmd.TenantID, cmd.Number, cmd.StrategyID)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if _, err := repos.Strategies().FindByID(ctx, cmd.TenantID, cmd.StrategyID); err != nil {
			return err
		}
		if err := repos.Waves().Create(ctx, wave); err != nil {
			return err
		}
		for _, orderID := range cmd.OrderIDs {
			order, err := repos.Orders().FindByIDForUpdate(ctx, cmd.TenantID, orderID)
			if err != nil {
				return err
			}
			if !order.Status.IsAllocatable() {
				return shared.ErrInvalidState
			}
			if order.WaveID != nil {
				return shared.NewDomainError("ORDER_IN_WAVE", "Order already belongs to a wave")
			}
			waveID := wave.ID
			order.WaveID = &waveID
			if err := repos.Orders().Save(ctx, order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wave created",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("wave_number", wave.Number),
		zap.Int("order_count", len(cmd.OrderIDs)),
	)
	return wave, nil
}

// GetOrder returns an order with its lines
func (s *OrderService) GetOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*fulfillment.Order, error) {
	var order *fulfillment.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().FindByID(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	return order, err
}

// ListOrders returns orders for a tenant
func (s *OrderService) ListOrders(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]fulfillment.Order, error) {
	var orders []fulfillment.Order
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := repos.Orders().List(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		orders = o
		return nil
	})
	return orders, err
}

// ListOrderTasks returns the pick tasks created for an order
func (s *OrderService) ListOrderTasks(ctx context.Context, tenantID, orderID uuid.UUID) ([]allocation.PickTask, error) {
	var tasks []allocation.PickTask
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		t, err := repos.PickTasks().ListByOrder(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		tasks = t
		return nil
	})
	return tasks, err
}
