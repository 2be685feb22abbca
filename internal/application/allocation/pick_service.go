package allocation

import (
	"context"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
)

// PickService confirms executed pick tasks against the stock ledger.
// A confirmation consumes the reservation, appends a PICK record, and
// hands any shortfall back to the line's unallocated pool.
type PickService struct {
	scope     TransactionScope
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// NewPickService creates a new PickService
func NewPickService(scope TransactionScope, logger *zap.Logger) *PickService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PickService{scope: scope, logger: logger}
}

// SetEventPublisher sets the optional post-commit event publisher
func (s *PickService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// CompletePick records the executed quantity for a pick task. The
// picked amount leaves both quantity and reservation on the stock unit;
// an unpicked remainder only releases its reservation, the stock stays
// where it is.
func (s *PickService) CompletePick(ctx context.Context, cmd CompletePickCommand) (*CompletePickResult, error) {
	var (
		result CompletePickResult
		unit   *inventory.StockUnit
	)
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		task, err := repos.PickTasks().FindByIDForUpdate(ctx, cmd.TenantID, cmd.TaskID)
		if err != nil {
			return err
		}
		if task.Status.IsTerminal() {
			return shared.ErrInvalidState
		}

		u, err := repos.Units().FindByIDForUpdate(ctx, cmd.TenantID, task.StockUnitID)
		if err != nil {
			return err
		}

		picked := cmd.QuantityPicked
		if err := task.Complete(picked); err != nil {
			return err
		}
		shortfall := task.ShortfallQuantity()

		if picked.IsPositive() {
			if err := u.ConfirmPick(picked); err != nil {
				return err
			}
		}
		if shortfall.IsPositive() {
			if err := u.ReleaseReservation(shortfall); err != nil {
				return err
			}
		}
		if err := repos.Units().Save(ctx, u); err != nil {
			return err
		}

		if picked.IsPositive() {
			record, err := inventory.NewStockTransaction(
				cmd.TenantID, u.ID, u.ProductID,
				inventory.TransactionTypePick, picked, cmd.ActorID,
			)
			if err != nil {
				return err
			}
			record.WithLocations(&task.FromLocationID, task.ToLocationID).
				WithMetadata("pick_task_id", task.ID.String()).
				WithMetadata("order_id", task.OrderID.String())
			if shortfall.IsPositive() {
				record.WithMetadata("shortfall", shortfall.String())
			}
			if err := repos.Transactions().Append(ctx, record); err != nil {
				return err
			}
		}

		if err := repos.PickTasks().Save(ctx, task); err != nil {
			return err
		}

		line, err := repos.Orders().FindLineByID(ctx, cmd.TenantID, task.OrderLineID)
		if err != nil {
			return err
		}
		if err := line.ApplyPick(picked, task.Quantity); err != nil {
			return err
		}
		if err := repos.Orders().SaveLine(ctx, line); err != nil {
			return err
		}

		result.Task = task
		result.Shortfall = shortfall
		unit = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, unit)
	s.logger.Info("pick completed",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("task_id", cmd.TaskID.String()),
		zap.String("quantity_picked", cmd.QuantityPicked.String()),
		zap.String("status", result.Task.Status.String()),
	)
	return &result, nil
}

func (s *PickService) publishEvents(ctx context.Context, unit *inventory.StockUnit) {
	if s.publisher == nil || unit == nil {
		return
	}
	events := unit.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish stock events", zap.Error(err))
	}
	unit.ClearDomainEvents()
}
