package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/masterdata"
	"github.com/wms/backend/internal/domain/shared"
)

// StockService handles the stock-mutating operations of the ledger:
// receive (with consolidation), move (with consolidation and split),
// adjust and status changes. Each operation runs in one transaction
// scope; the matching transaction-log record is appended inside the
// same scope.
type StockService struct {
	scope      TransactionScope
	masterData masterdata.Lookup
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(scope TransactionScope, masterData masterdata.Lookup, logger *zap.Logger) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockService{
		scope:      scope,
		masterData: masterData,
		logger:     logger,
	}
}

// SetEventPublisher sets the optional post-commit event publisher
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Receive puts stock on the ledger. When an AVAILABLE unit with the same
// product, location, depositor, batch and expiry already exists the
// quantity consolidates into it; otherwise a new unit is created with a
// fresh fifo date.
func (s *StockService) Receive(ctx context.Context, cmd ReceiveCommand) (*ReceiveResult, error) {
	if cmd.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Receive quantity must be positive")
	}
	if err := s.validateMasterData(ctx, cmd.TenantID, cmd.ProductID, cmd.DepositorID, cmd.LocationID); err != nil {
		return nil, err
	}

	var result ReceiveResult
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		if cmd.LPN != "" {
			inUse, err := repos.Units().ExistsByLPN(ctx, cmd.TenantID, cmd.LPN)
			if err != nil {
				return err
			}
			if inUse {
				return shared.ErrAlreadyExists
			}
		}

		key := inventory.ConsolidationKey{
			ProductID:   cmd.ProductID,
			LocationID:  cmd.LocationID,
			DepositorID: cmd.DepositorID,
			BatchNumber: cmd.BatchNumber,
			ExpiryDate:  cmd.ExpiryDate,
		}
		target, err := repos.Units().FindConsolidationTarget(ctx, cmd.TenantID, key, uuid.Nil)
		switch {
		case err == nil:
			if err := target.AddQuantity(cmd.Quantity); err != nil {
				return err
			}
			if err := repos.Units().Save(ctx, target); err != nil {
				return err
			}
			result.Unit = target
			result.Consolidated = true
		case errors.Is(err, shared.ErrNotFound):
			lpn := cmd.LPN
			if lpn == "" {
				lpn = generateLPN()
			}
			unit, err := inventory.NewStockUnit(
				cmd.TenantID, cmd.DepositorID, cmd.ProductID, cmd.WarehouseID, cmd.LocationID,
				lpn, cmd.Quantity, cmd.BatchNumber, cmd.ExpiryDate,
			)
			if err != nil {
				return err
			}
			if err := repos.Units().Create(ctx, unit); err != nil {
				return err
			}
			result.Unit = unit
		default:
			return err
		}

		record, err := inventory.NewStockTransaction(
			cmd.TenantID, result.Unit.ID, cmd.ProductID,
			inventory.TransactionTypeReceive, cmd.Quantity, cmd.ActorID,
		)
		if err != nil {
			return err
		}
		record.WithLocations(nil, &cmd.LocationID).
			WithReference(cmd.Reference).
			WithMetadata("consolidated", boolTag(result.Consolidated)).
			WithMetadata("lpn", result.Unit.LPN)
		return repos.Transactions().Append(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, result.Unit)
	s.logger.Info("stock received",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("lpn", result.Unit.LPN),
		zap.String("quantity", cmd.Quantity.String()),
		zap.Bool("consolidated", result.Consolidated),
	)
	return &result, nil
}

// Move relocates all or part of a stock unit. A unit carrying open
// reservations keeps its identity: consolidation into another unit is
// refused because the reservations would silently point at the wrong
// physical unit.
func (s *StockService) Move(ctx context.Context, cmd MoveCommand) (*MoveResult, error) {
	location, err := s.masterData.FindLocation(ctx, cmd.TenantID, cmd.ToLocationID)
	if err != nil {
		return nil, err
	}

	var result MoveResult
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		source, err := repos.Units().FindByLPNForUpdate(ctx, cmd.TenantID, cmd.LPN)
		if err != nil {
			return err
		}
		result.SourceID = source.ID

		moveQty := source.Quantity
		if cmd.Quantity != nil {
			moveQty = *cmd.Quantity
		}
		if moveQty.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_QUANTITY", "Move quantity must be positive")
		}
		if moveQty.GreaterThan(source.Quantity) {
			return shared.ErrInsufficientStock
		}
		fullMove := moveQty.Equal(source.Quantity)

		// A reserved source must keep its identity, so consolidation is
		// only considered when nothing is booked on it.
		var target *inventory.StockUnit
		if !source.HasReservation() {
			key := inventory.ConsolidationKey{
				ProductID:   source.ProductID,
				LocationID:  cmd.ToLocationID,
				DepositorID: source.DepositorID,
				BatchNumber: source.BatchNumber,
				ExpiryDate:  source.ExpiryDate,
			}
			t, err := repos.Units().FindConsolidationTarget(ctx, cmd.TenantID, key, source.ID)
			if err != nil && !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			// the domain check re-validates the row the query handed back;
			// a target that fails it is treated as no target at all
			if t != nil && source.CanConsolidateWith(t) {
				target = t
			}
		}

		switch {
		case target != nil:
			if err := target.AddQuantity(moveQty); err != nil {
				return err
			}
			if err := repos.Units().Save(ctx, target); err != nil {
				return err
			}
			if fullMove {
				if err := repos.Units().Delete(ctx, cmd.TenantID, source.ID); err != nil {
					return err
				}
				result.SourceMerged = true
			} else {
				if err := source.RemoveQuantity(moveQty); err != nil {
					return err
				}
				if err := repos.Units().Save(ctx, source); err != nil {
					return err
				}
				result.Partial = true
			}
			result.Unit = target
			result.Consolidated = true
		case fullMove:
			if err := source.Relocate(location.WarehouseID, cmd.ToLocationID); err != nil {
				return err
			}
			if err := repos.Units().Save(ctx, source); err != nil {
				return err
			}
			result.Unit = source
		default:
			child, err := source.Split(location.WarehouseID, cmd.ToLocationID, moveQty, generateLPN())
			if err != nil {
				return err
			}
			if err := repos.Units().Save(ctx, source); err != nil {
				return err
			}
			if err := repos.Units().Create(ctx, child); err != nil {
				return err
			}
			result.Unit = child
			result.Partial = true
		}

		fromLocation := sourceLocation(source, result)
		record, err := inventory.NewStockTransaction(
			cmd.TenantID, result.Unit.ID, result.Unit.ProductID,
			inventory.TransactionTypeMove, moveQty, cmd.ActorID,
		)
		if err != nil {
			return err
		}
		record.WithLocations(&fromLocation, &cmd.ToLocationID).
			WithReference(cmd.Reference).
			WithMetadata("partial", boolTag(result.Partial)).
			WithMetadata("consolidated", boolTag(result.Consolidated)).
			WithMetadata("source_unit_id", result.SourceID.String())
		return repos.Transactions().Append(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, result.Unit)
	s.logger.Info("stock moved",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("lpn", cmd.LPN),
		zap.String("to_location_id", cmd.ToLocationID.String()),
		zap.Bool("partial", result.Partial),
		zap.Bool("consolidated", result.Consolidated),
	)
	return &result, nil
}

// Adjust overwrites a unit's quantity to an absolute value, recording
// the absolute difference and its direction in the transaction log.
func (s *StockService) Adjust(ctx context.Context, cmd AdjustCommand) (*inventory.StockUnit, error) {
	if cmd.Reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}

	var unit *inventory.StockUnit
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		u, err := repos.Units().FindByLPNForUpdate(ctx, cmd.TenantID, cmd.LPN)
		if err != nil {
			return err
		}
		direction := inventory.DirectionIncrease
		if cmd.NewQuantity.LessThan(u.Quantity) {
			direction = inventory.DirectionDecrease
		}
		diff, err := u.AdjustTo(cmd.NewQuantity)
		if err != nil {
			return err
		}
		if err := repos.Units().Save(ctx, u); err != nil {
			return err
		}

		record, err := inventory.NewStockTransaction(
			cmd.TenantID, u.ID, u.ProductID,
			inventory.TransactionTypeAdjustment, diff, cmd.ActorID,
		)
		if err != nil {
			return err
		}
		record.WithMetadata("reason", cmd.Reason).
			WithMetadata(inventory.MetadataKeyDirection, direction)
		if err := repos.Transactions().Append(ctx, record); err != nil {
			return err
		}
		unit = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, unit)
	s.logger.Info("stock adjusted",
		zap.String("tenant_id", cmd.TenantID.String()),
		zap.String("lpn", cmd.LPN),
		zap.String("new_quantity", cmd.NewQuantity.String()),
		zap.String("reason", cmd.Reason),
	)
	return unit, nil
}

// ChangeStatus moves a unit to a new status and logs a STATUS_CHANGE record
func (s *StockService) ChangeStatus(ctx context.Context, cmd ChangeStatusCommand) (*inventory.StockUnit, error) {
	var unit *inventory.StockUnit
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		u, err := repos.Units().FindByLPNForUpdate(ctx, cmd.TenantID, cmd.LPN)
		if err != nil {
			return err
		}
		old := u.Status
		if err := u.ChangeStatus(cmd.Status); err != nil {
			return err
		}
		if old == u.Status {
			unit = u
			return nil // no-op change, nothing to record
		}
		if err := repos.Units().Save(ctx, u); err != nil {
			return err
		}

		record, err := inventory.NewStockTransaction(
			cmd.TenantID, u.ID, u.ProductID,
			inventory.TransactionTypeStatusChange, u.Quantity, cmd.ActorID,
		)
		if err != nil {
			return err
		}
		record.WithMetadata("old_status", old.String()).
			WithMetadata("new_status", u.Status.String()).
			WithMetadata("reason", cmd.Reason)
		if err := repos.Transactions().Append(ctx, record); err != nil {
			return err
		}
		unit = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, unit)
	return unit, nil
}

// GetByLPN returns a stock unit without locking it
func (s *StockService) GetByLPN(ctx context.Context, tenantID uuid.UUID, lpn string) (*inventory.StockUnit, error) {
	var unit *inventory.StockUnit
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		u, err := repos.Units().FindByLPN(ctx, tenantID, lpn)
		if err != nil {
			return err
		}
		unit = u
		return nil
	})
	return unit, err
}

// List returns stock units for a tenant with filtering and paging
func (s *StockService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[inventory.StockUnit], error) {
	var page shared.Paginated[inventory.StockUnit]
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		units, err := repos.Units().List(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		total, err := repos.Units().Count(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		page = shared.NewPaginated(units, total, filter.Page, filter.PageSize)
		return nil
	})
	return page, err
}

// UnitHistory returns the transaction log for one unit, oldest first
func (s *StockService) UnitHistory(ctx context.Context, tenantID, unitID uuid.UUID) ([]inventory.StockTransaction, error) {
	var records []inventory.StockTransaction
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		r, err := repos.Transactions().ListByUnit(ctx, tenantID, unitID)
		if err != nil {
			return err
		}
		records = r
		return nil
	})
	return records, err
}

func (s *StockService) validateMasterData(ctx context.Context, tenantID, productID, depositorID, locationID uuid.UUID) error {
	if _, err := s.masterData.FindProduct(ctx, tenantID, productID); err != nil {
		return err
	}
	if _, err := s.masterData.FindDepositor(ctx, tenantID, depositorID); err != nil {
		return err
	}
	if _, err := s.masterData.FindLocation(ctx, tenantID, locationID); err != nil {
		return err
	}
	return nil
}

// publishEvents drains the aggregate's pending events after commit.
// Publish failures are logged, never propagated: the ledger state is
// already durable.
func (s *StockService) publishEvents(ctx context.Context, unit *inventory.StockUnit) {
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

// sourceLocation resolves the from-location for the MOVE record. When
// the source merged away its struct still carries the pre-move location.
func sourceLocation(source *inventory.StockUnit, result MoveResult) uuid.UUID {
	if result.Unit.ID == source.ID {
		// full in-place move: Relocate already rewrote the location, the
		// event carries the original, so read it from there
		for _, ev := range source.GetDomainEvents() {
			if moved, ok := ev.(*inventory.StockUnitMovedEvent); ok {
				return moved.FromLocationID
			}
		}
	}
	return source.LocationID
}

func generateLPN() string {
	return "LPN-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:20]
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
