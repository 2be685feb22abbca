package fulfillment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/allocation"
	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/domain/masterdata"
	"github.com/wms/backend/internal/domain/shared"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *fulfillment.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fulfillment.Order, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*fulfillment.Order, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByWave(ctx context.Context, tenantID, waveID uuid.UUID) ([]fulfillment.Order, error) {
	args := m.Called(ctx, tenantID, waveID)
	return args.Get(0).([]fulfillment.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]fulfillment.Order, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]fulfillment.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *fulfillment.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveLine(ctx context.Context, line *fulfillment.OrderLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockOrderRepository) FindLineByID(ctx context.Context, tenantID, lineID uuid.UUID) (*fulfillment.OrderLine, error) {
	args := m.Called(ctx, tenantID, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.OrderLine), args.Error(1)
}

// MockWaveRepository is a mock implementation of WaveRepository
type MockWaveRepository struct {
	mock.Mock
}

func (m *MockWaveRepository) Create(ctx context.Context, wave *fulfillment.Wave) error {
	args := m.Called(ctx, wave)
	return args.Error(0)
}

func (m *MockWaveRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fulfillment.Wave, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Wave), args.Error(1)
}

func (m *MockWaveRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*fulfillment.Wave, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Wave), args.Error(1)
}

func (m *MockWaveRepository) Save(ctx context.Context, wave *fulfillment.Wave) error {
	args := m.Called(ctx, wave)
	return args.Error(0)
}

// MockStrategyRepository is a mock implementation of StrategyRepository
type MockStrategyRepository struct {
	mock.Mock
}

func (m *MockStrategyRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*allocation.AllocationStrategy, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*allocation.AllocationStrategy), args.Error(1)
}

func (m *MockStrategyRepository) FindFirstActive(ctx context.Context, tenantID uuid.UUID) (*allocation.AllocationStrategy, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*allocation.AllocationStrategy), args.Error(1)
}

func (m *MockStrategyRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]allocation.AllocationStrategy, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]allocation.AllocationStrategy), args.Error(1)
}

func (m *MockStrategyRepository) Save(ctx context.Context, strategy *allocation.AllocationStrategy) error {
	args := m.Called(ctx, strategy)
	return args.Error(0)
}

// MockPickTaskRepository is a mock implementation of PickTaskRepository
type MockPickTaskRepository struct {
	mock.Mock
}

func (m *MockPickTaskRepository) Create(ctx context.Context, task *allocation.PickTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockPickTaskRepository) CreateAll(ctx context.Context, tasks []*allocation.PickTask) error {
	args := m.Called(ctx, tasks)
	return args.Error(0)
}

func (m *MockPickTaskRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*allocation.PickTask, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*allocation.PickTask), args.Error(1)
}

func (m *MockPickTaskRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*allocation.PickTask, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*allocation.PickTask), args.Error(1)
}

func (m *MockPickTaskRepository) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]allocation.PickTask, error) {
	args := m.Called(ctx, tenantID, orderID)
	return args.Get(0).([]allocation.PickTask), args.Error(1)
}

func (m *MockPickTaskRepository) ListByLine(ctx context.Context, tenantID, orderLineID uuid.UUID) ([]allocation.PickTask, error) {
	args := m.Called(ctx, tenantID, orderLineID)
	return args.Get(0).([]allocation.PickTask), args.Error(1)
}

func (m *MockPickTaskRepository) Save(ctx context.Context, task *allocation.PickTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// MockMasterDataLookup is a mock implementation of masterdata.Lookup
type MockMasterDataLookup struct {
	mock.Mock
}

func (m *MockMasterDataLookup) FindProduct(ctx context.Context, tenantID, id uuid.UUID) (*masterdata.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*masterdata.Product), args.Error(1)
}

func (m *MockMasterDataLookup) FindLocation(ctx context.Context, tenantID, id uuid.UUID) (*masterdata.Location, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*masterdata.Location), args.Error(1)
}

func (m *MockMasterDataLookup) FindDepositor(ctx context.Context, tenantID, id uuid.UUID) (*masterdata.Depositor, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*masterdata.Depositor), args.Error(1)
}

func (m *MockMasterDataLookup) FindWarehouse(ctx context.Context, tenantID, id uuid.UUID) (*masterdata.Warehouse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*masterdata.Warehouse), args.Error(1)
}

func (m *MockMasterDataLookup) ListWarehousesByPriority(ctx context.Context, tenantID uuid.UUID) ([]masterdata.Warehouse, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]masterdata.Warehouse), args.Error(1)
}

// orderFixture bundles the mocks and acts as its own transaction scope
type orderFixture struct {
	service    *OrderService
	orders     *MockOrderRepository
	waves      *MockWaveRepository
	strategies *MockStrategyRepository
	pickTasks  *MockPickTaskRepository
	masterData *MockMasterDataLookup

	tenantID  uuid.UUID
	productID uuid.UUID
	uomID     uuid.UUID
}

func (f *orderFixture) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(f)
}

func (f *orderFixture) Orders() fulfillment.OrderRepository {
	return f.orders
}

func (f *orderFixture) Waves() fulfillment.WaveRepository {
	return f.waves
}

func (f *orderFixture) Strategies() allocation.StrategyRepository {
	return f.strategies
}

func (f *orderFixture) PickTasks() allocation.PickTaskRepository {
	return f.pickTasks
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:     new(MockOrderRepository),
		waves:      new(MockWaveRepository),
		strategies: new(MockStrategyRepository),
		pickTasks:  new(MockPickTaskRepository),
		masterData: new(MockMasterDataLookup),
		tenantID:   uuid.New(),
		productID:  uuid.New(),
		uomID:      uuid.New(),
	}
	f.service = NewOrderService(f, f.masterData, nil)
	return f
}

func (f *orderFixture) draftOrder(number string) *fulfillment.Order {
	order, err := fulfillment.NewOrder(f.tenantID, number)
	if err != nil {
		panic(err)
	}
	if _, err := order.AddLine(f.productID, f.uomID, decimal.NewFromInt(10)); err != nil {
		panic(err)
	}
	return order
}

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a draft order with constrained lines", func(t *testing.T) {
		f := newOrderFixture()
		f.masterData.On("FindProduct", mock.Anything, f.tenantID, f.productID).Return(&masterdata.Product{}, nil)
		f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)

		order, err := f.service.CreateOrder(ctx, CreateOrderCommand{
			TenantID: f.tenantID,
			Number:   "SO-1001",
			Lines: []OrderLineInput{
				{
					ProductID:        f.productID,
					UomID:            f.uomID,
					Quantity:         decimal.NewFromInt(10),
					RequiredBatch:    "BATCH-7",
					MinShelfLifeDays: 30,
				},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, fulfillment.OrderStatusDraft, order.Status)
		require.Len(t, order.Lines, 1)
		assert.Equal(t, "BATCH-7", order.Lines[0].Constraints.RequiredBatch)
		assert.Equal(t, 30, order.Lines[0].Constraints.MinShelfLifeDays)
		assert.Equal(t, fulfillment.LineStatusShort, order.Lines[0].Status)
	})

	t.Run("rejects an order without lines", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.service.CreateOrder(ctx, CreateOrderCommand{
			TenantID: f.tenantID,
			Number:   "SO-1001",
		})

		require.Error(t, err)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects an unknown product", func(t *testing.T) {
		f := newOrderFixture()
		f.masterData.On("FindProduct", mock.Anything, f.tenantID, f.productID).Return(nil, shared.ErrNotFound)

		_, err := f.service.CreateOrder(ctx, CreateOrderCommand{
			TenantID: f.tenantID,
			Number:   "SO-1001",
			Lines: []OrderLineInput{
				{ProductID: f.productID, UomID: f.uomID, Quantity: decimal.NewFromInt(10)},
			},
		})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestOrderService_CreateWave(t *testing.T) {
	ctx := context.Background()

	strategyFor := func(f *orderFixture) *allocation.AllocationStrategy {
		s, err := allocation.NewAllocationStrategy(f.tenantID, "default",
			allocation.PickingPolicyFEFO, allocation.PartialPolicyAllowPartial,
			allocation.WarehouseSelection{Mode: allocation.WarehouseModePriority, MaxSplits: 1},
		)
		if err != nil {
			panic(err)
		}
		return s
	}

	t.Run("attaches allocatable orders to the wave", func(t *testing.T) {
		f := newOrderFixture()
		strategy := strategyFor(f)
		first := f.draftOrder("SO-1001")
		second := f.draftOrder("SO-1002")

		f.strategies.On("FindByID", mock.Anything, f.tenantID, strategy.ID).Return(strategy, nil)
		f.waves.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.orders.On("FindByIDForUpdate", mock.Anything, f.tenantID, first.ID).Return(first, nil)
		f.orders.On("FindByIDForUpdate", mock.Anything, f.tenantID, second.ID).Return(second, nil)
		f.orders.On("Save", mock.Anything, mock.Anything).Return(nil)

		wave, err := f.service.CreateWave(ctx, CreateWaveCommand{
			TenantID:   f.tenantID,
			Number:     "WAVE-1001",
			StrategyID: strategy.ID,
			OrderIDs:   []uuid.UUID{first.ID, second.ID},
		})

		require.NoError(t, err)
		assert.Equal(t, fulfillment.WaveStatusPlanning, wave.Status)
		require.NotNil(t, first.WaveID)
		assert.Equal(t, wave.ID, *first.WaveID)
		require.NotNil(t, second.WaveID)
		assert.Equal(t, wave.ID, *second.WaveID)
	})

	t.Run("rejects an empty wave", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.service.CreateWave(ctx, CreateWaveCommand{
			TenantID:   f.tenantID,
			Number:     "WAVE-1001",
			StrategyID: uuid.New(),
		})

		require.Error(t, err)
	})

	t.Run("rejects an unknown strategy", func(t *testing.T) {
		f := newOrderFixture()
		strategyID := uuid.New()
		f.strategies.On("FindByID", mock.Anything, f.tenantID, strategyID).Return(nil, shared.ErrNotFound)

		_, err := f.service.CreateWave(ctx, CreateWaveCommand{
			TenantID:   f.tenantID,
			Number:     "WAVE-1001",
			StrategyID: strategyID,
			OrderIDs:   []uuid.UUID{uuid.New()},
		})

		assert.ErrorIs(t, err, shared.ErrNotFound)
		f.waves.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects a shipped member", func(t *testing.T) {
		f := newOrderFixture()
		strategy := strategyFor(f)
		shipped := f.draftOrder("SO-1001")
		shipped.Status = fulfillment.OrderStatusShipped

		f.strategies.On("FindByID", mock.Anything, f.tenantID, strategy.ID).Return(strategy, nil)
		f.waves.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.orders.On("FindByIDForUpdate", mock.Anything, f.tenantID, shipped.ID).Return(shipped, nil)

		_, err := f.service.CreateWave(ctx, CreateWaveCommand{
			TenantID:   f.tenantID,
			Number:     "WAVE-1001",
			StrategyID: strategy.ID,
			OrderIDs:   []uuid.UUID{shipped.ID},
		})

		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("rejects an order already in a wave", func(t *testing.T) {
		f := newOrderFixture()
		strategy := strategyFor(f)
		taken := f.draftOrder("SO-1001")
		existing := uuid.New()
		taken.WaveID = &existing

		f.strategies.On("FindByID", mock.Anything, f.tenantID, strategy.ID).Return(strategy, nil)
		f.waves.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.orders.On("FindByIDForUpdate", mock.Anything, f.tenantID, taken.ID).Return(taken, nil)

		_, err := f.service.CreateWave(ctx, CreateWaveCommand{
			TenantID:   f.tenantID,
			Number:     "WAVE-1001",
			StrategyID: strategy.ID,
			OrderIDs:   []uuid.UUID{taken.ID},
		})

		require.Error(t, err)
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestOrderService_GetOrder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	order := f.draftOrder("SO-1001")
	f.orders.On("FindByID", mock.Anything, f.tenantID, order.ID).Return(order, nil)

	found, err := f.service.GetOrder(ctx, f.tenantID, order.ID)

	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
}

func TestOrderService_ListOrderTasks(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	orderID := uuid.New()
	task, err := allocation.NewPickTask(f.tenantID, orderID, uuid.New(), uuid.New(), uuid.New(), decimal.NewFromInt(5))
	require.NoError(t, err)
	f.pickTasks.On("ListByOrder", mock.Anything, f.tenantID, orderID).Return([]allocation.PickTask{*task}, nil)

	tasks, err := f.service.ListOrderTasks(ctx, f.tenantID, orderID)

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, allocation.PickTaskStatusPending, tasks[0].Status)
}
