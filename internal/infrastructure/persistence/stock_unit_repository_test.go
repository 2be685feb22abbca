package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/inventory"
	"github.com/wms/backend/internal/domain/shared"
)

func setupStockUnitTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&inventory.StockUnit{})
	require.NoError(t, err)

	return db
}

// stockUnitBuilder seeds units sharing one tenant/product/depositor
type stockUnitBuilder struct {
	t           *testing.T
	repo        *GormStockUnitRepository
	tenantID    uuid.UUID
	depositorID uuid.UUID
	productID   uuid.UUID
	warehouseID uuid.UUID
	locationID  uuid.UUID
}

func newStockUnitBuilder(t *testing.T, repo *GormStockUnitRepository) *stockUnitBuilder {
	return &stockUnitBuilder{
		t:           t,
		repo:        repo,
		tenantID:    uuid.New(),
		depositorID: uuid.New(),
		productID:   uuid.New(),
		warehouseID: uuid.New(),
		locationID:  uuid.New(),
	}
}

func (b *stockUnitBuilder) seed(lpn string, qty int64, batch string, expiry *time.Time) *inventory.StockUnit {
	b.t.Helper()
	unit, err := inventory.NewStockUnit(
		b.tenantID, b.depositorID, b.productID, b.warehouseID, b.locationID,
		lpn, decimal.NewFromInt(qty), batch, expiry,
	)
	require.NoError(b.t, err)
	unit.ClearDomainEvents()
	require.NoError(b.t, b.repo.Create(context.Background(), unit))
	return unit
}

func TestGormStockUnitRepository_FindByLPN(t *testing.T) {
	db := setupStockUnitTestDB(t)
	repo := NewGormStockUnitRepository(db)
	b := newStockUnitBuilder(t, repo)
	ctx := context.Background()

	seeded := b.seed("LPN-0001", 100, "BATCH-1", nil)

	t.Run("finds a persisted unit", func(t *testing.T) {
		found, err := repo.FindByLPN(ctx, b.tenantID, "LPN-0001")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, found.ID)
		assert.True(t, found.Quantity.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, "BATCH-1", found.BatchNumber)
	})

	t.Run("returns not found for a missing LPN", func(t *testing.T) {
		_, err := repo.FindByLPN(ctx, b.tenantID, "LPN-MISSING")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("does not cross tenants", func(t *testing.T) {
		_, err := repo.FindByLPN(ctx, uuid.New(), "LPN-0001")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormStockUnitRepository_ExistsByLPN(t *testing.T) {
	db := setupStockUnitTestDB(t)
	repo := NewGormStockUnitRepository(db)
	b := newStockUnitBuilder(t, repo)
	ctx := context.Background()

	b.seed("LPN-0001", 100, "", nil)

	exists, err := repo.ExistsByLPN(ctx, b.tenantID, "LPN-0001")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByLPN(ctx, b.tenantID, "LPN-OTHER")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormStockUnitRepository_FindConsolidationTarget(t *testing.T) {
	db := setupStockUnitTestDB(t)
	repo := NewGormStockUnitRepository(db)
	b := newStockUnitBuilder(t, repo)
	ctx := context.Background()

	expiry := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	twin := b.seed("LPN-TWIN", 50, "BATCH-1", &expiry)

	key := inventory.ConsolidationKey{
		ProductID:   b.productID,
		LocationID:  b.locationID,
		DepositorID: b.depositorID,
		BatchNumber: "BATCH-1",
		ExpiryDate:  &expiry,
	}

	t.Run("finds the matching twin", func(t *testing.T) {
		found, err := repo.FindConsolidationTarget(ctx, b.tenantID, key, uuid.Nil)
		require.NoError(t, err)
		assert.Equal(t, twin.ID, found.ID)
	})

	t.Run("excludes the given unit", func(t *testing.T) {
		_, err := repo.FindConsolidationTarget(ctx, b.tenantID, key, twin.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("batch must match", func(t *testing.T) {
		other := key
		other.BatchNumber = "BATCH-2"
		_, err := repo.FindConsolidationTarget(ctx, b.tenantID, other, uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("nil expiry only matches units without expiry", func(t *testing.T) {
		open := key
		open.ExpiryDate = nil
		_, err := repo.FindConsolidationTarget(ctx, b.tenantID, open, uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		noExpiry := b.seed("LPN-OPEN", 10, "BATCH-1", nil)
		found, err := repo.FindConsolidationTarget(ctx, b.tenantID, open, uuid.Nil)
		require.NoError(t, err)
		assert.Equal(t, noExpiry.ID, found.ID)
	})

	t.Run("non-available units never consolidate", func(t *testing.T) {
		require.NoError(t, twin.ChangeStatus(inventory.UnitStatusQuarantine))
		twin.ClearDomainEvents()
		require.NoError(t, repo.Save(ctx, twin))

		_, err := repo.FindConsolidationTarget(ctx, b.tenantID, key, uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormStockUnitRepository_FindAllocatable(t *testing.T) {
	db := setupStockUnitTestDB(t)
	repo := NewGormStockUnitRepository(db)
	b := newStockUnitBuilder(t, repo)
	ctx := context.Background()

	nearExpiry := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	farExpiry := time.Date(2027, 9, 10, 0, 0, 0, 0, time.UTC)

	open := b.seed("LPN-OPEN", 100, "", nil)
	near := b.seed("LPN-NEAR", 50, "BATCH-1", &nearExpiry)
	far := b.seed("LPN-FAR", 50, "BATCH-2", &farExpiry)

	reserved := b.seed("LPN-FULL", 30, "", nil)
	require.NoError(t, reserved.Reserve(decimal.NewFromInt(30)))
	reserved.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, reserved))

	damaged := b.seed("LPN-DMG", 30, "", nil)
	require.NoError(t, damaged.ChangeStatus(inventory.UnitStatusDamaged))
	damaged.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, damaged))

	query := inventory.AllocationQuery{
		WarehouseID: b.warehouseID,
		ProductID:   b.productID,
	}

	t.Run("returns only available units with headroom", func(t *testing.T) {
		units, err := repo.FindAllocatable(ctx, b.tenantID, query)
		require.NoError(t, err)
		require.Len(t, units, 3)
		ids := []uuid.UUID{units[0].ID, units[1].ID, units[2].ID}
		assert.Contains(t, ids, open.ID)
		assert.Contains(t, ids, near.ID)
		assert.Contains(t, ids, far.ID)
	})

	t.Run("filters by required batch", func(t *testing.T) {
		q := query
		q.RequiredBatch = "BATCH-1"
		units, err := repo.FindAllocatable(ctx, b.tenantID, q)
		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.Equal(t, near.ID, units[0].ID)
	})

	t.Run("shelf-life floor keeps units without expiry", func(t *testing.T) {
		cutoff := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
		q := query
		q.MinExpiryDate = &cutoff
		units, err := repo.FindAllocatable(ctx, b.tenantID, q)
		require.NoError(t, err)
		require.Len(t, units, 2)
		ids := []uuid.UUID{units[0].ID, units[1].ID}
		assert.Contains(t, ids, open.ID, "no-expiry stock satisfies any shelf-life floor")
		assert.Contains(t, ids, far.ID)
		assert.NotContains(t, ids, near.ID)
	})

	t.Run("other warehouses are out of scope", func(t *testing.T) {
		q := query
		q.WarehouseID = uuid.New()
		units, err := repo.FindAllocatable(ctx, b.tenantID, q)
		require.NoError(t, err)
		assert.Empty(t, units)
	})
}

func TestGormStockUnitRepository_AvailableByWarehouse(t *testing.T) {
	db := setupStockUnitTestDB(t)
	repo := NewGormStockUnitRepository(db)
	b := newStockUnitBuilder(t, repo)
	ctx := context.Background()

	otherWarehouse := uuid.New()
	b.seed("LPN-A1", 100, "", nil)

	partly := b.seed("LPN-A2", 50, "", nil)
	require.NoError(t, partly.Reserve(decimal.NewFromInt(20)))
	partly.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, partly))

	elsewhere, err := inventory.NewStockUnit(
		b.tenantID, b.depositorID, b.productID, otherWarehouse, uuid.New(),
		"LPN-B1", decimal.NewFromInt(500), "", nil,
	)
	require.NoError(t, err)
	elsewhere.ClearDomainEvents()
	require.NoError(t, repo.Create(ctx, elsewhere))

	rows, err := repo.AvailableByWarehouse(ctx, b.tenantID, b.productID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// fullest warehouse first
	assert.Equal(t, otherWarehouse, rows[0].WarehouseID)
	assert.True(t, rows[0].Available.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, b.warehouseID, rows[1].WarehouseID)
	assert.True(t, rows[1].Available.Equal(decimal.NewFromInt(130)), "reserved quantity is not available")
}

func TestGormStockUnitRepository_ListAndCount(t *testing.T) {
	db := setupStockUnitTestDB(t)
	repo := NewGormStockUnitRepository(db)
	b := newStockUnitBuilder(t, repo)
	ctx := context.Background()

	b.seed("LPN-0001", 10, "BATCH-1", nil)
	b.seed("LPN-0002", 20, "BATCH-1", nil)
	quarantined := b.seed("LPN-0003", 30, "BATCH-2", nil)
	require.NoError(t, quarantined.ChangeStatus(inventory.UnitStatusQuarantine))
	quarantined.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, quarantined))

	t.Run("filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = "QUARANTINE"

		units, err := repo.List(ctx, b.tenantID, filter)
		require.NoError(t, err)
		require.Len(t, units, 1)
		assert.Equal(t, quarantined.ID, units[0].ID)

		count, err := repo.Count(ctx, b.tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("filters by batch", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["batch_number"] = "BATCH-1"

		count, err := repo.Count(ctx, b.tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("pages results", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 2

		units, err := repo.List(ctx, b.tenantID, filter)
		require.NoError(t, err)
		assert.Len(t, units, 2)

		count, err := repo.Count(ctx, b.tenantID, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count, "count ignores paging")
	})
}

func TestGormStockUnitRepository_Delete(t *testing.T) {
	db := setupStockUnitTestDB(t)
	repo := NewGormStockUnitRepository(db)
	b := newStockUnitBuilder(t, repo)
	ctx := context.Background()

	unit := b.seed("LPN-0001", 10, "", nil)

	require.NoError(t, repo.Delete(ctx, b.tenantID, unit.ID))

	_, err := repo.FindByID(ctx, b.tenantID, unit.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = repo.Delete(ctx, b.tenantID, unit.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
