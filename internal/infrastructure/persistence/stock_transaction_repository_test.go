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

func setupStockTransactionTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&inventory.StockTransaction{})
	require.NoError(t, err)

	return db
}

func appendRecord(
	t *testing.T,
	repo *GormStockTransactionRepository,
	tenantID, unitID, productID uuid.UUID,
	txType inventory.TransactionType,
	qty int64,
	occurredAt time.Time,
) *inventory.StockTransaction {
	t.Helper()
	record, err := inventory.NewStockTransaction(tenantID, unitID, productID, txType, decimal.NewFromInt(qty), uuid.New())
	require.NoError(t, err)
	record.OccurredAt = occurredAt
	require.NoError(t, repo.Append(context.Background(), record))
	return record
}

func TestGormStockTransactionRepository_ListByUnit(t *testing.T) {
	db := setupStockTransactionTestDB(t)
	repo := NewGormStockTransactionRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	unitID := uuid.New()
	productID := uuid.New()
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	// append out of chronological order
	pick := appendRecord(t, repo, tenantID, unitID, productID, inventory.TransactionTypePick, 5, base.Add(2*time.Hour))
	receive := appendRecord(t, repo, tenantID, unitID, productID, inventory.TransactionTypeReceive, 100, base)
	move := appendRecord(t, repo, tenantID, unitID, productID, inventory.TransactionTypeMove, 100, base.Add(time.Hour))
	appendRecord(t, repo, tenantID, uuid.New(), productID, inventory.TransactionTypeReceive, 10, base)

	records, err := repo.ListByUnit(ctx, tenantID, unitID)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, receive.ID, records[0].ID, "oldest first")
	assert.Equal(t, move.ID, records[1].ID)
	assert.Equal(t, pick.ID, records[2].ID)
}

func TestGormStockTransactionRepository_ListByTenantRange(t *testing.T) {
	db := setupStockTransactionTestDB(t)
	repo := NewGormStockTransactionRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	unitID := uuid.New()
	productID := uuid.New()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	inside := appendRecord(t, repo, tenantID, unitID, productID, inventory.TransactionTypeReceive, 100, base.Add(time.Hour))
	adjustment := appendRecord(t, repo, tenantID, unitID, productID, inventory.TransactionTypeAdjustment, 5, base.Add(2*time.Hour))
	appendRecord(t, repo, tenantID, unitID, productID, inventory.TransactionTypeShip, 20, base.Add(48*time.Hour))

	t.Run("bounds are half open", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.OrderDir = "asc"

		records, err := repo.ListByTenantRange(ctx, tenantID, base, base.Add(24*time.Hour), filter)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, inside.ID, records[0].ID)
		assert.Equal(t, adjustment.ID, records[1].ID)
	})

	t.Run("filters by type", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["type"] = "ADJUSTMENT"

		records, err := repo.ListByTenantRange(ctx, tenantID, base, base.Add(24*time.Hour), filter)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, adjustment.ID, records[0].ID)
	})
}

func TestGormStockTransactionRepository_LatestForUnit(t *testing.T) {
	db := setupStockTransactionTestDB(t)
	repo := NewGormStockTransactionRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	unitID := uuid.New()
	productID := uuid.New()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	t.Run("returns not found when empty", func(t *testing.T) {
		_, err := repo.LatestForUnit(ctx, tenantID, unitID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns the most recent record", func(t *testing.T) {
		appendRecord(t, repo, tenantID, unitID, productID, inventory.TransactionTypeReceive, 100, base)
		latest := appendRecord(t, repo, tenantID, unitID, productID, inventory.TransactionTypePick, 5, base.Add(time.Hour))

		found, err := repo.LatestForUnit(ctx, tenantID, unitID)
		require.NoError(t, err)
		assert.Equal(t, latest.ID, found.ID)
	})
}

func TestGormStockTransactionRepository_MetadataRoundTrip(t *testing.T) {
	db := setupStockTransactionTestDB(t)
	repo := NewGormStockTransactionRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	unitID := uuid.New()
	fromLocation := uuid.New()
	toLocation := uuid.New()

	record, err := inventory.NewStockTransaction(tenantID, unitID, uuid.New(), inventory.TransactionTypeAdjustment, decimal.NewFromInt(7), uuid.New())
	require.NoError(t, err)
	record.WithLocations(&fromLocation, &toLocation).
		WithReference("CC-2026-08").
		WithMetadata("reason", "cycle count").
		WithMetadata(inventory.MetadataKeyDirection, inventory.DirectionDecrease)
	require.NoError(t, repo.Append(ctx, record))

	found, err := repo.LatestForUnit(ctx, tenantID, unitID)
	require.NoError(t, err)
	assert.Equal(t, "cycle count", found.Metadata["reason"])
	assert.Equal(t, inventory.DirectionDecrease, found.Metadata[inventory.MetadataKeyDirection])
	assert.Equal(t, "CC-2026-08", found.Reference)
	require.NotNil(t, found.FromLocationID)
	assert.Equal(t, fromLocation, *found.FromLocationID)
	assert.True(t, found.SignedQuantity().Equal(decimal.NewFromInt(-7)))
}
