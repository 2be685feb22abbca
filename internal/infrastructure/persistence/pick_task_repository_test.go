package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/allocation"
	"github.com/wms/backend/internal/domain/shared"
)

func setupPickTaskTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&allocation.PickTask{})
	require.NoError(t, err)

	return db
}

func createTestTask(t *testing.T, tenantID, orderID, lineID uuid.UUID, qty int64) *allocation.PickTask {
	t.Helper()
	task, err := allocation.NewPickTask(tenantID, orderID, lineID, uuid.New(), uuid.New(), decimal.NewFromInt(qty))
	require.NoError(t, err)
	return task
}

func TestGormPickTaskRepository_CreateAll(t *testing.T) {
	db := setupPickTaskTestDB(t)
	repo := NewGormPickTaskRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	orderID := uuid.New()
	lineID := uuid.New()

	t.Run("persists a batch", func(t *testing.T) {
		tasks := []*allocation.PickTask{
			createTestTask(t, tenantID, orderID, lineID, 10),
			createTestTask(t, tenantID, orderID, lineID, 5),
		}
		require.NoError(t, repo.CreateAll(ctx, tasks))

		found, err := repo.ListByOrder(ctx, tenantID, orderID)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.CreateAll(ctx, nil))
	})
}

func TestGormPickTaskRepository_FindByID(t *testing.T) {
	db := setupPickTaskTestDB(t)
	repo := NewGormPickTaskRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	task := createTestTask(t, tenantID, uuid.New(), uuid.New(), 10)
	require.NoError(t, repo.Create(ctx, task))

	found, err := repo.FindByID(ctx, tenantID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, found.ID)
	assert.Equal(t, allocation.PickTaskStatusPending, found.Status)
	assert.True(t, found.Quantity.Equal(decimal.NewFromInt(10)))

	_, err = repo.FindByID(ctx, uuid.New(), task.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormPickTaskRepository_ListByLine(t *testing.T) {
	db := setupPickTaskTestDB(t)
	repo := NewGormPickTaskRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	orderID := uuid.New()
	lineID := uuid.New()

	mine := createTestTask(t, tenantID, orderID, lineID, 10)
	require.NoError(t, repo.Create(ctx, mine))
	other := createTestTask(t, tenantID, orderID, uuid.New(), 5)
	require.NoError(t, repo.Create(ctx, other))

	found, err := repo.ListByLine(ctx, tenantID, lineID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, mine.ID, found[0].ID)
}

func TestGormPickTaskRepository_Save(t *testing.T) {
	db := setupPickTaskTestDB(t)
	repo := NewGormPickTaskRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	task := createTestTask(t, tenantID, uuid.New(), uuid.New(), 10)
	require.NoError(t, repo.Create(ctx, task))

	require.NoError(t, task.Complete(decimal.NewFromInt(7)))
	require.NoError(t, repo.Save(ctx, task))

	found, err := repo.FindByID(ctx, tenantID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, allocation.PickTaskStatusShort, found.Status)
	assert.True(t, found.QuantityPicked.Equal(decimal.NewFromInt(7)))
	assert.True(t, found.ShortfallQuantity().Equal(decimal.NewFromInt(3)))
}
