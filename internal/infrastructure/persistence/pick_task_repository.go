package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/allocation"
)

// GormPickTaskRepository implements PickTaskRepository using GORM
type GormPickTaskRepository struct {
	db *gorm.DB
}

// NewGormPickTaskRepository creates a new GormPickTaskRepository
func NewGormPickTaskRepository(db *gorm.DB) *GormPickTaskRepository {
	return &GormPickTaskRepository{db: db}
}

// Create persists a new pick task
func (r *GormPickTaskRepository) Create(ctx context.Context, task *allocation.PickTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// CreateAll persists multiple pick tasks in one statement
func (r *GormPickTaskRepository) CreateAll(ctx context.Context, tasks []*allocation.PickTask) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(tasks).Error
}

// FindByID finds a pick task by ID within a tenant
func (r *GormPickTaskRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*allocation.PickTask, error) {
	var task allocation.PickTask
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&task).Error; err != nil {
		return nil, translateError(err)
	}
	return &task, nil
}

// FindByIDForUpdate finds a pick task under an exclusive row lock
func (r *GormPickTaskRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*allocation.PickTask, error) {
	var task allocation.PickTask
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&task).Error; err != nil {
		return nil, translateError(err)
	}
	return &task, nil
}

// ListByOrder returns all tasks created for an order
func (r *GormPickTaskRepository) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]allocation.PickTask, error) {
	var tasks []allocation.PickTask
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByLine returns all tasks created for an order line
func (r *GormPickTaskRepository) ListByLine(ctx context.Context, tenantID, orderLineID uuid.UUID) ([]allocation.PickTask, error) {
	var tasks []allocation.PickTask
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_line_id = ?", tenantID, orderLineID).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Save persists changes to an existing pick task
func (r *GormPickTaskRepository) Save(ctx context.Context, task *allocation.PickTask) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Ensure GormPickTaskRepository implements PickTaskRepository
var _ allocation.PickTaskRepository = (*GormPickTaskRepository)(nil)
