package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/allocation"
	"github.com/wms/backend/internal/domain/shared"
)

// GormStrategyRepository implements StrategyRepository using GORM
type GormStrategyRepository struct {
	db *gorm.DB
}

// NewGormStrategyRepository creates a new GormStrategyRepository
func NewGormStrategyRepository(db *gorm.DB) *GormStrategyRepository {
	return &GormStrategyRepository{db: db}
}

// FindByID finds a strategy by ID within a tenant
func (r *GormStrategyRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*allocation.AllocationStrategy, error) {
	var strategy allocation.AllocationStrategy
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&strategy).Error; err != nil {
		return nil, translateError(err)
	}
	return &strategy, nil
}

// FindFirstActive returns the tenant's oldest active strategy
func (r *GormStrategyRepository) FindFirstActive(ctx context.Context, tenantID uuid.UUID) (*allocation.AllocationStrategy, error) {
	var strategy allocation.AllocationStrategy
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		Order("created_at ASC").
		First(&strategy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNoActiveStrategy
		}
		return nil, err
	}
	return &strategy, nil
}

// List finds strategies for a tenant
func (r *GormStrategyRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]allocation.AllocationStrategy, error) {
	query := r.db.WithContext(ctx).
		Model(&allocation.AllocationStrategy{}).
		Where("tenant_id = ?", tenantID)

	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		case "picking_policy":
			query = query.Where("picking_policy = ?", value)
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var strategies []allocation.AllocationStrategy
	if err := query.Order("created_at ASC").Find(&strategies).Error; err != nil {
		return nil, err
	}
	return strategies, nil
}

// Save creates or updates a strategy
func (r *GormStrategyRepository) Save(ctx context.Context, strategy *allocation.AllocationStrategy) error {
	return r.db.WithContext(ctx).Save(strategy).Error
}

// Ensure GormStrategyRepository implements StrategyRepository
var _ allocation.StrategyRepository = (*GormStrategyRepository)(nil)
