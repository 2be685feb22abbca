package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/fulfillment"
)

// GormWaveRepository implements WaveRepository using GORM
type GormWaveRepository struct {
	db *gorm.DB
}

// NewGormWaveRepository creates a new GormWaveRepository
func NewGormWaveRepository(db *gorm.DB) *GormWaveRepository {
	return &GormWaveRepository{db: db}
}

// Create persists a new wave
func (r *GormWaveRepository) Create(ctx context.Context, wave *fulfillment.Wave) error {
	return r.db.WithContext(ctx).Create(wave).Error
}

// FindByID finds a wave by ID within a tenant
func (r *GormWaveRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fulfillment.Wave, error) {
	var wave fulfillment.Wave
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&wave).Error; err != nil {
		return nil, translateError(err)
	}
	return &wave, nil
}

// FindByIDForUpdate finds a wave under an exclusive row lock
func (r *GormWaveRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*fulfillment.Wave, error) {
	var wave fulfillment.Wave
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&wave).Error; err != nil {
		return nil, translateError(err)
	}
	return &wave, nil
}

// Save persists changes to an existing wave
func (r *GormWaveRepository) Save(ctx context.Context, wave *fulfillment.Wave) error {
	return r.db.WithContext(ctx).Save(wave).Error
}

// Ensure GormWaveRepository implements WaveRepository
var _ fulfillment.WaveRepository = (*GormWaveRepository)(nil)
