package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wms/backend/internal/domain/fulfillment"
	"github.com/wms/backend/internal/domain/shared"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create persists a new order with its lines
func (r *GormOrderRepository) Create(ctx context.Context, order *fulfillment.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID finds an order with its lines by ID within a tenant
func (r *GormOrderRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*fulfillment.Order, error) {
	var order fulfillment.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error; err != nil {
		return nil, translateError(err)
	}
	return &order, nil
}

// FindByIDForUpdate finds an order under an exclusive header lock. Only
// the header row is locked; line rows are guarded by the header lock
// because all line mutations run through an order-level operation.
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*fulfillment.Order, error) {
	var order fulfillment.Order
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&order).Error; err != nil {
		return nil, translateError(err)
	}
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, id).
		Order("created_at ASC").
		Find(&order.Lines).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByWave finds all orders belonging to a wave
func (r *GormOrderRepository) ListByWave(ctx context.Context, tenantID, waveID uuid.UUID) ([]fulfillment.Order, error) {
	var orders []fulfillment.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("tenant_id = ? AND wave_id = ?", tenantID, waveID).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// List finds orders for a tenant
func (r *GormOrderRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]fulfillment.Order, error) {
	query := r.db.WithContext(ctx).
		Model(&fulfillment.Order{}).
		Preload("Lines").
		Where("tenant_id = ?", tenantID)

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "wave_id":
			query = query.Where("wave_id = ?", value)
		case "number":
			query = query.Where("number = ?", value)
		}
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")

	var orders []fulfillment.Order
	if err := query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir)).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Save persists header changes. Lines are saved separately through
// SaveLine so allocation can write only what it touched.
func (r *GormOrderRepository) Save(ctx context.Context, order *fulfillment.Order) error {
	return r.db.WithContext(ctx).Omit("Lines").Save(order).Error
}

// SaveLine persists changes to a single order line
func (r *GormOrderRepository) SaveLine(ctx context.Context, line *fulfillment.OrderLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

// FindLineByID finds an order line by ID within a tenant
func (r *GormOrderRepository) FindLineByID(ctx context.Context, tenantID, lineID uuid.UUID) (*fulfillment.OrderLine, error) {
	var line fulfillment.OrderLine
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, lineID).
		First(&line).Error; err != nil {
		return nil, translateError(err)
	}
	return &line, nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ fulfillment.OrderRepository = (*GormOrderRepository)(nil)
