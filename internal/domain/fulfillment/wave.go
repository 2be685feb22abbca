package fulfillment

import (
	"time"

	"github.com/google/uuid"

	"github.com/wms/backend/internal/domain/shared"
)

// WaveStatus represents the lifecycle state of a wave
type WaveStatus string

const (
	WaveStatusPlanning  WaveStatus = "PLANNING"
	WaveStatusAllocated WaveStatus = "ALLOCATED"
	WaveStatusReleased  WaveStatus = "RELEASED"
	WaveStatusCompleted WaveStatus = "COMPLETED"
	WaveStatusCancelled WaveStatus = "CANCELLED"
)

// String returns the string representation of WaveStatus
func (s WaveStatus) String() string {
	return string(s)
}

// Wave is a batch of orders allocated and picked together under one
// strategy. Member orders reference the wave through Order.WaveID.
type Wave struct {
	shared.TenantAggregateRoot
	Number     string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_wave_tenant_number,priority:2"`
	Status     WaveStatus `gorm:"type:varchar(20);not null;default:'PLANNING';index"`
	StrategyID uuid.UUID  `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (Wave) TableName() string {
	return "waves"
}

// NewWave creates a new wave in PLANNING state
func NewWave(tenantID uuid.UUID, number string, strategyID uuid.UUID) (*Wave, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Wave number cannot be empty")
	}
	if strategyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STRATEGY", "Wave strategy ID cannot be empty")
	}
	return &Wave{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Status:              WaveStatusPlanning,
		StrategyID:          strategyID,
	}, nil
}

// MarkAllocated transitions the wave from PLANNING to ALLOCATED
func (w *Wave) MarkAllocated() error {
	if w.Status != WaveStatusPlanning {
		return shared.ErrInvalidState
	}
	w.Status = WaveStatusAllocated
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}
