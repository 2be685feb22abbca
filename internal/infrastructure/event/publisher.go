package event

import (
	"context"

	"go.uber.org/zap"

	"github.com/wms/backend/internal/domain/shared"
)

// LogPublisher is an EventPublisher that writes domain events to the
// structured log. Downstream consumers (billing extraction, external
// sync) tail the log stream; the ledger itself never depends on a
// publish succeeding.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a new LogPublisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger.Named("events")}
}

// Publish writes each event as one structured log entry
func (p *LogPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, e := range events {
		p.logger.Info("domain event",
			zap.String("event_type", e.EventType()),
			zap.String("aggregate_type", e.AggregateType()),
			zap.String("aggregate_id", e.AggregateID().String()),
			zap.Time("occurred_at", e.OccurredAt()),
		)
	}
	return nil
}

// Ensure LogPublisher implements EventPublisher
var _ shared.EventPublisher = (*LogPublisher)(nil)
