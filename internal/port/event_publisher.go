package port

import (
	"context"

	"github.com/ryotak125/parts-market/internal/core/domain"
)

// EventPublisher delivers order lifecycle events to downstream
// consumers. Publishing happens strictly after commit; a delivery
// failure never affects the transaction outcome.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.OrderEvent) error
	Close() error
}
