package ports

import (
	"context"
	"time"

	"fooddispatch/internal/core/domain/model/order"
)

// EventPublisher delivers committed lifecycle events to the outside world.
// Delivery is best effort: a failure is logged by the caller and never undoes
// the committed transition.
type EventPublisher interface {
	Publish(ctx context.Context, events []order.StatusChanged) error
}

// Clock supplies transition timestamps.
type Clock interface {
	Now() time.Time
}
