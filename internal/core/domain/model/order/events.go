package order

import (
	"time"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
)

// StatusChanged is recorded by every successful transition, including
// creation (From is Unknown). Repositories persist it as a status history row
// and the unit of work publishes it after commit.
type StatusChanged struct {
	OrderID   kernel.UUID
	From      Status
	To        Status
	Action    Action
	ActorID   kernel.UUID
	ActorRole access.Role
	DriverID  *kernel.UUID
	At        time.Time
}

// EventName is the routing suffix for publishers, e.g. "order.out_for_delivery".
func (e StatusChanged) EventName() string {
	return "order." + e.To.String()
}
