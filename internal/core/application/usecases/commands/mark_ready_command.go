package commands

import (
	"errors"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/guard"
)

var ErrMarkReadyCommandIsNotConstructed = errors.New(
	"MarkReadyCommand must be created via NewMarkReadyCommand constructor",
)

// MarkReadyCommand hands a prepared order over to dispatch.
type MarkReadyCommand struct {
	actor   access.Principal
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

// NewMarkReadyCommand requires restaurant-write.
func NewMarkReadyCommand(actor access.Principal, orderID kernel.UUID) (MarkReadyCommand, error) {
	if err := errors.Join(actor.Require(access.RestaurantWrite), orderID.Validate()); err != nil {
		return MarkReadyCommand{}, err
	}
	return MarkReadyCommand{actor: actor, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c MarkReadyCommand) Validate() error {
	return c.guard.Validate(ErrMarkReadyCommandIsNotConstructed)
}

func (c MarkReadyCommand) Actor() access.Principal {
	return c.actor
}

func (c MarkReadyCommand) OrderID() kernel.UUID {
	return c.orderID
}
