package commands

import (
	"errors"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/guard"
)

var ErrAcceptOrderCommandIsNotConstructed = errors.New(
	"AcceptOrderCommand must be created via NewAcceptOrderCommand constructor",
)

// AcceptOrderCommand moves a placed order into preparation.
type AcceptOrderCommand struct {
	actor   access.Principal
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

// NewAcceptOrderCommand requires restaurant-write (restaurant staff or admin).
func NewAcceptOrderCommand(actor access.Principal, orderID kernel.UUID) (AcceptOrderCommand, error) {
	if err := errors.Join(actor.Require(access.RestaurantWrite), orderID.Validate()); err != nil {
		return AcceptOrderCommand{}, err
	}
	return AcceptOrderCommand{actor: actor, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c AcceptOrderCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOrderCommandIsNotConstructed)
}

func (c AcceptOrderCommand) Actor() access.Principal {
	return c.actor
}

func (c AcceptOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}
