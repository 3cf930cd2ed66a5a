package commands

import (
	"errors"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand cancels an order. Customers may cancel their own order
// before it leaves the restaurant; admins may also force-cancel one that is
// out for delivery.
type CancelOrderCommand struct {
	actor   access.Principal
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

// NewCancelOrderCommand requires customer-write or admin-write.
func NewCancelOrderCommand(actor access.Principal, orderID kernel.UUID) (CancelOrderCommand, error) {
	if err := errors.Join(actor.Require(access.CustomerWrite, access.AdminWrite), orderID.Validate()); err != nil {
		return CancelOrderCommand{}, err
	}
	return CancelOrderCommand{actor: actor, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) Actor() access.Principal {
	return c.actor
}

func (c CancelOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}
