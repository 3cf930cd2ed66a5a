package commands

import (
	"errors"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/guard"
)

var ErrReassignDriverCommandIsNotConstructed = errors.New(
	"ReassignDriverCommand must be created via NewReassignDriverCommand constructor",
)

// ReassignDriverCommand takes an out-for-delivery order away from its driver
// and returns it to the ready pool: the assigned driver declining, or an
// admin handling a logistics failure.
type ReassignDriverCommand struct {
	actor   access.Principal
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

// NewReassignDriverCommand requires driver-write or admin-write.
func NewReassignDriverCommand(actor access.Principal, orderID kernel.UUID) (ReassignDriverCommand, error) {
	if err := errors.Join(actor.Require(access.DriverWrite, access.AdminWrite), orderID.Validate()); err != nil {
		return ReassignDriverCommand{}, err
	}
	return ReassignDriverCommand{actor: actor, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c ReassignDriverCommand) Validate() error {
	return c.guard.Validate(ErrReassignDriverCommandIsNotConstructed)
}

func (c ReassignDriverCommand) Actor() access.Principal {
	return c.actor
}

func (c ReassignDriverCommand) OrderID() kernel.UUID {
	return c.orderID
}
