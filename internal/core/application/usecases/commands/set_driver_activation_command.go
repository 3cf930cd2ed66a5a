package commands

import (
	"errors"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/guard"
)

var ErrSetDriverActivationCommandIsNotConstructed = errors.New(
	"SetDriverActivationCommand must be created via NewSetDriverActivationCommand constructor",
)

// SetDriverActivationCommand is an admin enabling or suspending a driver.
type SetDriverActivationCommand struct {
	actor    access.Principal
	driverID kernel.UUID
	active   bool
	guard    guard.ConstructorGuard
}

// NewSetDriverActivationCommand requires admin-write.
func NewSetDriverActivationCommand(actor access.Principal, driverID kernel.UUID, active bool) (SetDriverActivationCommand, error) {
	if err := errors.Join(actor.Require(access.AdminWrite), driverID.Validate()); err != nil {
		return SetDriverActivationCommand{}, err
	}
	return SetDriverActivationCommand{
		actor:    actor,
		driverID: driverID,
		active:   active,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c SetDriverActivationCommand) Validate() error {
	return c.guard.Validate(ErrSetDriverActivationCommandIsNotConstructed)
}

func (c SetDriverActivationCommand) Actor() access.Principal {
	return c.actor
}

func (c SetDriverActivationCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c SetDriverActivationCommand) Active() bool {
	return c.active
}
