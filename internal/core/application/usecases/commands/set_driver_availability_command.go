package commands

import (
	"errors"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/pkg/guard"
)

var ErrSetDriverAvailabilityCommandIsNotConstructed = errors.New(
	"SetDriverAvailabilityCommand must be created via NewSetDriverAvailabilityCommand constructor",
)

// SetDriverAvailabilityCommand is a driver going on or off shift. The profile
// is resolved from the actor's user id.
type SetDriverAvailabilityCommand struct {
	actor     access.Principal
	available bool
	guard     guard.ConstructorGuard
}

// NewSetDriverAvailabilityCommand requires driver-write.
func NewSetDriverAvailabilityCommand(actor access.Principal, available bool) (SetDriverAvailabilityCommand, error) {
	if err := actor.Require(access.DriverWrite); err != nil {
		return SetDriverAvailabilityCommand{}, err
	}
	return SetDriverAvailabilityCommand{actor: actor, available: available, guard: guard.NewConstructorGuard()}, nil
}

func (c SetDriverAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrSetDriverAvailabilityCommandIsNotConstructed)
}

func (c SetDriverAvailabilityCommand) Actor() access.Principal {
	return c.actor
}

func (c SetDriverAvailabilityCommand) Available() bool {
	return c.available
}
