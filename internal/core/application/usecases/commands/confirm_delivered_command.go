package commands

import (
	"errors"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/guard"
)

var ErrConfirmDeliveredCommandIsNotConstructed = errors.New(
	"ConfirmDeliveredCommand must be created via NewConfirmDeliveredCommand constructor",
)

// ConfirmDeliveredCommand is the assigned driver reporting a handover.
type ConfirmDeliveredCommand struct {
	actor   access.Principal
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

// NewConfirmDeliveredCommand requires driver-write.
func NewConfirmDeliveredCommand(actor access.Principal, orderID kernel.UUID) (ConfirmDeliveredCommand, error) {
	if err := errors.Join(actor.Require(access.DriverWrite), orderID.Validate()); err != nil {
		return ConfirmDeliveredCommand{}, err
	}
	return ConfirmDeliveredCommand{actor: actor, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c ConfirmDeliveredCommand) Validate() error {
	return c.guard.Validate(ErrConfirmDeliveredCommandIsNotConstructed)
}

func (c ConfirmDeliveredCommand) Actor() access.Principal {
	return c.actor
}

func (c ConfirmDeliveredCommand) OrderID() kernel.UUID {
	return c.orderID
}
