package commands

import (
	"errors"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/guard"
)

var ErrAssignDriverCommandIsNotConstructed = errors.New(
	"AssignDriverCommand must be created via NewAssignDriverCommand constructor",
)

// AssignDriverCommand asks the dispatch matcher to bind one ready order to a
// driver. It is issued by the system after markReady, reassign and on
// schedule, or by an admin as a manual trigger.
//
// Example:
//
//	cmd, _ := NewAssignDriverCommand(access.SystemPrincipal(), orderID)
//	result, err := handler.Handle(ctx, cmd)
//	if err == nil && result.Outcome == NoDriverAvailable {
//	    // order stays ready_for_pickup until the next pass
//	}
type AssignDriverCommand struct {
	actor   access.Principal
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

// NewAssignDriverCommand requires dispatch (system) or admin-write.
func NewAssignDriverCommand(actor access.Principal, orderID kernel.UUID) (AssignDriverCommand, error) {
	if err := errors.Join(actor.Require(access.Dispatch, access.AdminWrite), orderID.Validate()); err != nil {
		return AssignDriverCommand{}, err
	}
	return AssignDriverCommand{actor: actor, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c AssignDriverCommand) Validate() error {
	return c.guard.Validate(ErrAssignDriverCommandIsNotConstructed)
}

func (c AssignDriverCommand) Actor() access.Principal {
	return c.actor
}

func (c AssignDriverCommand) OrderID() kernel.UUID {
	return c.orderID
}

// DispatchOutcome is the non-error result of a dispatch attempt.
type DispatchOutcome int

const (
	// DispatchSkipped means no attempt was made or it lost to a concurrent
	// change of the order (for example a cancel).
	DispatchSkipped DispatchOutcome = iota
	DriverAssigned
	NoDriverAvailable
)

func (o DispatchOutcome) String() string {
	switch o {
	case DriverAssigned:
		return "assigned"
	case NoDriverAvailable:
		return "no_driver_available"
	case DispatchSkipped:
		return "skipped"
	default:
		return "skipped"
	}
}

// AssignDriverResult reports what a dispatch attempt did. DriverID is set
// only for DriverAssigned.
type AssignDriverResult struct {
	Outcome  DispatchOutcome
	OrderID  kernel.UUID
	DriverID *kernel.UUID
}
