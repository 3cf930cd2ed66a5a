package order

import (
	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/pkg/errs"
)

// Action names a lifecycle operation. Together with the current status and the
// acting role it selects at most one edge of the state machine.
type Action int

const (
	UnknownAction Action = iota
	Create
	Accept
	MarkReady
	Dispatch
	ConfirmDelivered
	Cancel
	Reassign
)

func (a Action) String() string {
	switch a {
	case Create:
		return "create"
	case Accept:
		return "accept"
	case MarkReady:
		return "mark_ready"
	case Dispatch:
		return "dispatch"
	case ConfirmDelivered:
		return "confirm_delivered"
	case Cancel:
		return "cancel"
	case Reassign:
		return "reassign"
	case UnknownAction:
		return "unknown"
	default:
		return "unknown"
	}
}

// ParseAction is the inverse of String, used when reading status history.
func ParseAction(s string) (Action, error) {
	for a := Create; a <= Reassign; a++ {
		if a.String() == s {
			return a, nil
		}
	}
	return UnknownAction, errs.NewValueIsInvalidError("action")
}

type edge struct {
	from   Status
	action Action
	role   access.Role
}

// transitions is the complete edge set. Anything not listed fails with
// ErrInvalidTransition.
//
//nolint:gochecknoglobals // read-only lookup table
var transitions = func() map[edge]Status {
	t := map[edge]Status{}
	add := func(from Status, action Action, to Status, roles ...access.Role) {
		for _, r := range roles {
			t[edge{from: from, action: action, role: r}] = to
		}
	}

	add(Placed, Accept, Accepted, access.Restaurant, access.Admin)
	add(Accepted, MarkReady, ReadyForPickup, access.Restaurant, access.Admin)
	add(ReadyForPickup, Dispatch, OutForDelivery, access.System, access.Admin)
	add(OutForDelivery, ConfirmDelivered, Delivered, access.Driver)
	for _, from := range []Status{Placed, Accepted, ReadyForPickup} {
		add(from, Cancel, Cancelled, access.Customer, access.Admin)
	}
	add(OutForDelivery, Cancel, Cancelled, access.Admin)
	add(OutForDelivery, Reassign, ReadyForPickup, access.Driver, access.Admin)

	return t
}()

// Next returns the target status of the edge (from, action, role), or an
// InvalidTransitionError when there is none.
//
// Example:
//
//	to, err := order.Next(order.Placed, order.Accept, access.Restaurant) // Accepted, nil
//	_, err = order.Next(order.Delivered, order.Cancel, access.Customer)  // ErrInvalidTransition
func Next(from Status, action Action, role access.Role) (Status, error) {
	to, ok := transitions[edge{from: from, action: action, role: role}]
	if !ok {
		return Unknown, errs.NewInvalidTransitionError(from.String(), action.String(), role.String())
	}
	return to, nil
}
