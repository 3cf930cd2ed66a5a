package services

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/driver"
	"fooddispatch/internal/core/domain/model/order"
	"fooddispatch/internal/pkg/errs"
)

// OrderDispatcher matches ready orders to drivers on a
// first-available-first-served basis.
//
// Key responsibilities:
//   - Ranking eligible drivers by availableSince, then by ID for determinism
//   - Binding an order and a driver so that both sides change together or
//     not at all
//
// The dispatcher is pure domain logic. Row locking, skip-locked candidate
// scans and retries live in the application layer; see
// commands.AssignDriverCommandHandler.
//
// Example usage:
//
//	dispatcher := services.NewOrderDispatcher()
//	d, err := dispatcher.Dispatch(access.SystemPrincipal(), o, candidates, now)
//	if errors.Is(err, errs.ErrNoDriverAvailable) {
//	    // order stays ready_for_pickup
//	}
type OrderDispatcher struct{}

func NewOrderDispatcher() OrderDispatcher {
	return OrderDispatcher{}
}

// RankCandidates returns the eligible drivers, longest-waiting first. Ties on
// availableSince are broken by driver ID. The input slice is not modified.
func (OrderDispatcher) RankCandidates(drivers []*driver.Driver) []*driver.Driver {
	ranked := make([]*driver.Driver, 0, len(drivers))
	for _, d := range drivers {
		if d.Validate() == nil && d.IsEligible() {
			ranked = append(ranked, d)
		}
	}

	slices.SortStableFunc(ranked, func(a, b *driver.Driver) int {
		return cmp.Or(
			a.AvailableSince().Compare(b.AvailableSince()),
			a.ID().Compare(b.ID()),
		)
	})
	return ranked
}

// Dispatch binds o to the best-ranked eligible driver.
//
// Parameters:
//   - actor: the dispatching principal (System, or an admin triggering manually)
//   - o: a ready, unassigned order
//   - drivers: candidates; ineligible ones are ignored
//   - now: transition timestamp
//
// Returns:
//   - *driver.Driver: the driver now holding the order
//   - error: errs.ErrNoDriverAvailable when nobody is eligible, or the order's
//     own AlreadyAssigned / InvalidTransition error
func (d OrderDispatcher) Dispatch(
	actor access.Principal,
	o *order.Order,
	drivers []*driver.Driver,
	now time.Time,
) (*driver.Driver, error) {
	if err := o.CanAssign(actor); err != nil {
		return nil, err
	}

	ranked := d.RankCandidates(drivers)
	if len(ranked) == 0 {
		return nil, errs.ErrNoDriverAvailable
	}

	best := ranked[0]
	if err := d.Bind(actor, o, best, now); err != nil {
		return nil, err
	}
	return best, nil
}

// Bind assigns o to candidate. Every precondition on both aggregates is
// checked before either is mutated.
//
// Returns:
//   - errs.ErrAlreadyAssigned when the order or the driver slot is taken
//   - driver.ErrDriverIsNotEligible when the driver went off shift or was deactivated
//   - errs.ErrInvalidTransition when the order is not ready
func (OrderDispatcher) Bind(actor access.Principal, o *order.Order, candidate *driver.Driver, now time.Time) error {
	if err := candidate.Validate(); err != nil {
		return err
	}
	if err := o.CanAssign(actor); err != nil {
		return err
	}
	if candidate.ActiveOrderID() != nil {
		return errs.NewAlreadyAssignedError("driver", candidate.ID())
	}
	if !candidate.IsEligible() {
		return fmt.Errorf("%w: %s", driver.ErrDriverIsNotEligible, candidate.ID())
	}

	if err := o.AssignDriver(actor, candidate.ID(), now); err != nil {
		return err
	}
	// Cannot fail: eligibility and the empty slot were checked above.
	return candidate.TakeOrder(o.ID())
}
