package order

import (
	"fmt"

	"fooddispatch/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
//	Placed ──> Accepted ──> ReadyForPickup ──> OutForDelivery ──> Delivered
//	  │           │              │  ^               │
//	  │           │              │  └── reassign ───┤
//	  └───────────┴──────────────┴─────> Cancelled <┘ (admin only)
//
// Delivered and Cancelled are terminal. Which role may take which edge is
// defined by the transition table in transitions.go.
type Status int

const (
	// Unknown (0) catches uninitialized values.
	Unknown Status = iota

	// Placed is the initial status: the customer has submitted the order.
	Placed

	// Accepted means the restaurant has taken the order into preparation.
	Accepted

	// ReadyForPickup means the food is ready and the order waits for a driver.
	ReadyForPickup

	// OutForDelivery means a driver holds the order.
	OutForDelivery

	// Delivered is terminal.
	Delivered

	// Cancelled is terminal.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "unknown",
		Placed:         "placed",
		Accepted:       "accepted",
		ReadyForPickup: "ready_for_pickup",
		OutForDelivery: "out_for_delivery",
		Delivered:      "delivered",
		Cancelled:      "cancelled",
	}
}

// ParseStatus is the inverse of String for every valid status.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values, for example a corrupt row.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no edge leaves s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// RequiresDriver reports whether an order in s must hold a driver.
// Exactly OutForDelivery and Delivered do; every other status must not.
func (s Status) RequiresDriver() bool {
	return s == OutForDelivery || s == Delivered
}

// ValidateCanHaveDriver checks the status against driver presence, used when
// restoring an order from storage.
func (s Status) ValidateCanHaveDriver(hasDriver bool) error {
	if hasDriver && !s.RequiresDriver() {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s is not a valid status to have a driver", s))
	}
	if !hasDriver && s.RequiresDriver() {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("%s is not a valid status to have no driver", s))
	}
	return nil
}
