package access

import (
	"fmt"

	"fooddispatch/internal/pkg/errs"
)

// Role is the kind of actor behind a session.
//
// Roles are a closed set. Customer, Restaurant, Driver and Admin come from
// session tokens; System is the dispatch matcher acting on its own and can
// never be parsed from external input.
type Role int

const (
	// UnknownRole (0) catches uninitialized values.
	UnknownRole Role = iota
	Customer
	Restaurant
	Driver
	Admin
	System
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		UnknownRole: "unknown",
		Customer:    "customer",
		Restaurant:  "restaurant",
		Driver:      "driver",
		Admin:       "admin",
		System:      "system",
	}
}

// ParseRole maps a session role claim to a Role. "system" is rejected.
//
// Example:
//
//	role, err := access.ParseRole("driver") // access.Driver, nil
//	_, err = access.ParseRole("system")     // ErrValueIsInvalid
func ParseRole(s string) (Role, error) {
	switch s {
	case "customer":
		return Customer, nil
	case "restaurant":
		return Restaurant, nil
	case "driver":
		return Driver, nil
	case "admin":
		return Admin, nil
	default:
		return UnknownRole, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a session role", s))
	}
}

func (r Role) String() string {
	if s, ok := getRoleStrings()[r]; ok {
		return s
	}
	return "unknown"
}

// Validate accepts every declared role except UnknownRole.
func (r Role) Validate() error {
	if r <= UnknownRole || r > System {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}
