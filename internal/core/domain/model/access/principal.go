package access

import (
	"errors"
	"fmt"
	"strings"

	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/errs"
	"fooddispatch/internal/pkg/guard"

	"github.com/google/uuid"
)

var (
	ErrPrincipalIsNotConstructed = errors.New("Principal must be created via NewPrincipal or SystemPrincipal")
	// ErrRestaurantIsRequired is returned for restaurant staff without a restaurant binding.
	ErrRestaurantIsRequired = errs.NewValueIsRequiredError("restaurantID")
)

// systemUserID identifies the dispatch matcher in status history.
//
//nolint:gochecknoglobals // constant identity
var systemUserID = kernel.UUIDFromGoogle(uuid.Max)

// Principal is the resolved identity of a caller: who they are and which role
// they act in. It is produced by the session guard and passed to every command
// and query.
//
// A driver principal may additionally carry the driver profile ID it acts for,
// attached by the application layer once the profile has been looked up (see
// AsDriver). Order aggregates use it for the "assigned driver" ownership rule.
type Principal struct {
	userID       kernel.UUID
	role         Role
	restaurantID *kernel.UUID
	driverID     *kernel.UUID
	guard        guard.ConstructorGuard
}

// NewPrincipal builds a session principal.
//
// Business rules:
//   - userID must be valid
//   - role must be a session role (System is rejected)
//   - restaurant staff must carry a restaurantID; other roles ignore it
func NewPrincipal(userID kernel.UUID, role Role, restaurantID *kernel.UUID) (Principal, error) {
	if role == System {
		return Principal{}, errs.NewValueIsInvalidErrorWithCause("role", errors.New("system is internal"))
	}

	p := Principal{
		userID: userID,
		role:   role,
		guard:  guard.NewConstructorGuard(),
	}

	var restaurantErr error
	if role == Restaurant {
		switch {
		case restaurantID == nil:
			restaurantErr = ErrRestaurantIsRequired
		default:
			restaurantErr = restaurantID.Validate()
			id := *restaurantID
			p.restaurantID = &id
		}
	}

	if err := errors.Join(userID.Validate(), role.Validate(), restaurantErr); err != nil {
		return Principal{}, err
	}
	return p, nil
}

// SystemPrincipal is the actor used by automatic dispatch.
func SystemPrincipal() Principal {
	return Principal{
		userID: systemUserID,
		role:   System,
		guard:  guard.NewConstructorGuard(),
	}
}

func (p Principal) UserID() kernel.UUID {
	return p.userID
}

func (p Principal) Role() Role {
	return p.role
}

// RestaurantID is non-nil only for restaurant staff.
func (p Principal) RestaurantID() *kernel.UUID {
	return p.restaurantID
}

// DriverID is non-nil only after AsDriver.
func (p Principal) DriverID() *kernel.UUID {
	return p.driverID
}

// AsDriver returns a copy bound to the caller's driver profile. It is a no-op
// for non-driver roles.
func (p Principal) AsDriver(driverID kernel.UUID) Principal {
	if p.role != Driver {
		return p
	}
	p.driverID = &driverID
	return p
}

func (p Principal) Validate() error {
	return p.guard.Validate(ErrPrincipalIsNotConstructed)
}

// Can reports whether the principal holds at least one of caps.
func (p Principal) Can(caps ...Capability) bool {
	for _, c := range caps {
		if p.role.Has(c) {
			return true
		}
	}
	return false
}

// Require is Can turned into an error: ErrForbidden when none of caps is held.
func (p Principal) Require(caps ...Capability) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Can(caps...) {
		return nil
	}
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, c.String())
	}
	return errs.NewForbiddenError(p.role.String(), fmt.Sprintf("requires one of [%s]", strings.Join(names, ", ")))
}
