package commands

import (
	"errors"
	"strings"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/driver"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/errs"
	"fooddispatch/internal/pkg/guard"
)

var ErrRegisterDriverCommandIsNotConstructed = errors.New(
	"RegisterDriverCommand must be created via NewRegisterDriverCommand constructor",
)

// RegisterDriverCommand creates the driver profile of an existing user.
//
// Example:
//
//	cmd, err := NewRegisterDriverCommand(admin, kernel.NewUUID(), userID, driver.Scooter, "A123BC")
type RegisterDriverCommand struct { //nolint:recvcheck //using for validation
	actor        access.Principal
	driverID     kernel.UUID
	userID       kernel.UUID
	vehicleType  driver.VehicleType
	licensePlate string

	guard guard.ConstructorGuard
}

// NewRegisterDriverCommand requires admin-write.
func NewRegisterDriverCommand(
	actor access.Principal,
	driverID kernel.UUID,
	userID kernel.UUID,
	vehicleType driver.VehicleType,
	licensePlate string,
) (RegisterDriverCommand, error) {
	if err := actor.Require(access.AdminWrite); err != nil {
		return RegisterDriverCommand{}, err
	}

	cmd := RegisterDriverCommand{
		actor: actor,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setDriverID(driverID),
		cmd.setUserID(userID),
		cmd.setVehicleType(vehicleType),
		cmd.setLicensePlate(licensePlate),
	); err != nil {
		return RegisterDriverCommand{}, err
	}

	return cmd, nil
}

func (c RegisterDriverCommand) Validate() error {
	return c.guard.Validate(ErrRegisterDriverCommandIsNotConstructed)
}

func (c RegisterDriverCommand) Actor() access.Principal {
	return c.actor
}

func (c RegisterDriverCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c RegisterDriverCommand) UserID() kernel.UUID {
	return c.userID
}

func (c RegisterDriverCommand) VehicleType() driver.VehicleType {
	return c.vehicleType
}

func (c RegisterDriverCommand) LicensePlate() string {
	return c.licensePlate
}

func (c *RegisterDriverCommand) setDriverID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.driverID = id
	return nil
}

func (c *RegisterDriverCommand) setUserID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("userID", err)
	}
	c.userID = id
	return nil
}

func (c *RegisterDriverCommand) setVehicleType(v driver.VehicleType) error {
	if err := v.Validate(); err != nil {
		return err
	}
	c.vehicleType = v
	return nil
}

func (c *RegisterDriverCommand) setLicensePlate(plate string) error {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return driver.ErrLicensePlateIsRequired
	}
	c.licensePlate = plate
	return nil
}
