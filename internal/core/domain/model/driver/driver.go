package driver

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/errs"
	"fooddispatch/internal/pkg/guard"
)

const maxLicensePlateLength = 16

var (
	// ErrDriverIsNotConstructed is returned when a Driver was not created via
	// NewDriver or RestoreDriver.
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver or RestoreDriver constructor")
	// ErrLicensePlateIsRequired is returned for a blank plate.
	ErrLicensePlateIsRequired = errs.NewValueIsRequiredError("licensePlate")
	// ErrDriverIsNotEligible is returned by TakeOrder for an inactive,
	// unavailable or busy driver.
	ErrDriverIsNotEligible = errors.New("driver is not eligible for dispatch")
)

// Driver is the availability profile of a delivery driver. It is a separate
// aggregate from the user account it points to via userID.
//
// Business rules:
//   - isActive is controlled by admins, isAvailable by the driver
//   - availableSince is refreshed on every transition to available and when
//     an order is released; the dispatcher serves the longest-waiting driver
//     first
//   - activeOrderID is the single in-flight slot: a driver holds at most one
//     order out for delivery
//   - a driver is eligible for dispatch iff active, available and slot empty
//
// Example usage:
//
//	d, err := driver.NewDriver(kernel.NewUUID(), userID, driver.Scooter, "A123BC", now)
//	d.SetAvailability(true, now)
//	if d.IsEligible() {
//	    _ = d.TakeOrder(orderID)
//	}
type Driver struct {
	id             kernel.UUID
	userID         kernel.UUID
	isActive       bool
	isAvailable    bool
	availableSince time.Time
	vehicleType    VehicleType
	licensePlate   string
	activeOrderID  *kernel.UUID
	guard          guard.ConstructorGuard
}

// NewDriver registers a driver profile. New drivers are active but not yet
// available: they go on shift through SetAvailability.
func NewDriver(
	id kernel.UUID,
	userID kernel.UUID,
	vehicleType VehicleType,
	licensePlate string,
	now time.Time,
) (*Driver, error) {
	d := &Driver{
		isActive:       true,
		availableSince: now,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setUserID(userID),
		d.setVehicleType(vehicleType),
		d.setLicensePlate(licensePlate),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDriver rebuilds a driver from storage.
func RestoreDriver(
	id kernel.UUID,
	userID kernel.UUID,
	isActive bool,
	isAvailable bool,
	availableSince time.Time,
	vehicleType VehicleType,
	licensePlate string,
	activeOrderID *kernel.UUID,
) (*Driver, error) {
	d := &Driver{
		isActive:       isActive,
		isAvailable:    isAvailable,
		availableSince: availableSince,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setUserID(userID),
		d.setVehicleType(vehicleType),
		d.setLicensePlate(licensePlate),
		d.setActiveOrderID(activeOrderID),
	); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

func (d *Driver) IsEqual(other *Driver) bool {
	return other != nil && d.id.IsEqual(other.id)
}

func (d *Driver) ID() kernel.UUID {
	return d.id
}

func (d *Driver) UserID() kernel.UUID {
	return d.userID
}

func (d *Driver) IsActive() bool {
	return d.isActive
}

func (d *Driver) IsAvailable() bool {
	return d.isAvailable
}

func (d *Driver) AvailableSince() time.Time {
	return d.availableSince
}

func (d *Driver) VehicleType() VehicleType {
	return d.vehicleType
}

func (d *Driver) LicensePlate() string {
	return d.licensePlate
}

// ActiveOrderID returns nil when the slot is free.
func (d *Driver) ActiveOrderID() *kernel.UUID {
	if d.activeOrderID == nil {
		return nil
	}
	id := *d.activeOrderID
	return &id
}

// IsEligible reports whether the dispatcher may offer this driver an order.
func (d *Driver) IsEligible() bool {
	return d.isActive && d.isAvailable && d.activeOrderID == nil
}

// SetAvailability records the driver's self-reported shift state. Becoming
// available moves availableSince to now; repeating the current state is a
// no-op so a driver does not lose their place in the queue.
//
// Returns true when the driver just became available.
func (d *Driver) SetAvailability(available bool, now time.Time) bool {
	if d.isAvailable == available {
		return false
	}
	d.isAvailable = available
	if available {
		d.availableSince = now
	}
	return available
}

// SetActive toggles the admin activation flag.
func (d *Driver) SetActive(active bool) {
	d.isActive = active
}

// TakeOrder fills the in-flight slot.
//
// Returns:
//   - ErrAlreadyAssigned if the slot is already taken
//   - ErrDriverIsNotEligible if the driver is inactive or unavailable
func (d *Driver) TakeOrder(orderID kernel.UUID) error {
	if err := errors.Join(d.Validate(), orderID.Validate()); err != nil {
		return err
	}
	if d.activeOrderID != nil {
		return errs.NewAlreadyAssignedError("driver", d.id)
	}
	if !d.IsEligible() {
		return fmt.Errorf("%w: active=%t available=%t", ErrDriverIsNotEligible, d.isActive, d.isAvailable)
	}

	id := orderID
	d.activeOrderID = &id
	return nil
}

// ReleaseOrder empties the slot held by orderID. A still-available driver
// re-enters the queue at now.
func (d *Driver) ReleaseOrder(orderID kernel.UUID, now time.Time) error {
	if d.activeOrderID == nil || !d.activeOrderID.IsEqual(orderID) {
		return errs.NewValueIsInvalidErrorWithCause("orderID",
			fmt.Errorf("driver %s does not hold order %s", d.id, orderID))
	}
	d.activeOrderID = nil
	if d.isAvailable {
		d.availableSince = now
	}
	return nil
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setUserID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("userID", err)
	}
	d.userID = id
	return nil
}

func (d *Driver) setVehicleType(v VehicleType) error {
	if err := v.Validate(); err != nil {
		return err
	}
	d.vehicleType = v
	return nil
}

func (d *Driver) setLicensePlate(plate string) error {
	plate = strings.TrimSpace(plate)
	if plate == "" {
		return ErrLicensePlateIsRequired
	}
	if len(plate) > maxLicensePlateLength {
		return errs.NewValueIsOutOfRangeError("licensePlate", len(plate), 1, maxLicensePlateLength)
	}
	d.licensePlate = plate
	return nil
}

func (d *Driver) setActiveOrderID(id *kernel.UUID) error {
	if id == nil {
		d.activeOrderID = nil
		return nil
	}
	if err := id.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("activeOrderID", err)
	}
	orderID := *id
	d.activeOrderID = &orderID
	return nil
}
