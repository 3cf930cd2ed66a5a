package order

import (
	"errors"
	"fmt"
	"time"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/errs"
	"fooddispatch/internal/pkg/guard"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created via
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")
	// ErrItemsAreRequired is returned for an order without lines.
	ErrItemsAreRequired = errs.NewValueIsRequiredError("items")
)

// Order is the aggregate root of the lifecycle engine. It is the only place
// where an order's status, driver and timestamps are written.
//
// Order follows these invariants:
//   - id, customerID, restaurantID, items, deliveryFee and totalAmount never change
//   - totalAmount == Σ(quantity × unitPrice) + deliveryFee
//   - driverID is set iff status is OutForDelivery or Delivered
//   - a failed transition leaves every field untouched
//   - every successful transition sets updatedAt, bumps version and records a
//     StatusChanged event
//
// Example usage:
//
//	o, err := order.NewOrder(order.NewUUID(), customerID, restaurantID, items, fee, now)
//	if err != nil {
//	    // invalid input
//	}
//	err = o.Accept(restaurantStaff, now)
type Order struct {
	id           kernel.UUID
	customerID   kernel.UUID
	restaurantID kernel.UUID

	// driverID is nil until dispatch and after reassign/cancel
	driverID *kernel.UUID

	status Status
	items  []Item

	deliveryFee kernel.Money
	totalAmount kernel.Money

	createdAt time.Time
	updatedAt time.Time

	// version is the current optimistic concurrency counter; originalVersion
	// is what storage held when the aggregate was loaded (0 for new orders).
	version         int64
	originalVersion int64

	events []StatusChanged
	guard  guard.ConstructorGuard
}

// NewOrder places a new order.
//
// Parameters:
//   - id: unique identifier for the order
//   - customerID: the ordering customer
//   - restaurantID: the restaurant that prepares it
//   - items: at least one line with prices already taken from the catalog
//   - deliveryFee: the restaurant's fee at creation time
//   - now: creation timestamp
//
// Returns:
//   - *Order: a Placed order with totalAmount computed once
//   - error: joined validation errors
//
// Example:
//
//	item, _ := order.NewItem(menuItemID, 2, kernel.MustMoney(25_000))
//	o, err := order.NewOrder(kernel.NewUUID(), customerID, restaurantID,
//	    []order.Item{item}, kernel.MustMoney(10_000), time.Now())
//	// o.TotalAmount().Amount() == 60_000
func NewOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	items []Item,
	deliveryFee kernel.Money,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:    Placed,
		createdAt: now,
		updatedAt: now,
		version:   1,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setRestaurantID(restaurantID),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	o.deliveryFee = deliveryFee
	total, err := computeTotal(o.items, deliveryFee)
	if err != nil {
		return nil, err
	}
	o.totalAmount = total

	o.events = append(o.events, StatusChanged{
		OrderID:   o.id,
		From:      Unknown,
		To:        Placed,
		Action:    Create,
		ActorID:   customerID,
		ActorRole: access.Customer,
		At:        now,
	})

	return o, nil
}

// RestoreOrder rebuilds an order from storage. Unlike NewOrder it records no
// event and re-checks the stored total and the driver/status consistency, so
// a corrupt row never becomes a live aggregate.
//
// Returns:
//   - *Order: the restored aggregate with originalVersion == version
//   - error: joined validation errors
func RestoreOrder(
	id kernel.UUID,
	customerID kernel.UUID,
	restaurantID kernel.UUID,
	driverID *kernel.UUID,
	status Status,
	items []Item,
	deliveryFee kernel.Money,
	totalAmount kernel.Money,
	createdAt time.Time,
	updatedAt time.Time,
	version int64,
) (*Order, error) {
	o := &Order{
		status:          status,
		deliveryFee:     deliveryFee,
		totalAmount:     totalAmount,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
		version:         version,
		originalVersion: version,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setCustomerID(customerID),
		o.setRestaurantID(restaurantID),
		o.setItems(items),
		o.setDriverID(driverID),
		status.Validate(),
		status.ValidateCanHaveDriver(driverID != nil),
		validateVersion(version),
	); err != nil {
		return nil, err
	}

	expected, err := computeTotal(o.items, deliveryFee)
	if err != nil {
		return nil, err
	}
	if !expected.IsEqual(totalAmount) {
		return nil, errs.NewValueIsInvalidErrorWithCause("totalAmount",
			fmt.Errorf("stored %s, items and fee add up to %s", totalAmount, expected))
	}

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) CustomerID() kernel.UUID {
	return o.customerID
}

func (o *Order) RestaurantID() kernel.UUID {
	return o.restaurantID
}

// DriverID returns nil when no driver holds the order.
func (o *Order) DriverID() *kernel.UUID {
	if o.driverID == nil {
		return nil
	}
	id := *o.driverID
	return &id
}

func (o *Order) Status() Status {
	return o.status
}

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	out := make([]Item, len(o.items))
	copy(out, o.items)
	return out
}

func (o *Order) DeliveryFee() kernel.Money {
	return o.deliveryFee
}

func (o *Order) TotalAmount() kernel.Money {
	return o.totalAmount
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) Version() int64 {
	return o.version
}

// OriginalVersion is the version storage held when the order was loaded.
// Repositories use it as the optimistic concurrency predicate.
func (o *Order) OriginalVersion() int64 {
	return o.originalVersion
}

// IsNew reports whether the order has never been persisted.
func (o *Order) IsNew() bool {
	return o.originalVersion == 0
}

// DomainEvents returns a copy of the events recorded since the last clear.
func (o *Order) DomainEvents() []StatusChanged {
	out := make([]StatusChanged, len(o.events))
	copy(out, o.events)
	return out
}

func (o *Order) ClearDomainEvents() {
	o.events = nil
}

// Accept moves Placed -> Accepted. Restaurant staff of this restaurant or an
// admin only.
func (o *Order) Accept(actor access.Principal, now time.Time) error {
	to, err := o.next(actor, Accept)
	if err != nil {
		return err
	}
	o.commit(actor, Accept, to, now)
	return nil
}

// MarkReady moves Accepted -> ReadyForPickup.
func (o *Order) MarkReady(actor access.Principal, now time.Time) error {
	to, err := o.next(actor, MarkReady)
	if err != nil {
		return err
	}
	o.commit(actor, MarkReady, to, now)
	return nil
}

// CanAssign runs the checks of AssignDriver without mutating the order.
//
// Returns:
//   - ErrAlreadyAssigned if the order already holds a driver
//   - ErrInvalidTransition for any other status, or a role without the edge
func (o *Order) CanAssign(actor access.Principal) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.driverID != nil {
		return errs.NewAlreadyAssignedError("order", o.id)
	}
	_, err := o.next(actor, Dispatch)
	return err
}

// AssignDriver moves ReadyForPickup -> OutForDelivery and binds driverID.
// It fails exactly when CanAssign fails or driverID is invalid.
//
// The driver side of the binding (its single in-flight slot) is the caller's
// responsibility; see services.OrderDispatcher.Bind.
func (o *Order) AssignDriver(actor access.Principal, driverID kernel.UUID, now time.Time) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	if err := o.CanAssign(actor); err != nil {
		return err
	}

	o.driverID = &driverID
	o.commit(actor, Dispatch, OutForDelivery, now)
	return nil
}

// ConfirmDelivered moves OutForDelivery -> Delivered. Only the assigned
// driver may confirm.
func (o *Order) ConfirmDelivered(actor access.Principal, now time.Time) error {
	to, err := o.next(actor, ConfirmDelivered)
	if err != nil {
		return err
	}
	o.commit(actor, ConfirmDelivered, to, now)
	return nil
}

// Cancel moves the order to Cancelled. Customers may cancel their own order
// until it leaves the restaurant; admins may also force-cancel an order that
// is out for delivery.
//
// Returns the driver that was released, or nil if none was assigned.
func (o *Order) Cancel(actor access.Principal, now time.Time) (*kernel.UUID, error) {
	to, err := o.next(actor, Cancel)
	if err != nil {
		return nil, err
	}

	released := o.driverID
	o.driverID = nil
	o.commit(actor, Cancel, to, now)
	return released, nil
}

// Reassign returns an OutForDelivery order to ReadyForPickup and releases its
// driver, for a driver declining or an admin handling a logistics failure.
//
// Returns the released driver.
func (o *Order) Reassign(actor access.Principal, now time.Time) (kernel.UUID, error) {
	to, err := o.next(actor, Reassign)
	if err != nil {
		return kernel.UUID{}, err
	}

	released := *o.driverID
	o.driverID = nil
	o.commit(actor, Reassign, to, now)
	return released, nil
}

// IsVisibleTo applies the per-role read filter to a single order:
// customers see their own orders, restaurant staff their restaurant's,
// drivers the orders assigned to them plus the unassigned ready pool, admins
// everything.
func (o *Order) IsVisibleTo(p access.Principal) bool {
	switch p.Role() {
	case access.Admin, access.System:
		return true
	case access.Customer:
		return o.customerID.IsEqual(p.UserID())
	case access.Restaurant:
		return p.RestaurantID() != nil && o.restaurantID.IsEqual(*p.RestaurantID())
	case access.Driver:
		if o.status == ReadyForPickup && o.driverID == nil {
			return true
		}
		return o.isAssignedTo(p)
	case access.UnknownRole:
		return false
	default:
		return false
	}
}

// CheckOwnership reports ErrForbidden when actor's role may act on orders in
// general but not on this one.
func (o *Order) CheckOwnership(actor access.Principal) error {
	switch actor.Role() {
	case access.Admin, access.System:
		return nil
	case access.Customer:
		if o.customerID.IsEqual(actor.UserID()) {
			return nil
		}
		return errs.NewForbiddenError(actor.Role().String(), "order belongs to another customer")
	case access.Restaurant:
		if actor.RestaurantID() != nil && o.restaurantID.IsEqual(*actor.RestaurantID()) {
			return nil
		}
		return errs.NewForbiddenError(actor.Role().String(), "order belongs to another restaurant")
	case access.Driver:
		if o.isAssignedTo(actor) {
			return nil
		}
		return errs.NewForbiddenError(actor.Role().String(), "order is not assigned to this driver")
	case access.UnknownRole:
		return errs.NewForbiddenError(actor.Role().String(), "unknown role")
	default:
		return errs.NewForbiddenError(actor.Role().String(), "unknown role")
	}
}

func (o *Order) isAssignedTo(p access.Principal) bool {
	return o.driverID != nil && p.DriverID() != nil && o.driverID.IsEqual(*p.DriverID())
}

// next runs every check of a transition without mutating anything.
func (o *Order) next(actor access.Principal, action Action) (Status, error) {
	if err := o.Validate(); err != nil {
		return Unknown, err
	}
	if err := actor.Validate(); err != nil {
		return Unknown, err
	}
	if err := o.CheckOwnership(actor); err != nil {
		return Unknown, err
	}
	return Next(o.status, action, actor.Role())
}

func (o *Order) commit(actor access.Principal, action Action, to Status, now time.Time) {
	from := o.status
	o.status = to
	o.updatedAt = now
	o.version++
	o.events = append(o.events, StatusChanged{
		OrderID:   o.id,
		From:      from,
		To:        to,
		Action:    action,
		ActorID:   actor.UserID(),
		ActorRole: actor.Role(),
		DriverID:  o.DriverID(),
		At:        now,
	})
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setCustomerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("customerID", err)
	}
	o.customerID = id
	return nil
}

func (o *Order) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("restaurantID", err)
	}
	o.restaurantID = id
	return nil
}

func (o *Order) setDriverID(id *kernel.UUID) error {
	if id == nil {
		o.driverID = nil
		return nil
	}
	if err := id.Validate(); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("driverID", err)
	}
	driverID := *id
	o.driverID = &driverID
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}
	for i, item := range items {
		if err := errors.Join(item.menuItemID.Validate(), validateQuantity(item.quantity)); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d]", i), err)
		}
	}
	o.items = make([]Item, len(items))
	copy(o.items, items)
	return nil
}

func validateVersion(v int64) error {
	if v < 1 {
		return errs.NewVersionIsInvalidErrorWithCause("version", fmt.Errorf("%d is not positive", v))
	}
	return nil
}

func computeTotal(items []Item, deliveryFee kernel.Money) (kernel.Money, error) {
	total := deliveryFee
	for _, item := range items {
		line, err := item.LineTotal()
		if err != nil {
			return kernel.Money{}, err
		}
		if total, err = total.Add(line); err != nil {
			return kernel.Money{}, err
		}
	}
	return total, nil
}
