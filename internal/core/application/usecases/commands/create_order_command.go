package commands

import (
	"errors"
	"fmt"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/errs"
	"fooddispatch/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrLinesAreRequired = errs.NewValueIsRequiredError("lines")
)

// OrderLine is a requested menu item and quantity. Prices are not accepted
// from the caller; the handler reads them from the catalog.
type OrderLine struct {
	MenuItemID kernel.UUID
	Quantity   int
}

// CreateOrderCommand places a new order on behalf of a customer.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(customer, kernel.NewUUID(), restaurantID,
//	    []OrderLine{{MenuItemID: pizzaID, Quantity: 2}})
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//	err = handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	actor        access.Principal
	orderID      kernel.UUID
	restaurantID kernel.UUID
	lines        []OrderLine

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the request shape. The actor must hold
// customer-write; the order is placed for actor's user.
func NewCreateOrderCommand(
	actor access.Principal,
	orderID kernel.UUID,
	restaurantID kernel.UUID,
	lines []OrderLine,
) (CreateOrderCommand, error) {
	if err := actor.Require(access.CustomerWrite); err != nil {
		return CreateOrderCommand{}, err
	}

	cmd := CreateOrderCommand{
		actor: actor,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setRestaurantID(restaurantID),
		cmd.setLines(lines),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Actor() access.Principal {
	return c.actor
}

func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c CreateOrderCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

func (c CreateOrderCommand) Lines() []OrderLine {
	out := make([]OrderLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setRestaurantID(restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("restaurantID", err)
	}
	c.restaurantID = restaurantID
	return nil
}

func (c *CreateOrderCommand) setLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return ErrLinesAreRequired
	}

	seen := make(map[kernel.UUID]struct{}, len(lines))
	for i, line := range lines {
		if err := line.MenuItemID.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("lines[%d].menuItemId", i), err)
		}
		if line.Quantity <= 0 {
			return errs.NewValueIsOutOfRangeError(fmt.Sprintf("lines[%d].quantity", i), line.Quantity, 1, 100)
		}
		if _, dup := seen[line.MenuItemID]; dup {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("lines[%d].menuItemId", i),
				fmt.Errorf("%s appears twice", line.MenuItemID))
		}
		seen[line.MenuItemID] = struct{}{}
	}

	c.lines = make([]OrderLine, len(lines))
	copy(c.lines, lines)
	return nil
}
