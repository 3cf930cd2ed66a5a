package order

import (
	"errors"

	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/errs"
)

const (
	minItemQuantity = 1
	maxItemQuantity = 100
)

// Item is one order line. The unit price is captured from the catalog when the
// order is placed and never changes afterwards.
type Item struct {
	menuItemID kernel.UUID
	quantity   int
	unitPrice  kernel.Money
}

func NewItem(menuItemID kernel.UUID, quantity int, unitPrice kernel.Money) (Item, error) {
	if err := errors.Join(
		menuItemID.Validate(),
		validateQuantity(quantity),
	); err != nil {
		return Item{}, err
	}
	return Item{menuItemID: menuItemID, quantity: quantity, unitPrice: unitPrice}, nil
}

func (i Item) MenuItemID() kernel.UUID {
	return i.menuItemID
}

func (i Item) Quantity() int {
	return i.quantity
}

func (i Item) UnitPrice() kernel.Money {
	return i.unitPrice
}

// LineTotal is quantity × unit price.
func (i Item) LineTotal() (kernel.Money, error) {
	return i.unitPrice.Multiply(i.quantity)
}

func validateQuantity(q int) error {
	if q < minItemQuantity || q > maxItemQuantity {
		return errs.NewValueIsOutOfRangeError("quantity", q, minItemQuantity, maxItemQuantity)
	}
	return nil
}
