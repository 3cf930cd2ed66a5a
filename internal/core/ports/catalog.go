package ports

import (
	"context"

	"fooddispatch/internal/core/domain/model/kernel"
)

// MenuCatalog is the pricing source consulted once, when an order is placed.
type MenuCatalog interface {
	// UnitPrices returns the current price of each requested menu item of the
	// restaurant. An unknown restaurant, or an item not on its menu, fails
	// with errs.ErrObjectNotFound.
	UnitPrices(ctx context.Context, restaurantID kernel.UUID, menuItemIDs []kernel.UUID) (map[kernel.UUID]kernel.Money, error)

	// DeliveryFee returns the restaurant's current delivery fee.
	DeliveryFee(ctx context.Context, restaurantID kernel.UUID) (kernel.Money, error)
}
