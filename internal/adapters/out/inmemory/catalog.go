package inmemory

import (
	"context"
	"sync"

	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/ports"
	"fooddispatch/internal/pkg/errs"
)

type restaurant struct {
	deliveryFee kernel.Money
	menu        map[kernel.UUID]kernel.Money
}

// Catalog is a MenuCatalog held in memory, seeded through AddRestaurant and
// SetPrice.
type Catalog struct {
	mu          sync.RWMutex
	restaurants map[kernel.UUID]*restaurant
}

var _ ports.MenuCatalog = (*Catalog)(nil)

func NewCatalog() *Catalog {
	return &Catalog{restaurants: make(map[kernel.UUID]*restaurant)}
}

// AddRestaurant registers a restaurant or replaces its delivery fee.
func (c *Catalog) AddRestaurant(id kernel.UUID, deliveryFee kernel.Money) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if r, ok := c.restaurants[id]; ok {
		r.deliveryFee = deliveryFee
		return
	}
	c.restaurants[id] = &restaurant{deliveryFee: deliveryFee, menu: make(map[kernel.UUID]kernel.Money)}
}

// SetPrice puts an item on a registered restaurant's menu.
func (c *Catalog) SetPrice(restaurantID, menuItemID kernel.UUID, price kernel.Money) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.restaurants[restaurantID]
	if !ok {
		return errs.NewObjectNotFoundError("restaurantID", restaurantID)
	}
	r.menu[menuItemID] = price
	return nil
}

func (c *Catalog) UnitPrices(
	_ context.Context,
	restaurantID kernel.UUID,
	menuItemIDs []kernel.UUID,
) (map[kernel.UUID]kernel.Money, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.restaurants[restaurantID]
	if !ok {
		return nil, errs.NewObjectNotFoundError("restaurantID", restaurantID)
	}

	prices := make(map[kernel.UUID]kernel.Money, len(menuItemIDs))
	for _, id := range menuItemIDs {
		price, ok := r.menu[id]
		if !ok {
			return nil, errs.NewObjectNotFoundError("menuItemId", id)
		}
		prices[id] = price
	}
	return prices, nil
}

func (c *Catalog) DeliveryFee(_ context.Context, restaurantID kernel.UUID) (kernel.Money, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.restaurants[restaurantID]
	if !ok {
		return kernel.Money{}, errs.NewObjectNotFoundError("restaurantID", restaurantID)
	}
	return r.deliveryFee, nil
}
