// Package queries is the read side: role-scoped projections of orders and
// drivers. Handlers never write and never lock.
package queries

import (
	"context"
	"time"

	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"
)

// OrderReader is the projection store behind the query handlers.
type OrderReader interface {
	// ListOrders returns up to filter.Limit orders matching filter, newest
	// first, strictly after filter.After.
	ListOrders(ctx context.Context, filter OrderFilter) ([]OrderView, error)

	// GetOrder returns one order with its status history.
	// Returns errs.ErrObjectNotFound for an unknown id.
	GetOrder(ctx context.Context, id kernel.UUID) (OrderView, error)

	// ListDrivers returns up to limit drivers ordered by id, strictly after
	// after when it is set.
	ListDrivers(ctx context.Context, after *kernel.UUID, limit int) ([]DriverView, error)

	// DriverIDByUserID resolves the driver profile of a session user.
	// Returns errs.ErrObjectNotFound when the user has none.
	DriverIDByUserID(ctx context.Context, userID kernel.UUID) (kernel.UUID, error)
}

// OrderView is the read model of an order. History is filled by GetOrder only.
type OrderView struct {
	ID           kernel.UUID
	CustomerID   kernel.UUID
	RestaurantID kernel.UUID
	DriverID     *kernel.UUID
	Status       order.Status
	Items        []ItemView
	DeliveryFee  int64
	TotalAmount  int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
	History      []StatusChangeView
}

type ItemView struct {
	MenuItemID kernel.UUID
	Quantity   int
	UnitPrice  int64
	LineTotal  int64
}

type StatusChangeView struct {
	From      order.Status
	To        order.Status
	Action    string
	ActorID   kernel.UUID
	ActorRole string
	At        time.Time
}

type DriverView struct {
	ID             kernel.UUID
	UserID         kernel.UUID
	IsActive       bool
	IsAvailable    bool
	AvailableSince time.Time
	VehicleType    string
	LicensePlate   string
	ActiveOrderID  *kernel.UUID
}

// OrderCursor is the keyset position of the last order of a page.
type OrderCursor struct {
	CreatedAt time.Time
	ID        kernel.UUID
}

// IsBefore reports whether v sorts after c in newest-first order, i.e.
// whether v belongs to the next page.
func (c OrderCursor) IsBefore(v OrderView) bool {
	if !v.CreatedAt.Equal(c.CreatedAt) {
		return v.CreatedAt.Before(c.CreatedAt)
	}
	return v.ID.Compare(c.ID) < 0
}

// OrderFilter is a role scope plus paging. Nil scope fields do not restrict.
//
// A driver scope is DriverID together with ReadyPool: orders assigned to the
// driver, or unassigned orders waiting for pickup.
type OrderFilter struct {
	CustomerID   *kernel.UUID
	RestaurantID *kernel.UUID
	DriverID     *kernel.UUID
	ReadyPool    bool
	Status       *order.Status
	After        *OrderCursor
	Limit        int
}

// Matches applies the filter to a single view, ignoring paging.
func (f OrderFilter) Matches(v OrderView) bool {
	if f.CustomerID != nil && !v.CustomerID.IsEqual(*f.CustomerID) {
		return false
	}
	if f.RestaurantID != nil && !v.RestaurantID.IsEqual(*f.RestaurantID) {
		return false
	}
	if f.Status != nil && v.Status != *f.Status {
		return false
	}
	if f.DriverID == nil && !f.ReadyPool {
		return true
	}

	assigned := f.DriverID != nil && v.DriverID != nil && v.DriverID.IsEqual(*f.DriverID)
	pooled := f.ReadyPool && v.DriverID == nil && v.Status == order.ReadyForPickup
	return assigned || pooled
}
