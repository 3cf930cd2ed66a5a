package inmemory

import (
	"time"

	"fooddispatch/internal/core/application/usecases/queries"
	"fooddispatch/internal/core/domain/model/driver"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"
)

// orderState is the stored copy of an order. Aggregates never leave the
// store; every read restores a fresh one.
type orderState struct {
	id           kernel.UUID
	customerID   kernel.UUID
	restaurantID kernel.UUID
	driverID     *kernel.UUID
	status       order.Status
	items        []order.Item
	deliveryFee  kernel.Money
	totalAmount  kernel.Money
	createdAt    time.Time
	updatedAt    time.Time
	version      int64
}

func orderStateOf(o *order.Order) orderState {
	return orderState{
		id:           o.ID(),
		customerID:   o.CustomerID(),
		restaurantID: o.RestaurantID(),
		driverID:     o.DriverID(),
		status:       o.Status(),
		items:        o.Items(),
		deliveryFee:  o.DeliveryFee(),
		totalAmount:  o.TotalAmount(),
		createdAt:    o.CreatedAt(),
		updatedAt:    o.UpdatedAt(),
		version:      o.Version(),
	}
}

func (s orderState) restore() (*order.Order, error) {
	return order.RestoreOrder(s.id, s.customerID, s.restaurantID, s.driverID, s.status,
		s.items, s.deliveryFee, s.totalAmount, s.createdAt, s.updatedAt, s.version)
}

func (s orderState) view(history []order.StatusChanged) queries.OrderView {
	v := queries.OrderView{
		ID:           s.id,
		CustomerID:   s.customerID,
		RestaurantID: s.restaurantID,
		Status:       s.status,
		DeliveryFee:  s.deliveryFee.Amount(),
		TotalAmount:  s.totalAmount.Amount(),
		CreatedAt:    s.createdAt,
		UpdatedAt:    s.updatedAt,
		Version:      s.version,
	}
	if s.driverID != nil {
		id := *s.driverID
		v.DriverID = &id
	}
	for _, item := range s.items {
		line, _ := item.LineTotal()
		v.Items = append(v.Items, queries.ItemView{
			MenuItemID: item.MenuItemID(),
			Quantity:   item.Quantity(),
			UnitPrice:  item.UnitPrice().Amount(),
			LineTotal:  line.Amount(),
		})
	}
	for _, e := range history {
		v.History = append(v.History, queries.StatusChangeView{
			From:      e.From,
			To:        e.To,
			Action:    e.Action.String(),
			ActorID:   e.ActorID,
			ActorRole: e.ActorRole.String(),
			At:        e.At,
		})
	}
	return v
}

type driverState struct {
	id             kernel.UUID
	userID         kernel.UUID
	isActive       bool
	isAvailable    bool
	availableSince time.Time
	vehicleType    driver.VehicleType
	licensePlate   string
	activeOrderID  *kernel.UUID
}

func driverStateOf(d *driver.Driver) driverState {
	return driverState{
		id:             d.ID(),
		userID:         d.UserID(),
		isActive:       d.IsActive(),
		isAvailable:    d.IsAvailable(),
		availableSince: d.AvailableSince(),
		vehicleType:    d.VehicleType(),
		licensePlate:   d.LicensePlate(),
		activeOrderID:  d.ActiveOrderID(),
	}
}

func (s driverState) restore() (*driver.Driver, error) {
	return driver.RestoreDriver(s.id, s.userID, s.isActive, s.isAvailable, s.availableSince,
		s.vehicleType, s.licensePlate, s.activeOrderID)
}

func (s driverState) eligible() bool {
	return s.isActive && s.isAvailable && s.activeOrderID == nil
}

func (s driverState) view() queries.DriverView {
	v := queries.DriverView{
		ID:             s.id,
		UserID:         s.userID,
		IsActive:       s.isActive,
		IsAvailable:    s.isAvailable,
		AvailableSince: s.availableSince,
		VehicleType:    s.vehicleType.String(),
		LicensePlate:   s.licensePlate,
	}
	if s.activeOrderID != nil {
		id := *s.activeOrderID
		v.ActiveOrderID = &id
	}
	return v
}

// rowLock is a one-slot semaphore: a blocking acquire for GetForUpdate and a
// non-blocking one for skip-locked candidate scans.
type rowLock chan struct{}

func newRowLock() rowLock {
	return make(rowLock, 1)
}

func (l rowLock) tryLock() bool {
	select {
	case l <- struct{}{}:
		return true
	default:
		return false
	}
}

func (l rowLock) unlock() {
	<-l
}
