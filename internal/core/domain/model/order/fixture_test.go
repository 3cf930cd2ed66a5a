package order_test

import (
	"testing"
	"time"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	customerID   kernel.UUID
	restaurantID kernel.UUID
	driverID     kernel.UUID

	customer   access.Principal
	restaurant access.Principal
	driver     access.Principal
	admin      access.Principal
	system     access.Principal
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	f := fixture{
		customerID:   kernel.NewUUID(),
		restaurantID: kernel.NewUUID(),
		driverID:     kernel.NewUUID(),
		system:       access.SystemPrincipal(),
	}

	var err error
	f.customer, err = access.NewPrincipal(f.customerID, access.Customer, nil)
	require.NoError(t, err)
	f.restaurant, err = access.NewPrincipal(kernel.NewUUID(), access.Restaurant, &f.restaurantID)
	require.NoError(t, err)
	driver, err := access.NewPrincipal(kernel.NewUUID(), access.Driver, nil)
	require.NoError(t, err)
	f.driver = driver.AsDriver(f.driverID)
	f.admin, err = access.NewPrincipal(kernel.NewUUID(), access.Admin, nil)
	require.NoError(t, err)

	return f
}

// newOrder places 2 × 25,000 with a 10,000 fee.
func (f fixture) newOrder(t *testing.T) *order.Order {
	t.Helper()

	item, err := order.NewItem(kernel.NewUUID(), 2, kernel.MustMoney(25_000))
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), f.customerID, f.restaurantID,
		[]order.Item{item}, kernel.MustMoney(10_000), t0)
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func (f fixture) orderIn(t *testing.T, status order.Status) *order.Order {
	t.Helper()

	o := f.newOrder(t)
	step := func(i int) time.Time { return t0.Add(time.Duration(i) * time.Minute) }

	switch status {
	case order.Placed:
	case order.Accepted:
		require.NoError(t, o.Accept(f.restaurant, step(1)))
	case order.ReadyForPickup:
		require.NoError(t, o.Accept(f.restaurant, step(1)))
		require.NoError(t, o.MarkReady(f.restaurant, step(2)))
	case order.OutForDelivery:
		require.NoError(t, o.Accept(f.restaurant, step(1)))
		require.NoError(t, o.MarkReady(f.restaurant, step(2)))
		require.NoError(t, o.AssignDriver(f.system, f.driverID, step(3)))
	case order.Delivered:
		require.NoError(t, o.Accept(f.restaurant, step(1)))
		require.NoError(t, o.MarkReady(f.restaurant, step(2)))
		require.NoError(t, o.AssignDriver(f.system, f.driverID, step(3)))
		require.NoError(t, o.ConfirmDelivered(f.driver, step(4)))
	case order.Cancelled:
		_, err := o.Cancel(f.customer, step(1))
		require.NoError(t, err)
	case order.Unknown:
		t.Fatalf("no fixture for %s", status)
	}

	o.ClearDomainEvents()
	return o
}

type snapshot struct {
	status    order.Status
	driverID  *kernel.UUID
	updatedAt time.Time
	version   int64
	total     kernel.Money
	events    int
}

func snap(o *order.Order) snapshot {
	return snapshot{
		status:    o.Status(),
		driverID:  o.DriverID(),
		updatedAt: o.UpdatedAt(),
		version:   o.Version(),
		total:     o.TotalAmount(),
		events:    len(o.DomainEvents()),
	}
}
