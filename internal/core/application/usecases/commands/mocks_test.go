package commands_test

import (
	"context"
	"testing"
	"time"

	"fooddispatch/internal/core/application/usecases/commands"
	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/driver"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"
	"fooddispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListReadyForDispatch(ctx context.Context, limit int) ([]kernel.UUID, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

type MockDriverRepository struct{ mock.Mock }

func (m *MockDriverRepository) Add(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) Update(ctx context.Context, d *driver.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*driver.Driver), args.Error(1)
}

func (m *MockDriverRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*driver.Driver), args.Error(1)
}

func (m *MockDriverRepository) GetByUserID(ctx context.Context, userID kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*driver.Driver), args.Error(1)
}

func (m *MockDriverRepository) ListEligible(ctx context.Context, excluding []kernel.UUID, limit int) ([]*driver.Driver, error) {
	args := m.Called(ctx, excluding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*driver.Driver), args.Error(1)
}

func (m *MockDriverRepository) LockIfEligible(ctx context.Context, id kernel.UUID) (*driver.Driver, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*driver.Driver), args.Bool(1), args.Error(2)
}

// MockUoW serves every narrowed UoW interface of the handlers.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) DriverRepository() ports.DriverRepository {
	args := m.Called()
	return args.Get(0).(ports.DriverRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockDriverUoWFactory struct{ mock.Mock }

func (m *MockDriverUoWFactory) Create() commands.DriverUoW {
	args := m.Called()
	return args.Get(0).(commands.DriverUoW)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockMenuCatalog struct{ mock.Mock }

func (m *MockMenuCatalog) UnitPrices(
	ctx context.Context,
	restaurantID kernel.UUID,
	menuItemIDs []kernel.UUID,
) (map[kernel.UUID]kernel.Money, error) {
	args := m.Called(ctx, restaurantID, menuItemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[kernel.UUID]kernel.Money), args.Error(1)
}

func (m *MockMenuCatalog) DeliveryFee(ctx context.Context, restaurantID kernel.UUID) (kernel.Money, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).(kernel.Money), args.Error(1)
}

type MockDriverAssigner struct{ mock.Mock }

func (m *MockDriverAssigner) Handle(ctx context.Context, cmd commands.AssignDriverCommand) (commands.AssignDriverResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.AssignDriverResult), args.Error(1)
}

type MockPendingMatcher struct{ mock.Mock }

func (m *MockPendingMatcher) Handle(ctx context.Context, cmd commands.MatchPendingCommand) (commands.MatchPendingResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.MatchPendingResult), args.Error(1)
}

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// actors holds one principal per role, all bound to the same order parties.
type actors struct {
	customerID   kernel.UUID
	restaurantID kernel.UUID
	driverUserID kernel.UUID
	driverID     kernel.UUID

	customer   access.Principal
	restaurant access.Principal
	driver     access.Principal
	admin      access.Principal
	system     access.Principal
}

func newActors(t *testing.T) actors {
	t.Helper()

	a := actors{
		customerID:   kernel.NewUUID(),
		restaurantID: kernel.NewUUID(),
		driverUserID: kernel.NewUUID(),
		driverID:     kernel.NewUUID(),
		system:       access.SystemPrincipal(),
	}

	var err error
	a.customer, err = access.NewPrincipal(a.customerID, access.Customer, nil)
	require.NoError(t, err)
	a.restaurant, err = access.NewPrincipal(kernel.NewUUID(), access.Restaurant, &a.restaurantID)
	require.NoError(t, err)
	a.driver, err = access.NewPrincipal(a.driverUserID, access.Driver, nil)
	require.NoError(t, err)
	a.admin, err = access.NewPrincipal(kernel.NewUUID(), access.Admin, nil)
	require.NoError(t, err)
	return a
}

// orderIn builds an order of a's parties in the given status, with events
// cleared and originalVersion equal to version, as a repository returns it.
func (a actors) orderIn(t *testing.T, status order.Status) *order.Order {
	t.Helper()

	item, err := order.NewItem(kernel.NewUUID(), 2, kernel.MustMoney(25_000))
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), a.customerID, a.restaurantID,
		[]order.Item{item}, kernel.MustMoney(10_000), t0)
	require.NoError(t, err)

	steps := map[order.Status]int{
		order.Placed: 0, order.Accepted: 1, order.ReadyForPickup: 2, order.OutForDelivery: 3, order.Delivered: 4,
	}
	n := steps[status]
	if n >= 1 {
		require.NoError(t, o.Accept(a.restaurant, t0))
	}
	if n >= 2 {
		require.NoError(t, o.MarkReady(a.restaurant, t0))
	}
	if n >= 3 {
		require.NoError(t, o.AssignDriver(a.system, a.driverID, t0))
	}
	if n >= 4 {
		require.NoError(t, o.ConfirmDelivered(a.driver.AsDriver(a.driverID), t0))
	}
	if status == order.Cancelled {
		_, err = o.Cancel(a.customer, t0)
		require.NoError(t, err)
	}

	restored, err := order.RestoreOrder(o.ID(), o.CustomerID(), o.RestaurantID(), o.DriverID(), o.Status(),
		o.Items(), o.DeliveryFee(), o.TotalAmount(), o.CreatedAt(), o.UpdatedAt(), o.Version())
	require.NoError(t, err)
	return restored
}

// driverOf builds a's driver, available since t0, holding orderID if set.
func (a actors) driverOf(t *testing.T, orderID *kernel.UUID) *driver.Driver {
	t.Helper()
	d, err := driver.RestoreDriver(a.driverID, a.driverUserID, true, true, t0, driver.Scooter, "A123BC", orderID)
	require.NoError(t, err)
	return d
}

func availableDriver(t *testing.T, since time.Time) *driver.Driver {
	t.Helper()
	d, err := driver.RestoreDriver(kernel.NewUUID(), kernel.NewUUID(), true, true, since, driver.Car, "B456CD", nil)
	require.NoError(t, err)
	return d
}
