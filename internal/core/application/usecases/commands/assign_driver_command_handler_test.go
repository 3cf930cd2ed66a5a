package commands_test

import (
	"testing"
	"time"

	"fooddispatch/internal/core/application/usecases/commands"
	"fooddispatch/internal/core/domain/model/driver"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"
	"fooddispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewAssignDriverCommand_Capabilities(t *testing.T) {
	a := newActors(t)
	id := kernel.NewUUID()

	_, err := commands.NewAssignDriverCommand(a.system, id)
	require.NoError(t, err)
	_, err = commands.NewAssignDriverCommand(a.admin, id)
	require.NoError(t, err)

	_, err = commands.NewAssignDriverCommand(a.customer, id)
	require.ErrorIs(t, err, errs.ErrForbidden)
	_, err = commands.NewAssignDriverCommand(a.driver, id)
	require.ErrorIs(t, err, errs.ErrForbidden)
}

func TestAssignDriverCommandHandler_Handle_SkipsLockedCandidate(t *testing.T) {
	// Given a ready order and two candidates, the first locked elsewhere
	ctx := t.Context()
	a := newActors(t)
	o := a.orderIn(t, order.ReadyForPickup)
	busy := availableDriver(t, t0)
	free := availableDriver(t, t0.Add(time.Minute))

	orders := new(MockOrderRepository)
	drivers := new(MockDriverRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("OrderRepository").Return(orders).Once(),
		uow.On("DriverRepository").Return(drivers).Once(),
		orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once(),
		drivers.On("ListEligible", mock.Anything, mock.Anything, 10).Return([]*driver.Driver{free, busy}, nil).Once(),
		drivers.On("LockIfEligible", mock.Anything, busy.ID()).Return(nil, false, nil).Once(),
		drivers.On("LockIfEligible", mock.Anything, free.ID()).Return(free, true, nil).Once(),
		orders.On("Update", mock.Anything, o).Return(nil).Once(),
		drivers.On("Update", mock.Anything, free).Return(nil).Once(),
		uow.On("Commit", mock.Anything).Return(nil).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewAssignDriverCommand(a.system, o.ID())
	require.NoError(t, err)

	// When the matcher runs
	result, err := commands.NewAssignDriverCommandHandler(factory, fixedClock{now: t0}, 0).Handle(ctx, cmd)

	// Then the longest-waiting free driver gets the order
	require.NoError(t, err)
	assert.Equal(t, commands.DriverAssigned, result.Outcome)
	require.NotNil(t, result.DriverID)
	assert.Equal(t, free.ID(), *result.DriverID)
	assert.Equal(t, order.OutForDelivery, o.Status())
	assert.Equal(t, free.ID(), *o.DriverID())
	assert.Equal(t, o.ID(), *free.ActiveOrderID())
	uow.AssertExpectations(t)
	drivers.AssertExpectations(t)
}

func TestAssignDriverCommandHandler_Handle_NoDriverAvailable(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	o := a.orderIn(t, order.ReadyForPickup)

	orders := new(MockOrderRepository)
	orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()
	drivers := new(MockDriverRepository)
	drivers.On("ListEligible", mock.Anything, mock.Anything, 10).Return([]*driver.Driver{}, nil).Once()
	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil).Once()
	uow.On("OrderRepository").Return(orders).Once()
	uow.On("DriverRepository").Return(drivers).Once()
	uow.On("Rollback", mock.Anything).Return(nil).Once()
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	cmd, err := commands.NewAssignDriverCommand(a.system, o.ID())
	require.NoError(t, err)
	result, err := commands.NewAssignDriverCommandHandler(factory, fixedClock{now: t0}, 10).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, commands.NoDriverAvailable, result.Outcome)
	assert.Nil(t, result.DriverID)
	assert.Equal(t, order.ReadyForPickup, o.Status())
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAssignDriverCommandHandler_Handle_RescansAfterLostRaces(t *testing.T) {
	// Given a candidate that went off shift between the scan and the lock
	ctx := t.Context()
	a := newActors(t)
	o := a.orderIn(t, order.ReadyForPickup)
	gone := availableDriver(t, t0)
	offShift, err := driver.RestoreDriver(gone.ID(), gone.UserID(), true, false, t0, driver.Car, "B456CD", nil)
	require.NoError(t, err)

	orders := new(MockOrderRepository)
	orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()
	drivers := new(MockDriverRepository)
	mock.InOrder(
		drivers.On("ListEligible", mock.Anything, mock.Anything, 10).Return([]*driver.Driver{gone}, nil).Once(),
		drivers.On("LockIfEligible", mock.Anything, gone.ID()).Return(offShift, true, nil).Once(),
		drivers.On("ListEligible", mock.Anything, []kernel.UUID{gone.ID()}, 10).Return([]*driver.Driver{}, nil).Once(),
	)
	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(orders)
	uow.On("DriverRepository").Return(drivers)
	uow.On("Rollback", mock.Anything).Return(nil)
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow)

	cmd, err := commands.NewAssignDriverCommand(a.system, o.ID())
	require.NoError(t, err)

	// When the matcher runs
	result, err := commands.NewAssignDriverCommandHandler(factory, fixedClock{now: t0}, 10).Handle(ctx, cmd)

	// Then the candidate is excluded and the order stays ready
	require.NoError(t, err)
	assert.Equal(t, commands.NoDriverAvailable, result.Outcome)
	assert.Equal(t, order.ReadyForPickup, o.Status())
	drivers.AssertExpectations(t)
}

func TestAssignDriverCommandHandler_Handle_OrderPreconditions(t *testing.T) {
	tests := []struct {
		status order.Status
		want   error
	}{
		{order.OutForDelivery, errs.ErrAlreadyAssigned},
		{order.Accepted, errs.ErrInvalidTransition},
		{order.Cancelled, errs.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			ctx := t.Context()
			a := newActors(t)
			o := a.orderIn(t, tt.status)

			orders := new(MockOrderRepository)
			orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil)
			drivers := new(MockDriverRepository)
			uow := new(MockUoW)
			uow.On("Begin", mock.Anything).Return(nil)
			uow.On("OrderRepository").Return(orders)
			uow.On("DriverRepository").Return(drivers)
			uow.On("Rollback", mock.Anything).Return(nil)
			factory := new(MockUoWFactory)
			factory.On("Create").Return(uow)

			cmd, err := commands.NewAssignDriverCommand(a.system, o.ID())
			require.NoError(t, err)
			_, err = commands.NewAssignDriverCommandHandler(factory, fixedClock{now: t0}, 10).Handle(ctx, cmd)

			require.ErrorIs(t, err, tt.want)
			drivers.AssertNotCalled(t, "ListEligible", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAssignDriverCommandHandler_Handle_UnknownOrder(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	id := kernel.NewUUID()

	orders := new(MockOrderRepository)
	orders.On("GetForUpdate", mock.Anything, id).Return(nil, errs.NewObjectNotFoundError("orderID", id))
	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(orders)
	uow.On("DriverRepository").Return(new(MockDriverRepository))
	uow.On("Rollback", mock.Anything).Return(nil)
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow)

	cmd, err := commands.NewAssignDriverCommand(a.admin, id)
	require.NoError(t, err)
	result, err := commands.NewAssignDriverCommandHandler(factory, fixedClock{now: t0}, 10).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	assert.Equal(t, commands.DispatchSkipped, result.Outcome)
}
