package commands_test

import (
	"testing"
	"time"

	"fooddispatch/internal/core/application/usecases/commands"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"
	"fooddispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAcceptOrderCommandHandler_Handle(t *testing.T) {
	t.Run("restaurant accepts a placed order", func(t *testing.T) {
		// Given a placed order
		ctx := t.Context()
		a := newActors(t)
		o := a.orderIn(t, order.Placed)

		repo := new(MockOrderRepository)
		uow := new(MockUoW)
		mock.InOrder(
			uow.On("Begin", mock.Anything).Return(nil).Once(),
			uow.On("OrderRepository").Return(repo).Once(),
			repo.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once(),
			repo.On("Update", mock.Anything, o).Return(nil).Once(),
			uow.On("Commit", mock.Anything).Return(nil).Once(),
			uow.On("Rollback", mock.Anything).Return(nil).Once(),
		)
		factory := new(MockOrderUoWFactory)
		factory.On("Create").Return(uow).Once()

		cmd, err := commands.NewAcceptOrderCommand(a.restaurant, o.ID())
		require.NoError(t, err)

		// When it is accepted
		err = commands.NewAcceptOrderCommandHandler(factory, fixedClock{now: t0}).Handle(ctx, cmd)

		// Then the order moved on and was written
		require.NoError(t, err)
		assert.Equal(t, order.Accepted, o.Status())
		uow.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("accepting twice is an invalid transition", func(t *testing.T) {
		ctx := t.Context()
		a := newActors(t)
		o := a.orderIn(t, order.Accepted)
		before := o.Version()

		repo := new(MockOrderRepository)
		repo.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once()
		uow := new(MockUoW)
		uow.On("Begin", mock.Anything).Return(nil).Once()
		uow.On("OrderRepository").Return(repo).Once()
		uow.On("Rollback", mock.Anything).Return(nil).Once()
		factory := new(MockOrderUoWFactory)
		factory.On("Create").Return(uow).Once()

		cmd, err := commands.NewAcceptOrderCommand(a.restaurant, o.ID())
		require.NoError(t, err)
		err = commands.NewAcceptOrderCommandHandler(factory, fixedClock{now: t0}).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, before, o.Version())
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("customers cannot accept", func(t *testing.T) {
		a := newActors(t)
		_, err := commands.NewAcceptOrderCommand(a.customer, kernel.NewUUID())
		require.ErrorIs(t, err, errs.ErrForbidden)
	})
}

func TestMarkReadyCommandHandler_Handle_TriggersDispatch(t *testing.T) {
	// Given an accepted order and a matcher with a free driver
	ctx := t.Context()
	a := newActors(t)
	o := a.orderIn(t, order.Accepted)

	repo := new(MockOrderRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once(),
		repo.On("Update", mock.Anything, o).Return(nil).Once(),
		uow.On("Commit", mock.Anything).Return(nil).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	driverID := kernel.NewUUID()
	assigner := new(MockDriverAssigner)
	assigner.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.AssignDriverCommand) bool {
		return cmd.OrderID().IsEqual(o.ID()) && cmd.Actor().Role().String() == "system"
	})).Return(commands.AssignDriverResult{
		Outcome:  commands.DriverAssigned,
		OrderID:  o.ID(),
		DriverID: &driverID,
	}, nil).Once()

	cmd, err := commands.NewMarkReadyCommand(a.restaurant, o.ID())
	require.NoError(t, err)

	// When the restaurant marks it ready
	result, err := commands.NewMarkReadyCommandHandler(factory, assigner, fixedClock{now: t0}, nil).Handle(ctx, cmd)

	// Then the dispatch attempt runs after the commit
	require.NoError(t, err)
	assert.Equal(t, order.ReadyForPickup, o.Status())
	assert.Equal(t, commands.DriverAssigned, result.Outcome)
	assert.Equal(t, &driverID, result.DriverID)
	uow.AssertExpectations(t)
	assigner.AssertExpectations(t)
}

func TestMarkReadyCommandHandler_Handle_DispatchRaceIsNotAnError(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	o := a.orderIn(t, order.Accepted)

	repo := new(MockOrderRepository)
	repo.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil)
	repo.On("Update", mock.Anything, o).Return(nil)
	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(repo)
	uow.On("Commit", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	assigner := new(MockDriverAssigner)
	assigner.On("Handle", mock.Anything, mock.Anything).
		Return(commands.AssignDriverResult{}, errs.NewAlreadyAssignedError("order", o.ID())).Once()

	cmd, err := commands.NewMarkReadyCommand(a.restaurant, o.ID())
	require.NoError(t, err)
	result, err := commands.NewMarkReadyCommandHandler(factory, assigner, fixedClock{now: t0}, nil).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, commands.DispatchSkipped, result.Outcome)
}

func TestMarkReadyCommandHandler_Handle_TransitionFailureSkipsDispatch(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	o := a.orderIn(t, order.Placed)

	repo := new(MockOrderRepository)
	repo.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil)
	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(repo)
	uow.On("Rollback", mock.Anything).Return(nil)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)
	assigner := new(MockDriverAssigner)

	cmd, err := commands.NewMarkReadyCommand(a.restaurant, o.ID())
	require.NoError(t, err)
	_, err = commands.NewMarkReadyCommandHandler(factory, assigner, fixedClock{now: t0}, nil).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	assigner.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestCancelOrderCommandHandler_Handle(t *testing.T) {
	t.Run("customer cancels a placed order", func(t *testing.T) {
		ctx := t.Context()
		a := newActors(t)
		o := a.orderIn(t, order.Placed)

		repo := new(MockOrderRepository)
		uow := new(MockUoW)
		mock.InOrder(
			uow.On("Begin", mock.Anything).Return(nil).Once(),
			uow.On("OrderRepository").Return(repo).Once(),
			repo.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil).Once(),
			repo.On("Update", mock.Anything, o).Return(nil).Once(),
			uow.On("Commit", mock.Anything).Return(nil).Once(),
			uow.On("Rollback", mock.Anything).Return(nil).Once(),
		)
		factory := new(MockUoWFactory)
		factory.On("Create").Return(uow).Once()

		cmd, err := commands.NewCancelOrderCommand(a.customer, o.ID())
		require.NoError(t, err)
		err = commands.NewCancelOrderCommandHandler(factory, fixedClock{now: t0}).Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, order.Cancelled, o.Status())
		uow.AssertNotCalled(t, "DriverRepository")
		uow.AssertExpectations(t)
	})

	t.Run("admin force-cancel releases the driver", func(t *testing.T) {
		// Given an order out for delivery with its driver
		ctx := t.Context()
		a := newActors(t)
		o := a.orderIn(t, order.OutForDelivery)
		orderID := o.ID()
		d := a.driverOf(t, &orderID)

		orders := new(MockOrderRepository)
		drivers := new(MockDriverRepository)
		uow := new(MockUoW)
		mock.InOrder(
			uow.On("Begin", mock.Anything).Return(nil).Once(),
			uow.On("OrderRepository").Return(orders).Once(),
			orders.On("GetForUpdate", mock.Anything, orderID).Return(o, nil).Once(),
			uow.On("DriverRepository").Return(drivers).Once(),
			drivers.On("GetForUpdate", mock.Anything, a.driverID).Return(d, nil).Once(),
			drivers.On("Update", mock.Anything, d).Return(nil).Once(),
			orders.On("Update", mock.Anything, o).Return(nil).Once(),
			uow.On("Commit", mock.Anything).Return(nil).Once(),
			uow.On("Rollback", mock.Anything).Return(nil).Once(),
		)
		factory := new(MockUoWFactory)
		factory.On("Create").Return(uow).Once()

		// When an admin cancels it
		cmd, err := commands.NewCancelOrderCommand(a.admin, orderID)
		require.NoError(t, err)
		err = commands.NewCancelOrderCommandHandler(factory, fixedClock{now: t0}).Handle(ctx, cmd)

		// Then both the order and the driver slot are cleared
		require.NoError(t, err)
		assert.Equal(t, order.Cancelled, o.Status())
		assert.Nil(t, o.DriverID())
		assert.Nil(t, d.ActiveOrderID())
		assert.True(t, d.IsEligible())
		uow.AssertExpectations(t)
		drivers.AssertExpectations(t)
	})

	t.Run("customer cancel after delivery is an invalid transition", func(t *testing.T) {
		ctx := t.Context()
		a := newActors(t)
		o := a.orderIn(t, order.Delivered)
		updatedAt := o.UpdatedAt()

		repo := new(MockOrderRepository)
		repo.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil)
		uow := new(MockUoW)
		uow.On("Begin", mock.Anything).Return(nil)
		uow.On("OrderRepository").Return(repo)
		uow.On("Rollback", mock.Anything).Return(nil)
		factory := new(MockUoWFactory)
		factory.On("Create").Return(uow)

		cmd, err := commands.NewCancelOrderCommand(a.customer, o.ID())
		require.NoError(t, err)
		err = commands.NewCancelOrderCommandHandler(factory, fixedClock{now: t0.Add(time.Hour)}).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, order.Delivered, o.Status())
		assert.Equal(t, updatedAt, o.UpdatedAt())
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})
}

func TestConfirmDeliveredCommandHandler_Handle(t *testing.T) {
	t.Run("assigned driver confirms and is freed", func(t *testing.T) {
		ctx := t.Context()
		a := newActors(t)
		o := a.orderIn(t, order.OutForDelivery)
		orderID := o.ID()
		profile := a.driverOf(t, &orderID)
		locked := a.driverOf(t, &orderID)

		orders := new(MockOrderRepository)
		drivers := new(MockDriverRepository)
		uow := new(MockUoW)
		mock.InOrder(
			uow.On("Begin", mock.Anything).Return(nil).Once(),
			uow.On("OrderRepository").Return(orders).Once(),
			uow.On("DriverRepository").Return(drivers).Once(),
			drivers.On("GetByUserID", mock.Anything, a.driverUserID).Return(profile, nil).Once(),
			orders.On("GetForUpdate", mock.Anything, orderID).Return(o, nil).Once(),
			drivers.On("GetForUpdate", mock.Anything, a.driverID).Return(locked, nil).Once(),
			orders.On("Update", mock.Anything, o).Return(nil).Once(),
			drivers.On("Update", mock.Anything, locked).Return(nil).Once(),
			uow.On("Commit", mock.Anything).Return(nil).Once(),
			uow.On("Rollback", mock.Anything).Return(nil).Once(),
		)
		factory := new(MockUoWFactory)
		factory.On("Create").Return(uow).Once()

		cmd, err := commands.NewConfirmDeliveredCommand(a.driver, orderID)
		require.NoError(t, err)
		err = commands.NewConfirmDeliveredCommandHandler(factory, fixedClock{now: t0}).Handle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, order.Delivered, o.Status())
		assert.Equal(t, a.driverID, *o.DriverID(), "delivered orders keep their driver")
		assert.Nil(t, locked.ActiveOrderID())
		uow.AssertExpectations(t)
	})

	t.Run("another driver is forbidden", func(t *testing.T) {
		ctx := t.Context()
		a := newActors(t)
		o := a.orderIn(t, order.OutForDelivery)
		stranger := availableDriver(t, t0)

		orders := new(MockOrderRepository)
		orders.On("GetForUpdate", mock.Anything, o.ID()).Return(o, nil)
		drivers := new(MockDriverRepository)
		drivers.On("GetByUserID", mock.Anything, a.driverUserID).Return(stranger, nil)
		uow := new(MockUoW)
		uow.On("Begin", mock.Anything).Return(nil)
		uow.On("OrderRepository").Return(orders)
		uow.On("DriverRepository").Return(drivers)
		uow.On("Rollback", mock.Anything).Return(nil)
		factory := new(MockUoWFactory)
		factory.On("Create").Return(uow)

		cmd, err := commands.NewConfirmDeliveredCommand(a.driver, o.ID())
		require.NoError(t, err)
		err = commands.NewConfirmDeliveredCommandHandler(factory, fixedClock{now: t0}).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrForbidden)
		assert.Equal(t, order.OutForDelivery, o.Status())
	})
}

func TestReassignDriverCommandHandler_Handle_DriverDeclines(t *testing.T) {
	// Given the assigned driver declining their order
	ctx := t.Context()
	a := newActors(t)
	o := a.orderIn(t, order.OutForDelivery)
	orderID := o.ID()
	profile := a.driverOf(t, &orderID)
	locked := a.driverOf(t, &orderID)

	orders := new(MockOrderRepository)
	drivers := new(MockDriverRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("OrderRepository").Return(orders).Once(),
		uow.On("DriverRepository").Return(drivers).Once(),
		drivers.On("GetByUserID", mock.Anything, a.driverUserID).Return(profile, nil).Once(),
		orders.On("GetForUpdate", mock.Anything, orderID).Return(o, nil).Once(),
		drivers.On("GetForUpdate", mock.Anything, a.driverID).Return(locked, nil).Once(),
		orders.On("Update", mock.Anything, o).Return(nil).Once(),
		drivers.On("Update", mock.Anything, locked).Return(nil).Once(),
		uow.On("Commit", mock.Anything).Return(nil).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	assigner := new(MockDriverAssigner)
	assigner.On("Handle", mock.Anything, mock.Anything).
		Return(commands.AssignDriverResult{Outcome: commands.NoDriverAvailable, OrderID: orderID}, nil).Once()

	cmd, err := commands.NewReassignDriverCommand(a.driver, orderID)
	require.NoError(t, err)

	// When the reassign runs
	result, err := commands.NewReassignDriverCommandHandler(factory, assigner, fixedClock{now: t0}, nil).Handle(ctx, cmd)

	// Then the order is back in the pool, the driver is free but off shift,
	// and the order was re-offered
	require.NoError(t, err)
	assert.Equal(t, order.ReadyForPickup, o.Status())
	assert.Nil(t, o.DriverID())
	assert.Nil(t, locked.ActiveOrderID())
	assert.False(t, locked.IsAvailable())
	assert.Equal(t, commands.NoDriverAvailable, result.Outcome)
	uow.AssertExpectations(t)
	assigner.AssertExpectations(t)
}

func TestReassignDriverCommandHandler_Handle_AdminKeepsDriverAvailable(t *testing.T) {
	ctx := t.Context()
	a := newActors(t)
	o := a.orderIn(t, order.OutForDelivery)
	orderID := o.ID()
	locked := a.driverOf(t, &orderID)

	orders := new(MockOrderRepository)
	orders.On("GetForUpdate", mock.Anything, orderID).Return(o, nil)
	orders.On("Update", mock.Anything, o).Return(nil)
	drivers := new(MockDriverRepository)
	drivers.On("GetForUpdate", mock.Anything, a.driverID).Return(locked, nil)
	drivers.On("Update", mock.Anything, locked).Return(nil)
	uow := new(MockUoW)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("OrderRepository").Return(orders)
	uow.On("DriverRepository").Return(drivers)
	uow.On("Commit", mock.Anything).Return(nil)
	uow.On("Rollback", mock.Anything).Return(nil)
	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow)

	cmd, err := commands.NewReassignDriverCommand(a.admin, orderID)
	require.NoError(t, err)
	_, err = commands.NewReassignDriverCommandHandler(factory, nil, fixedClock{now: t0}, nil).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, locked.IsEligible())
	drivers.AssertNotCalled(t, "GetByUserID", mock.Anything, mock.Anything)
}
