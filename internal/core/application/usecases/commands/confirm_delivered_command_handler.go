package commands

import (
	"context"

	"fooddispatch/internal/core/ports"

	"go.opentelemetry.io/otel/attribute"
)

// ConfirmDeliveredCommandHandler completes an order and frees the driver's
// slot. The session user is resolved to a driver profile first; only the
// order's assigned driver passes the ownership check.
type ConfirmDeliveredCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

func NewConfirmDeliveredCommandHandler(uowFactory UoWFactory, clock ports.Clock) ConfirmDeliveredCommandHandler {
	return ConfirmDeliveredCommandHandler{uowFactory: uowFactory, clock: clock}
}

func (h ConfirmDeliveredCommandHandler) Handle(ctx context.Context, cmd ConfirmDeliveredCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, span := startSpan(ctx, "ConfirmDelivered", attribute.String("order.id", cmd.OrderID().String()))
	defer func() { endSpan(span, err) }()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	driverRepo := uow.DriverRepository()

	profile, err := driverRepo.GetByUserID(ctx, cmd.Actor().UserID())
	if err != nil {
		return err
	}
	actor := cmd.Actor().AsDriver(profile.ID())

	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	now := h.clock.Now()
	if err = o.ConfirmDelivered(actor, now); err != nil {
		return err
	}

	d, err := driverRepo.GetForUpdate(ctx, profile.ID())
	if err != nil {
		return err
	}
	if err = d.ReleaseOrder(o.ID(), now); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}
	if err = driverRepo.Update(ctx, d); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
