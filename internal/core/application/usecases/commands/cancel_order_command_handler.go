package commands

import (
	"context"

	"fooddispatch/internal/core/ports"

	"go.opentelemetry.io/otel/attribute"
)

// CancelOrderCommandHandler cancels an order and, when it was out for
// delivery, frees the driver's slot in the same transaction.
type CancelOrderCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

func NewCancelOrderCommandHandler(uowFactory UoWFactory, clock ports.Clock) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{uowFactory: uowFactory, clock: clock}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, span := startSpan(ctx, "CancelOrder", attribute.String("order.id", cmd.OrderID().String()))
	defer func() { endSpan(span, err) }()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	now := h.clock.Now()
	released, err := o.Cancel(cmd.Actor(), now)
	if err != nil {
		return err
	}

	if released != nil {
		driverRepo := uow.DriverRepository()
		d, getErr := driverRepo.GetForUpdate(ctx, *released)
		if getErr != nil {
			return getErr
		}
		if err = d.ReleaseOrder(o.ID(), now); err != nil {
			return err
		}
		if err = driverRepo.Update(ctx, d); err != nil {
			return err
		}
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
