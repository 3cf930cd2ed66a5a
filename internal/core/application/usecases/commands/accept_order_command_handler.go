package commands

import (
	"context"

	"fooddispatch/internal/core/ports"

	"go.opentelemetry.io/otel/attribute"
)

type AcceptOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	clock      ports.Clock
}

func NewAcceptOrderCommandHandler(uowFactory OrderUoWFactory, clock ports.Clock) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{uowFactory: uowFactory, clock: clock}
}

// Handle locks the order, applies Accept and stores it.
func (h AcceptOrderCommandHandler) Handle(ctx context.Context, cmd AcceptOrderCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, span := startSpan(ctx, "AcceptOrder", attribute.String("order.id", cmd.OrderID().String()))
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

	if err = o.Accept(cmd.Actor(), h.clock.Now()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
