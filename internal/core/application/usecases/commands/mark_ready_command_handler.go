package commands

import (
	"context"
	"log/slog"

	"fooddispatch/internal/core/ports"

	"go.opentelemetry.io/otel/attribute"
)

// MarkReadyCommandHandler moves an accepted order to ready_for_pickup and,
// once that is committed, immediately asks the matcher for a driver.
type MarkReadyCommandHandler struct {
	uowFactory OrderUoWFactory
	assigner   DriverAssigner
	clock      ports.Clock
	logger     *slog.Logger
}

func NewMarkReadyCommandHandler(
	uowFactory OrderUoWFactory,
	assigner DriverAssigner,
	clock ports.Clock,
	logger *slog.Logger,
) MarkReadyCommandHandler {
	return MarkReadyCommandHandler{
		uowFactory: uowFactory,
		assigner:   assigner,
		clock:      clock,
		logger:     orDefault(logger).With("component", "mark_ready"),
	}
}

// Handle returns the outcome of the follow-up dispatch attempt. An error is
// returned only when the markReady transition itself fails.
func (h MarkReadyCommandHandler) Handle(ctx context.Context, cmd MarkReadyCommand) (AssignDriverResult, error) {
	if err := h.markReady(ctx, cmd); err != nil {
		return AssignDriverResult{}, err
	}
	return redispatch(ctx, h.assigner, h.logger, cmd.OrderID()), nil
}

func (h MarkReadyCommandHandler) markReady(ctx context.Context, cmd MarkReadyCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, span := startSpan(ctx, "MarkReady", attribute.String("order.id", cmd.OrderID().String()))
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

	if err = o.MarkReady(cmd.Actor(), h.clock.Now()); err != nil {
		return err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
