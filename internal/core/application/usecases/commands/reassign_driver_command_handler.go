package commands

import (
	"context"
	"log/slog"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/ports"

	"go.opentelemetry.io/otel/attribute"
)

// ReassignDriverCommandHandler returns an order to ready_for_pickup, frees the
// driver and then re-offers the order to the matcher.
//
// A driver declining is also marked unavailable so the matcher does not hand
// the same order straight back to them.
type ReassignDriverCommandHandler struct {
	uowFactory UoWFactory
	assigner   DriverAssigner
	clock      ports.Clock
	logger     *slog.Logger
}

func NewReassignDriverCommandHandler(
	uowFactory UoWFactory,
	assigner DriverAssigner,
	clock ports.Clock,
	logger *slog.Logger,
) ReassignDriverCommandHandler {
	return ReassignDriverCommandHandler{
		uowFactory: uowFactory,
		assigner:   assigner,
		clock:      clock,
		logger:     orDefault(logger).With("component", "reassign_driver"),
	}
}

func (h ReassignDriverCommandHandler) Handle(ctx context.Context, cmd ReassignDriverCommand) (AssignDriverResult, error) {
	if err := h.reassign(ctx, cmd); err != nil {
		return AssignDriverResult{}, err
	}
	return redispatch(ctx, h.assigner, h.logger, cmd.OrderID()), nil
}

func (h ReassignDriverCommandHandler) reassign(ctx context.Context, cmd ReassignDriverCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, span := startSpan(ctx, "ReassignDriver", attribute.String("order.id", cmd.OrderID().String()))
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

	actor := cmd.Actor()
	declining := actor.Role() == access.Driver
	if declining {
		profile, getErr := driverRepo.GetByUserID(ctx, actor.UserID())
		if getErr != nil {
			return getErr
		}
		actor = actor.AsDriver(profile.ID())
	}

	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	now := h.clock.Now()
	released, err := o.Reassign(actor, now)
	if err != nil {
		return err
	}

	d, err := driverRepo.GetForUpdate(ctx, released)
	if err != nil {
		return err
	}
	if err = d.ReleaseOrder(o.ID(), now); err != nil {
		return err
	}
	if declining {
		d.SetAvailability(false, now)
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return err
	}
	if err = driverRepo.Update(ctx, d); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
