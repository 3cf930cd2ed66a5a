package commands

import (
	"context"
	"log/slog"

	"fooddispatch/internal/core/ports"

	"go.opentelemetry.io/otel/attribute"
)

// SetDriverAvailabilityCommandHandler stores the driver's shift state. A
// driver who just became eligible triggers one matching pass after commit, so
// orders waiting in ready_for_pickup are picked up without waiting for the
// scheduled job.
type SetDriverAvailabilityCommandHandler struct {
	uowFactory DriverUoWFactory
	matcher    PendingMatcher
	clock      ports.Clock
	batchSize  int
	logger     *slog.Logger
}

func NewSetDriverAvailabilityCommandHandler(
	uowFactory DriverUoWFactory,
	matcher PendingMatcher,
	clock ports.Clock,
	batchSize int,
	logger *slog.Logger,
) SetDriverAvailabilityCommandHandler {
	if batchSize < 1 {
		batchSize = defaultCandidateBatch
	}
	return SetDriverAvailabilityCommandHandler{
		uowFactory: uowFactory,
		matcher:    matcher,
		clock:      clock,
		batchSize:  batchSize,
		logger:     orDefault(logger).With("component", "driver_availability"),
	}
}

func (h SetDriverAvailabilityCommandHandler) Handle(ctx context.Context, cmd SetDriverAvailabilityCommand) error {
	eligible, err := h.setAvailability(ctx, cmd)
	if err != nil {
		return err
	}
	if eligible {
		triggerMatching(ctx, h.matcher, h.logger, h.batchSize)
	}
	return nil
}

// setAvailability returns true when the driver became eligible for dispatch.
func (h SetDriverAvailabilityCommandHandler) setAvailability(ctx context.Context, cmd SetDriverAvailabilityCommand) (_ bool, err error) {
	if err = cmd.Validate(); err != nil {
		return false, err
	}

	ctx, span := startSpan(ctx, "SetDriverAvailability", attribute.Bool("driver.available", cmd.Available()))
	defer func() { endSpan(span, err) }()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driverRepo := uow.DriverRepository()

	profile, err := driverRepo.GetByUserID(ctx, cmd.Actor().UserID())
	if err != nil {
		return false, err
	}
	d, err := driverRepo.GetForUpdate(ctx, profile.ID())
	if err != nil {
		return false, err
	}

	becameAvailable := d.SetAvailability(cmd.Available(), h.clock.Now())
	if err = driverRepo.Update(ctx, d); err != nil {
		return false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	return becameAvailable && d.IsEligible(), nil
}
