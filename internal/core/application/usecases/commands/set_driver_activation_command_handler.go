package commands

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
)

// SetDriverActivationCommandHandler toggles the admin activation flag. A
// suspended driver keeps an order already out for delivery; they are just
// never offered another one.
type SetDriverActivationCommandHandler struct {
	uowFactory DriverUoWFactory
	matcher    PendingMatcher
	batchSize  int
	logger     *slog.Logger
}

func NewSetDriverActivationCommandHandler(
	uowFactory DriverUoWFactory,
	matcher PendingMatcher,
	batchSize int,
	logger *slog.Logger,
) SetDriverActivationCommandHandler {
	if batchSize < 1 {
		batchSize = defaultCandidateBatch
	}
	return SetDriverActivationCommandHandler{
		uowFactory: uowFactory,
		matcher:    matcher,
		batchSize:  batchSize,
		logger:     orDefault(logger).With("component", "driver_activation"),
	}
}

func (h SetDriverActivationCommandHandler) Handle(ctx context.Context, cmd SetDriverActivationCommand) error {
	eligible, err := h.setActivation(ctx, cmd)
	if err != nil {
		return err
	}
	if eligible {
		triggerMatching(ctx, h.matcher, h.logger, h.batchSize)
	}
	return nil
}

func (h SetDriverActivationCommandHandler) setActivation(ctx context.Context, cmd SetDriverActivationCommand) (_ bool, err error) {
	if err = cmd.Validate(); err != nil {
		return false, err
	}

	ctx, span := startSpan(ctx, "SetDriverActivation",
		attribute.String("driver.id", cmd.DriverID().String()),
		attribute.Bool("driver.active", cmd.Active()),
	)
	defer func() { endSpan(span, err) }()

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driverRepo := uow.DriverRepository()
	d, err := driverRepo.GetForUpdate(ctx, cmd.DriverID())
	if err != nil {
		return false, err
	}

	wasEligible := d.IsEligible()
	d.SetActive(cmd.Active())

	if err = driverRepo.Update(ctx, d); err != nil {
		return false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	return !wasEligible && d.IsEligible(), nil
}
