package commands

import (
	"context"
	"errors"
	"fmt"

	"fooddispatch/internal/core/domain/model/driver"
	"fooddispatch/internal/core/ports"
	"fooddispatch/internal/pkg/errs"

	"go.opentelemetry.io/otel/attribute"
)

type RegisterDriverCommandHandler struct {
	uowFactory DriverUoWFactory
	clock      ports.Clock
}

func NewRegisterDriverCommandHandler(uowFactory DriverUoWFactory, clock ports.Clock) RegisterDriverCommandHandler {
	return RegisterDriverCommandHandler{uowFactory: uowFactory, clock: clock}
}

// Handle stores a new, active but unavailable driver. A user may hold only
// one driver profile.
func (h RegisterDriverCommandHandler) Handle(ctx context.Context, cmd RegisterDriverCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, span := startSpan(ctx, "RegisterDriver", attribute.String("driver.id", cmd.DriverID().String()))
	defer func() { endSpan(span, err) }()

	d, err := driver.NewDriver(cmd.DriverID(), cmd.UserID(), cmd.VehicleType(), cmd.LicensePlate(), h.clock.Now())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driverRepo := uow.DriverRepository()

	existing, err := driverRepo.GetByUserID(ctx, cmd.UserID())
	switch {
	case err == nil:
		return errs.NewValueIsInvalidErrorWithCause("userID",
			fmt.Errorf("user %s already has driver profile %s", cmd.UserID(), existing.ID()))
	case !errors.Is(err, errs.ErrObjectNotFound):
		return err
	}

	if err = driverRepo.Add(ctx, d); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
