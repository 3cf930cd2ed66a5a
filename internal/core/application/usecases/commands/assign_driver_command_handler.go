package commands

import (
	"context"
	"errors"

	"fooddispatch/internal/core/domain/model/driver"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/services"
	"fooddispatch/internal/core/ports"
	"fooddispatch/internal/pkg/errs"

	"go.opentelemetry.io/otel/attribute"
)

const defaultCandidateBatch = 10

// DriverAssigner is the dispatch matcher as seen by handlers that trigger it
// after their own commit.
type DriverAssigner interface {
	Handle(ctx context.Context, cmd AssignDriverCommand) (AssignDriverResult, error)
}

// AssignDriverCommandHandler is the dispatch matcher.
//
// Within one transaction it locks the order, scans eligible drivers
// first-available-first-served, and tries to lock each candidate without
// waiting. A candidate that is locked elsewhere or no longer eligible is
// skipped and the next one is tried; no eligible driver at all is the
// NoDriverAvailable outcome, never an error and never a wait.
//
// Example:
//
//	handler := NewAssignDriverCommandHandler(uowFactory, clock.System{}, 10)
//	result, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrAlreadyAssigned):
//	    // someone else dispatched it first
//	case err == nil && result.Outcome == DriverAssigned:
//	    fmt.Println("driver", result.DriverID)
//	}
type AssignDriverCommandHandler struct {
	uowFactory     UoWFactory
	clock          ports.Clock
	candidateBatch int
}

// NewAssignDriverCommandHandler creates the matcher. candidateBatch bounds how
// many drivers are read per scan; values < 1 fall back to 10.
func NewAssignDriverCommandHandler(uowFactory UoWFactory, clock ports.Clock, candidateBatch int) AssignDriverCommandHandler {
	if candidateBatch < 1 {
		candidateBatch = defaultCandidateBatch
	}
	return AssignDriverCommandHandler{
		uowFactory:     uowFactory,
		clock:          clock,
		candidateBatch: candidateBatch,
	}
}

// Handle runs one dispatch attempt.
//
// Returns:
//   - DriverAssigned with the chosen driver, committed
//   - NoDriverAvailable, nothing written
//   - errs.ErrObjectNotFound, errs.ErrAlreadyAssigned, errs.ErrInvalidTransition
//     from the order's own state
func (h AssignDriverCommandHandler) Handle(ctx context.Context, cmd AssignDriverCommand) (result AssignDriverResult, err error) {
	if err = cmd.Validate(); err != nil {
		return AssignDriverResult{}, err
	}

	ctx, span := startSpan(ctx, "AssignDriver", attribute.String("order.id", cmd.OrderID().String()))
	defer func() {
		span.SetAttributes(attribute.String("dispatch.outcome", result.Outcome.String()))
		endSpan(span, err)
	}()

	result = AssignDriverResult{Outcome: DispatchSkipped, OrderID: cmd.OrderID()}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return result, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	driverRepo := uow.DriverRepository()

	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return result, err
	}
	if err = o.CanAssign(cmd.Actor()); err != nil {
		return result, err
	}

	dispatcher := services.NewOrderDispatcher()
	var excluded []kernel.UUID

	for {
		candidates, listErr := driverRepo.ListEligible(ctx, excluded, h.candidateBatch)
		if listErr != nil {
			return result, listErr
		}
		if len(candidates) == 0 {
			result.Outcome = NoDriverAvailable
			return result, nil
		}

		for _, candidate := range dispatcher.RankCandidates(candidates) {
			excluded = append(excluded, candidate.ID())

			locked, ok, lockErr := driverRepo.LockIfEligible(ctx, candidate.ID())
			if lockErr != nil {
				return result, lockErr
			}
			if !ok {
				continue
			}

			bindErr := dispatcher.Bind(cmd.Actor(), o, locked, h.clock.Now())
			if isLostCandidate(bindErr) {
				continue
			}
			if bindErr != nil {
				return result, bindErr
			}

			if err = orderRepo.Update(ctx, o); err != nil {
				return result, err
			}
			if err = driverRepo.Update(ctx, locked); err != nil {
				return result, err
			}
			if err = uow.Commit(ctx); err != nil {
				return result, err
			}

			driverID := locked.ID()
			result.Outcome = DriverAssigned
			result.DriverID = &driverID
			return result, nil
		}
	}
}

// isLostCandidate reports a driver-side race: the candidate was taken or went
// off shift between the scan and the lock. The order itself is locked, so an
// order-side AlreadyAssigned cannot occur here.
func isLostCandidate(err error) bool {
	return errors.Is(err, driver.ErrDriverIsNotEligible) || errors.Is(err, errs.ErrAlreadyAssigned)
}
