package commands

import (
	"context"
	"errors"
	"log/slog"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/errs"
)

// redispatch offers a just-committed ready order to the matcher as the
// system principal. The caller's transition is already durable, so failures
// here are logged and reported as DispatchSkipped.
func redispatch(ctx context.Context, assigner DriverAssigner, logger *slog.Logger, orderID kernel.UUID) AssignDriverResult {
	skipped := AssignDriverResult{Outcome: DispatchSkipped, OrderID: orderID}
	if assigner == nil {
		return skipped
	}

	cmd, err := NewAssignDriverCommand(access.SystemPrincipal(), orderID)
	if err != nil {
		logger.ErrorContext(ctx, "dispatch command rejected", "order_id", orderID.String(), "error", err)
		return skipped
	}

	result, err := assigner.Handle(ctx, cmd)
	switch {
	case err == nil:
		logger.InfoContext(ctx, "dispatch attempted",
			"order_id", orderID.String(), "outcome", result.Outcome.String())
		return result
	case errors.Is(err, errs.ErrAlreadyAssigned),
		errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrObjectNotFound):
		// the order moved on concurrently
		logger.InfoContext(ctx, "dispatch skipped", "order_id", orderID.String(), "reason", err.Error())
	default:
		logger.ErrorContext(ctx, "dispatch failed", "order_id", orderID.String(), "error", err)
	}
	return skipped
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
