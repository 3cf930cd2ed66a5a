package commands

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/errs"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const defaultMatchConcurrency = 4

// PendingMatcher runs matching passes. Driver handlers trigger one when a
// driver becomes eligible.
type PendingMatcher interface {
	Handle(ctx context.Context, cmd MatchPendingCommand) (MatchPendingResult, error)
}

// MatchPendingCommandHandler fans assign attempts out over at most
// concurrency goroutines. Once one attempt finds no driver, the remaining
// orders of the pass are counted as unmatched without being tried.
type MatchPendingCommandHandler struct {
	uowFactory  OrderUoWFactory
	assigner    DriverAssigner
	concurrency int
	logger      *slog.Logger
}

func NewMatchPendingCommandHandler(
	uowFactory OrderUoWFactory,
	assigner DriverAssigner,
	concurrency int,
	logger *slog.Logger,
) MatchPendingCommandHandler {
	if concurrency < 1 {
		concurrency = defaultMatchConcurrency
	}
	return MatchPendingCommandHandler{
		uowFactory:  uowFactory,
		assigner:    assigner,
		concurrency: concurrency,
		logger:      orDefault(logger).With("component", "match_pending"),
	}
}

// Handle returns the pass counters. The error joins every unexpected failure;
// lost races and NoDriverAvailable are not errors.
func (h MatchPendingCommandHandler) Handle(ctx context.Context, cmd MatchPendingCommand) (result MatchPendingResult, err error) {
	if err = cmd.Validate(); err != nil {
		return MatchPendingResult{}, err
	}

	ctx, span := startSpan(ctx, "MatchPending", attribute.Int("match.limit", cmd.Limit()))
	defer func() {
		span.SetAttributes(
			attribute.Int("match.considered", result.Considered),
			attribute.Int("match.assigned", result.Assigned),
		)
		endSpan(span, err)
	}()

	ids, err := h.listReady(ctx, cmd.Limit())
	if err != nil {
		return MatchPendingResult{}, err
	}

	var (
		mu        sync.Mutex
		failures  []error
		exhausted bool
	)
	result.Considered = len(ids)

	g := new(errgroup.Group)
	g.SetLimit(h.concurrency)

	for _, id := range ids {
		g.Go(func() error {
			mu.Lock()
			skip := exhausted
			mu.Unlock()
			if skip || ctx.Err() != nil {
				mu.Lock()
				result.Unmatched++
				mu.Unlock()
				return nil
			}

			outcome, attemptErr := h.attempt(ctx, cmd, id)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case attemptErr == nil && outcome == DriverAssigned:
				result.Assigned++
			case attemptErr == nil && outcome == NoDriverAvailable:
				result.Unmatched++
				exhausted = true
			case attemptErr == nil, isRaceLost(attemptErr):
				result.Skipped++
			default:
				result.Failed++
				failures = append(failures, attemptErr)
				h.logger.ErrorContext(ctx, "assign failed", "order_id", id.String(), "error", attemptErr)
			}
			return nil
		})
	}
	_ = g.Wait()

	h.logger.InfoContext(ctx, "matching pass finished",
		"considered", result.Considered,
		"assigned", result.Assigned,
		"unmatched", result.Unmatched,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)

	return result, errors.Join(failures...)
}

func (h MatchPendingCommandHandler) attempt(ctx context.Context, cmd MatchPendingCommand, orderID kernel.UUID) (DispatchOutcome, error) {
	assign, err := NewAssignDriverCommand(cmd.Actor(), orderID)
	if err != nil {
		return DispatchSkipped, err
	}
	res, err := h.assigner.Handle(ctx, assign)
	if err != nil {
		return DispatchSkipped, err
	}
	return res.Outcome, nil
}

func (h MatchPendingCommandHandler) listReady(ctx context.Context, limit int) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ids, err := uow.OrderRepository().ListReadyForDispatch(ctx, limit)
	if err != nil {
		return nil, err
	}
	return ids, uow.Commit(ctx)
}

// isRaceLost reports an order that changed under the pass: assigned,
// cancelled or reassigned by another request.
func isRaceLost(err error) bool {
	return errors.Is(err, errs.ErrAlreadyAssigned) ||
		errors.Is(err, errs.ErrInvalidTransition) ||
		errors.Is(err, errs.ErrObjectNotFound) ||
		errors.Is(err, errs.ErrVersionIsInvalid)
}

// triggerMatching runs one pass as the system principal after a driver became
// eligible. Failures are logged; the caller's change is already committed.
func triggerMatching(ctx context.Context, matcher PendingMatcher, logger *slog.Logger, limit int) {
	if matcher == nil {
		return
	}
	cmd, err := NewMatchPendingCommand(access.SystemPrincipal(), limit)
	if err != nil {
		logger.ErrorContext(ctx, "matching pass rejected", "error", err)
		return
	}
	if _, err = matcher.Handle(ctx, cmd); err != nil {
		logger.ErrorContext(ctx, "matching pass failed", "error", err)
	}
}
