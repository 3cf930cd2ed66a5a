// Package errs holds the typed errors shared by every layer of the dispatch
// service.
//
// Each error type pairs a sentinel (ErrObjectNotFound, ErrForbidden, ...) with
// a struct carrying the details, constructors with and without a cause, an
// Error method and an Unwrap method returning the sentinel, so callers branch
// with errors.Is and errors.As:
//
//	if errors.Is(err, errs.ErrInvalidTransition) { ... }
//
// The lifecycle taxonomy is:
//   - UnauthorizedError: the session token is missing, malformed or expired
//   - ForbiddenError: the session is valid but its role may not act here
//   - ObjectNotFoundError: the order or driver does not exist or is not visible
//   - InvalidTransitionError: the action is not an edge from the current status
//   - AlreadyAssignedError: a dispatch race was lost
//   - VersionIsInvalidError: an optimistic concurrency conflict
//
// ErrNoDriverAvailable is a sentinel only; the dispatcher reports it as an
// outcome rather than a failure.
package errs
