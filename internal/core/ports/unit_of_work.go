package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Aggregates passed to its
// repositories are tracked; after a successful Commit their domain events are
// handed to the EventPublisher and cleared.
type UnitOfWork interface {
	// Begin starts a new transaction.
	Begin(ctx context.Context) error

	// Commit commits and then publishes tracked events.
	Commit(ctx context.Context) error

	// Rollback discards the transaction. Safe to call after Commit.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository

	DriverRepository() DriverRepository
}
