// Package ports defines the contracts between the application core and its
// adapters: persistence, sessions, catalog, events and time.
package ports

import (
	"context"

	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"
)

// OrderRepository is the persistence contract for order aggregates. Every
// method runs inside the transaction of the UnitOfWork that handed it out.
type OrderRepository interface {
	// Add inserts a new order with its items and the status history recorded
	// so far.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update writes a transitioned order guarded by its OriginalVersion.
	// Returns errs.ErrVersionIsInvalid when the stored row moved on, and
	// errs.ErrAlreadyAssigned when the write would give a driver a second
	// order out for delivery.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get reads an order without locking it.
	// Returns errs.ErrObjectNotFound for an unknown id.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetForUpdate reads an order and holds its row lock until the
	// transaction ends. Every transition goes through it.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListReadyForDispatch returns up to limit unassigned ready orders,
	// oldest first.
	ListReadyForDispatch(ctx context.Context, limit int) ([]kernel.UUID, error)
}
