package ports

import (
	"context"

	"fooddispatch/internal/core/domain/model/driver"
	"fooddispatch/internal/core/domain/model/kernel"
)

// DriverRepository is the persistence contract for driver aggregates.
//
// Lock order: a transaction that locks an order and a driver always locks the
// order first.
type DriverRepository interface {
	// Add inserts a new driver. A second profile for the same user fails
	// with errs.ErrValueIsInvalid.
	Add(ctx context.Context, aggregate *driver.Driver) error

	// Update writes the driver's availability, activation and slot.
	Update(ctx context.Context, aggregate *driver.Driver) error

	// Get reads a driver without locking it.
	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// GetForUpdate reads a driver and holds its row lock.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// GetByUserID resolves the driver profile of a session user.
	GetByUserID(ctx context.Context, userID kernel.UUID) (*driver.Driver, error)

	// ListEligible returns up to limit eligible drivers ordered by
	// availableSince then ID, skipping the excluded IDs. Nothing is locked;
	// callers confirm each candidate with LockIfEligible.
	ListEligible(ctx context.Context, excluding []kernel.UUID, limit int) ([]*driver.Driver, error)

	// LockIfEligible tries to lock the driver without waiting. It returns
	// (nil, false, nil) when the row is locked by another transaction or the
	// driver is no longer eligible.
	LockIfEligible(ctx context.Context, id kernel.UUID) (*driver.Driver, bool, error)
}
