// Package commands contains the write side of the application: every
// operation that changes an order or a driver. Each command is validated at
// construction, carries the acting principal, and is executed by a handler
// inside one unit of work.
package commands

import (
	"context"

	"fooddispatch/internal/core/ports"
)

// Unit of Work interfaces narrowed to what each handler needs.
type (
	// TxManager handles the transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	DriverRepoFactory interface {
		DriverRepository() ports.DriverRepository
	}

	// OrderUoW is used by handlers that touch orders only.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// DriverUoW is used by handlers that touch drivers only.
	DriverUoW interface {
		TxManager
		DriverRepoFactory
	}

	DriverUoWFactory interface {
		Create() DriverUoW
	}

	// UoW spans both aggregates. Handlers lock the order before any driver.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   o, err := uow.OrderRepository().GetForUpdate(ctx, orderID)
	//   d, err := uow.DriverRepository().GetForUpdate(ctx, driverID)
	//   // ... transition both
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		DriverRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
