// Package postgres provides the GORM-based Unit of Work over the order and
// driver repositories.
//
// A unit of work wraps one database transaction. Orders passed to its
// repository are tracked; on Commit their pending status changes are written
// to order_status_history inside the transaction, the transaction commits,
// and only then are the events handed to the publisher.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	o, err := uow.OrderRepository().GetForUpdate(ctx, orderID)
//	...
//	return uow.Commit(ctx)
//
// Lock order: order rows before driver rows, in every transaction.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"fooddispatch/internal/adapters/out/postgres/driverrepo"
	"fooddispatch/internal/adapters/out/postgres/orderrepo"
	"fooddispatch/internal/adapters/out/postgres/pgerr"
	"fooddispatch/internal/core/domain/model/order"
	"fooddispatch/internal/core/ports"

	"gorm.io/gorm"
)

// ErrNoTransaction is returned by Commit without a preceding Begin.
var ErrNoTransaction = errors.New("postgres: no active transaction")

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection
// pool and one publisher.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    log.Fatal("failed to connect database")
//	}
//	factory := NewGormUnitOfWorkFactory(db, publisher, logger)
type GormUnitOfWorkFactory struct {
	db        *gorm.DB
	publisher ports.EventPublisher
	logger    *slog.Logger
}

// NewGormUnitOfWorkFactory accepts a nil publisher (events are then only
// recorded in the history table) and a nil logger.
func NewGormUnitOfWorkFactory(db *gorm.DB, publisher ports.EventPublisher, logger *slog.Logger) *GormUnitOfWorkFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &GormUnitOfWorkFactory{
		db:        db,
		publisher: publisher,
		logger:    logger.With("component", "unit_of_work"),
	}
}

func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return f.NewUnitOfWork()
}

// NewUnitOfWork is Create with the concrete type, for callers that adapt it
// to narrower interfaces.
func (f *GormUnitOfWorkFactory) NewUnitOfWork() *GormUnitOfWork {
	return &GormUnitOfWork{
		db:        f.db,
		publisher: f.publisher,
		logger:    f.logger,
	}
}

// GormUnitOfWork is not safe for concurrent use; each goroutine creates its
// own.
type GormUnitOfWork struct {
	db        *gorm.DB
	tx        *gorm.DB
	publisher ports.EventPublisher
	logger    *slog.Logger
	tracked   []*order.Order
}

var _ ports.UnitOfWork = (*GormUnitOfWork)(nil)

// Begin opens a READ COMMITTED transaction. Calling it again while a
// transaction is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin(&sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if tx.Error != nil {
		return tx.Error
	}
	uow.tx = tx
	uow.tracked = nil
	return nil
}

// Commit writes the status history of tracked orders, commits, and then
// publishes their events. A publish failure is logged; the commit stands.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return ErrNoTransaction
	}

	var events []order.StatusChanged
	for _, o := range uow.tracked {
		events = append(events, o.DomainEvents()...)
	}

	history := orderrepo.NewGormOrderRepository(uow.tx, uow)
	if err := history.AppendHistory(ctx, events); err != nil {
		_ = uow.rollback()
		return err
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		return pgerr.Translate(err, "transaction", nil)
	}

	for _, o := range uow.tracked {
		o.ClearDomainEvents()
	}
	uow.tracked = nil

	if uow.publisher != nil && len(events) > 0 {
		if err := uow.publisher.Publish(ctx, events); err != nil {
			uow.logger.ErrorContext(ctx, "failed to publish order events", "events", len(events), "error", err)
		}
	}
	return nil
}

// Rollback is safe to call after Commit or twice; without an open
// transaction it does nothing.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return nil
	}
	return uow.rollback()
}

func (uow *GormUnitOfWork) rollback() error {
	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.tracked = nil
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) DriverRepository() ports.DriverRepository {
	return driverrepo.NewGormDriverRepository(uow.conn())
}

// TrackAggregate registers an order whose events are flushed on Commit. The
// same aggregate tracked twice is kept once.
func (uow *GormUnitOfWork) TrackAggregate(aggregate *order.Order) {
	for _, o := range uow.tracked {
		if o == aggregate {
			return
		}
	}
	uow.tracked = append(uow.tracked, aggregate)
}

// conn is the open transaction, or the pool for reads outside one.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
