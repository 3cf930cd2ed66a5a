package inmemory

import (
	"context"
	"errors"
	"fmt"

	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"
	"fooddispatch/internal/core/ports"
	"fooddispatch/internal/pkg/errs"
)

var (
	ErrNoTransaction      = errors.New("inmemory: no active transaction")
	ErrTransactionStarted = errors.New("inmemory: transaction already started")
)

type orderWrite struct {
	state  orderState
	expect int64
	insert bool
}

type driverWrite struct {
	state  driverState
	insert bool
}

// UnitOfWork buffers writes and applies them atomically on Commit. Row locks
// taken through its repositories are held until Commit or Rollback.
type UnitOfWork struct {
	store  *Store
	active bool

	held    map[rowLock]struct{}
	orders  map[kernel.UUID]orderWrite
	drivers map[kernel.UUID]driverWrite
	tracked []*order.Order
}

var _ ports.UnitOfWork = (*UnitOfWork)(nil)

func (u *UnitOfWork) Begin(_ context.Context) error {
	if u.active {
		return ErrTransactionStarted
	}
	u.active = true
	u.held = make(map[rowLock]struct{})
	u.orders = make(map[kernel.UUID]orderWrite)
	u.drivers = make(map[kernel.UUID]driverWrite)
	u.tracked = nil
	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if !u.active {
		return ErrNoTransaction
	}

	s := u.store
	s.mu.Lock()
	if err := u.check(); err != nil {
		s.mu.Unlock()
		return err
	}
	events := u.apply()
	s.mu.Unlock()

	u.finish()
	s.publish(ctx, events)
	return nil
}

// Rollback discards buffered writes and releases every lock. It is a no-op
// outside a transaction, so it is safe to defer after Commit.
func (u *UnitOfWork) Rollback(_ context.Context) error {
	if !u.active {
		return nil
	}
	u.finish()
	return nil
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{uow: u}
}

func (u *UnitOfWork) DriverRepository() ports.DriverRepository {
	return &DriverRepository{uow: u}
}

func (u *UnitOfWork) finish() {
	for l := range u.held {
		l.unlock()
	}
	u.active = false
	u.held = nil
	u.orders = nil
	u.drivers = nil
	u.tracked = nil
}

func (u *UnitOfWork) lock(ctx context.Context, l rowLock) error {
	if _, ok := u.held[l]; ok {
		return nil
	}
	select {
	case l <- struct{}{}:
		u.held[l] = struct{}{}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (u *UnitOfWork) tryLock(l rowLock) (acquired, ok bool) {
	if _, held := u.held[l]; held {
		return false, true
	}
	if !l.tryLock() {
		return false, false
	}
	u.held[l] = struct{}{}
	return true, true
}

func (u *UnitOfWork) unlock(l rowLock) {
	delete(u.held, l)
	l.unlock()
}

func (u *UnitOfWork) track(o *order.Order) {
	for _, t := range u.tracked {
		if t == o {
			return
		}
	}
	u.tracked = append(u.tracked, o)
}

// check validates buffered writes against committed state. Caller holds
// store.mu.
func (u *UnitOfWork) check() error {
	s := u.store

	for id, w := range u.orders {
		row, exists := s.orders[id]
		switch {
		case w.insert && exists:
			return errs.NewValueIsInvalidErrorWithCause("orderID", fmt.Errorf("order %s already exists", id))
		case !w.insert && !exists:
			return errs.NewObjectNotFoundError("orderID", id)
		case !w.insert && row.state.version != w.expect:
			return errs.NewVersionIsInvalidErrorWithCause("order",
				fmt.Errorf("stored version %d, expected %d", row.state.version, w.expect))
		}
	}

	for id, w := range u.drivers {
		if !w.insert {
			continue
		}
		if _, exists := s.drivers[id]; exists {
			return errs.NewValueIsInvalidErrorWithCause("driverID", fmt.Errorf("driver %s already exists", id))
		}
		if other, taken := s.byUser[w.state.userID]; taken && !other.IsEqual(id) {
			return errs.NewValueIsInvalidErrorWithCause("userID",
				fmt.Errorf("user %s already has driver profile %s", w.state.userID, other))
		}
	}

	// one order out for delivery per driver, over the state as it would be
	// after this commit
	busy := make(map[kernel.UUID]kernel.UUID)
	claim := func(st orderState) error {
		if st.status != order.OutForDelivery || st.driverID == nil {
			return nil
		}
		if other, ok := busy[*st.driverID]; ok && !other.IsEqual(st.id) {
			return errs.NewAlreadyAssignedError("driver", *st.driverID)
		}
		busy[*st.driverID] = st.id
		return nil
	}
	for id, row := range s.orders {
		if _, overridden := u.orders[id]; overridden {
			continue
		}
		if err := claim(row.state); err != nil {
			return err
		}
	}
	for _, w := range u.orders {
		if err := claim(w.state); err != nil {
			return err
		}
	}

	return nil
}

// apply writes buffered state and returns the events to publish. Caller
// holds store.mu.
func (u *UnitOfWork) apply() []order.StatusChanged {
	s := u.store

	for id, w := range u.orders {
		if w.insert {
			s.orders[id] = &orderRow{lock: newRowLock(), state: w.state}
			continue
		}
		s.orders[id].state = w.state
	}
	for id, w := range u.drivers {
		if w.insert {
			s.drivers[id] = &driverRow{lock: newRowLock(), state: w.state}
			s.byUser[w.state.userID] = id
			continue
		}
		s.drivers[id].state = w.state
	}

	var events []order.StatusChanged
	for _, o := range u.tracked {
		pending := o.DomainEvents()
		if row, ok := s.orders[o.ID()]; ok {
			row.history = append(row.history, pending...)
		}
		events = append(events, pending...)
		o.ClearDomainEvents()
	}
	return events
}
