package inmemory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"
	"fooddispatch/internal/pkg/errs"
)

type OrderRepository struct {
	uow *UnitOfWork
}

func (r *OrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if !r.uow.active {
		return ErrNoTransaction
	}
	if err := aggregate.Validate(); err != nil {
		return err
	}

	id := aggregate.ID()
	r.uow.store.mu.RLock()
	_, exists := r.uow.store.orders[id]
	r.uow.store.mu.RUnlock()
	if _, pending := r.uow.orders[id]; exists || pending {
		return errs.NewValueIsInvalidErrorWithCause("orderID", fmt.Errorf("order %s already exists", id))
	}

	r.uow.orders[id] = orderWrite{state: orderStateOf(aggregate), insert: true}
	r.uow.track(aggregate)
	return nil
}

func (r *OrderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if !r.uow.active {
		return ErrNoTransaction
	}
	if err := aggregate.Validate(); err != nil {
		return err
	}

	id := aggregate.ID()
	next := orderStateOf(aggregate)

	if w, pending := r.uow.orders[id]; pending {
		if w.state.version != aggregate.OriginalVersion() && !w.insert {
			return errs.NewVersionIsInvalidErrorWithCause("order",
				fmt.Errorf("pending version %d, aggregate read at %d", w.state.version, aggregate.OriginalVersion()))
		}
		w.state = next
		r.uow.orders[id] = w
		r.uow.track(aggregate)
		return nil
	}

	r.uow.store.mu.RLock()
	row, exists := r.uow.store.orders[id]
	var stored int64
	if exists {
		stored = row.state.version
	}
	r.uow.store.mu.RUnlock()

	if !exists {
		return errs.NewObjectNotFoundError("orderID", id)
	}
	if stored != aggregate.OriginalVersion() {
		return errs.NewVersionIsInvalidErrorWithCause("order",
			fmt.Errorf("stored version %d, aggregate read at %d", stored, aggregate.OriginalVersion()))
	}

	r.uow.orders[id] = orderWrite{state: next, expect: aggregate.OriginalVersion()}
	r.uow.track(aggregate)
	return nil
}

func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if !r.uow.active {
		return nil, ErrNoTransaction
	}
	if w, pending := r.uow.orders[id]; pending {
		return w.state.restore()
	}

	r.uow.store.mu.RLock()
	row, ok := r.uow.store.orders[id]
	var st orderState
	if ok {
		st = row.state
	}
	r.uow.store.mu.RUnlock()

	if !ok {
		return nil, errs.NewObjectNotFoundError("orderID", id)
	}
	return st.restore()
}

// GetForUpdate blocks until the order's row lock is free or ctx ends.
func (r *OrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if !r.uow.active {
		return nil, ErrNoTransaction
	}

	r.uow.store.mu.RLock()
	row, ok := r.uow.store.orders[id]
	r.uow.store.mu.RUnlock()

	if !ok {
		if w, pending := r.uow.orders[id]; pending {
			return w.state.restore()
		}
		return nil, errs.NewObjectNotFoundError("orderID", id)
	}

	if err := r.uow.lock(ctx, row.lock); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *OrderRepository) ListReadyForDispatch(_ context.Context, limit int) ([]kernel.UUID, error) {
	if !r.uow.active {
		return nil, ErrNoTransaction
	}

	r.uow.store.mu.RLock()
	var ready []orderState
	for _, row := range r.uow.store.orders {
		if row.state.status == order.ReadyForPickup && row.state.driverID == nil {
			ready = append(ready, row.state)
		}
	}
	r.uow.store.mu.RUnlock()

	slices.SortFunc(ready, func(a, b orderState) int {
		return cmp.Or(a.createdAt.Compare(b.createdAt), a.id.Compare(b.id))
	})
	if limit > 0 && len(ready) > limit {
		ready = ready[:limit]
	}

	ids := make([]kernel.UUID, 0, len(ready))
	for _, st := range ready {
		ids = append(ids, st.id)
	}
	return ids, nil
}
