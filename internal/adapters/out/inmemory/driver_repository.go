package inmemory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"fooddispatch/internal/core/domain/model/driver"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/errs"
)

type DriverRepository struct {
	uow *UnitOfWork
}

func (r *DriverRepository) Add(_ context.Context, aggregate *driver.Driver) error {
	if !r.uow.active {
		return ErrNoTransaction
	}
	if err := aggregate.Validate(); err != nil {
		return err
	}

	st := driverStateOf(aggregate)

	r.uow.store.mu.RLock()
	_, idTaken := r.uow.store.drivers[st.id]
	_, userTaken := r.uow.store.byUser[st.userID]
	r.uow.store.mu.RUnlock()

	for _, w := range r.uow.drivers {
		if w.insert && w.state.userID.IsEqual(st.userID) {
			userTaken = true
		}
	}
	if _, pending := r.uow.drivers[st.id]; idTaken || pending {
		return errs.NewValueIsInvalidErrorWithCause("driverID", fmt.Errorf("driver %s already exists", st.id))
	}
	if userTaken {
		return errs.NewValueIsInvalidErrorWithCause("userID",
			fmt.Errorf("user %s already has a driver profile", st.userID))
	}

	r.uow.drivers[st.id] = driverWrite{state: st, insert: true}
	return nil
}

func (r *DriverRepository) Update(_ context.Context, aggregate *driver.Driver) error {
	if !r.uow.active {
		return ErrNoTransaction
	}
	if err := aggregate.Validate(); err != nil {
		return err
	}

	st := driverStateOf(aggregate)
	if w, pending := r.uow.drivers[st.id]; pending {
		w.state = st
		r.uow.drivers[st.id] = w
		return nil
	}

	r.uow.store.mu.RLock()
	_, exists := r.uow.store.drivers[st.id]
	r.uow.store.mu.RUnlock()
	if !exists {
		return errs.NewObjectNotFoundError("driverID", st.id)
	}

	r.uow.drivers[st.id] = driverWrite{state: st}
	return nil
}

func (r *DriverRepository) Get(_ context.Context, id kernel.UUID) (*driver.Driver, error) {
	if !r.uow.active {
		return nil, ErrNoTransaction
	}
	st, ok := r.current(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("driverID", id)
	}
	return st.restore()
}

func (r *DriverRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	if !r.uow.active {
		return nil, ErrNoTransaction
	}

	r.uow.store.mu.RLock()
	row, ok := r.uow.store.drivers[id]
	r.uow.store.mu.RUnlock()

	if ok {
		if err := r.uow.lock(ctx, row.lock); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, id)
}

func (r *DriverRepository) GetByUserID(ctx context.Context, userID kernel.UUID) (*driver.Driver, error) {
	if !r.uow.active {
		return nil, ErrNoTransaction
	}

	for id, w := range r.uow.drivers {
		if w.state.userID.IsEqual(userID) {
			return r.Get(ctx, id)
		}
	}

	r.uow.store.mu.RLock()
	id, ok := r.uow.store.byUser[userID]
	r.uow.store.mu.RUnlock()
	if !ok {
		return nil, errs.NewObjectNotFoundError("userID", userID)
	}
	return r.Get(ctx, id)
}

func (r *DriverRepository) ListEligible(_ context.Context, excluding []kernel.UUID, limit int) ([]*driver.Driver, error) {
	if !r.uow.active {
		return nil, ErrNoTransaction
	}

	r.uow.store.mu.RLock()
	states := make([]driverState, 0, len(r.uow.store.drivers))
	for id, row := range r.uow.store.drivers {
		if w, pending := r.uow.drivers[id]; pending {
			states = append(states, w.state)
			continue
		}
		states = append(states, row.state)
	}
	r.uow.store.mu.RUnlock()

	candidates := slices.DeleteFunc(states, func(st driverState) bool {
		return !st.eligible() || slices.ContainsFunc(excluding, st.id.IsEqual)
	})
	slices.SortFunc(candidates, func(a, b driverState) int {
		return cmp.Or(a.availableSince.Compare(b.availableSince), a.id.Compare(b.id))
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]*driver.Driver, 0, len(candidates))
	for _, st := range candidates {
		d, err := st.restore()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// LockIfEligible never waits: a row locked by another unit of work is
// reported as not ok.
func (r *DriverRepository) LockIfEligible(_ context.Context, id kernel.UUID) (*driver.Driver, bool, error) {
	if !r.uow.active {
		return nil, false, ErrNoTransaction
	}

	r.uow.store.mu.RLock()
	row, ok := r.uow.store.drivers[id]
	r.uow.store.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	acquired, ok := r.uow.tryLock(row.lock)
	if !ok {
		return nil, false, nil
	}

	st, _ := r.current(id)
	if !st.eligible() {
		if acquired {
			r.uow.unlock(row.lock)
		}
		return nil, false, nil
	}

	d, err := st.restore()
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

// current returns the driver as this unit of work sees it.
func (r *DriverRepository) current(id kernel.UUID) (driverState, bool) {
	if w, pending := r.uow.drivers[id]; pending {
		return w.state, true
	}

	r.uow.store.mu.RLock()
	defer r.uow.store.mu.RUnlock()
	row, ok := r.uow.store.drivers[id]
	if !ok {
		return driverState{}, false
	}
	return row.state, true
}
