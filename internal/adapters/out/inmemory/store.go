// Package inmemory is a process-local Order Store with the same locking
// contract as the postgres adapter: blocking row locks for GetForUpdate,
// skip-locked candidate locks for dispatch, version checks and the
// one-order-per-driver rule enforced at commit.
package inmemory

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"

	"fooddispatch/internal/core/application/usecases/queries"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"
	"fooddispatch/internal/core/ports"
	"fooddispatch/internal/pkg/errs"
)

type orderRow struct {
	lock    rowLock
	state   orderState
	history []order.StatusChanged
}

type driverRow struct {
	lock  rowLock
	state driverState
}

type Store struct {
	mu      sync.RWMutex
	orders  map[kernel.UUID]*orderRow
	drivers map[kernel.UUID]*driverRow
	byUser  map[kernel.UUID]kernel.UUID

	publisher ports.EventPublisher
	logger    *slog.Logger
}

// NewStore creates an empty store. publisher may be nil.
func NewStore(publisher ports.EventPublisher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		orders:    make(map[kernel.UUID]*orderRow),
		drivers:   make(map[kernel.UUID]*driverRow),
		byUser:    make(map[kernel.UUID]kernel.UUID),
		publisher: publisher,
		logger:    logger.With("component", "inmemory_store"),
	}
}

// NewUnitOfWork returns a fresh, not yet begun unit of work.
func (s *Store) NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{store: s}
}

func (s *Store) ListOrders(_ context.Context, filter queries.OrderFilter) ([]queries.OrderView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []queries.OrderView
	for _, row := range s.orders {
		v := row.state.view(nil)
		if !filter.Matches(v) {
			continue
		}
		if filter.After != nil && !filter.After.IsBefore(v) {
			continue
		}
		out = append(out, v)
	}

	slices.SortFunc(out, func(a, b queries.OrderView) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), b.ID.Compare(a.ID))
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) GetOrder(_ context.Context, id kernel.UUID) (queries.OrderView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.orders[id]
	if !ok {
		return queries.OrderView{}, errs.NewObjectNotFoundError("orderID", id)
	}
	return row.state.view(row.history), nil
}

func (s *Store) ListDrivers(_ context.Context, after *kernel.UUID, limit int) ([]queries.DriverView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []queries.DriverView
	for _, row := range s.drivers {
		if after != nil && row.state.id.Compare(*after) <= 0 {
			continue
		}
		out = append(out, row.state.view())
	}
	slices.SortFunc(out, func(a, b queries.DriverView) int { return a.ID.Compare(b.ID) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) DriverIDByUserID(_ context.Context, userID kernel.UUID) (kernel.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUser[userID]
	if !ok {
		return kernel.UUID{}, errs.NewObjectNotFoundError("userID", userID)
	}
	return id, nil
}

// publish hands committed events to the publisher. Failures are logged only.
func (s *Store) publish(ctx context.Context, events []order.StatusChanged) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order events", "count", len(events), "error", err)
	}
}
