package queries_test

import (
	"context"
	"testing"
	"time"

	"fooddispatch/internal/core/application/usecases/queries"
	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderReader struct{ mock.Mock }

func (m *MockOrderReader) ListOrders(ctx context.Context, filter queries.OrderFilter) ([]queries.OrderView, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queries.OrderView), args.Error(1)
}

func (m *MockOrderReader) GetOrder(ctx context.Context, id kernel.UUID) (queries.OrderView, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(queries.OrderView), args.Error(1)
}

func (m *MockOrderReader) ListDrivers(ctx context.Context, after *kernel.UUID, limit int) ([]queries.DriverView, error) {
	args := m.Called(ctx, after, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]queries.DriverView), args.Error(1)
}

func (m *MockOrderReader) DriverIDByUserID(ctx context.Context, userID kernel.UUID) (kernel.UUID, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(kernel.UUID), args.Error(1)
}

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func principal(t *testing.T, role access.Role, restaurantID *kernel.UUID) access.Principal {
	t.Helper()
	p, err := access.NewPrincipal(kernel.NewUUID(), role, restaurantID)
	require.NoError(t, err)
	return p
}

// views returns n orders of one customer, newest first, one minute apart.
func views(n int, customerID kernel.UUID) []queries.OrderView {
	out := make([]queries.OrderView, 0, n)
	for i := range n {
		out = append(out, queries.OrderView{
			ID:           kernel.NewUUID(),
			CustomerID:   customerID,
			RestaurantID: kernel.NewUUID(),
			Status:       order.Placed,
			CreatedAt:    t0.Add(-time.Duration(i) * time.Minute),
			TotalAmount:  60_000,
			DeliveryFee:  10_000,
			Version:      1,
		})
	}
	return out
}
