package queries

import (
	"context"
	"errors"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/pkg/errs"
)

// scopeFor builds the read filter of a principal: customers see their own
// orders, restaurant staff their restaurant's, drivers their assignments and
// the ready pool, admins everything.
func scopeFor(ctx context.Context, reader OrderReader, p access.Principal) (OrderFilter, error) {
	switch p.Role() {
	case access.Admin:
		return OrderFilter{}, nil
	case access.Customer:
		id := p.UserID()
		return OrderFilter{CustomerID: &id}, nil
	case access.Restaurant:
		return OrderFilter{RestaurantID: p.RestaurantID()}, nil
	case access.Driver:
		if p.DriverID() != nil {
			return OrderFilter{DriverID: p.DriverID(), ReadyPool: true}, nil
		}
		driverID, err := reader.DriverIDByUserID(ctx, p.UserID())
		if errors.Is(err, errs.ErrObjectNotFound) {
			// a driver without a profile can only browse the pool
			return OrderFilter{ReadyPool: true}, nil
		}
		if err != nil {
			return OrderFilter{}, err
		}
		return OrderFilter{DriverID: &driverID, ReadyPool: true}, nil
	case access.System, access.UnknownRole:
		return OrderFilter{}, errs.NewForbiddenError(p.Role().String(), "role has no read scope")
	default:
		return OrderFilter{}, errs.NewForbiddenError(p.Role().String(), "role has no read scope")
	}
}
