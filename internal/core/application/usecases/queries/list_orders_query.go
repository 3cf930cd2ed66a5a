package queries

import (
	"errors"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/order"
	"fooddispatch/internal/pkg/errs"
	"fooddispatch/internal/pkg/guard"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// ListOrdersQuery lists the orders visible to the actor, newest first. The
// actor's role selects the scope: listOrdersForCustomer,
// listOrdersForRestaurant, listOrdersForDriver or, for admins, listAllOrders.
//
// Example:
//
//	query, _ := NewListOrdersQuery(customer, nil, 0)
//	seq, err := handler.Handle(ctx, query)
//	for view, err := range seq {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(view.ID, view.Status)
//	}
type ListOrdersQuery struct {
	actor    access.Principal
	status   *order.Status
	pageSize int
	guard    guard.ConstructorGuard
}

// NewListOrdersQuery requires read. status optionally narrows the listing;
// pageSize 0 means DefaultPageSize.
func NewListOrdersQuery(actor access.Principal, status *order.Status, pageSize int) (ListOrdersQuery, error) {
	if err := actor.Require(access.Read); err != nil {
		return ListOrdersQuery{}, err
	}
	if status != nil {
		if err := status.Validate(); err != nil {
			return ListOrdersQuery{}, err
		}
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return ListOrdersQuery{}, errs.NewValueIsOutOfRangeError("pageSize", pageSize, 1, MaxPageSize)
	}

	return ListOrdersQuery{actor: actor, status: status, pageSize: pageSize, guard: guard.NewConstructorGuard()}, nil
}

func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

func (q ListOrdersQuery) Actor() access.Principal {
	return q.actor
}

func (q ListOrdersQuery) Status() *order.Status {
	return q.status
}

func (q ListOrdersQuery) PageSize() int {
	return q.pageSize
}
