package queries

import (
	"errors"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads one order with its status history.
type GetOrderQuery struct {
	actor   access.Principal
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(actor access.Principal, orderID kernel.UUID) (GetOrderQuery, error) {
	if err := errors.Join(actor.Require(access.Read), orderID.Validate()); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{actor: actor, orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) Actor() access.Principal {
	return q.actor
}

func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}
