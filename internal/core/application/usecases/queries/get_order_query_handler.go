package queries

import (
	"context"

	"fooddispatch/internal/pkg/errs"
)

type GetOrderQueryHandler struct {
	reader OrderReader
}

func NewGetOrderQueryHandler(reader OrderReader) GetOrderQueryHandler {
	return GetOrderQueryHandler{reader: reader}
}

// Handle returns errs.ErrObjectNotFound both for an unknown order and for one
// outside the actor's scope, so callers cannot probe for other users' orders.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	scope, err := scopeFor(ctx, h.reader, query.Actor())
	if err != nil {
		return OrderView{}, err
	}

	view, err := h.reader.GetOrder(ctx, query.OrderID())
	if err != nil {
		return OrderView{}, err
	}
	if !scope.Matches(view) {
		return OrderView{}, errs.NewObjectNotFoundError("orderID", query.OrderID())
	}
	return view, nil
}
