package queries

import (
	"context"
	"iter"
)

// ListOrdersQueryHandler streams role-scoped orders page by page.
type ListOrdersQueryHandler struct {
	reader OrderReader
}

func NewListOrdersQueryHandler(reader OrderReader) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{reader: reader}
}

// Handle resolves the actor's scope and returns a lazy sequence. Each range
// over it starts again from the newest order; pages are fetched only as the
// consumer advances and iteration stops at the first read error.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) (iter.Seq2[OrderView, error], error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	scope, err := scopeFor(ctx, h.reader, query.Actor())
	if err != nil {
		return nil, err
	}
	scope.Status = query.Status()
	scope.Limit = query.PageSize()

	return func(yield func(OrderView, error) bool) {
		filter := scope
		for {
			page, err := h.reader.ListOrders(ctx, filter)
			if err != nil {
				yield(OrderView{}, err)
				return
			}
			for _, v := range page {
				if !yield(v, nil) {
					return
				}
			}
			if len(page) < filter.Limit {
				return
			}
			last := page[len(page)-1]
			filter.After = &OrderCursor{CreatedAt: last.CreatedAt, ID: last.ID}
		}
	}, nil
}
