package queries

import (
	"context"
	"iter"

	"fooddispatch/internal/core/domain/model/kernel"
)

type ListDriversQueryHandler struct {
	reader OrderReader
}

func NewListDriversQueryHandler(reader OrderReader) ListDriversQueryHandler {
	return ListDriversQueryHandler{reader: reader}
}

func (h ListDriversQueryHandler) Handle(ctx context.Context, query ListDriversQuery) (iter.Seq2[DriverView, error], error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	limit := query.PageSize()
	return func(yield func(DriverView, error) bool) {
		var after *kernel.UUID
		for {
			page, err := h.reader.ListDrivers(ctx, after, limit)
			if err != nil {
				yield(DriverView{}, err)
				return
			}
			for _, v := range page {
				if !yield(v, nil) {
					return
				}
			}
			if len(page) < limit {
				return
			}
			last := page[len(page)-1].ID
			after = &last
		}
	}, nil
}
