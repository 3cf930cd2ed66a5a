package queries

import (
	"errors"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/pkg/errs"
	"fooddispatch/internal/pkg/guard"
)

var ErrListDriversQueryIsNotConstructed = errors.New(
	"ListDriversQuery must be created via NewListDriversQuery constructor",
)

// ListDriversQuery lists every driver profile. Admin only.
type ListDriversQuery struct {
	actor    access.Principal
	pageSize int
	guard    guard.ConstructorGuard
}

func NewListDriversQuery(actor access.Principal, pageSize int) (ListDriversQuery, error) {
	if err := actor.Require(access.AdminWrite); err != nil {
		return ListDriversQuery{}, err
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return ListDriversQuery{}, errs.NewValueIsOutOfRangeError("pageSize", pageSize, 1, MaxPageSize)
	}
	return ListDriversQuery{actor: actor, pageSize: pageSize, guard: guard.NewConstructorGuard()}, nil
}

func (q ListDriversQuery) Validate() error {
	return q.guard.Validate(ErrListDriversQueryIsNotConstructed)
}

func (q ListDriversQuery) PageSize() int {
	return q.pageSize
}
