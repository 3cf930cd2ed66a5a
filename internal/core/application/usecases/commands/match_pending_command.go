package commands

import (
	"errors"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/pkg/errs"
	"fooddispatch/internal/pkg/guard"
)

const maxMatchBatch = 1000

var ErrMatchPendingCommandIsNotConstructed = errors.New(
	"MatchPendingCommand must be created via NewMatchPendingCommand constructor",
)

// MatchPendingCommand runs one matching pass over unassigned ready orders,
// oldest first, at most limit of them.
type MatchPendingCommand struct {
	actor access.Principal
	limit int
	guard guard.ConstructorGuard
}

// NewMatchPendingCommand requires dispatch or admin-write.
func NewMatchPendingCommand(actor access.Principal, limit int) (MatchPendingCommand, error) {
	if err := actor.Require(access.Dispatch, access.AdminWrite); err != nil {
		return MatchPendingCommand{}, err
	}
	if limit < 1 || limit > maxMatchBatch {
		return MatchPendingCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, maxMatchBatch)
	}
	return MatchPendingCommand{actor: actor, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c MatchPendingCommand) Validate() error {
	return c.guard.Validate(ErrMatchPendingCommandIsNotConstructed)
}

func (c MatchPendingCommand) Actor() access.Principal {
	return c.actor
}

func (c MatchPendingCommand) Limit() int {
	return c.limit
}

// MatchPendingResult counts what a pass did with each considered order.
// Skipped orders were taken by someone else or changed state mid-pass.
type MatchPendingResult struct {
	Considered int
	Assigned   int
	Unmatched  int
	Skipped    int
	Failed     int
}
