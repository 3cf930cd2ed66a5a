package ports

import (
	"context"
	"time"

	"fooddispatch/internal/core/domain/model/kernel"
)

// Session is what a session resolver knows about a token. Role is the raw
// claim; the guard parses and validates it.
type Session struct {
	UserID       kernel.UUID
	Role         string
	RestaurantID *kernel.UUID
	ValidUntil   time.Time
}

// SessionResolver turns a bearer token into a Session. Any failure means the
// caller is unauthenticated.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (Session, error)
}
