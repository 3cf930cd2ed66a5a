// Package auth is the session and role guard: the only component that
// inspects credentials. Every inbound entry point calls Authorize before
// building a command or query.
package auth

import (
	"context"
	"errors"
	"strings"

	"fooddispatch/internal/core/domain/model/access"
	"fooddispatch/internal/core/ports"
	"fooddispatch/internal/pkg/errs"
)

var ErrResolverIsRequired = errs.NewValueIsRequiredError("sessionResolver")

// Guard resolves tokens into principals and checks capabilities.
//
// Example:
//
//	principal, err := guard.Authorize(ctx, token, access.CustomerWrite, access.AdminWrite)
//	switch {
//	case errors.Is(err, errs.ErrUnauthorized): // 401
//	case errors.Is(err, errs.ErrForbidden):    // 403
//	}
type Guard struct {
	resolver ports.SessionResolver
	clock    ports.Clock
}

func NewGuard(resolver ports.SessionResolver, clock ports.Clock) (*Guard, error) {
	if resolver == nil {
		return nil, ErrResolverIsRequired
	}
	if clock == nil {
		return nil, errs.NewValueIsRequiredError("clock")
	}
	return &Guard{resolver: resolver, clock: clock}, nil
}

// Authenticate resolves token into a Principal.
//
// Returns errs.ErrUnauthorized when the token is blank, the resolver rejects
// it, the session has expired, or the session carries an unknown role.
func (g *Guard) Authenticate(ctx context.Context, token string) (access.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return access.Principal{}, errs.NewUnauthorizedError("missing session token")
	}

	session, err := g.resolver.Resolve(ctx, token)
	if err != nil {
		var unauthorized *errs.UnauthorizedError
		if errors.As(err, &unauthorized) {
			return access.Principal{}, err
		}
		return access.Principal{}, errs.NewUnauthorizedErrorWithCause("invalid session token", err)
	}

	if !session.ValidUntil.IsZero() && g.clock.Now().After(session.ValidUntil) {
		return access.Principal{}, errs.NewUnauthorizedError("session expired")
	}

	role, err := access.ParseRole(session.Role)
	if err != nil {
		return access.Principal{}, errs.NewUnauthorizedErrorWithCause("unsupported role", err)
	}

	principal, err := access.NewPrincipal(session.UserID, role, session.RestaurantID)
	if err != nil {
		return access.Principal{}, errs.NewUnauthorizedErrorWithCause("malformed session", err)
	}
	return principal, nil
}

// Authorize authenticates and then requires at least one of caps.
// An empty caps list only authenticates.
func (g *Guard) Authorize(ctx context.Context, token string, caps ...access.Capability) (access.Principal, error) {
	principal, err := g.Authenticate(ctx, token)
	if err != nil {
		return access.Principal{}, err
	}
	if len(caps) == 0 {
		return principal, nil
	}
	if err = principal.Require(caps...); err != nil {
		return access.Principal{}, err
	}
	return principal, nil
}
