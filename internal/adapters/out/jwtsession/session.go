// Package jwtsession resolves HS256 bearer tokens into sessions.
package jwtsession

import (
	"context"
	"errors"
	"time"

	"fooddispatch/internal/core/domain/model/kernel"
	"fooddispatch/internal/core/ports"
	"fooddispatch/internal/pkg/errs"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrSecretIsRequired = errs.NewValueIsRequiredError("secret")

// Claims is the token payload. The subject carries the user id.
type Claims struct {
	Role         string `json:"role"`
	RestaurantID string `json:"restaurant_id,omitempty"`
	jwt.RegisteredClaims
}

// Resolver implements ports.SessionResolver.
type Resolver struct {
	secret []byte
	issuer string
	clock  ports.Clock
}

var _ ports.SessionResolver = (*Resolver)(nil)

// NewResolver creates a resolver. An empty issuer accepts any iss claim.
func NewResolver(secret []byte, issuer string, clock ports.Clock) (*Resolver, error) {
	if len(secret) == 0 {
		return nil, ErrSecretIsRequired
	}
	if clock == nil {
		return nil, errs.NewValueIsRequiredError("clock")
	}
	return &Resolver{secret: secret, issuer: issuer, clock: clock}, nil
}

func (r *Resolver) Resolve(_ context.Context, token string) (ports.Session, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(r.clock.Now),
	}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return r.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ports.Session{}, errs.NewUnauthorizedErrorWithCause("session expired", err)
	case err != nil:
		return ports.Session{}, errs.NewUnauthorizedErrorWithCause("invalid session token", err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ports.Session{}, errs.NewUnauthorizedErrorWithCause("malformed subject", err)
	}

	session := ports.Session{
		UserID: kernel.UUIDFromGoogle(userID),
		Role:   claims.Role,
	}
	if claims.ExpiresAt != nil {
		session.ValidUntil = claims.ExpiresAt.Time
	}
	if claims.RestaurantID != "" {
		restaurantID, parseErr := uuid.Parse(claims.RestaurantID)
		if parseErr != nil {
			return ports.Session{}, errs.NewUnauthorizedErrorWithCause("malformed restaurant_id", parseErr)
		}
		id := kernel.UUIDFromGoogle(restaurantID)
		session.RestaurantID = &id
	}
	return session, nil
}

// Issuer signs tokens the Resolver accepts. Used by tooling and tests; the
// service itself never issues sessions.
type Issuer struct {
	secret []byte
	issuer string
	clock  ports.Clock
}

func NewIssuer(secret []byte, issuer string, clock ports.Clock) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, ErrSecretIsRequired
	}
	if clock == nil {
		return nil, errs.NewValueIsRequiredError("clock")
	}
	return &Issuer{secret: secret, issuer: issuer, clock: clock}, nil
}

// Issue signs a token for userID valid for ttl.
func (i *Issuer) Issue(userID kernel.UUID, role string, restaurantID *kernel.UUID, ttl time.Duration) (string, error) {
	if err := userID.Validate(); err != nil {
		return "", err
	}
	if ttl <= 0 {
		return "", errs.NewValueIsInvalidError("ttl")
	}

	now := i.clock.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if restaurantID != nil {
		claims.RestaurantID = restaurantID.String()
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}
