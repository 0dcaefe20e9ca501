// Package middleware provides reusable HTTP middleware: the per-request
// identity resolver and the Redis-backed rate limiter and response cache.
package middleware

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tickethub/helpdesk-api/internal/apierr"
	"github.com/tickethub/helpdesk-api/internal/repository"
	"github.com/tickethub/helpdesk-api/internal/utils"
)

// Identity is the resolved caller attached to a request. It lives only for
// the duration of one request; nothing caches identities across requests
// or connections.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// identityKey is the echo context key under which the Identity is stored.
const identityKey = "identity"

// WithIdentity returns the request-identity middleware. It runs on every
// route, public ones included, and never blocks anonymous callers:
//
//   - no Authorization header → continue with no identity attached;
//   - a valid bearer token → the claim is re-resolved against the user
//     store and the Identity attached to the context;
//   - a presented token that fails verification → the error propagates to
//     the central error handler (absence of credentials is normal, presence
//     of invalid credentials is not);
//   - a valid token whose user no longer exists → continue anonymously, so
//     stale tokens cannot take down public routes.
func WithIdentity(accessSecret string, users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" {
				return next(c)
			}
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return apierr.ErrInvalidToken
			}

			claims, err := utils.VerifyToken(strings.TrimSpace(raw), accessSecret)
			if err != nil {
				return apierr.ErrInvalidToken
			}

			u, err := users.GetByID(c.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					// User deleted after token issuance: anonymous here,
					// protected handlers will reject on their own.
					return next(c)
				}
				return err
			}

			SetIdentity(c, &Identity{ID: u.ID, Name: u.Name, Email: u.Email})
			return next(c)
		}
	}
}

// SetIdentity attaches the resolved identity to the request context.
func SetIdentity(c echo.Context, id *Identity) {
	c.Set(identityKey, id)
}

// CurrentIdentity returns the Identity attached by WithIdentity, or nil
// for anonymous requests.
func CurrentIdentity(c echo.Context) *Identity {
	if v := c.Get(identityKey); v != nil {
		if id, ok := v.(*Identity); ok {
			return id
		}
	}
	return nil
}
