package middleware

import (
	"context"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	apperrors "travelfeed/internal/errors"
)

// ContextUserIDKey is where RequireAuth stores the authenticated user id.
const ContextUserIDKey = "user_id"

// Resolver maps a raw credential to a user id.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (uint, error)
}

// RequireAuth rejects requests whose Authorization header does not resolve to a user.
// The header value is the token itself; no scheme prefix is expected.
func RequireAuth(resolver Resolver) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextUserIDKey,
		TokenLookup: "header:" + echo.HeaderAuthorization,
		ParseTokenFunc: func(c echo.Context, credential string) (interface{}, error) {
			return resolver.Resolve(c.Request().Context(), credential)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				err = apperrors.ErrMissingCredential
			}
			httpErr := apperrors.MapErrorToHTTP(err)
			if apperrors.IsInternal(err) {
				c.Logger().Errorf("auth gate: %v", err)
			}
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	})
}

// UserIDFromContext returns the id stored by RequireAuth.
func UserIDFromContext(c echo.Context) (uint, bool) {
	id, ok := c.Get(ContextUserIDKey).(uint)
	return id, ok && id != 0
}
