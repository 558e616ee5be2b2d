package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"complianceadvisor/internal/auth"
	"complianceadvisor/internal/errors"
	"complianceadvisor/internal/service"
)

const (
	// ClaimsContextKey is where the token middleware leaves validated claims.
	ClaimsContextKey = "claims"
	sessionKey       = "session"
)

// SessionGuard turns validated token claims into an auth.Session for the
// rest of the chain. It must run after the token middleware.
func SessionGuard(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ClaimsContextKey).(*auth.Claims)
			if !ok {
				return httpError(errors.ErrUnauthenticated)
			}

			session, err := authService.ResolveSession(c.Request().Context(), claims)
			if err != nil {
				return httpError(err)
			}
			c.Set(sessionKey, session)
			return next(c)
		}
	}
}

// UnauthorizedHandler renders token extraction and validation failures.
func UnauthorizedHandler(c echo.Context, err error) error {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: errors.ErrUnauthenticated.Error(),
		Code:  "UNAUTHENTICATED",
	})
}

// mustSession returns the session placed by SessionGuard. Routes using it
// are only mounted behind the guard.
func mustSession(c echo.Context) auth.Session {
	session, _ := c.Get(sessionKey).(auth.Session)
	return session
}

// httpError converts a domain error into an echo error carrying ErrorResponse.
func httpError(err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}
