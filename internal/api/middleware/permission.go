package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cobros/console-gateway/internal/core/session"
)

// RequireAnyPermission rejects requests whose identity holds none of the
// named capabilities from its server-issued snapshot.
func RequireAnyPermission(store *session.Store, names ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !store.HasAnyPermission(names...) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// RequireRole rejects requests whose identity does not hold the named role.
// Matching is case-insensitive.
func RequireRole(store *session.Store, role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !store.HasRole(role) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
