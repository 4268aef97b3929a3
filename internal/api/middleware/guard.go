package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cobros/console-gateway/internal/core/session"
)

// RequireSession gates protected routes. While startup restoration has not
// completed it answers with a neutral 503 so the console shows a loading
// state; once resolved, unauthenticated requests get 401 with no return-path
// state. Every request that passes the gate counts as an activity signal.
func RequireSession(ctrl *session.Controller, store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !ctrl.Restored() {
				c.Response().Header().Set("Retry-After", "1")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session restore in progress")
			}
			if !store.IsAuthenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			ctrl.Activity()
			return next(c)
		}
	}
}

// PublicOnly gates the login/registration surface: loading state while
// restoring, redirect to the landing page when a session already exists.
func PublicOnly(ctrl *session.Controller, store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !ctrl.Restored() {
				c.Response().Header().Set("Retry-After", "1")
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session restore in progress")
			}
			if store.IsAuthenticated() {
				return c.Redirect(http.StatusSeeOther, "/")
			}
			return next(c)
		}
	}
}
