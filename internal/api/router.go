package api

import (
	"net/url"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cobros/console-gateway/internal/api/handler"
	"github.com/cobros/console-gateway/internal/api/middleware"
	"github.com/cobros/console-gateway/internal/core/session"
)

// Deps bundles everything the router needs. rdb and db may be nil when the
// corresponding backend is disabled.
type Deps struct {
	Controller *session.Controller
	Store      *session.Store
	Upstream   *url.URL
	Redis      *redis.Client
	Mongo      *mongo.Database
	Log        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("cobros_gateway"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Controller, deps.Store)
	sessionHandler := handler.NewSessionHandler(deps.Controller, deps.Store)
	proxy := handler.NewUpstreamProxy(deps.Upstream, deps.Controller, deps.Controller, deps.Log)

	requireSession := middleware.RequireSession(deps.Controller, deps.Store)
	publicOnly := middleware.PublicOnly(deps.Controller, deps.Store)

	// --- Public surface (login / registration) ---
	e.POST("/auth/login", authHandler.Login, publicOnly)
	e.POST("/auth/register", authHandler.Register, publicOnly)

	// --- Session lifecycle ---
	e.POST("/auth/logout", authHandler.Logout)
	e.GET("/auth/session", sessionHandler.Status)
	e.POST("/auth/session/activity", sessionHandler.Activity)
	e.POST("/auth/session/continue", sessionHandler.Continue)
	e.POST("/auth/session/acknowledge", sessionHandler.Acknowledge)

	// --- Protected surface ---
	e.GET("/auth/permissions", authHandler.Permissions, requireSession)
	e.Any("/api/*", proxy.Handle, requireSession)

	// --- Health probes and observability (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Redis, deps.Mongo)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
