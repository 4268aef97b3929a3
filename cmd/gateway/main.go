package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cobros/console-gateway/internal/api"
	"github.com/cobros/console-gateway/internal/core/ports"
	"github.com/cobros/console-gateway/internal/core/session"
	"github.com/cobros/console-gateway/internal/infrastructure/audit"
	"github.com/cobros/console-gateway/internal/infrastructure/authapi"
	mongoinfra "github.com/cobros/console-gateway/internal/infrastructure/db/mongo"
	redisinfra "github.com/cobros/console-gateway/internal/infrastructure/db/redis"
	"github.com/cobros/console-gateway/internal/pkg/config"
	"github.com/cobros/console-gateway/pkg/logger"
)

// @title        cobros console gateway
// @version      1.0
// @description  Session and permission gateway for the cobros admin console.
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	upstream, err := url.Parse(cfg.UpstreamBaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.UpstreamBaseURL).Msg("invalid upstream base URL")
	}

	// Credential cache. The gateway still works without it: sessions just
	// do not survive a restart.
	var cache ports.CredentialCache
	rdb, err := redisinfra.Connect(ctx, redisinfra.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, sessions will not survive restarts")
	} else {
		cache = redisinfra.NewCredentialCache(rdb, cfg.TokenTTL)
		defer rdb.Close()
	}

	// Audit trail, optional.
	var recorder ports.AuditRecorder
	var auditDB *mongo.Database
	if cfg.AuditEnabled {
		client, db, err := mongoinfra.Connect(ctx, mongoinfra.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			log.Warn().Err(err).Msg("mongo unavailable, session audit disabled")
		} else {
			r := audit.NewRecorder(mongoinfra.NewSessionEventRepository(db), log)
			r.Start(ctx)
			recorder = r
			auditDB = db
			defer func() {
				disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = client.Disconnect(disconnectCtx)
			}()
		}
	}

	authClient := authapi.NewClient(cfg.UpstreamBaseURL, log)
	store := session.NewStore()
	ctrl := session.NewController(store, authClient, cache, recorder, ports.RealClock{}, cfg.SessionTotal, cfg.SessionWarning, log)
	authClient.SetInvalidator(ctrl)
	defer ctrl.Shutdown()

	// Restore must finish before protected routes are served; guards report
	// a loading state until it has.
	ctrl.Restore(ctx)

	e := api.NewRouter(api.Deps{
		Controller: ctrl,
		Store:      store,
		Upstream:   upstream,
		Redis:      rdb,
		Mongo:      auditDB,
		Log:        log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("upstream", cfg.UpstreamBaseURL).Msg("gateway started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
