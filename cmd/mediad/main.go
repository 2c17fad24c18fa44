package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/opsdesk/opsdesk/internal/app"
	"github.com/opsdesk/opsdesk/internal/identity"
	"github.com/opsdesk/opsdesk/internal/media"
	"github.com/opsdesk/opsdesk/internal/observability"
	"github.com/opsdesk/opsdesk/internal/platform/db"
	"github.com/opsdesk/opsdesk/jobs"
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

	logger := app.NewLogger(cfg, "mediad")

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns, MinConns: cfg.PGMinConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	keyring, err := identity.NewKeyring(cfg.TokenSecret, cfg.TokenSecretPrevious)
	if err != nil {
		logger.Error("build keyring", slog.Any("error", err))
		os.Exit(1)
	}
	gatekeeper := identity.NewGatekeeper(identity.NewVerifier(keyring), logger)

	metrics := observability.NewMetrics("mediad")

	queue := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()

	service := media.NewService(media.NewRepository(pool), queue, logger, metrics)
	handler := media.NewHandler(logger, service, gatekeeper)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Metrics: metrics,
		Mount: func(r chi.Router) {
			r.Route("/api/v1/media", handler.MountRoutes)
			r.Route("/api/v1/jobs", jobsHandler.MountRoutes)
		},
	})

	if err := app.RunServer(ctx, logger, cfg, router); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server run", slog.Any("error", err))
		os.Exit(1)
	}
}
