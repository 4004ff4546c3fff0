package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/mosketh/storefront/api/middleware"
	"github.com/mosketh/storefront/api/routes"
	"github.com/mosketh/storefront/internal/checkout"
	"github.com/mosketh/storefront/internal/cron"
	"github.com/mosketh/storefront/internal/session"
	"github.com/mosketh/storefront/pkg/config"
	"github.com/mosketh/storefront/pkg/db"
	"github.com/mosketh/storefront/pkg/logger"
	"github.com/mosketh/storefront/pkg/metrics"
	"github.com/mosketh/storefront/pkg/migrate"
	"github.com/mosketh/storefront/pkg/redis"
	"github.com/mosketh/storefront/pkg/storage"
	"github.com/mosketh/storefront/pkg/storefrontapi"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"storage_driver": cfg.Storage.Driver,
	})

	var closers []io.Closer
	defer func() {
		var closeErr error
		for i := len(closers) - 1; i >= 0; i-- {
			closeErr = multierr.Append(closeErr, closers[i].Close())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error closing resources", closeErr)
		}
	}()

	readiness := map[string]storage.Pinger{}

	var redisClient *redis.Client
	if cfg.Storage.Driver == config.StorageDriverRedis || cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient)
		readiness["redis"] = redisClient
	}

	var store storage.Store
	switch {
	case cfg.Storage.UsesSQL():
		dbClient, err := db.New(ctx, cfg.Storage, cfg.DB, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap database", err)
			os.Exit(1)
		}
		closers = append(closers, dbClient)
		readiness["database"] = dbClient

		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			logg.Error(ctx, "failed to run migrations", err)
			os.Exit(1)
		}
		store = storage.NewSQLStore(dbClient.DB())
	case cfg.Storage.Driver == config.StorageDriverRedis:
		store = storage.NewRedisStore(redisClient, cfg.Redis.StateTTL)
	default:
		logg.Warn(ctx, "memory storage selected, client state will not survive restarts")
		store = storage.NewMemoryStore()
	}

	api, err := storefrontapi.New(cfg.API, logg)
	if err != nil {
		logg.Error(ctx, "failed to create storefront api client", err)
		os.Exit(1)
	}

	storefrontMetrics := metrics.NewStorefrontMetrics(prometheus.DefaultRegisterer)

	sessions, err := session.NewManager(session.ManagerParams{
		Storage:       store,
		Authenticator: api,
		Orders: func(tokens checkout.TokenSource) checkout.OrderCreator {
			return checkout.NewAPIOrderCreator(api, tokens)
		},
		Logger:  logg,
		Metrics: storefrontMetrics,
		IdleTTL: cfg.Session.IdleTTL,
	})
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	sweepJob, err := cron.NewSessionSweepJob(sessions)
	if err != nil {
		logg.Error(ctx, "failed to create session sweep job", err)
		os.Exit(1)
	}
	sweeper, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(sweepJob),
		Metrics:  storefrontMetrics,
		Interval: cfg.Session.SweepInterval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create session sweeper", err)
		os.Exit(1)
	}
	go func() {
		if err := sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "session sweeper stopped unexpectedly", err)
		}
	}()

	var limiter middleware.CounterStore
	if redisClient != nil {
		limiter = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, sessions, api, limiter, readiness, promhttp.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", addr), "starting storefront server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "storefront server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down storefront server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
