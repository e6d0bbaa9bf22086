// Package main is the entrypoint for the enroll API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/enroll/enroll/internal/auth"
	"github.com/enroll/enroll/internal/config"
	"github.com/enroll/enroll/internal/events"
	"github.com/enroll/enroll/internal/handler"
	"github.com/enroll/enroll/internal/logging"
	"github.com/enroll/enroll/internal/metrics"
	"github.com/enroll/enroll/internal/repository"
	"github.com/enroll/enroll/internal/server"
	"github.com/enroll/enroll/internal/service"
	"github.com/enroll/enroll/internal/validation"
)

// connectTimeout bounds each backend connection attempt at startup.
const connectTimeout = 15 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	storeSecret := cfg.MongoURI
	if cfg.StoreDriver == repository.DriverPostgres {
		storeSecret = cfg.DatabaseURL
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	store, err := repository.Open(connectCtx, cfg.StoreOptions())
	if err == nil {
		err = store.EnsureIndexes(connectCtx)
	}
	cancel()
	if err != nil {
		logger.Error(
			"failed to initialize user store",
			slog.String("driver", cfg.StoreDriver),
			slog.String("error", logging.SanitizeError(err, storeSecret)),
			slog.String("store_url", logging.RedactURL(storeSecret)),
		)
		if store != nil {
			_ = store.Close(ctx)
		}
		os.Exit(1)
	}
	logger.Info("connected to user store", "driver", store.Name())

	recorder := metrics.NewPrometheus()

	checks := map[string]handler.HealthChecker{
		store.Name(): store,
		"redis":      nil,
	}

	var (
		publisher events.Publisher = events.NoopPublisher{}
		broker    *events.Broker
		stream    *events.StreamPublisher
	)
	if cfg.RedisURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		broker, err = events.Connect(connectCtx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", logging.SanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", logging.RedactURL(cfg.RedisURL)),
			)
			_ = store.Close(ctx)
			os.Exit(1)
		}
		logger.Info("connected to Redis")

		stream = events.NewStreamPublisher(broker.Client(), logger, recorder)
		publisher = stream
		checks["redis"] = broker
	}

	registration := service.NewRegistrationService(store, auth.NewHasher(), publisher, recorder, logger)

	r := setupRouter(routerDeps{
		root:    handler.New(cfg.RoutePrefix()),
		health:  handler.NewHealthHandler(checks),
		users:   handler.NewUserHandler(registration, validation.New(), recorder, logger.With("component", "handler.user")),
		metrics: recorder.Handler(),
		cfg:     cfg,
		logger:  logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// LIFO: the publisher drains before Redis closes, the store closes last.
	srv.OnShutdown("store", store.Close)
	if broker != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return broker.Close()
		})
		srv.OnShutdown("event publisher", stream.Drain)
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"prefix", cfg.RoutePrefix(),
		"store", store.Name(),
		"events", broker != nil,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
