// Copyright (c) 2026 Promptlib. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the promptlib HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Upgrade the personal library store (idempotent).
//  7. Build the directory read caches and services.
//  8. Start the cache invalidation subscriber.
//  9. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/taibuivan/promptlib/internal/api"
	"github.com/taibuivan/promptlib/internal/core/directory"
	"github.com/taibuivan/promptlib/internal/core/library"
	"github.com/taibuivan/promptlib/internal/platform/cache"
	"github.com/taibuivan/promptlib/internal/platform/config"
	"github.com/taibuivan/promptlib/internal/platform/constants"
	"github.com/taibuivan/promptlib/internal/platform/metrics"
	"github.com/taibuivan/promptlib/internal/platform/migration"
	pgstore "github.com/taibuivan/promptlib/internal/platform/postgres"
	redisstore "github.com/taibuivan/promptlib/internal/platform/redis"
	"github.com/taibuivan/promptlib/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("library_backend", cfg.LibraryBackend),
		slog.Bool("cache_disabled", cfg.CacheDisabled),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Background work (rate limiter cleanup, invalidation subscriber) stops with this context.
	runCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, pgstore.Limits{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns}, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing_postgres_pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, cfg.RedisPoolSize, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing_redis_client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis_close_error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Personal Library ───────────────────────────────────────────────
	var libraryStore library.Store = library.NewRedisStore(rdb)
	if cfg.LibraryBackend == config.LibraryBackendMemory {
		libraryStore = library.NewMemoryStore()
	}
	must(log, libraryStore.Upgrade(startupCtx), "upgrade library store")
	log.Info("library_store_ready",
		slog.String("backend", cfg.LibraryBackend),
		slog.Int("schema_version", library.SchemaVersion),
	)

	// ── 7. Directory Caches & Services ────────────────────────────────────
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cacheMetrics, err := metrics.NewCacheMetrics(registry)
	must(log, err, "register cache metrics")

	caches, err := directory.NewCaches(directory.DefaultPolicies(), cache.WithObserver(cacheMetrics))
	must(log, err, "build read caches")

	directoryService := directory.NewService(directory.NewPostgresRepository(pool), log)

	var reader directory.Reader = directory.NewCachedService(directoryService, caches)
	if cfg.CacheDisabled {
		reader = directoryService
		log.Warn("read_cache_disabled")
	}

	// ── 8. Invalidation Fan-out ───────────────────────────────────────────
	invalidator := directory.NewInvalidator(caches, rdb, log)
	go func() {
		if err := invalidator.Run(runCtx); err != nil {
			log.Error("cache_invalidation_stopped", slog.Any("error", err))
		}
	}()

	// ── 9. Admin Token Verification ───────────────────────────────────────
	verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize token verifier")

	// ── 10. Health handlers (wired with real dependency checkers) ─────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func(ctx context.Context) error {
			return pgstore.Ping(ctx, pool)
		},
		CheckRedis: func(ctx context.Context) error {
			return redisstore.Ping(ctx, rdb)
		},
	}, log)

	// ── 11. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Metrics:    metrics.Handler(registry),
		Directory:  directory.NewHandler(reader, caches.Policies()),
		CacheAdmin: directory.NewAdminHandler(caches, invalidator),
		Library:    library.NewHandler(library.NewService(libraryStore, log)),
	}

	server := api.NewServer(runCtx, cfg, log, verifier, handlers)

	// ── 12. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting_down_server", slog.Duration("timeout", shutdownTimeout))

	stopBackground()
	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown_error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped_cleanly")
}

// newLogger builds the process JSON logger and installs it as the default.
func newLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})).With(slog.String("app", constants.AppName))
	slog.SetDefault(logger)
	return logger
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
