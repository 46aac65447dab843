package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cotizador_backend/internal/audit"
	auditrepo "cotizador_backend/internal/audit/repository"
	"cotizador_backend/internal/clients"
	"cotizador_backend/internal/events"
	apphttp "cotizador_backend/internal/http"
	"cotizador_backend/internal/http/router"
	"cotizador_backend/internal/jobs"
	"cotizador_backend/internal/quotations"
	"cotizador_backend/platform/config"
	"cotizador_backend/platform/db"
	"cotizador_backend/platform/logger"
	"cotizador_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	expiryScheduler, closeScheduler := initExpiryScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	redisClient := initRedisClient(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Audit module subscribes to domain events and persists the trail
	auditModule := audit.NewModule(auditrepo.New(pool), eventBus)

	clientsModule := clients.NewModule(pool, eventBus, val)

	quotationsModule := quotations.NewModule(pool, eventBus, val, cfg)
	if expiryScheduler != nil {
		quotationsModule.SetScheduler(expiryScheduler)
	}
	if redisClient != nil {
		quotationsModule.SetLockout(redisClient, log, cfg)
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			clientsModule,
			quotationsModule,
			auditModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

func initExpiryScheduler(cfg config.RedisConfig, log *logger.Logger) (jobs.ExpiryScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; scheduled code expiry disabled")
		return nil, nil
	}

	client, err := jobs.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize job client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func initRedisClient(cfg config.RedisConfig, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; verification lockout disabled")
		return nil
	}

	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("failed to parse redis url", "error", err)
		return nil
	}
	if cfg.GetRedisTLSInsecure() && opts.TLSConfig != nil {
		opts.TLSConfig.InsecureSkipVerify = true
	}

	return redis.NewClient(opts)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
