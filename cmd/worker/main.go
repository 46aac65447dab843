package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cotizador_backend/internal/audit"
	auditrepo "cotizador_backend/internal/audit/repository"
	clientsrepo "cotizador_backend/internal/clients/repository"
	"cotizador_backend/internal/events"
	"cotizador_backend/internal/jobs"
	quotationsrepo "cotizador_backend/internal/quotations/repository"
	"cotizador_backend/platform/config"
	"cotizador_backend/platform/db"
	"cotizador_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)

	// Audit trail also covers worker-published events (code expiries, purges)
	_ = audit.NewModule(auditrepo.New(pool), eventBus)

	jobClient, err := jobs.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize job client", "error", err)
		panic("failed to initialize job client: " + err.Error())
	}
	defer func() { _ = jobClient.Close() }()

	purgeScheduler := jobs.NewGrantPurgeScheduler(jobClient, log, 24*time.Hour, cfg.GetGrantRetention())
	go purgeScheduler.Run(ctx)

	worker, err := jobs.NewWorker(cfg, quotationsrepo.New(pool), clientsrepo.New(pool), eventBus, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
