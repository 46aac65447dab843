package jobs

import (
	"context"
	"fmt"
	"time"

	"cotizador_backend/internal/events"
	"cotizador_backend/platform/config"
	"cotizador_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// CodeExpiryChecker confirms whether a scheduled code expiry is still the
// active one. Implemented by the quotations repository.
type CodeExpiryChecker interface {
	ConfirmCodeExpiry(ctx context.Context, id uuid.UUID, expiresAt time.Time) (string, bool, error)
}

// GrantPurger deletes dead share grants. Implemented by the clients repository.
type GrantPurger interface {
	PurgeShareGrants(ctx context.Context, cutoff time.Time) (int64, error)
}

// Worker consumes the background task queue.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	expiry CodeExpiryChecker
	purger GrantPurger
	bus    events.Bus
	log    *logger.Logger
}

// NewWorker creates the asynq worker with its handlers registered.
func NewWorker(cfg config.RedisConfig, expiry CodeExpiryChecker, purger GrantPurger, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := RedisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetJobQueueName()
	if queue == "" {
		queue = "default"
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		expiry: expiry,
		purger: purger,
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskAccessCodeExpired, w.handleAccessCodeExpired)
	mux.HandleFunc(TaskShareGrantPurge, w.handleShareGrantPurge)

	return w, nil
}

// handleAccessCodeExpired fires when a scheduled code expiry comes due. The
// payload pins the expiry the code was generated with: a rotation before the
// job runs leaves a different expiry on the row and the job does nothing.
func (w *Worker) handleAccessCodeExpired(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAccessCodeExpiredPayload(task)
	if err != nil {
		return err
	}

	quotationID, err := uuid.Parse(payload.QuotationID)
	if err != nil {
		return err
	}

	folio, active, err := w.expiry.ConfirmCodeExpiry(ctx, quotationID, payload.ExpiresAt)
	if err != nil {
		return err
	}
	if !active {
		return nil
	}

	if w.bus == nil {
		return nil
	}

	w.bus.Publish(ctx, events.QuotationAccessCodeExpired{
		BaseEvent:   events.NewBaseEvent(),
		QuotationID: quotationID,
		Folio:       folio,
	})
	return nil
}

// handleShareGrantPurge removes revoked and expired share grants past the
// retention cutoff.
func (w *Worker) handleShareGrantPurge(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseShareGrantPurgePayload(task)
	if err != nil {
		return err
	}

	purged, err := w.purger.PurgeShareGrants(ctx, payload.Cutoff)
	if err != nil {
		return err
	}

	w.log.Info("purged share grants", "count", purged, "cutoff", payload.Cutoff)
	return nil
}

// Run starts the worker and blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("job worker stopped", "error", err)
	}
}
