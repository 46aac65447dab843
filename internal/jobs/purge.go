package jobs

import (
	"context"
	"time"

	"cotizador_backend/platform/logger"
)

// GrantPurgeScheduler periodically enqueues a share-grant purge task. It runs
// alongside the worker so purges keep happening without an external cron.
type GrantPurgeScheduler struct {
	client    *Client
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
}

// NewGrantPurgeScheduler creates the periodic purge enqueuer. Grants stay
// around for the retention window after they expire or are revoked.
func NewGrantPurgeScheduler(client *Client, log *logger.Logger, interval, retention time.Duration) *GrantPurgeScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &GrantPurgeScheduler{
		client:    client,
		log:       log,
		interval:  interval,
		retention: retention,
	}
}

// Run blocks until the context is cancelled, enqueueing one purge per interval.
func (s *GrantPurgeScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.retention)
			if err := s.client.EnqueueShareGrantPurge(ctx, ShareGrantPurgePayload{Cutoff: cutoff}); err != nil {
				s.log.Error("failed to enqueue share grant purge", "error", err)
			}
		}
	}
}
