package service

import (
	"context"
	"fmt"
	"time"

	"cotizador_backend/platform/apperr"
	"cotizador_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Lockout throttles failed access-code verifications per folio and client IP.
// Counters live in Redis with a sliding expiry, so a quiet client recovers
// without any cleanup job.
type Lockout struct {
	rdb         *redis.Client
	log         *logger.Logger
	maxAttempts int
	window      time.Duration
}

// NewLockout creates a failed-verification throttle backed by Redis.
func NewLockout(rdb *redis.Client, log *logger.Logger, maxAttempts int, window time.Duration) *Lockout {
	return &Lockout{
		rdb:         rdb,
		log:         log,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func (l *Lockout) key(folio, clientIP string) string {
	return fmt.Sprintf("lockout:quotation:%s:%s", folio, clientIP)
}

// Check rejects the request when the caller has exhausted its attempts.
// A Redis outage degrades to allowing the request rather than locking
// everyone out.
func (l *Lockout) Check(ctx context.Context, folio, clientIP string) error {
	count, err := l.rdb.Get(ctx, l.key(folio, clientIP)).Int()
	if err != nil {
		if err != redis.Nil {
			l.log.DatabaseError("lockout_check", err)
		}
		return nil
	}
	if count >= l.maxAttempts {
		l.log.RateLimitExceeded(clientIP, "quotation_access:"+folio)
		return apperr.RateLimited("too many failed access attempts, try again later")
	}
	return nil
}

// RegisterFailure counts a failed verification. The first failure in a window
// starts the expiry clock.
func (l *Lockout) RegisterFailure(ctx context.Context, folio, clientIP string) {
	key := l.key(folio, clientIP)
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		l.log.DatabaseError("lockout_incr", err)
		return
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			l.log.DatabaseError("lockout_expire", err)
		}
	}
}

// Reset clears the counter after a successful verification.
func (l *Lockout) Reset(ctx context.Context, folio, clientIP string) {
	if err := l.rdb.Del(ctx, l.key(folio, clientIP)).Err(); err != nil {
		l.log.DatabaseError("lockout_reset", err)
	}
}
