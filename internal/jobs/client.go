package jobs

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"cotizador_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Client enqueues background tasks on the Redis-backed queue.
type Client struct {
	client *asynq.Client
	queue  string
}

// ExpiryScheduler is the narrow interface the quotations service uses to
// schedule a code-expiry notification. Nil-safe: scheduling is best-effort.
type ExpiryScheduler interface {
	ScheduleAccessCodeExpiry(ctx context.Context, payload AccessCodeExpiredPayload, runAt time.Time) error
}

// NewClient creates a queue client from the Redis configuration.
func NewClient(cfg config.RedisConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

// Close releases the underlying asynq client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// ScheduleAccessCodeExpiry enqueues an expiry task to run at runAt.
func (c *Client) ScheduleAccessCodeExpiry(ctx context.Context, payload AccessCodeExpiredPayload, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewAccessCodeExpiredTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue))
	return err
}

// EnqueueShareGrantPurge enqueues an immediate purge of grants expired
// before the cutoff.
func (c *Client) EnqueueShareGrantPurge(ctx context.Context, payload ShareGrantPurgePayload) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewShareGrantPurgeTask(payload)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue))
	return err
}

// RedisClientOpt converts a redis URL into asynq connection options,
// honoring TLS settings from the URL scheme.
func RedisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
