package service

import (
	"context"
	"testing"
	"time"

	"cotizador_backend/platform/apperr"
	"cotizador_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLockout(t *testing.T, maxAttempts int, window time.Duration) (*Lockout, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewLockout(rdb, logger.New("development"), maxAttempts, window), mr
}

func TestLockoutAllowsUnderLimit(t *testing.T) {
	l, _ := newTestLockout(t, 3, time.Minute)
	ctx := context.Background()

	l.RegisterFailure(ctx, "COT-2026-0001", "10.0.0.1")
	l.RegisterFailure(ctx, "COT-2026-0001", "10.0.0.1")

	if err := l.Check(ctx, "COT-2026-0001", "10.0.0.1"); err != nil {
		t.Fatalf("expected attempts under the limit to pass, got %v", err)
	}
}

func TestLockoutBlocksAtLimit(t *testing.T) {
	l, _ := newTestLockout(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l.RegisterFailure(ctx, "COT-2026-0001", "10.0.0.1")
	}

	err := l.Check(ctx, "COT-2026-0001", "10.0.0.1")
	if !apperr.Is(err, apperr.KindRateLimited) {
		t.Fatalf("expected rate-limited after exhausting attempts, got %v", err)
	}
}

func TestLockoutIsScopedPerFolioAndIP(t *testing.T) {
	l, _ := newTestLockout(t, 1, time.Minute)
	ctx := context.Background()

	l.RegisterFailure(ctx, "COT-2026-0001", "10.0.0.1")

	if err := l.Check(ctx, "COT-2026-0002", "10.0.0.1"); err != nil {
		t.Fatalf("expected other folio to be unaffected, got %v", err)
	}
	if err := l.Check(ctx, "COT-2026-0001", "10.0.0.2"); err != nil {
		t.Fatalf("expected other IP to be unaffected, got %v", err)
	}
}

func TestLockoutResetClearsCounter(t *testing.T) {
	l, _ := newTestLockout(t, 1, time.Minute)
	ctx := context.Background()

	l.RegisterFailure(ctx, "COT-2026-0001", "10.0.0.1")
	l.Reset(ctx, "COT-2026-0001", "10.0.0.1")

	if err := l.Check(ctx, "COT-2026-0001", "10.0.0.1"); err != nil {
		t.Fatalf("expected reset to clear the lockout, got %v", err)
	}
}

func TestLockoutWindowExpires(t *testing.T) {
	l, mr := newTestLockout(t, 1, time.Minute)
	ctx := context.Background()

	l.RegisterFailure(ctx, "COT-2026-0001", "10.0.0.1")
	mr.FastForward(61 * time.Second)

	if err := l.Check(ctx, "COT-2026-0001", "10.0.0.1"); err != nil {
		t.Fatalf("expected counter to expire with the window, got %v", err)
	}
}
