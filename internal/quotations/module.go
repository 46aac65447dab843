// Package quotations provides the quotation lifecycle domain module.
package quotations

import (
	apphttp "cotizador_backend/internal/http"
	"cotizador_backend/internal/jobs"
	"cotizador_backend/internal/quotations/handler"
	"cotizador_backend/internal/quotations/repository"
	"cotizador_backend/internal/quotations/service"
	"cotizador_backend/platform/config"
	"cotizador_backend/platform/events"
	"cotizador_backend/platform/logger"
	"cotizador_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// ModuleConfig combines the config surfaces this module reads.
type ModuleConfig interface {
	config.AppConfig
	config.AccessCodeConfig
	config.LockoutConfig
}

// Module represents the quotations domain module
type Module struct {
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
	service       *service.Service
}

// NewModule creates a new quotations module with all dependencies wired
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg ModuleConfig) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus)
	svc.SetBcryptCost(cfg.GetBcryptCost())

	return &Module{
		handler:       handler.New(svc, val),
		publicHandler: handler.NewPublicHandler(svc, cfg.GetAppBaseURL()),
		service:       svc,
	}
}

// SetScheduler injects the background scheduler for access-code expiry.
// Without it, codes still expire at read time but no expiry event fires.
func (m *Module) SetScheduler(sched jobs.ExpiryScheduler) {
	m.service.SetExpiryScheduler(sched)
}

// SetLockout wires the Redis-backed throttle for failed code verifications.
func (m *Module) SetLockout(rdb *redis.Client, log *logger.Logger, cfg config.LockoutConfig) {
	m.service.SetLogger(log)
	m.service.SetLockout(service.NewLockout(rdb, log, cfg.GetLockoutMaxAttempts(), cfg.GetLockoutWindow()))
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotations"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	quotations := ctx.Protected.Group("/quotations")
	m.handler.RegisterRoutes(quotations)

	// Public viewer routes — no auth, stricter rate limit
	public := ctx.V1.Group("/public/quotations")
	if ctx.PublicRateLimiter != nil {
		public.Use(ctx.PublicRateLimiter.RateLimit())
	}
	m.publicHandler.RegisterRoutes(public)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
