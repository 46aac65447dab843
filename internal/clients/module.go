// Package clients provides the client records and share-code domain module.
package clients

import (
	"cotizador_backend/internal/clients/handler"
	"cotizador_backend/internal/clients/repository"
	"cotizador_backend/internal/clients/service"
	apphttp "cotizador_backend/internal/http"
	"cotizador_backend/platform/events"
	"cotizador_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the clients domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates a new clients module with all dependencies wired
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, eventBus)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "clients"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository, used by the background worker for purges.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	clients := ctx.Protected.Group("/clients")
	m.handler.RegisterRoutes(clients)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
