// Package audit persists domain events as an append-only trail. It listens
// on the event bus rather than being called directly, so publishing modules
// stay unaware of it.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"cotizador_backend/internal/audit/repository"
	"cotizador_backend/internal/events"
	apphttp "cotizador_backend/internal/http"
	"cotizador_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// auditedEvents lists every event name the trail records.
var auditedEvents = []string{
	"quotations.created",
	"quotations.status_changed",
	"quotations.access_changed",
	"quotations.access_code_expired",
	"quotations.deleted",
	"quotations.payment_recorded",
	"clients.share_grant_issued",
	"clients.share_grant_redeemed",
}

// Module represents the audit module
type Module struct {
	repo *repository.Repository
}

// NewModule creates the audit module and subscribes it to the event bus.
func NewModule(repo *repository.Repository, bus events.Bus) *Module {
	m := &Module{repo: repo}
	for _, name := range auditedEvents {
		bus.Subscribe(name, events.HandlerFunc(m.record))
	}
	return m
}

// record persists one event. Failures propagate to the bus, which logs the
// dropped event; the publishing operation is already committed by then.
func (m *Module) record(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	return m.repo.Insert(ctx, &repository.Entry{
		ID:         uuid.New(),
		EventName:  event.EventName(),
		Payload:    payload,
		OccurredAt: event.OccurredAt(),
		CreatedAt:  time.Now(),
	})
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "audit"
}

// RegisterRoutes registers the audit trail routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	audit := ctx.Protected.Group("/audit")
	audit.GET("", m.listRecent)
}

func (m *Module) listRecent(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			httpkit.Error(c, http.StatusBadRequest, "invalid limit", nil)
			return
		}
		limit = parsed
	}

	entries, err := m.repo.ListRecent(c.Request.Context(), c.Query("event"), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]gin.H, len(entries))
	for i, e := range entries {
		out[i] = gin.H{
			"id":         e.ID,
			"eventName":  e.EventName,
			"payload":    json.RawMessage(e.Payload),
			"occurredAt": e.OccurredAt,
		}
	}
	httpkit.OK(c, gin.H{"items": out})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
