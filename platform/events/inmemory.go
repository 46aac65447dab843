package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cotizador_backend/platform/logger"
)

// handlerTimeout bounds async handler execution so a stuck subscriber
// cannot leak goroutines forever.
const handlerTimeout = 30 * time.Second

// InMemoryBus is a process-local Bus implementation. Async publishing is
// fire-and-forget: handler errors and panics are logged, never propagated.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for the given event name.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

// Publish delivers the event to all handlers, each in its own goroutine.
// The caller's context is not reused: the request may finish before the
// handlers do.
func (b *InMemoryBus) Publish(_ context.Context, event Event) {
	for _, h := range b.snapshot(event.EventName()) {
		handler := h
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
			defer cancel()
			b.run(ctx, handler, event)
		}()
	}
}

// PublishSync delivers the event to all handlers in order and returns the
// first error encountered.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	for _, handler := range b.snapshot(event.EventName()) {
		if err := handler.Handle(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (b *InMemoryBus) snapshot(eventName string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	registered := b.handlers[eventName]
	out := make([]Handler, len(registered))
	copy(out, registered)
	return out
}

func (b *InMemoryBus) run(ctx context.Context, handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil && b.log != nil {
			b.log.AuditDrop(event.EventName(), fmt.Errorf("handler panic: %v", r))
		}
	}()

	if err := handler.Handle(ctx, event); err != nil && b.log != nil {
		b.log.AuditDrop(event.EventName(), err)
	}
}
