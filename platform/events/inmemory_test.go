package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSyncRunsHandlersInOrder(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var order []int
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, event Event) error {
		order = append(order, 1)
		return nil
	}))
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, event Event) error {
		order = append(order, 2)
		return nil
	}))

	if err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.event"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("handlers ran out of order: %v", order)
	}
}

func TestPublishSyncStopsOnFirstError(t *testing.T) {
	bus := NewInMemoryBus(nil)
	boom := errors.New("boom")

	var secondRan bool
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, event Event) error {
		return boom
	}))
	bus.Subscribe("test.event", HandlerFunc(func(ctx context.Context, event Event) error {
		secondRan = true
		return nil
	}))

	err := bus.PublishSync(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.event"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected first handler error, got %v", err)
	}
	if secondRan {
		t.Fatal("expected later handlers to be skipped after an error")
	}
}

func TestPublishOnlyReachesMatchingSubscribers(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var wg sync.WaitGroup
	wg.Add(1)
	bus.Subscribe("test.match", HandlerFunc(func(ctx context.Context, event Event) error {
		wg.Done()
		return nil
	}))

	var wrongEvent bool
	bus.Subscribe("test.other", HandlerFunc(func(ctx context.Context, event Event) error {
		wrongEvent = true
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.match"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("matching handler never ran")
	}

	if wrongEvent {
		t.Fatal("handler for a different event name was invoked")
	}
}

func TestPublishRecoversHandlerPanic(t *testing.T) {
	bus := NewInMemoryBus(nil)

	var wg sync.WaitGroup
	wg.Add(2)
	bus.Subscribe("test.panic", HandlerFunc(func(ctx context.Context, event Event) error {
		defer wg.Done()
		panic("handler exploded")
	}))
	bus.Subscribe("test.panic", HandlerFunc(func(ctx context.Context, event Event) error {
		wg.Done()
		return nil
	}))

	bus.Publish(context.Background(), testEvent{BaseEvent: NewBaseEvent(), name: "test.panic"})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handlers did not complete after panic")
	}
}
