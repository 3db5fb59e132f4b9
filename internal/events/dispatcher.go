package events

import (
	"context"
	"sync"
)

// EventHandler consumes one published pipeline event.
type EventHandler func(context.Context, Event) error

// Dispatcher publishes pipeline events to registered sinks. The webhook
// pipeline publishes best-effort; a sink failure never fails the event.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher is a synchronous in-process dispatcher.
type inMemoryDispatcher struct {
	mu    sync.RWMutex
	sinks map[EventType][]EventHandler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		sinks: make(map[EventType][]EventHandler),
	}
}

// Publish invokes every sink registered for the event type. Sink errors are
// swallowed so one misbehaving consumer cannot block the others.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.sinks[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		_ = handler(ctx, event)
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks[eventType] = append(d.sinks[eventType], handler)
}
