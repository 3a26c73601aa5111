package events

import (
	"sync"
	"time"
)

// Handler receives events from the bus
type Handler func(Event)

// Bus provides event distribution across components.
// Events are delivered in emit order on a single dispatch goroutine.
type Bus struct {
	Capacity int

	events   chan Event
	mu       sync.RWMutex
	handlers []Handler
	done     chan struct{}
	closeMu  sync.Mutex
	closed   bool
	now      func() time.Time
}

// NewBus creates a new event bus with the specified capacity
func NewBus(capacity int) *Bus {
	b := &Bus{
		Capacity: capacity,
		events:   make(chan Event, capacity),
		done:     make(chan struct{}),
		now:      time.Now,
	}
	go b.dispatch()
	return b
}

// Subscribe registers a handler for all subsequent events
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Emit stamps the event time and queues it for delivery.
// Emit on a nil or closed bus is a no-op.
func (b *Bus) Emit(e Event) {
	if b == nil {
		return
	}
	b.closeMu.Lock()
	defer b.closeMu.Unlock()
	if b.closed {
		return
	}
	if e.Time.IsZero() {
		e.Time = b.now()
	}
	b.events <- e
}

// Close stops accepting events and waits for queued events to be delivered
func (b *Bus) Close() error {
	b.closeMu.Lock()
	if b.closed {
		b.closeMu.Unlock()
		return nil
	}
	b.closed = true
	close(b.events)
	b.closeMu.Unlock()

	<-b.done
	return nil
}

func (b *Bus) dispatch() {
	defer close(b.done)
	for e := range b.events {
		b.mu.RLock()
		handlers := make([]Handler, len(b.handlers))
		copy(handlers, b.handlers)
		b.mu.RUnlock()

		for _, h := range handlers {
			h(e)
		}
	}
}
