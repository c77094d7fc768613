package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// InMemoryDispatcher runs every subscribed handler on its own goroutine.
// Handlers get a context detached from the publisher's cancellation and
// bounded by the dispatcher timeout. Errors and panics are logged once.
type InMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	logger    *zap.Logger
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewInMemoryDispatcher creates a dispatcher instance. A non-positive timeout
// leaves handler contexts unbounded.
func NewInMemoryDispatcher(logger *zap.Logger, timeout time.Duration) *InMemoryDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
		logger:    logger,
		timeout:   timeout,
	}
}

// Publish schedules handlers for the given event and returns immediately.
func (d *InMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	base := context.WithoutCancel(ctx)
	for _, handler := range handlers {
		d.wg.Add(1)
		go d.run(base, handler, event)
	}
	return nil
}

func (d *InMemoryDispatcher) run(base context.Context, handler EventHandler, event Event) {
	defer d.wg.Done()

	ctx := base
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(base, d.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				zap.String("event_id", event.ID),
				zap.String("event_type", string(event.Type)),
				zap.String("panic", fmt.Sprint(r)))
		}
	}()

	if err := handler(ctx, event); err != nil {
		d.logger.Error("event handler failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("complaint_id", event.ComplaintID),
			zap.Error(err))
	}
}

// Subscribe registers a handler for the given event type.
func (d *InMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Wait blocks until in-flight handlers finish or ctx is done.
func (d *InMemoryDispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
