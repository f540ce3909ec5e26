// Package events delivers domain events to in-process handlers
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/orbitfit/mealplan/internal/domain/shared"
	"github.com/orbitfit/mealplan/internal/ports/outbound"
)

// Recorder counts published events
type Recorder interface {
	RecordEvent(name string)
}

// Dispatcher is the in-process EventPublisher. Handler failures are logged
// and never reach the caller: events are published after the state change
// is already stored.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	all      []shared.EventHandler
	recorder Recorder
	log      *zap.Logger
}

var _ outbound.EventPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. recorder may be nil.
func NewDispatcher(log *zap.Logger, recorder Recorder) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]shared.EventHandler),
		recorder: recorder,
		log:      log.Named("events"),
	}
}

// Register adds a handler for one event name
func (d *Dispatcher) Register(event string, handler shared.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], handler)
	d.log.Debug("Registered event handler", zap.String("event", event))
}

// RegisterAll adds a handler that receives every event
func (d *Dispatcher) RegisterAll(handler shared.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.all = append(d.all, handler)
}

// Publish delivers events in order to the matching handlers
func (d *Dispatcher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		name := event.EventName()
		if d.recorder != nil {
			d.recorder.RecordEvent(name)
		}

		d.mu.RLock()
		handlers := make([]shared.EventHandler, 0, len(d.all)+len(d.handlers[name]))
		handlers = append(handlers, d.all...)
		handlers = append(handlers, d.handlers[name]...)
		d.mu.RUnlock()

		if len(handlers) == 0 {
			d.log.Debug("No handlers registered for event", zap.String("event", name))
			continue
		}

		for _, handler := range handlers {
			if err := handler(ctx, event); err != nil {
				d.log.Error("Failed to handle event",
					zap.String("event", name),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// LogHandler writes every event to the log
func LogHandler(log *zap.Logger) shared.EventHandler {
	return func(ctx context.Context, event shared.DomainEvent) error {
		log.Info("Domain event",
			zap.String("event", event.EventName()),
			zap.Time("occurred_at", event.OccurredAt()),
			zap.Any("payload", event),
		)
		return nil
	}
}
