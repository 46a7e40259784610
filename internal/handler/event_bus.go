// internal/handler/event_bus.go
package handler

import (
	"sync"

	"go.uber.org/zap"

	"digitizer-service/internal/model"
)

// EventBus manages event distribution
type EventBus struct {
	subscribers map[model.EventType][]chan *model.DigitizerEvent
	all         []chan *model.DigitizerEvent
	events      chan *model.DigitizerEvent
	closed      bool
	mutex       sync.RWMutex
	logger      *zap.Logger
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventBus{
		subscribers: make(map[model.EventType][]chan *model.DigitizerEvent),
		events:      make(chan *model.DigitizerEvent, 1000),
		logger:      logger,
	}
}

// Start distributes events until Stop is called
func (eb *EventBus) Start() {
	for event := range eb.events {
		eb.distributeEvent(event)
	}

	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	for _, subs := range eb.subscribers {
		for _, sub := range subs {
			close(sub)
		}
	}
	for _, sub := range eb.all {
		close(sub)
	}
	eb.subscribers = make(map[model.EventType][]chan *model.DigitizerEvent)
	eb.all = nil
}

// Stop ends distribution and closes every subscriber channel
func (eb *EventBus) Stop() {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	if eb.closed {
		return
	}
	eb.closed = true
	close(eb.events)
}

// PublishEvent queues an event without blocking
func (eb *EventBus) PublishEvent(event *model.DigitizerEvent) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	if eb.closed {
		return
	}

	select {
	case eb.events <- event:
	default:
		eb.logger.Warn("Event bus full, dropping event",
			zap.String("event_type", string(event.EventType)),
		)
	}
}

// Subscribe subscribes to events of a specific type
func (eb *EventBus) Subscribe(eventType model.EventType) <-chan *model.DigitizerEvent {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan *model.DigitizerEvent, 100)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
	return subscriber
}

// SubscribeAll subscribes to every event type
func (eb *EventBus) SubscribeAll() <-chan *model.DigitizerEvent {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan *model.DigitizerEvent, 100)
	eb.all = append(eb.all, subscriber)
	return subscriber
}

// distributeEvent distributes an event to subscribers
func (eb *EventBus) distributeEvent(event *model.DigitizerEvent) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	for _, subscriber := range eb.subscribers[event.EventType] {
		select {
		case subscriber <- event:
		default:
			// Subscriber is slow, skip
		}
	}
	for _, subscriber := range eb.all {
		select {
		case subscriber <- event:
		default:
		}
	}
}
