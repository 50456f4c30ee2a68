package events

import (
	"sync"
)

// EventHandler defines a function type where its input type is the generic type.
type EventHandler[T any] func(T)

// EventEmitter describes a provider which can subscribe EventHandler methods for callback when the event type (generic)
// is published. It additionally provides methods for publishing events. Subscribing and publishing are safe for
// concurrent use.
type EventEmitter[T any] struct {
	// subscriptions defines the EventHandler methods which should be invoked when a new event is published to this
	// emitter.
	subscriptions []EventHandler[T]

	// subscriptionsLock guards subscriptions
	subscriptionsLock sync.RWMutex
}

// Publish emits the provided event by calling every EventHandler subscribed, in subscription order.
func (e *EventEmitter[T]) Publish(event T) {
	e.subscriptionsLock.RLock()
	subscriptions := e.subscriptions
	e.subscriptionsLock.RUnlock()

	for _, subscription := range subscriptions {
		subscription(event)
	}
}

// Subscribe adds an EventHandler to the list of subscribed EventHandler objects for this emitter. When an event is
// published, the callback will be triggered with the event data.
func (e *EventEmitter[T]) Subscribe(callback EventHandler[T]) {
	e.subscriptionsLock.Lock()
	defer e.subscriptionsLock.Unlock()
	e.subscriptions = append(e.subscriptions, callback)
}
