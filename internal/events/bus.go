package events

import (
	"github.com/kelindar/event"
)

// Bus wraps the kelindar/event dispatcher for in-process broadcasting.
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus.
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish delivers an event to all subscribers of its concrete type.
// Usage: bus.Publish(LightPluggedEvent{...})
func (b *Bus) Publish(ev Event) {
	// kelindar/event dispatches on the static type, so each concrete
	// event needs its own case.
	switch e := ev.(type) {
	case LightPluggedEvent:
		event.Publish(b.dispatcher, e)
	case LightUnpluggedEvent:
		event.Publish(b.dispatcher, e)
	case LightFailedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe registers a handler; the handler's parameter type selects
// which events it receives. Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e LightPluggedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(LightPluggedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LightUnpluggedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(LightFailedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		return func() {}
	}
}
