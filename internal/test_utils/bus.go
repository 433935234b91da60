package test_utils

import (
	"sync"

	"github.com/klokku/klokku-calendar/internal/event_bus"
)

// BusRecorder keeps every event published on the subscribed types.
type BusRecorder struct {
	mu     sync.Mutex
	events []event_bus.Event
}

func RecordBus(bus *event_bus.EventBus, types ...event_bus.EventType) *BusRecorder {
	recorder := &BusRecorder{}
	for _, eventType := range types {
		bus.Subscribe(eventType, func(e event_bus.Event) error {
			recorder.mu.Lock()
			defer recorder.mu.Unlock()
			recorder.events = append(recorder.events, e)
			return nil
		})
	}
	return recorder
}

func (r *BusRecorder) Events() []event_bus.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event_bus.Event(nil), r.events...)
}

func (r *BusRecorder) Types() []event_bus.EventType {
	types := make([]event_bus.EventType, 0)
	for _, e := range r.Events() {
		types = append(types, e.Type)
	}
	return types
}
