// Package notify provides a broadcast bus for dashboard lifecycle events.
// Hook executions, config writes, and state changes publish events here;
// the dashboard SSE endpoint subscribes and relays them to clients.
package notify

import (
	"sync"
	"time"
)

// Event types published on the bus.
const (
	EventHookStart     = "hook.start"
	EventHookFinish    = "hook.finish"
	EventHookError     = "hook.error"
	EventConfigChanged = "hook.config_changed"
	EventStateChanged  = "state.changed"
	EventBacklogChange = "improvement.changed"
)

// Event is a single notification delivered to subscribers.
type Event struct {
	Type string         `json:"type"`
	Time time.Time      `json:"time"`
	Data map[string]any `json:"data,omitempty"`
}

// subscriberBuffer is the per-subscriber channel capacity. A slow SSE
// client drops events rather than blocking publishers.
const subscriberBuffer = 16

// Bus fans events out to all subscribers.
type Bus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]struct{})}
}

// Subscribe returns a channel receiving published events.
// The caller must call Unsubscribe when done to prevent leaks.
func (b *Bus) Subscribe() chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel and closes it.
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

// Publish delivers an event to all subscribers. Non-blocking: if a
// subscriber's buffer is full the event is dropped for that subscriber.
func (b *Bus) Publish(evt Event) {
	if evt.Time.IsZero() {
		evt.Time = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
			// Subscriber lagging, drop
		}
	}
}

// Subscribers returns the current subscriber count.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
