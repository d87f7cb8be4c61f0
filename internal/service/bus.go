package service

import "sync"

// Resources carried by Event.Resource.
const (
	ResourceStore     = "store"
	ResourceSearch    = "search"
	ResourceSelection = "selection"
	ResourceFlights   = "flights"
	ResourceTick      = "tick"
	ResourceCamera    = "camera"
)

// Event represents a globe state change.
type Event struct {
	Resource string // e.g. "selection"
	Action   string // "updated", "cleared", "loaded", ...
	ID       string // entity or category the change applies to

	Tick   uint64         // set for tick events
	Camera *CameraCommand // set for camera events
}

// EventBus is a simple fan-out pub/sub for state change events.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all subscribers (non-blocking).
func (b *EventBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
			// subscriber too slow, skip
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

// Subscribers returns the current subscriber count.
func (b *EventBus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
