// Package broadcast fans content change events out to connected browsers and,
// through an optional relay, to other server instances.
package broadcast

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	ContentUpdated = "content-updated"
	ContentDeleted = "content-deleted"
	CatalogChanged = "catalog-changed"
)

// Event describes one change to site content.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Page      string    `json:"page,omitempty"`
	Key       string    `json:"key,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event with a fresh ID and the current time.
func NewEvent(eventType, page, key, content string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Page:      page,
		Key:       key,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// Relay forwards events to other instances.
type Relay interface {
	Publish(ctx context.Context, e Event) error
}

// Hub is an in-process publish/subscribe point for events.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	buffer int
	relay  Relay
	remote []func(context.Context, Event)
}

// NewHub creates a Hub whose subscribers each buffer up to buffer events.
// Events for a subscriber with a full buffer are dropped.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{subs: make(map[chan Event]struct{}), buffer: buffer}
}

// SetRelay sets the relay Publish forwards to.
func (h *Hub) SetRelay(r Relay) {
	h.mu.Lock()
	h.relay = r
	h.mu.Unlock()
}

// OnRemote registers fn to run for every event received from another
// instance, before local subscribers see it.
func (h *Hub) OnRemote(fn func(context.Context, Event)) {
	h.mu.Lock()
	h.remote = append(h.remote, fn)
	h.mu.Unlock()
}

// Receive handles an event relayed from another instance.
func (h *Hub) Receive(ctx context.Context, e Event) {
	h.mu.RLock()
	handlers := h.remote
	h.mu.RUnlock()
	for _, fn := range handlers {
		fn(ctx, e)
	}
	h.Deliver(e)
}

// Subscribe registers a new subscriber. Call the returned function to unsubscribe.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of current subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish delivers e to local subscribers and forwards it to the relay.
func (h *Hub) Publish(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	h.Deliver(e)

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()
	if relay != nil {
		return relay.Publish(ctx, e)
	}
	return nil
}

// Deliver sends e to local subscribers only.
func (h *Hub) Deliver(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
