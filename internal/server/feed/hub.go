// Package feed implements the in-process change-notification hub backing the
// realtime synchronization contract: subscribers register a collection plus
// an equality filter and receive an event for every matching insert, update
// or delete. Consumers are expected to reload the whole affected set on any
// event, so delivery is at-most-once per subscriber and order-independent.
package feed

import (
	"context"
	"sync"

	"github.com/askelund/proofdeck/internal/logging"
)

// Operation types carried on events.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Event describes one change to a persisted record.
type Event struct {
	Collection string `json:"collection"`
	Op         string `json:"op"`
	RecordID   string `json:"record_id"`
	// Fields holds the equality-filterable fields of the changed record
	// (e.g. project_id for reviews, review_id for comments).
	Fields map[string]string `json:"fields,omitempty"`
}

// Filter scopes a subscription. Field == "" subscribes to the whole
// collection. Field == "id" matches against the record id.
type Filter struct {
	Collection string
	Field      string
	Value      string
}

// Matches reports whether e should be delivered to a subscriber holding f.
func (f Filter) Matches(e Event) bool {
	if f.Collection != e.Collection {
		return false
	}
	if f.Field == "" {
		return true
	}
	if f.Field == "id" {
		return e.RecordID == f.Value
	}
	return e.Fields[f.Field] == f.Value
}

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls this far behind loses events; the next delivered event still triggers
// a full reload, so nothing is permanently missed.
const subscriberBuffer = 16

// Subscription is one registered listener. Events arrive on C until the
// subscription's context is cancelled, after which C is closed.
type Subscription struct {
	C      <-chan Event
	ch     chan Event
	filter Filter
}

// Hub fans change events out to scoped subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	logger logging.Logger
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		logger: logger.With("module", "feed"),
	}
}

// Subscribe registers a listener for events matching filter. The subscription
// is torn down when ctx is cancelled; its channel is closed so ranging
// consumers terminate on every exit path.
func (h *Hub) Subscribe(ctx context.Context, filter Filter) *Subscription {
	ch := make(chan Event, subscriberBuffer)
	sub := &Subscription{C: ch, ch: ch, filter: filter}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.unsubscribe(sub)
	}()

	return sub
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.ch)
	}
}

// Publish delivers e to every matching subscriber without blocking the
// caller. A subscriber with a full buffer skips this event (slow consumer
// shedding).
func (h *Hub) Publish(ctx context.Context, e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		if !sub.filter.Matches(e) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
			h.logger.Warn(ctx, "dropping event for slow subscriber",
				"collection", e.Collection, "op", e.Op, "record_id", e.RecordID)
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
