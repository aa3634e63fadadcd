// Package broadcast is the real-time channel between the tracking engine and
// connected clients. Clients join per-order topics ("order-<id>"); publishers
// push events to every current member of a topic.
package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
)

// Subscriber receives raw event payloads. Deliver must not block: it returns
// false when the payload could not be queued.
type Subscriber interface {
	ID() string
	Deliver(payload []byte) bool
}

// DeliveryObserver is notified about every delivery attempt (metrics hook).
type DeliveryObserver func(delivered bool)

type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[string]Subscriber

	onDelivery DeliveryObserver
	log        *slog.Logger
}

func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[string]Subscriber),
		log:    slog.With("component", "broadcast_hub"),
	}
}

func (h *Hub) WithDeliveryObserver(fn DeliveryObserver) *Hub {
	h.onDelivery = fn
	return h
}

func (h *Hub) Subscribe(topic string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[string]Subscriber)
		h.topics[topic] = subs
	}
	subs[s.ID()] = s
}

func (h *Hub) Unsubscribe(topic string, s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(topic, s.ID())
}

// UnsubscribeAll removes s from every topic (used on disconnect).
func (h *Hub) UnsubscribeAll(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic := range h.topics {
		h.removeLocked(topic, s.ID())
	}
}

func (h *Hub) removeLocked(topic, id string) {
	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, id)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// Subscribers returns the number of members of a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) Publish(ctx context.Context, orderID int64, ev Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	h.PublishRaw(Topic(orderID), raw)
	return nil
}

// PublishRaw hands an already encoded envelope to the topic members.
func (h *Hub) PublishRaw(topic string, raw []byte) {
	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.topics[topic]))
	for _, s := range h.topics[topic] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		ok := s.Deliver(raw)
		if !ok {
			h.log.Warn("subscriber buffer full, event dropped", "topic", topic, "subscriber", s.ID())
		}
		if h.onDelivery != nil {
			h.onDelivery(ok)
		}
	}
}
