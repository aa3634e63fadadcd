package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/BearBump/FoodTrack/internal/broadcast"
	"github.com/BearBump/FoodTrack/internal/broker/messages"
	"github.com/pkg/errors"
)

type rawPublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// EventPublisher is a broadcast.Publisher that ships events to Kafka so a
// process without websocket clients can feed the API's hub.
type EventPublisher struct {
	p     rawPublisher
	topic string
}

func NewEventPublisher(p rawPublisher, topic string) *EventPublisher {
	return &EventPublisher{p: p, topic: topic}
}

func (e *EventPublisher) Publish(ctx context.Context, orderID int64, ev broadcast.Event) error {
	b, err := json.Marshal(messages.TrackingEvent{OrderID: orderID, Event: ev})
	if err != nil {
		return errors.Wrap(err, "marshal tracking event")
	}
	key := []byte(strconv.FormatInt(orderID, 10))
	return e.p.Publish(ctx, e.topic, key, b)
}

// RelayHandler returns a Consume handler that republishes tracking events
// into pub under ctx, normally the consume context. Undecodable messages are
// logged and skipped so one bad record cannot stall the partition.
func RelayHandler(ctx context.Context, pub broadcast.Publisher) func(key, value []byte) error {
	log := slog.With("component", "tracking_relay")
	return func(key, value []byte) error {
		var msg messages.TrackingEvent
		if err := json.Unmarshal(value, &msg); err != nil || msg.OrderID <= 0 || msg.Event.Type == "" {
			log.Warn("skipping malformed tracking event", "key", string(key))
			return nil
		}
		return pub.Publish(ctx, msg.OrderID, msg.Event)
	}
}
