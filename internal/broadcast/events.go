package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
)

const (
	EventOrderStatusUpdated      = "OrderStatusUpdated"
	EventDeliveryLocationUpdated = "DeliveryLocationUpdated"
)

// Publisher delivers an event to the subscribers of one order's topic.
// Delivery is best-effort, at most once per connected subscriber.
type Publisher interface {
	Publish(ctx context.Context, orderID int64, ev Event) error
}

// Topic names the channel a client joins to follow one order.
func Topic(orderID int64) string {
	return fmt.Sprintf("order-%d", orderID)
}

// Event is the wire envelope every subscriber receives.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type OrderStatusUpdated struct {
	OrderID   int64     `json:"orderId"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
}

type DeliveryLocationUpdated struct {
	OrderID   int64     `json:"orderId"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	ETA       *int      `json:"eta"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewStatusEvent(p OrderStatusUpdated) (Event, error) {
	return newEvent(EventOrderStatusUpdated, p)
}

func NewLocationEvent(p DeliveryLocationUpdated) (Event, error) {
	return newEvent(EventDeliveryLocationUpdated, p)
}

func newEvent(typ string, payload any) (Event, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, errors.Wrapf(err, "marshal %s", typ)
	}
	return Event{Type: typ, Data: b}, nil
}

// Multi publishes to every publisher and returns the first error.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, orderID int64, ev Event) error {
	var first error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, orderID, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
