package messages

import "github.com/BearBump/FoodTrack/internal/broadcast"

// TrackingEvent carries one broadcast event from the worker process to the
// API process. Messages are keyed by order id.
type TrackingEvent struct {
	OrderID int64           `json:"orderId"`
	Event   broadcast.Event `json:"event"`
}
