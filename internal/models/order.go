package models

import (
	"time"

	"github.com/pkg/errors"
)

type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "Placed"
	OrderStatusConfirmed      OrderStatus = "Confirmed"
	OrderStatusPreparing      OrderStatus = "Preparing"
	OrderStatusOutForDelivery OrderStatus = "OutForDelivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
	OrderStatusCancelled      OrderStatus = "Cancelled"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation failed")
)

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

type Order struct {
	ID           int64       `json:"id"`
	UserID       int64       `json:"userId"`
	CustomerName string      `json:"customerName"`
	Item         string      `json:"item"`
	Status       OrderStatus `json:"status"`
	Position     *Point      `json:"position,omitempty"`
	Destination  *Point      `json:"destination,omitempty"`
	ETAMinutes   *int        `json:"eta"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Clone returns a deep copy, so simulation never aliases a stored snapshot.
func (o *Order) Clone() *Order {
	c := *o
	if o.Position != nil {
		p := *o.Position
		c.Position = &p
	}
	if o.Destination != nil {
		d := *o.Destination
		c.Destination = &d
	}
	if o.ETAMinutes != nil {
		e := *o.ETAMinutes
		c.ETAMinutes = &e
	}
	return &c
}

type OrderHistory struct {
	ID        int64       `json:"id"`
	OrderID   int64       `json:"orderId"`
	Status    OrderStatus `json:"status"`
	Position  *Point      `json:"position,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// HistoryFor snapshots the order's current status and position.
func HistoryFor(o *Order, at time.Time) *OrderHistory {
	h := &OrderHistory{
		OrderID:   o.ID,
		Status:    o.Status,
		CreatedAt: at,
	}
	if o.Position != nil {
		p := *o.Position
		h.Position = &p
	}
	return h
}

type PlaceOrderInput struct {
	UserID       int64
	CustomerName string
	Item         string
	Destination  *Point
}

type Recommendation struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

// OrderUpdate is one order write plus the history row that records it.
type OrderUpdate struct {
	Order   *Order
	History *OrderHistory
}

func IntPtr(v int) *int { return &v }
