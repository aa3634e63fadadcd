// Package simulator advances a single order by one tick along a fixed
// delivery route. It holds no state between calls and performs no I/O.
package simulator

import (
	"math/rand"
	"time"

	"github.com/BearBump/FoodTrack/internal/geo"
	"github.com/BearBump/FoodTrack/internal/models"
	"github.com/BearBump/FoodTrack/internal/statemachine"
)

// jitterDeg bounds the per-axis wobble while a courier circles the destination.
const jitterDeg = 0.0005

type Config struct {
	Route              Route
	DefaultDestination *models.Point
	AvgSpeedKmh        float64
}

// Result describes what one Step changed.
type Result struct {
	Order           *models.Order
	StatusChanged   bool
	PositionChanged bool
}

func (r Result) Changed() bool {
	return r.StatusChanged || r.PositionChanged
}

type Simulator struct {
	route       Route
	destination models.Point
	speed       float64
	arrival     ArrivalPolicy
	jitter      Rand
}

func New(cfg Config, arrival ArrivalPolicy) *Simulator {
	if len(cfg.Route) == 0 {
		cfg.Route = DefaultRoute()
	}
	dest := DefaultDestination()
	if cfg.DefaultDestination != nil {
		dest = *cfg.DefaultDestination
	}
	if cfg.AvgSpeedKmh <= 0 {
		cfg.AvgSpeedKmh = geo.DefaultAvgSpeedKmh
	}
	if arrival == nil {
		arrival = NewRandomArrival(nil, DefaultArrivalOneIn)
	}
	return &Simulator{
		route:       cfg.Route,
		destination: dest,
		speed:       cfg.AvgSpeedKmh,
		arrival:     arrival,
		jitter:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithJitterSource replaces the randomness used for near-destination wobble.
func (s *Simulator) WithJitterSource(r Rand) *Simulator {
	if r != nil {
		s.jitter = r
	}
	return s
}

func (s *Simulator) Route() Route { return s.route }

// Step applies one tick to a copy of o. The input order is never modified.
func (s *Simulator) Step(o *models.Order) Result {
	next := o.Clone()
	res := Result{Order: next}

	if statemachine.IsTerminal(next.Status) {
		return res
	}

	if next.Destination == nil {
		d := s.destination
		next.Destination = &d
	}

	switch next.Status {
	case models.OrderStatusPlaced:
		s.moveTo(&res, s.route[0])
		s.advance(&res)
	case models.OrderStatusConfirmed:
		s.advance(&res)
	case models.OrderStatusPreparing:
		s.moveTo(&res, s.route.pickupPoint())
		s.advance(&res)
	case models.OrderStatusOutForDelivery:
		s.drive(&res)
	}

	if !statemachine.IsTerminal(next.Status) && next.Position != nil {
		eta := geo.EstimateMinutes(next.Position.Lat, next.Position.Lng,
			next.Destination.Lat, next.Destination.Lng, s.speed)
		next.ETAMinutes = &eta
	}
	return res
}

func (s *Simulator) drive(res *Result) {
	o := res.Order
	if o.Position == nil {
		s.moveTo(res, s.route.pickupPoint())
		return
	}

	if !s.pastRoute(*o.Position, *o.Destination) {
		idx := s.route.Nearest(*o.Position)
		if idx < len(s.route)-2 {
			s.moveTo(res, s.route[idx+1])
			return
		}
	}

	if s.arrival.Arrive() {
		s.moveTo(res, *o.Destination)
		o.ETAMinutes = models.IntPtr(0)
		s.advance(res)
		return
	}

	s.moveTo(res, models.Point{
		Lat: o.Destination.Lat + s.wobble(),
		Lng: o.Destination.Lng + s.wobble(),
	})
}

// pastRoute reports whether p already sits nearer the destination than the
// final waypoint, i.e. the courier has left the route and is circling the drop.
func (s *Simulator) pastRoute(p, dest models.Point) bool {
	last := s.route[len(s.route)-1]
	toDest := geo.PlanarDistance(p.Lat, p.Lng, dest.Lat, dest.Lng)
	toLast := geo.PlanarDistance(p.Lat, p.Lng, last.Lat, last.Lng)
	return toDest < toLast
}

// wobble returns a value in [-jitterDeg, jitterDeg].
func (s *Simulator) wobble() float64 {
	const steps = 1000
	return (float64(s.jitter.Intn(2*steps+1)) - steps) / steps * jitterDeg
}

func (s *Simulator) moveTo(res *Result, p models.Point) {
	if res.Order.Position != nil && *res.Order.Position == p {
		return
	}
	pos := p
	res.Order.Position = &pos
	res.PositionChanged = true
}

func (s *Simulator) advance(res *Result) {
	next, err := statemachine.Advance(res.Order.Status)
	if err != nil {
		return
	}
	res.Order.Status = next
	res.StatusChanged = true
}
