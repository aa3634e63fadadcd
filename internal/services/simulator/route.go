package simulator

import (
	"github.com/BearBump/FoodTrack/internal/geo"
	"github.com/BearBump/FoodTrack/internal/models"
)

// Route is the ordered list of waypoints every courier follows before
// heading for the order's own destination.
type Route []models.Point

// DefaultRoute runs south-west from Connaught Place, New Delhi.
func DefaultRoute() Route {
	return Route{
		{Lat: 28.6328, Lng: 77.2197},
		{Lat: 28.6280, Lng: 77.2150},
		{Lat: 28.6225, Lng: 77.2110},
	}
}

// DefaultDestination is used for orders placed without one.
func DefaultDestination() models.Point {
	return models.Point{Lat: 28.6200, Lng: 77.2100}
}

// Nearest returns the index of the waypoint closest to p.
func (r Route) Nearest(p models.Point) int {
	best := 0
	bestDist := -1.0
	for i, w := range r {
		d := geo.PlanarDistance(p.Lat, p.Lng, w.Lat, w.Lng)
		if bestDist < 0 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func (r Route) pickupPoint() models.Point {
	if len(r) > 1 {
		return r[1]
	}
	return r[len(r)-1]
}
