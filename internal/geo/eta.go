// Package geo holds the pure distance and ETA helpers used by the tracking engine.
package geo

import "math"

const (
	earthRadiusKm = 6371.0

	// DefaultAvgSpeedKmh is the courier speed used for every ETA estimate.
	DefaultAvgSpeedKmh = 25.0

	MinETAMinutes = 1
	MaxETAMinutes = 30
)

// Distance returns the great-circle distance in kilometres between two
// points given in decimal degrees.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// EstimateMinutes converts the distance between two points into whole
// minutes at avgSpeedKmh, rounded up and clamped to [MinETAMinutes, MaxETAMinutes].
func EstimateMinutes(fromLat, fromLng, toLat, toLng, avgSpeedKmh float64) int {
	if avgSpeedKmh <= 0 {
		avgSpeedKmh = DefaultAvgSpeedKmh
	}
	km := Distance(fromLat, fromLng, toLat, toLng)
	minutes := int(math.Ceil(km / avgSpeedKmh * 60))
	return Clamp(minutes, MinETAMinutes, MaxETAMinutes)
}

func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PlanarDistance is the squared euclidean distance in degree space. Good
// enough for picking the nearest of a handful of close waypoints.
func PlanarDistance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := lat2 - lat1
	dLng := lng2 - lng1
	return dLat*dLat + dLng*dLng
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
