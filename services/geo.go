package services

import (
	"math"

	"campusguard/model"
)

const earthRadiusMeters = 6371000.0

// HaversineMeters is the great-circle distance between two points.
func HaversineMeters(a, b model.GeoPoint) float64 {
	lat1 := a.Latitude() * math.Pi / 180
	lat2 := b.Latitude() * math.Pi / 180
	dLat := (b.Latitude() - a.Latitude()) * math.Pi / 180
	dLng := (b.Longitude() - a.Longitude()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}

// RouteDistanceMeters is the distance from location to the straight-line
// route between start and destination: the perpendicular cross-track
// distance when the location projects onto the segment, otherwise the
// distance to the nearer endpoint. Deterministic for a fixed input; the
// planned route is modeled as the single segment start->destination, which
// is the data the session actually carries.
func RouteDistanceMeters(start, destination, location model.GeoPoint) float64 {
	if start.IsZero() && destination.IsZero() {
		return 0
	}
	if start.IsZero() {
		return HaversineMeters(destination, location)
	}
	if destination.IsZero() {
		return HaversineMeters(start, location)
	}

	d13 := HaversineMeters(start, location) / earthRadiusMeters
	theta13 := initialBearing(start, location)
	theta12 := initialBearing(start, destination)

	// A point behind the start of the segment is measured to the start.
	if math.Cos(theta13-theta12) < 0 {
		return HaversineMeters(start, location)
	}

	// Cross-track distance from the great circle through start->destination.
	dxt := math.Asin(math.Sin(d13) * math.Sin(theta13-theta12))

	// Along-track position decides whether the perpendicular foot falls
	// within the segment. Clamp against float error before Acos.
	ratio := math.Cos(d13) / math.Cos(dxt)
	if ratio > 1 {
		ratio = 1
	} else if ratio < -1 {
		ratio = -1
	}
	dat := math.Acos(ratio)
	d12 := HaversineMeters(start, destination) / earthRadiusMeters

	if dat >= d12 {
		return HaversineMeters(destination, location)
	}
	return math.Abs(dxt) * earthRadiusMeters
}

func initialBearing(from, to model.GeoPoint) float64 {
	lat1 := from.Latitude() * math.Pi / 180
	lat2 := to.Latitude() * math.Pi / 180
	dLng := (to.Longitude() - from.Longitude()) * math.Pi / 180

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	return math.Atan2(y, x)
}
