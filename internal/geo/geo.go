// Package geo contains pure geographic computation helpers.
package geo

import "math"

const earthRadiusKm = 6371.0

// LatLng is a decimal-degree coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HaversineKm returns the great-circle distance in kilometres between two
// points specified in decimal degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := degreesToRadians(lat2 - lat1)
	dLng := degreesToRadians(lng2 - lng1)

	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// MinDistanceKm returns the smallest great-circle distance from p to any of
// the given points. Returns +Inf when points is empty.
func MinDistanceKm(points []LatLng, p LatLng) float64 {
	min := math.Inf(1)
	for _, q := range points {
		if d := HaversineKm(p.Lat, p.Lng, q.Lat, q.Lng); d < min {
			min = d
		}
	}
	return min
}

// detourSpeedKmh is the assumed average speed for side trips off the route.
const detourSpeedKmh = 40.0

// EstimateDetourMinutes estimates the round-trip time in minutes to visit a
// place at the given minimum distance from the route. The second return is
// false when no route points were available to measure against.
func EstimateDetourMinutes(routePoints []LatLng, p LatLng) (int, bool) {
	if len(routePoints) == 0 {
		return 0, false
	}
	minKm := MinDistanceKm(routePoints, p)
	minutes := (2 * minKm / detourSpeedKmh) * 60.0
	return int(math.Round(minutes)), true
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
