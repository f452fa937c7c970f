// Package geo provides great-circle distance math for priest proximity
// search. Inputs are degrees; callers validate coordinate ranges.
package geo

import "math"

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// LatLng is a coordinate pair in degrees.
type LatLng struct {
	Latitude  float64
	Longitude float64
}

// Distance returns the haversine distance between a and b in kilometers.
func Distance(a, b LatLng) float64 {
	dLat := radians(b.Latitude - a.Latitude)
	dLng := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Latitude))*math.Cos(radians(b.Latitude))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Valid reports whether lat/lng are within the usual WGS84 bounds.
func Valid(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
