package geo

import (
	"math"
	"testing"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	points := []LatLng{
		{0, 0},
		{35.6762, 139.6503},
		{-33.8688, 151.2093},
		{90, 0},
	}
	for _, p := range points {
		if d := Distance(p, p); d != 0 {
			t.Errorf("Distance(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := LatLng{40.7128, -74.0060}  // New York
	b := LatLng{51.5074, -0.1278}   // London
	c := LatLng{-33.8688, 151.2093} // Sydney

	pairs := [][2]LatLng{{a, b}, {b, c}, {a, c}}
	for _, p := range pairs {
		ab := Distance(p[0], p[1])
		ba := Distance(p[1], p[0])
		if math.Abs(ab-ba) > 1e-9 {
			t.Errorf("Distance not symmetric: %v vs %v", ab, ba)
		}
	}
}

func TestDistanceKnownValues(t *testing.T) {
	// New York to London is about 5570 km.
	ny := LatLng{40.7128, -74.0060}
	ldn := LatLng{51.5074, -0.1278}
	d := Distance(ny, ldn)
	if d < 5500 || d > 5620 {
		t.Errorf("NY-London distance = %v km, want ~5570", d)
	}

	// One degree of latitude is about 111.2 km.
	d = Distance(LatLng{0, 0}, LatLng{1, 0})
	if math.Abs(d-111.2) > 1 {
		t.Errorf("1 degree latitude = %v km, want ~111.2", d)
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		lat, lng float64
		want     bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{90.1, 0, false},
		{0, 180.1, false},
		{-91, 0, false},
	}
	for _, c := range cases {
		if got := Valid(c.lat, c.lng); got != c.want {
			t.Errorf("Valid(%v, %v) = %v, want %v", c.lat, c.lng, got, c.want)
		}
	}
}
