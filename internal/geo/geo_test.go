package geo

import (
	"math"
	"testing"
)

// Ho Chi Minh City center, the app's default origin.
const (
	hcmLat = 10.8231
	hcmLng = 106.6297
)

func TestBoundingBoxContainsCenter(t *testing.T) {
	box := NewBoundingBox(hcmLat, hcmLng, 10)
	if !box.Contains(hcmLat, hcmLng) {
		t.Error("box does not contain its own center")
	}
}

func TestBoundingBoxExcludesFarPoint(t *testing.T) {
	box := NewBoundingBox(hcmLat, hcmLng, 10)
	// Hanoi is over 1000 km away.
	if box.Contains(21.0278, 105.8342) {
		t.Error("10 km box contains a point 1000+ km away")
	}
}

func TestBoundingBoxDeltas(t *testing.T) {
	radius := 10.0
	box := NewBoundingBox(hcmLat, hcmLng, radius)

	latDelta := box.MaxLat - hcmLat
	wantLat := radius / 111.32
	if math.Abs(latDelta-wantLat) > 1e-9 {
		t.Errorf("lat delta = %v, want %v", latDelta, wantLat)
	}

	lngDelta := box.MaxLng - hcmLng
	wantLng := radius / (111.32 * math.Cos(hcmLat*math.Pi/180))
	if math.Abs(lngDelta-wantLng) > 1e-9 {
		t.Errorf("lng delta = %v, want %v", lngDelta, wantLng)
	}
	// Near the equator the deltas are close, but longitude is always wider.
	if lngDelta <= latDelta {
		t.Error("lng delta should exceed lat delta off the equator")
	}

	if box.MinLat != hcmLat-latDelta || box.MinLng != hcmLng-lngDelta {
		t.Error("box is not symmetric around the center")
	}
}

func TestHaversineZeroDistance(t *testing.T) {
	if d := HaversineKm(hcmLat, hcmLng, hcmLat, hcmLng); d != 0 {
		t.Errorf("distance to self = %v, want 0", d)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// HCMC to Hanoi is about 1140-1160 km great-circle.
	d := HaversineKm(hcmLat, hcmLng, 21.0278, 105.8342)
	if d < 1100 || d > 1200 {
		t.Errorf("HCMC-Hanoi = %v km, want about 1140", d)
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := HaversineKm(hcmLat, hcmLng, 11.5, 107.0)
	b := HaversineKm(11.5, 107.0, hcmLat, hcmLng)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("asymmetric distance: %v vs %v", a, b)
	}
}
