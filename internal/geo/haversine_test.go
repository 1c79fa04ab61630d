package geo

import (
	"math"
	"testing"

	"zonerouter/internal/domain"
)

func TestHaversineZeroDistance(t *testing.T) {
	p := domain.Coordinates{Lat: 21.4858, Lon: 39.1925}
	if d := Haversine(p, p); d != 0 {
		t.Fatalf("expected 0, got %v", d)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Riyadh to Jeddah, roughly 860 km apart.
	riyadh := domain.Coordinates{Lat: 24.7136, Lon: 46.6753}
	jeddah := domain.Coordinates{Lat: 21.4858, Lon: 39.1925}

	d := Haversine(riyadh, jeddah)
	if math.Abs(d-860) > 20 {
		t.Fatalf("distance = %v, want ~860km", d)
	}
}

func TestBearingCardinal(t *testing.T) {
	origin := domain.Coordinates{Lat: 0, Lon: 0}
	north := domain.Coordinates{Lat: 1, Lon: 0}

	b := Bearing(origin, north)
	if math.Abs(b-0) > 1e-6 {
		t.Fatalf("bearing = %v, want 0", b)
	}
}

func TestProjectorRoundTrip(t *testing.T) {
	depot := domain.Coordinates{Lat: 21.4858, Lon: 39.1925}
	proj := NewProjector(depot)

	pt := domain.Coordinates{Lat: 21.50, Lon: 39.20}
	back := proj.Unproject(proj.Project(pt))

	if math.Abs(back.Lat-pt.Lat) > 1e-9 || math.Abs(back.Lon-pt.Lon) > 1e-9 {
		t.Fatalf("round trip mismatch: got %+v, want %+v", back, pt)
	}
}
