package geo

import (
	"math"

	"zonerouter/internal/domain"
)

// Point2D is a metric-preserving local Cartesian coordinate, in km from the
// projection's reference point.
type Point2D struct {
	X, Y float64
}

// Projector maps (lat, lon) to a local Cartesian plane centered on a
// reference point (conventionally the depot) using an equirectangular
// projection: 1° lat ≈ 111.32 km, 1° lon ≈ 111.32·cos(φ_ref) km. It is
// metric-preserving only near the reference point — never reuse one
// Projector's plane across cities.
type Projector struct {
	ref      domain.Coordinates
	lonScale float64
}

const kmPerDegree = 111.32

// NewProjector builds a Projector centered on ref.
func NewProjector(ref domain.Coordinates) Projector {
	return Projector{
		ref:      ref,
		lonScale: kmPerDegree * math.Cos(ref.Lat*math.Pi/180),
	}
}

// Project converts a geographic coordinate to the local Cartesian plane.
func (p Projector) Project(c domain.Coordinates) Point2D {
	return Point2D{
		X: (c.Lon - p.ref.Lon) * p.lonScale,
		Y: (c.Lat - p.ref.Lat) * kmPerDegree,
	}
}

// Unproject converts a local Cartesian point back to (lat, lon). Used when
// a strategy needs to report a centroid computed on the projected plane in
// geographic terms.
func (p Projector) Unproject(pt Point2D) domain.Coordinates {
	return domain.Coordinates{
		Lat: p.ref.Lat + pt.Y/kmPerDegree,
		Lon: p.ref.Lon + pt.X/p.lonScale,
	}
}

// Distance returns the Euclidean distance between two projected points, in km.
func (pt Point2D) Distance(other Point2D) float64 {
	dx := pt.X - other.X
	dy := pt.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}
