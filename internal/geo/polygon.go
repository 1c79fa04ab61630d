package geo

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/convexhull"
	"github.com/paulmach/orb/planar"

	"zonerouter/internal/domain"
)

// ToRing converts a coordinate ring into an orb.Ring, closing it if the
// caller supplied an open ring (first point != last point).
func ToRing(vertices []domain.Coordinates) orb.Ring {
	ring := make(orb.Ring, 0, len(vertices)+1)
	for _, v := range vertices {
		ring = append(ring, orb.Point{v.Lon, v.Lat})
	}
	if len(ring) > 0 && !ring[0].Equal(ring[len(ring)-1]) {
		ring = append(ring, ring[0])
	}
	return ring
}

// FromRing converts an orb.Ring back into a Coordinates slice.
func FromRing(ring orb.Ring) []domain.Coordinates {
	out := make([]domain.Coordinates, 0, len(ring))
	for _, p := range ring {
		out = append(out, domain.Coordinates{Lat: p.Lat(), Lon: p.Lon()})
	}
	return out
}

// PointInRing reports whether pt lies inside the closed ring using ray
// casting. No self-intersection is assumed of the input (spec §3).
func PointInRing(pt domain.Coordinates, vertices []domain.Coordinates) bool {
	if len(vertices) < 3 {
		return false
	}
	ring := ToRing(vertices)
	return planar.RingContains(ring, orb.Point{pt.Lon, pt.Lat})
}

// ConvexHull returns the convex hull ring of a set of points.
func ConvexHull(points []domain.Coordinates) []domain.Coordinates {
	if len(points) == 0 {
		return nil
	}
	if len(points) < 3 {
		return append([]domain.Coordinates{}, points...)
	}

	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, orb.Point{p.Lon, p.Lat})
	}

	hull := convexhull.New(mp)
	ring, ok := hull.(orb.Ring)
	if !ok {
		// convexhull.New degenerates to a Point/LineString for <3 distinct points.
		return append([]domain.Coordinates{}, points...)
	}
	return FromRing(ring)
}
