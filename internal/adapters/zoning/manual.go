package zoning

import (
	"context"
	"fmt"

	"zonerouter/internal/apperr"
	"zonerouter/internal/domain"
	"zonerouter/internal/geo"
	"zonerouter/internal/ports"
)

// Manual assigns customers to caller-supplied polygons by point-in-ring
// containment, first-match-wins on overlap (spec §4.2 Manual polygons).
type Manual struct{}

// Generate implements ports.ZoningStrategy.
func (Manual) Generate(_ context.Context, req ports.ZoningRequest, _ ports.MatrixProvider) (domain.ZoningResult, error) {
	if len(req.ManualPolygons) == 0 {
		return domain.ZoningResult{}, apperr.New(apperr.KindInvalidInput, "zoning.manual", fmt.Errorf("at least one polygon is required"))
	}
	for _, poly := range req.ManualPolygons {
		if len(poly.Ring) < 3 {
			return domain.ZoningResult{}, apperr.New(apperr.KindInvalidInput, "zoning.manual", fmt.Errorf("polygon %q has fewer than 3 vertices", poly.ZoneID))
		}
	}

	overlaps := findOverlappingPolygons(req.ManualPolygons)

	assignments := make(map[string]string, len(req.Customers))
	members := make(map[string][]domain.Customer, len(req.ManualPolygons))
	var unassigned []string

	for _, c := range req.Customers {
		if !c.Coords.Valid() {
			unassigned = append(unassigned, c.ID)
			continue
		}

		matched := false
		for _, poly := range req.ManualPolygons {
			if geo.PointInRing(c.Coords, poly.Ring) {
				assignments[c.ID] = poly.ZoneID
				members[poly.ZoneID] = append(members[poly.ZoneID], c)
				matched = true
				break
			}
		}
		if !matched {
			unassigned = append(unassigned, c.ID)
		}
	}

	zones := make([]domain.Zone, 0, len(req.ManualPolygons))
	for _, poly := range req.ManualPolygons {
		group := members[poly.ZoneID]
		ids := make([]string, len(group))
		for i, c := range group {
			ids[i] = c.ID
		}
		zones = append(zones, domain.Zone{
			ID:          poly.ZoneID,
			CustomerIDs: ids,
			Polygon:     poly.Ring,
		})
	}

	return domain.ZoningResult{
		City:        req.City,
		Method:      "manual",
		Assignments: assignments,
		Zones:       zones,
		Metadata: map[string]any{
			"unassigned": unassigned,
			"overlaps":   overlaps,
		},
	}, nil
}

type overlapPair struct {
	ZoneA string `json:"zone_a"`
	ZoneB string `json:"zone_b"`
}

// findOverlappingPolygons reports pairs of input polygons whose rings share
// any area, approximated by checking each polygon's vertices against every
// other ring (sufficient to flag overlap for caller review; spec only
// requires overlap pairs to be reported, not a precise intersection region).
func findOverlappingPolygons(polys []ports.ManualPolygon) []overlapPair {
	var overlaps []overlapPair
	for i := 0; i < len(polys); i++ {
		for j := i + 1; j < len(polys); j++ {
			if ringsOverlap(polys[i].Ring, polys[j].Ring) {
				overlaps = append(overlaps, overlapPair{ZoneA: polys[i].ZoneID, ZoneB: polys[j].ZoneID})
			}
		}
	}
	return overlaps
}

func ringsOverlap(a, b []domain.Coordinates) bool {
	for _, v := range a {
		if geo.PointInRing(v, b) {
			return true
		}
	}
	for _, v := range b {
		if geo.PointInRing(v, a) {
			return true
		}
	}
	return false
}
