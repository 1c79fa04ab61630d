package zoning

import (
	"context"
	"fmt"
	"math"

	"zonerouter/internal/apperr"
	"zonerouter/internal/domain"
	"zonerouter/internal/geo"
	"zonerouter/internal/ports"
)

// Polar partitions customers into target_zones equal-width bearing sectors
// from the depot, rotated by rotation_offset degrees (spec §4.2 Polar sectors).
type Polar struct{}

// Generate implements ports.ZoningStrategy.
func (Polar) Generate(_ context.Context, req ports.ZoningRequest, _ ports.MatrixProvider) (domain.ZoningResult, error) {
	if req.TargetZones <= 0 {
		return domain.ZoningResult{}, apperr.New(apperr.KindInvalidInput, "zoning.polar", fmt.Errorf("target_zones must be positive, got %d", req.TargetZones))
	}

	sectorWidth := 360.0 / float64(req.TargetZones)

	zoneIDs := make([]string, req.TargetZones)
	for i := 0; i < req.TargetZones; i++ {
		zoneIDs[i] = mintZoneID(req.DepotCityCode3, i+1)
	}

	assignments := make(map[string]string, len(req.Customers))
	members := make(map[string][]domain.Customer, req.TargetZones)
	maxDist := make(map[string]float64, req.TargetZones)

	for _, c := range req.Customers {
		if !c.Coords.Valid() {
			continue
		}

		var sector int
		if req.TargetZones == 1 {
			sector = 0
		} else {
			theta := geo.Bearing(req.Depot.Coords, c.Coords)
			norm := math.Mod(theta-req.RotationOffset+360, 360)
			sector = int(norm / sectorWidth)
			if sector >= req.TargetZones {
				sector = req.TargetZones - 1
			}
		}

		zid := zoneIDs[sector]
		assignments[c.ID] = zid
		members[zid] = append(members[zid], c)

		d := geo.Haversine(req.Depot.Coords, c.Coords)
		if d > maxDist[zid] {
			maxDist[zid] = d
		}
	}

	zones := make([]domain.Zone, 0, req.TargetZones)
	for i, zid := range zoneIDs {
		group := members[zid]
		ids := make([]string, len(group))
		for j, c := range group {
			ids[j] = c.ID
		}

		var polygon []domain.Coordinates
		if req.TargetZones == 1 {
			pts := make([]domain.Coordinates, len(group))
			for j, c := range group {
				pts[j] = c.Coords
			}
			polygon = geo.ConvexHull(pts)
		} else {
			polygon = sectorPolygon(req.Depot.Coords, req.RotationOffset+float64(i)*sectorWidth, sectorWidth, maxDist[zid])
		}

		zones = append(zones, domain.Zone{
			ID:          zid,
			CustomerIDs: ids,
			Polygon:     polygon,
			Metadata: map[string]any{
				"sector_start_deg": math.Mod(req.RotationOffset+float64(i)*sectorWidth, 360),
				"sector_width_deg": sectorWidth,
			},
		})
	}

	return domain.ZoningResult{
		City:        req.City,
		Method:      "polar",
		Assignments: assignments,
		Zones:       zones,
		Metadata: map[string]any{
			"target_zones":    req.TargetZones,
			"rotation_offset": req.RotationOffset,
		},
	}, nil
}

// sectorPolygon builds depot + two radial rays to maxDistKm, chord-approximating
// the arc between them (spec §4.2: "arc approximated by chord").
func sectorPolygon(depot domain.Coordinates, startBearing, width, maxDistKm float64) []domain.Coordinates {
	if maxDistKm <= 0 {
		return nil
	}
	left := geo.Destination(depot, startBearing, maxDistKm)
	right := geo.Destination(depot, startBearing+width, maxDistKm)
	return []domain.Coordinates{depot, left, right, depot}
}
