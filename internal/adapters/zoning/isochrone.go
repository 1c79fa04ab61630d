package zoning

import (
	"context"
	"fmt"
	"sort"

	"zonerouter/internal/apperr"
	"zonerouter/internal/domain"
	"zonerouter/internal/geo"
	"zonerouter/internal/ports"
)

const overflowZoneSuffix = "OVF"

// Isochrone partitions customers by travel time from the depot into rings
// bounded by ascending thresholds, with an overflow zone beyond the largest
// threshold (spec §4.2 Isochrone rings).
type Isochrone struct{}

// Generate implements ports.ZoningStrategy.
func (Isochrone) Generate(ctx context.Context, req ports.ZoningRequest, matrix ports.MatrixProvider) (domain.ZoningResult, error) {
	if len(req.Thresholds) == 0 {
		return domain.ZoningResult{}, apperr.New(apperr.KindInvalidInput, "zoning.isochrone", fmt.Errorf("thresholds must be non-empty"))
	}
	for i := 1; i < len(req.Thresholds); i++ {
		if req.Thresholds[i] <= req.Thresholds[i-1] {
			return domain.ZoningResult{}, apperr.New(apperr.KindInvalidInput, "zoning.isochrone", fmt.Errorf("thresholds must be strictly ascending"))
		}
	}

	points := make([]domain.Coordinates, 0, len(req.Customers)+1)
	points = append(points, req.Depot.Coords)
	valid := make([]domain.Customer, 0, len(req.Customers))
	for _, c := range req.Customers {
		if c.Coords.Valid() {
			points = append(points, c.Coords)
			valid = append(valid, c)
		}
	}

	_, dur, degraded, err := matrix.Matrix(ctx, points)
	if err != nil {
		return domain.ZoningResult{}, apperr.New(apperr.KindUnavailable, "zoning.isochrone", err)
	}

	zoneIDs := make([]string, len(req.Thresholds)+1)
	for i := range req.Thresholds {
		zoneIDs[i] = mintZoneID(req.DepotCityCode3, i+1)
	}
	overflowID := req.DepotCityCode3 + overflowZoneSuffix

	assignments := make(map[string]string, len(valid))
	members := make(map[string][]domain.Customer)

	for i, c := range valid {
		tau := dur[0][i+1]
		zid := overflowID
		for ti, threshold := range req.Thresholds {
			if threshold >= tau {
				zid = zoneIDs[ti]
				break
			}
		}
		assignments[c.ID] = zid
		members[zid] = append(members[zid], c)
	}

	zones := make([]domain.Zone, 0, len(req.Thresholds)+1)
	for i, threshold := range req.Thresholds {
		zones = append(zones, buildIsochroneZone(zoneIDs[i], members[zoneIDs[i]], threshold))
	}
	if len(members[overflowID]) > 0 {
		zones = append(zones, buildIsochroneZone(overflowID, members[overflowID], 0))
	}

	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })

	return domain.ZoningResult{
		City:        req.City,
		Method:      "isochrone",
		Assignments: assignments,
		Zones:       zones,
		Metadata: map[string]any{
			"thresholds": req.Thresholds,
			"degraded":   degraded,
		},
	}, nil
}

func buildIsochroneZone(zid string, group []domain.Customer, thresholdMinutes float64) domain.Zone {
	ids := make([]string, len(group))
	pts := make([]domain.Coordinates, len(group))
	for i, c := range group {
		ids[i] = c.ID
		pts[i] = c.Coords
	}

	return domain.Zone{
		ID:          zid,
		CustomerIDs: ids,
		Polygon:     geo.ConvexHull(pts),
		Metadata: map[string]any{
			"threshold_minutes": thresholdMinutes,
		},
	}
}
