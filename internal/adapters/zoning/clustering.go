package zoning

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"zonerouter/internal/apperr"
	"zonerouter/internal/domain"
	"zonerouter/internal/geo"
	"zonerouter/internal/ports"
)

const (
	kmeansEpsilon          = 1e-4 // centroid movement threshold, km
	kmeansMaxIterations    = 100
	defaultMaxSplitIters   = 10
	depotWeightDecayKm     = 20.0
)

// Clustering partitions customers via K-means on an equirectangular
// projection centered on the depot, with optional depot-weighted centroid
// updates and max-customers-per-zone split enforcement (spec §4.2 Clustering).
//
// No library in the retrieval pack exposes a weighted k-means++ routine
// directly usable on a custom 2D projection; this is hand-rolled (see
// DESIGN.md's grounding ledger for the stdlib justification).
type Clustering struct{}

type weightedPoint struct {
	customer domain.Customer
	proj     geo.Point2D
	weight   float64
}

// Generate implements ports.ZoningStrategy.
func (Clustering) Generate(_ context.Context, req ports.ZoningRequest, _ ports.MatrixProvider) (domain.ZoningResult, error) {
	if req.TargetZones <= 0 {
		return domain.ZoningResult{}, apperr.New(apperr.KindInvalidInput, "zoning.clustering", fmt.Errorf("target_zones must be positive, got %d", req.TargetZones))
	}

	projector := geo.NewProjector(req.Depot.Coords)

	points := make([]weightedPoint, 0, len(req.Customers))
	for _, c := range req.Customers {
		if !c.Coords.Valid() {
			continue
		}
		w := 1.0
		if req.DepotWeighting {
			d := geo.Haversine(req.Depot.Coords, c.Coords)
			w = 1.0 / (1.0 + d/depotWeightDecayKm)
		}
		points = append(points, weightedPoint{
			customer: c,
			proj:     projector.Project(c.Coords),
			weight:   w,
		})
	}

	if len(points) == 0 {
		return domain.ZoningResult{City: req.City, Method: "clustering", Assignments: map[string]string{}}, nil
	}

	rng := rand.New(rand.NewSource(req.Seed))

	k := req.TargetZones
	if k > len(points) {
		k = len(points)
	}

	centroids := kmeansPlusPlusInit(points, k, rng)
	assignment := lloyd(points, centroids)

	maxSplitIters := defaultMaxSplitIters
	tolerance := req.Tolerance
	maxPerZone := req.MaxPerZone

	splits := make([]map[string]any, 0)

	if maxPerZone > 0 {
		for iter := 0; iter < maxSplitIters; iter++ {
			clusterID, size, ok := oversizedCluster(assignment, len(centroids), maxPerZone, tolerance)
			if !ok {
				break
			}

			members := make([]weightedPoint, 0, size)
			memberIdx := make([]int, 0, size)
			for i, cid := range assignment {
				if cid == clusterID {
					members = append(members, points[i])
					memberIdx = append(memberIdx, i)
				}
			}

			subCentroids := kmeansPlusPlusInit(members, 2, rng)
			subAssignment := lloyd(members, subCentroids)

			newClusterID := len(centroids)
			centroids = append(centroids, subCentroids[1])
			centroids[clusterID] = subCentroids[0]

			for j, sub := range subAssignment {
				if sub == 1 {
					assignment[memberIdx[j]] = newClusterID
				}
			}

			splits = append(splits, map[string]any{
				"original_cluster": clusterID,
				"size_before":      size,
				"new_cluster":      newClusterID,
			})
		}
	}

	zoneIDs := make([]string, len(centroids))
	for i := range centroids {
		zoneIDs[i] = mintZoneID(req.DepotCityCode3, i+1)
	}

	assignments := make(map[string]string, len(points))
	members := make(map[int][]domain.Customer, len(centroids))
	for i, cid := range assignment {
		assignments[points[i].customer.ID] = zoneIDs[cid]
		members[cid] = append(members[cid], points[i].customer)
	}

	zones := make([]domain.Zone, 0, len(centroids))
	for i, zid := range zoneIDs {
		group := members[i]
		ids := make([]string, len(group))
		pts := make([]domain.Coordinates, len(group))
		for j, c := range group {
			ids[j] = c.ID
			pts[j] = c.Coords
		}

		centroidGeo := projector.Unproject(centroids[i])

		zones = append(zones, domain.Zone{
			ID:          zid,
			CustomerIDs: ids,
			Polygon:     geo.ConvexHull(pts),
			Metadata: map[string]any{
				"centroid_lat": centroidGeo.Lat,
				"centroid_lon": centroidGeo.Lon,
			},
		})
	}

	sort.Slice(zones, func(i, j int) bool { return zones[i].ID < zones[j].ID })

	return domain.ZoningResult{
		City:        req.City,
		Method:      "clustering",
		Assignments: assignments,
		Zones:       zones,
		Metadata: map[string]any{
			"target_zones":    req.TargetZones,
			"cluster_count":   len(centroids),
			"depot_weighting": req.DepotWeighting,
			"splits":          splits,
		},
	}, nil
}

func kmeansPlusPlusInit(points []weightedPoint, k int, rng *rand.Rand) []geo.Point2D {
	if k <= 0 || len(points) == 0 {
		return nil
	}
	if k > len(points) {
		k = len(points)
	}

	centroids := make([]geo.Point2D, 0, k)
	first := points[rng.Intn(len(points))].proj
	centroids = append(centroids, first)

	for len(centroids) < k {
		distSq := make([]float64, len(points))
		var total float64
		for i, p := range points {
			d := nearestCentroidDist(p.proj, centroids)
			distSq[i] = d * d
			total += distSq[i]
		}

		if total == 0 {
			centroids = append(centroids, points[rng.Intn(len(points))].proj)
			continue
		}

		target := rng.Float64() * total
		var cum float64
		chosen := points[len(points)-1].proj
		for i, d := range distSq {
			cum += d
			if cum >= target {
				chosen = points[i].proj
				break
			}
		}
		centroids = append(centroids, chosen)
	}

	return centroids
}

func nearestCentroidDist(p geo.Point2D, centroids []geo.Point2D) float64 {
	best := math.Inf(1)
	for _, c := range centroids {
		if d := p.Distance(c); d < best {
			best = d
		}
	}
	return best
}

// lloyd runs weighted Lloyd's algorithm to convergence or kmeansMaxIterations,
// returning the cluster index assigned to each input point.
func lloyd(points []weightedPoint, centroids []geo.Point2D) []int {
	assignment := make([]int, len(points))
	k := len(centroids)
	if k == 0 {
		return assignment
	}

	for iter := 0; iter < kmeansMaxIterations; iter++ {
		for i, p := range points {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := p.proj.Distance(centroid); d < bestDist {
					best, bestDist = c, d
				}
			}
			assignment[i] = best
		}

		newCentroids := make([]geo.Point2D, k)
		weightSum := make([]float64, k)
		for i, p := range points {
			c := assignment[i]
			newCentroids[c].X += p.proj.X * p.weight
			newCentroids[c].Y += p.proj.Y * p.weight
			weightSum[c] += p.weight
		}

		var maxMove float64
		for c := range newCentroids {
			if weightSum[c] == 0 {
				newCentroids[c] = centroids[c]
				continue
			}
			newCentroids[c].X /= weightSum[c]
			newCentroids[c].Y /= weightSum[c]
			if d := newCentroids[c].Distance(centroids[c]); d > maxMove {
				maxMove = d
			}
		}

		centroids = newCentroids
		if maxMove < kmeansEpsilon {
			break
		}
	}

	return assignment
}

func oversizedCluster(assignment []int, k, maxPerZone int, tolerance float64) (clusterID, size int, ok bool) {
	counts := make([]int, k)
	for _, c := range assignment {
		counts[c]++
	}

	limit := float64(maxPerZone) * (1 + tolerance)

	worst, worstSize := -1, 0
	for c, n := range counts {
		if float64(n) > limit && n > worstSize {
			worst, worstSize = c, n
		}
	}
	if worst < 0 {
		return 0, 0, false
	}
	return worst, worstSize, true
}
