package zoning

import (
	"math"
	"sort"

	"zonerouter/internal/domain"
	"zonerouter/internal/geo"
)

const defaultBalanceTolerance = 0.20

// Transfer records one customer move performed by Balance.
type Transfer struct {
	CustomerID string
	FromZone   string
	ToZone     string
	DistanceKm float64
}

// Balance redistributes customers across zones until every zone's count
// lies within a tolerance band around the mean, generalizing the teacher's
// sort-and-chunk distance-band assignment into a move-based loop (spec
// §4.3). customers must be the same set that produced result (Balance needs
// their coordinates, which ZoningResult does not carry). It returns the
// balanced result plus the applied transfers; ties in candidate selection
// break on customer id ascending, per the balancing loop's redesigned
// tie-break (spec §9 open question (b)).
func Balance(result domain.ZoningResult, customers []domain.Customer, depot domain.Depot, tolerance float64) (domain.ZoningResult, []Transfer) {
	if tolerance <= 0 {
		tolerance = defaultBalanceTolerance
	}

	coordsByID := make(map[string]domain.Coordinates, len(customers))
	for _, c := range customers {
		coordsByID[c.ID] = c.Coords
	}

	assignments := make(map[string]string, len(result.Assignments))
	for k, v := range result.Assignments {
		assignments[k] = v
	}

	totalAssigned := len(assignments)
	zoneCount := len(result.Zones)
	if zoneCount == 0 || totalAssigned == 0 {
		return result, nil
	}

	zoneMembers := make(map[string][]string, zoneCount)
	for cid, zid := range assignments {
		zoneMembers[zid] = append(zoneMembers[zid], cid)
	}

	avg := float64(totalAssigned) / float64(zoneCount)
	lower := avg * (1 - tolerance)
	upper := avg * (1 + tolerance)

	counts := make(map[string]int, zoneCount)
	for zid, members := range zoneMembers {
		counts[zid] = len(members)
	}

	countsBefore := snapshotCounts(result.Zones, counts)

	var transfers []Transfer
	maxIterations := totalAssigned

	for iter := 0; iter < maxIterations; iter++ {
		source, ok := pickSource(result.Zones, counts, upper)
		if !ok {
			break
		}
		recipient, ok := pickRecipient(result.Zones, counts, lower)
		if !ok {
			break
		}

		centroid := zoneCentroid(zoneMembers[recipient], depot.Coords, coordsByID)

		cust, dist, ok := nearestToCentroid(zoneMembers[source], centroid, coordsByID)
		if !ok {
			break
		}

		assignments[cust] = recipient
		counts[source]--
		counts[recipient]++

		zoneMembers[source] = removeID(zoneMembers[source], cust)
		zoneMembers[recipient] = append(zoneMembers[recipient], cust)

		transfers = append(transfers, Transfer{CustomerID: cust, FromZone: source, ToZone: recipient, DistanceKm: dist})
	}

	countsAfter := snapshotCounts(result.Zones, counts)

	out := result
	out.Assignments = assignments
	zones := make([]domain.Zone, len(result.Zones))
	for i, z := range result.Zones {
		z.CustomerIDs = append([]string(nil), zoneMembers[z.ID]...)
		sort.Strings(z.CustomerIDs)
		zones[i] = z
	}
	out.Zones = zones
	meta := make(map[string]any, len(result.Metadata)+4)
	for k, v := range result.Metadata {
		meta[k] = v
	}
	meta["counts_before"] = countsBefore
	meta["counts_after"] = countsAfter
	meta["transfers"] = transfers
	meta["tolerance"] = tolerance
	out.Metadata = meta

	return out, transfers
}

func snapshotCounts(zones []domain.Zone, counts map[string]int) []domain.ZoneCount {
	out := make([]domain.ZoneCount, 0, len(zones))
	for _, z := range zones {
		out = append(out, domain.ZoneCount{ZoneID: z.ID, Count: counts[z.ID]})
	}
	return out
}

func pickSource(zones []domain.Zone, counts map[string]int, upper float64) (string, bool) {
	best, bestCount := "", -1
	for _, z := range zones {
		n := counts[z.ID]
		if float64(n) > upper && n > bestCount {
			best, bestCount = z.ID, n
		}
	}
	return best, best != ""
}

func pickRecipient(zones []domain.Zone, counts map[string]int, lower float64) (string, bool) {
	best, bestCount := "", int(^uint(0)>>1)
	for _, z := range zones {
		n := counts[z.ID]
		if float64(n) < lower && n < bestCount {
			best, bestCount = z.ID, n
		}
	}
	return best, best != ""
}

func zoneCentroid(memberIDs []string, depot domain.Coordinates, coordsByID map[string]domain.Coordinates) domain.Coordinates {
	if len(memberIDs) == 0 {
		return depot
	}
	var sumLat, sumLon float64
	for _, id := range memberIDs {
		c := coordsByID[id]
		sumLat += c.Lat
		sumLon += c.Lon
	}
	n := float64(len(memberIDs))
	return domain.Coordinates{Lat: sumLat / n, Lon: sumLon / n}
}

// nearestToCentroid picks the candidate minimizing haversine distance to
// centroid, breaking ties by ascending customer id.
func nearestToCentroid(candidateIDs []string, centroid domain.Coordinates, coordsByID map[string]domain.Coordinates) (string, float64, bool) {
	if len(candidateIDs) == 0 {
		return "", 0, false
	}

	type scored struct {
		id   string
		dist float64
	}
	scoredCandidates := make([]scored, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		scoredCandidates = append(scoredCandidates, scored{id: id, dist: geo.Haversine(coordsByID[id], centroid)})
	}

	sort.Slice(scoredCandidates, func(i, j int) bool {
		if math.Abs(scoredCandidates[i].dist-scoredCandidates[j].dist) < 1e-9 {
			return scoredCandidates[i].id < scoredCandidates[j].id
		}
		return scoredCandidates[i].dist < scoredCandidates[j].dist
	})

	best := scoredCandidates[0]
	return best.id, best.dist, true
}

func removeID(ids []string, target string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
