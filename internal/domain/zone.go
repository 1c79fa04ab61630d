package domain

// Zone is a disjoint partition of customers produced by a zoning strategy.
// The polygon, when present, is an ordered ring of vertices; callers treat
// the first and last vertex as coincident (the ring is conceptually closed).
type Zone struct {
	ID          string
	CustomerIDs []string
	Polygon     []Coordinates
	Metadata    map[string]any
}

// ZoningResult is the common output contract shared by all four strategies
// (polar, isochrone, clustering, manual polygon).
type ZoningResult struct {
	City        string
	Method      string
	Assignments map[string]string // customer_id -> zone_id
	Zones       []Zone
	Metadata    map[string]any
}

// Counts returns the number of assigned customers per zone, in zone order.
func (r ZoningResult) Counts() []ZoneCount {
	sizes := make(map[string]int, len(r.Zones))
	for _, zid := range r.Assignments {
		sizes[zid]++
	}

	out := make([]ZoneCount, 0, len(r.Zones))
	for _, z := range r.Zones {
		out = append(out, ZoneCount{ZoneID: z.ID, Count: sizes[z.ID]})
	}
	return out
}

// ZoneCount pairs a zone identifier with its assigned customer count.
type ZoneCount struct {
	ZoneID string
	Count  int
}
