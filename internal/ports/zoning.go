package ports

import (
	"context"

	"zonerouter/internal/domain"
)

// ZoningRequest carries the parameters common to all four strategies; each
// strategy reads only the fields relevant to it.
type ZoningRequest struct {
	City            string
	DepotCityCode3  string // three-letter depot city code, used to mint zone ids
	Customers       []domain.Customer
	Depot           domain.Depot
	TargetZones     int
	RotationOffset  float64
	Thresholds      []float64 // isochrone minutes, ascending
	MaxPerZone      int
	Tolerance       float64 // max-customers-per-zone tolerance for clustering splits
	DepotWeighting  bool
	Seed            int64
	ManualPolygons  []ManualPolygon
}

// ManualPolygon is one caller-supplied zone boundary for manual mode.
type ManualPolygon struct {
	ZoneID string
	Ring   []domain.Coordinates
}

// ZoningStrategy partitions customers into zones. The four implementations
// (polar, isochrone, clustering, manual) share this one interface; dispatch
// happens by the method field at the orchestrator boundary (spec §9).
type ZoningStrategy interface {
	Generate(ctx context.Context, req ZoningRequest, matrix MatrixProvider) (domain.ZoningResult, error)
}
