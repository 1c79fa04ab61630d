package ports

import (
	"context"
	"time"

	"zonerouter/internal/domain"
)

// RouteConstraints bounds a routing solve (spec §4.4).
type RouteConstraints struct {
	MaxCustomersPerRoute    int
	MinCustomersPerRoute    int
	MaxRouteDurationMinutes float64
	MaxDistancePerRouteKm   float64
	SoftDistanceTargetKm    float64 // open question (a): soft overage reporting only
}

// RouteAssignment is a caller-supplied group of customers for manual mode.
type RouteAssignment struct {
	RouteID     string
	Day         string
	CustomerIDs []string
}

// SolveRequest is the routing solver's input (spec §4.4).
type SolveRequest struct {
	ZoneID          string
	Customers       []domain.Customer
	Depot           domain.Depot
	Constraints     RouteConstraints
	WorkingDays     []string
	Assignments     []RouteAssignment // nil/empty selects automatic mode
	TimeBudget      time.Duration
	Seed            int64
}

// RoutingSolver converts a zone into day-indexed stop sequences under hard
// and soft constraints. Hosts both full VRP (automatic mode) and per-route
// TSP (manual mode) sub-problems.
type RoutingSolver interface {
	Solve(ctx context.Context, req SolveRequest, matrix MatrixProvider) (domain.RoutingResult, error)
}
