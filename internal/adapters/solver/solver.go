// Package solver implements the routing solver contract (spec §4.4):
// automatic-mode VRP via nextmv-io/sdk/route, manual-mode per-route TSP via
// katalvlaran/lvlath/tsp, and the shared arrival-time/violation bookkeeping
// both modes feed through. Grounded on the teacher's NearestNeighborRoute /
// PlanRoute accumulation loop, generalized from a single greedy route to
// solver-produced stop sequences.
package solver

import (
	"context"
	"math"
	"time"

	"zonerouter/internal/apperr"
	"zonerouter/internal/domain"
	"zonerouter/internal/ports"
)

// Solver implements ports.RoutingSolver, dispatching to automatic (VRP) or
// manual (TSP) mode by whether the caller supplied route pre-assignments.
type Solver struct {
	DefaultTimeBudgetSeconds int
}

// NewSolver builds a Solver with a default time budget used when the caller
// leaves SolveRequest.TimeBudget unset.
func NewSolver(defaultTimeBudgetSeconds int) *Solver {
	if defaultTimeBudgetSeconds <= 0 {
		defaultTimeBudgetSeconds = 10
	}
	return &Solver{DefaultTimeBudgetSeconds: defaultTimeBudgetSeconds}
}

// Solve implements ports.RoutingSolver.
func (s *Solver) Solve(ctx context.Context, req ports.SolveRequest, matrix ports.MatrixProvider) (domain.RoutingResult, error) {
	if len(req.Customers) == 0 {
		return domain.RoutingResult{}, apperr.New(apperr.KindInvalidInput, "solver.Solve", errNoCustomers)
	}

	if len(req.Assignments) > 0 {
		return s.solveManual(ctx, req, matrix)
	}
	return s.solveAutomatic(ctx, req, matrix)
}

var errNoCustomers = errInvalidInput("solve request has no customers")

type errInvalidInput string

func (e errInvalidInput) Error() string { return string(e) }

// accumulateStops converts a solver tour (depot at index 0, customer indices
// 1..k) into a domain.Route, accumulating arrival time and arc distance the
// same way the teacher's greedy loop does, and recording violations
// (spec §4.4 constraint semantics): soft-distance and min-customers are
// reporting-only, but max_route_duration_minutes and max_distance_per_route_km
// are hard — exceeding either is returned as a hard violation so the caller
// can fail the instance (spec §7 "which dimension exceeded and by how much").
func accumulateStops(
	routeID, day string,
	tour []int,
	customerIDs []string,
	dist, dur [][]float64,
	constraints ports.RouteConstraints,
) (domain.Route, bool) {
	stops := make([]domain.Stop, 0, len(tour))

	var totalDist, totalDur float64
	prev := 0 // depot index in the sub-matrix

	seq := 1
	for _, idx := range tour {
		if idx == 0 {
			continue // depot occurrences (start/end) are implicit, not stops
		}
		arc := dist[prev][idx]
		totalDist += arc
		totalDur += dur[prev][idx]

		stops = append(stops, domain.Stop{
			CustomerID:         customerIDs[idx-1],
			Sequence:           seq,
			ArrivalMin:         totalDur,
			DistanceFromPrevKm: arc,
		})
		seq++
		prev = idx
	}

	violations := make(map[string]float64)
	if constraints.SoftDistanceTargetKm > 0 && totalDist > constraints.SoftDistanceTargetKm {
		violations["distance_km"] = totalDist - constraints.SoftDistanceTargetKm
	}
	if constraints.MinCustomersPerRoute > 0 && len(stops) < constraints.MinCustomersPerRoute {
		violations["min_customers"] = float64(constraints.MinCustomersPerRoute - len(stops))
	}

	// The hard caps apply to the completed route, so they also count the
	// closing leg from the last stop back to the depot; the reported totals
	// cover the stops only (they equal the sum of DistanceFromPrevKm).
	tourDist, tourDur := totalDist, totalDur
	if prev != 0 {
		tourDist += dist[prev][0]
		tourDur += dur[prev][0]
	}

	hardViolated := false
	if constraints.MaxRouteDurationMinutes > 0 && tourDur > constraints.MaxRouteDurationMinutes {
		violations["max_route_duration_minutes"] = tourDur - constraints.MaxRouteDurationMinutes
		hardViolated = true
	}
	if constraints.MaxDistancePerRouteKm > 0 && tourDist > constraints.MaxDistancePerRouteKm {
		violations["max_distance_per_route_km"] = tourDist - constraints.MaxDistancePerRouteKm
		hardViolated = true
	}

	return domain.Route{
		ID:               routeID,
		Day:              day,
		Stops:            stops,
		TotalDistanceKm:  totalDist,
		TotalDurationMin: totalDur,
		Violations:       violations,
	}, hardViolated
}

// worstStatus picks the instance-level status across every produced route,
// in order of severity: an infeasible or timed-out route dominates the
// whole result (spec §4.4, §7).
func worstStatus(statuses []domain.SolverStatus) domain.SolverStatus {
	rank := map[domain.SolverStatus]int{
		domain.StatusOptimal:    0,
		domain.StatusFeasible:   1,
		domain.StatusTimeout:    2,
		domain.StatusInfeasible: 3,
	}

	worst := domain.StatusOptimal
	for _, s := range statuses {
		if rank[s] > rank[worst] {
			worst = s
		}
	}
	return worst
}

func workingDay(workingDays []string, routeIndex int) string {
	if len(workingDays) == 0 {
		return ""
	}
	return workingDays[routeIndex%len(workingDays)]
}

func defaultTimeLimit(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

func vehicleCount(customerCount, maxPerVehicle int) int {
	if maxPerVehicle <= 0 {
		return 1
	}
	n := int(math.Ceil(float64(customerCount) / float64(maxPerVehicle)))
	if n < 1 {
		n = 1
	}
	return n
}
