package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/nextmv-io/sdk/measure"
	"github.com/nextmv-io/sdk/route"
	"github.com/nextmv-io/sdk/store"

	"zonerouter/internal/apperr"
	"zonerouter/internal/domain"
	"zonerouter/internal/ports"
)

// solveAutomatic builds the full (N+1)x(N+1) depot+customers matrix and
// solves a capacitated VRP with nextmv-io/sdk/route (spec §4.4 Automatic
// mode): capacity dimension bounded by max_customers_per_route, vehicle count
// ⌈N/max_customers_per_route⌉, time-bounded search. The router's own search
// has no verified per-vehicle distance/duration dimension in the retrieval
// pack (see DESIGN.md), so the duration and distance hard limits are
// enforced post-solve by accumulateStops: a route that breaches either cap
// fails the whole instance as infeasible with a diagnostic, rather than
// being silently accepted.
func (s *Solver) solveAutomatic(ctx context.Context, req ports.SolveRequest, mx ports.MatrixProvider) (domain.RoutingResult, error) {
	points := make([]domain.Coordinates, 0, len(req.Customers)+1)
	points = append(points, req.Depot.Coords)
	for _, c := range req.Customers {
		points = append(points, c.Coords)
	}

	dist, dur, degraded, err := mx.Matrix(ctx, points)
	if err != nil {
		return domain.RoutingResult{}, apperr.New(apperr.KindUnavailable, "solver.solveAutomatic", err)
	}

	n := len(req.Customers)
	vehicles := vehicleCount(n, req.Constraints.MaxCustomersPerRoute)

	distanceMeasure := measure.Matrix(dist)
	durationMeasure := measure.Matrix(dur)

	stops := make([]route.Stop, n)
	for i, c := range req.Customers {
		stops[i] = route.Stop{
			ID:       c.ID,
			Position: route.Position{Lon: c.Coords.Lon, Lat: c.Coords.Lat},
		}
	}

	vehicleIDs := make([]string, vehicles)
	depots := make([]route.Position, vehicles)
	capacities := make([]int, vehicles)
	quantities := make([]int, n)
	for i := range quantities {
		quantities[i] = 1
	}
	for v := 0; v < vehicles; v++ {
		vehicleIDs[v] = fmt.Sprintf("%s_R%02d", req.ZoneID, v+1)
		depots[v] = route.Position{Lon: req.Depot.Coords.Lon, Lat: req.Depot.Coords.Lat}
		capacities[v] = req.Constraints.MaxCustomersPerRoute
	}

	valueMeasures := make([]route.ByIndex, vehicles)
	timeMeasures := make([]route.ByIndex, vehicles)
	for v := 0; v < vehicles; v++ {
		valueMeasures[v] = distanceMeasure
		timeMeasures[v] = durationMeasure
	}

	router, err := route.NewRouter(
		stops,
		vehicleIDs,
		route.Starts(depots),
		route.Ends(depots),
		route.Capacity(quantities, capacities),
		route.ValueFunctionMeasures(valueMeasures),
		route.TravelTimeMeasures(timeMeasures),
	)
	if err != nil {
		return domain.RoutingResult{}, apperr.New(apperr.KindInvalidInput, "solver.solveAutomatic", err)
	}

	opts := store.DefaultOptions()
	timeLimit := req.TimeBudget
	if timeLimit <= 0 {
		timeLimit = defaultTimeLimit(s.DefaultTimeBudgetSeconds)
	}
	opts.Limits.Duration = timeLimit

	solverInstance, err := router.Solver(opts)
	if err != nil {
		return domain.RoutingResult{}, apperr.New(apperr.KindInternal, "solver.solveAutomatic", err)
	}

	started := time.Now()
	var last store.Solution
	produced := false
	for sol := range solverInstance.All(ctx) {
		last = sol
		produced = true
	}
	elapsed := time.Since(started)

	if !produced {
		metadata := map[string]any{
			"status":   string(domain.StatusInfeasible),
			"vehicles": vehicles,
		}
		if degraded {
			metadata["fallback"] = true
		}
		return domain.RoutingResult{ZoneID: req.ZoneID, Metadata: metadata, Plans: nil}, nil
	}

	// Translate the solver's plan into per-vehicle routes using the same
	// index-accumulation contract as the manual TSP path.
	plans := make([]domain.Route, 0, vehicles)
	var violationNotes []string
	hardViolatedAny := false
	vehiclePlan := router.Plan(last.Store)
	for v, vp := range vehiclePlan.Vehicles {
		tour := routeIndices(vp.Route, stops)
		customerIDs := make([]string, n)
		for i, c := range req.Customers {
			customerIDs[i] = c.ID
		}

		if len(tour) <= 2 {
			continue // empty vehicle: only start/end depot occurrences
		}

		day := workingDay(req.WorkingDays, v)
		route, hardViolated := accumulateStops(vehicleIDs[v], day, tour, customerIDs, dist, dur, req.Constraints)
		plans = append(plans, route)
		if hardViolated {
			hardViolatedAny = true
			for dim, over := range route.Violations {
				if dim == "max_route_duration_minutes" || dim == "max_distance_per_route_km" {
					violationNotes = append(violationNotes, fmt.Sprintf("%s: %s exceeded by %.2f", route.ID, dim, over))
				}
			}
		}
	}

	var status domain.SolverStatus
	switch {
	case len(plans) == 0 && n > 0:
		status = domain.StatusInfeasible
	case hardViolatedAny:
		status = domain.StatusInfeasible
	case timeLimit > 0 && elapsed >= timeLimit:
		status = domain.StatusTimeout
	default:
		// A time-bounded heuristic search over nextmv's store/route package is
		// not proven optimal, so a converged, within-budget solution is
		// reported as feasible rather than optimal.
		status = domain.StatusFeasible
	}

	if status == domain.StatusInfeasible {
		plans = nil
	}

	metadata := map[string]any{
		"status":   string(status),
		"vehicles": vehicles,
	}
	if degraded {
		metadata["fallback"] = true
	}
	if len(violationNotes) > 0 {
		metadata["violations"] = violationNotes
	}

	return domain.RoutingResult{
		ZoneID:   req.ZoneID,
		Metadata: metadata,
		Plans:    plans,
	}, nil
}

// routeIndices maps a solved vehicle's stop-ID route (which includes the
// depot start/end) back into matrix indices: 0 is the depot, 1..n are
// req.Customers in declared order.
func routeIndices(stopRoute []route.Stop, allStops []route.Stop) []int {
	idOf := make(map[string]int, len(allStops))
	for i, st := range allStops {
		idOf[st.ID] = i + 1 // +1: depot occupies index 0 in the distance matrix
	}

	out := make([]int, 0, len(stopRoute))
	for _, st := range stopRoute {
		if idx, ok := idOf[st.ID]; ok {
			out = append(out, idx)
		} else {
			out = append(out, 0) // depot start/end marker
		}
	}
	return out
}
