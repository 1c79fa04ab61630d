package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/katalvlaran/lvlath/matrix"
	"github.com/katalvlaran/lvlath/tsp"

	"zonerouter/internal/apperr"
	"zonerouter/internal/domain"
	"zonerouter/internal/ports"
)

// exactTSPThreshold is the largest per-route point count (depot + customers)
// solved with lvlath's exact Held-Karp DP instead of the Christofides
// approximation; O(n^2 * 2^n) stays well under a second through this size.
const exactTSPThreshold = 12

// solveManual solves one TSP per caller-supplied route group (spec §4.4
// Manual mode): build the (1+k)x(1+k) sub-matrix with the depot at index 0
// and solve via lvlath/tsp — exact Held-Karp for small routes (proven
// optimal), Christofides + 2-opt/3-opt for larger ones (satisfying but
// unproven, i.e. status=feasible).
func (s *Solver) solveManual(ctx context.Context, req ports.SolveRequest, mx ports.MatrixProvider) (domain.RoutingResult, error) {
	customerByID := make(map[string]domain.Customer, len(req.Customers))
	for _, c := range req.Customers {
		customerByID[c.ID] = c
	}

	timeLimit := req.TimeBudget
	if timeLimit <= 0 {
		timeLimit = defaultTimeLimit(s.DefaultTimeBudgetSeconds)
	}

	plans := make([]domain.Route, 0, len(req.Assignments))
	degradedAny := false
	var violationNotes []string
	statuses := make([]domain.SolverStatus, 0, len(req.Assignments))

	for _, assignment := range req.Assignments {
		points := make([]domain.Customer, 0, len(assignment.CustomerIDs)+1)
		points = append(points, domain.Customer{ID: "__depot__", Coords: req.Depot.Coords})
		for _, cid := range assignment.CustomerIDs {
			c, ok := customerByID[cid]
			if !ok {
				return domain.RoutingResult{}, apperr.New(apperr.KindInvalidInput, "solver.solveManual",
					fmt.Errorf("route %q references unknown customer %q", assignment.RouteID, cid))
			}
			points = append(points, c)
		}

		coords := make([]domain.Coordinates, len(points))
		for i, p := range points {
			coords[i] = p.Coords
		}

		dist, dur, degraded, err := mx.Matrix(ctx, coords)
		if err != nil {
			return domain.RoutingResult{}, apperr.New(apperr.KindUnavailable, "solver.solveManual", err)
		}
		if degraded {
			degradedAny = true
		}

		n := len(points)
		if n <= 1 {
			plans = append(plans, domain.Route{ID: assignment.RouteID, Day: assignment.Day})
			statuses = append(statuses, domain.StatusOptimal)
			continue
		}

		dense, err := matrix.NewDense(n, n)
		if err != nil {
			return domain.RoutingResult{}, apperr.New(apperr.KindInternal, "solver.solveManual", err)
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if err := dense.Set(i, j, dist[i][j]); err != nil {
					return domain.RoutingResult{}, apperr.New(apperr.KindInternal, "solver.solveManual", err)
				}
			}
		}

		opts := tsp.DefaultOptions()
		opts.TimeLimit = timeLimit
		opts.Seed = req.Seed
		exact := n <= exactTSPThreshold
		if exact {
			opts.Algo = tsp.ExactHeldKarp
		}

		started := time.Now()
		result, err := tsp.SolveWithMatrix(dense, nil, opts)
		elapsed := time.Since(started)
		if err != nil {
			return domain.RoutingResult{}, apperr.New(apperr.KindInfeasible, "solver.solveManual", err)
		}

		route, hardViolated := accumulateStops(assignment.RouteID, assignment.Day, result.Tour, assignment.CustomerIDs, dist, dur, req.Constraints)
		plans = append(plans, route)

		switch {
		case hardViolated:
			statuses = append(statuses, domain.StatusInfeasible)
			for dim, over := range route.Violations {
				if dim == "max_route_duration_minutes" || dim == "max_distance_per_route_km" {
					violationNotes = append(violationNotes, fmt.Sprintf("%s: %s exceeded by %.2f", assignment.RouteID, dim, over))
				}
			}
		case timeLimit > 0 && elapsed >= timeLimit:
			statuses = append(statuses, domain.StatusTimeout)
		case exact:
			statuses = append(statuses, domain.StatusOptimal)
		default:
			statuses = append(statuses, domain.StatusFeasible)
		}
	}

	status := worstStatus(statuses)

	metadata := map[string]any{
		"status":   string(status),
		"vehicles": len(req.Assignments),
	}
	if degradedAny {
		metadata["fallback"] = true
	}
	if len(violationNotes) > 0 {
		metadata["violations"] = violationNotes
	}

	if status == domain.StatusInfeasible {
		plans = nil
	}

	return domain.RoutingResult{
		ZoneID:   req.ZoneID,
		Metadata: metadata,
		Plans:    plans,
	}, nil
}
