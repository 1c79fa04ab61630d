package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"zonerouter/internal/domain"
	"zonerouter/internal/ports"
)

// TestSolveAutomaticThreeCustomersFallbackMatrix drives spec §8 scenario 4
// (automatic mode, 3 customers, one depot, degraded/fallback matrix) through
// the solver end to end: no pre-assignments, so Solve dispatches to
// solveAutomatic, exercising the nextmv router.Solver(...).All(ctx) ->
// router.Plan(...) extraction path that has no other coverage.
func TestSolveAutomaticThreeCustomersFallbackMatrix(t *testing.T) {
	depot := domain.Depot{CityCode: "JED", Coords: domain.Coordinates{Lat: 21.50, Lon: 39.20}}
	customers := []domain.Customer{
		{ID: "C1", Coords: domain.Coordinates{Lat: 21.55, Lon: 39.22}},
		{ID: "C2", Coords: domain.Coordinates{Lat: 21.60, Lon: 39.25}},
		{ID: "C3", Coords: domain.Coordinates{Lat: 21.45, Lon: 39.15}},
	}

	req := ports.SolveRequest{
		ZoneID:    "JED001",
		Customers: customers,
		Depot:     depot,
		Constraints: ports.RouteConstraints{
			MaxCustomersPerRoute: 10,
		},
		WorkingDays: []string{"SUN"},
	}

	s := NewSolver(5)
	result, err := s.Solve(context.Background(), req, degradedFakeMatrix{})
	require.NoError(t, err)

	require.Equal(t, "JED001", result.ZoneID)
	require.Equal(t, true, result.Metadata["fallback"])
	require.NotEqual(t, string(domain.StatusInfeasible), result.Metadata["status"])

	require.Len(t, result.Plans, 1)
	route := result.Plans[0]
	require.Equal(t, "SUN", route.Day)
	require.Len(t, route.Stops, 3)

	seen := make(map[string]bool, 3)
	for i, stop := range route.Stops {
		require.Equal(t, i+1, stop.Sequence)
		seen[stop.CustomerID] = true
	}
	require.Len(t, seen, 3)
	require.True(t, seen["C1"] && seen["C2"] && seen["C3"])

	for i := 1; i < len(route.Stops); i++ {
		require.GreaterOrEqual(t, route.Stops[i].ArrivalMin, route.Stops[i-1].ArrivalMin)
	}

	var summedDist float64
	for _, stop := range route.Stops {
		summedDist += stop.DistanceFromPrevKm
	}
	require.InDelta(t, summedDist, route.TotalDistanceKm, 1e-6)
	require.Greater(t, route.TotalDistanceKm, 0.0)
	require.Greater(t, route.TotalDurationMin, 0.0)
}

// degradedFakeMatrix reuses fakeMatrix's haversine arithmetic but reports
// degraded=true, the way the matrix provider does once it falls back from the
// road-network matrix (spec §5 "Fallback").
type degradedFakeMatrix struct{ fakeMatrix }

func (degradedFakeMatrix) Matrix(ctx context.Context, points []domain.Coordinates) ([][]float64, [][]float64, bool, error) {
	dist, dur, _, err := fakeMatrix{}.Matrix(ctx, points)
	return dist, dur, true, err
}
