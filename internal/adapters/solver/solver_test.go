package solver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"zonerouter/internal/domain"
	"zonerouter/internal/ports"
)

func TestAccumulateStopsSequenceAndDistance(t *testing.T) {
	dist := [][]float64{
		{0, 10, 20},
		{10, 0, 15},
		{20, 15, 0},
	}
	dur := [][]float64{
		{0, 15, 30},
		{15, 0, 22.5},
		{30, 22.5, 0},
	}

	tour := []int{0, 1, 2, 0}
	customerIDs := []string{"C1", "C2"}

	route, hardViolated := accumulateStops("JED001_R01", "SUN", tour, customerIDs, dist, dur, ports.RouteConstraints{})
	require.False(t, hardViolated)

	require.Len(t, route.Stops, 2)
	require.Equal(t, 1, route.Stops[0].Sequence)
	require.Equal(t, "C1", route.Stops[0].CustomerID)
	require.Equal(t, 2, route.Stops[1].Sequence)
	require.Equal(t, "C2", route.Stops[1].CustomerID)

	require.InDelta(t, 10.0, route.Stops[0].DistanceFromPrevKm, 1e-9)
	require.InDelta(t, 15.0, route.Stops[1].DistanceFromPrevKm, 1e-9)
	require.InDelta(t, 25.0, route.TotalDistanceKm, 1e-9)

	require.InDelta(t, 15.0, route.Stops[0].ArrivalMin, 1e-9)
	require.InDelta(t, 37.5, route.Stops[1].ArrivalMin, 1e-9)

	for i := 1; i < len(route.Stops); i++ {
		require.GreaterOrEqual(t, route.Stops[i].ArrivalMin, route.Stops[i-1].ArrivalMin)
	}
}

func TestAccumulateStopsRecordsSoftDistanceViolation(t *testing.T) {
	dist := [][]float64{{0, 50}, {50, 0}}
	dur := [][]float64{{0, 60}, {60, 0}}

	route, hardViolated := accumulateStops("Z_R01", "SUN", []int{0, 1, 0}, []string{"C1"}, dist, dur,
		ports.RouteConstraints{SoftDistanceTargetKm: 30})

	require.False(t, hardViolated)
	require.Contains(t, route.Violations, "distance_km")
	require.InDelta(t, 20.0, route.Violations["distance_km"], 1e-9)
}

func TestAccumulateStopsRecordsHardDurationViolation(t *testing.T) {
	dist := [][]float64{{0, 50}, {50, 0}}
	dur := [][]float64{{0, 60}, {60, 0}}

	route, hardViolated := accumulateStops("Z_R01", "SUN", []int{0, 1, 0}, []string{"C1"}, dist, dur,
		ports.RouteConstraints{MaxRouteDurationMinutes: 90})

	require.True(t, hardViolated)
	require.Contains(t, route.Violations, "max_route_duration_minutes")
	require.InDelta(t, 30.0, route.Violations["max_route_duration_minutes"], 1e-9)
}

func TestAccumulateStopsRecordsHardDistanceViolation(t *testing.T) {
	dist := [][]float64{{0, 50}, {50, 0}}
	dur := [][]float64{{0, 60}, {60, 0}}

	route, hardViolated := accumulateStops("Z_R01", "SUN", []int{0, 1, 0}, []string{"C1"}, dist, dur,
		ports.RouteConstraints{MaxDistancePerRouteKm: 75})

	require.True(t, hardViolated)
	require.Contains(t, route.Violations, "max_distance_per_route_km")
	require.InDelta(t, 25.0, route.Violations["max_distance_per_route_km"], 1e-9)
}

func TestWorstStatusPicksMostSevere(t *testing.T) {
	require.Equal(t, domain.StatusOptimal, worstStatus([]domain.SolverStatus{domain.StatusOptimal}))
	require.Equal(t, domain.StatusFeasible, worstStatus([]domain.SolverStatus{domain.StatusOptimal, domain.StatusFeasible}))
	require.Equal(t, domain.StatusTimeout, worstStatus([]domain.SolverStatus{domain.StatusFeasible, domain.StatusTimeout}))
	require.Equal(t, domain.StatusInfeasible, worstStatus([]domain.SolverStatus{domain.StatusTimeout, domain.StatusInfeasible}))
}

func TestVehicleCountCeilsDivision(t *testing.T) {
	require.Equal(t, 1, vehicleCount(5, 10))
	require.Equal(t, 2, vehicleCount(11, 10))
	require.Equal(t, 1, vehicleCount(0, 10))
	require.Equal(t, 1, vehicleCount(5, 0))
}

func TestWorkingDayRoundRobins(t *testing.T) {
	days := []string{"SUN", "MON", "TUE"}
	require.Equal(t, "SUN", workingDay(days, 0))
	require.Equal(t, "MON", workingDay(days, 1))
	require.Equal(t, "SUN", workingDay(days, 3))
	require.Equal(t, "", workingDay(nil, 0))
}
