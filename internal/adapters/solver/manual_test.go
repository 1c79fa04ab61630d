package solver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"zonerouter/internal/domain"
	"zonerouter/internal/geo"
	"zonerouter/internal/ports"
)

type fakeMatrix struct{}

func (fakeMatrix) Matrix(_ context.Context, points []domain.Coordinates) ([][]float64, [][]float64, bool, error) {
	n := len(points)
	dist := make([][]float64, n)
	dur := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		dur[i] = make([]float64, n)
		for j := range dist[i] {
			if i == j {
				continue
			}
			d := geo.Haversine(points[i], points[j])
			dist[i][j] = d
			dur[i][j] = d / 40.0 * 60.0
		}
	}
	return dist, dur, false, nil
}

func (fakeMatrix) Probe(context.Context) bool { return true }

func TestSolveManualPreservesRouteIDAndDay(t *testing.T) {
	depot := domain.Depot{CityCode: "JED", Coords: domain.Coordinates{Lat: 21.5, Lon: 39.2}}
	customers := []domain.Customer{
		{ID: "C1", Coords: domain.Coordinates{Lat: 21.51, Lon: 39.21}},
		{ID: "C2", Coords: domain.Coordinates{Lat: 21.49, Lon: 39.19}},
		{ID: "C3", Coords: domain.Coordinates{Lat: 21.52, Lon: 39.18}},
	}

	req := ports.SolveRequest{
		ZoneID:    "JED001",
		Customers: customers,
		Depot:     depot,
		Assignments: []ports.RouteAssignment{
			{RouteID: "JED001_R01", Day: "MON", CustomerIDs: []string{"C1", "C2", "C3"}},
		},
	}

	s := NewSolver(5)
	result, err := s.Solve(context.Background(), req, fakeMatrix{})
	require.NoError(t, err)
	require.Len(t, result.Plans, 1)
	require.Equal(t, "JED001_R01", result.Plans[0].ID)
	require.Equal(t, "MON", result.Plans[0].Day)

	seen := make(map[string]bool)
	for _, stop := range result.Plans[0].Stops {
		seen[stop.CustomerID] = true
	}
	require.Len(t, seen, 3)
}
