package zoning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"zonerouter/internal/domain"
	"zonerouter/internal/ports"
)

// triangleAround returns three tightly-grouped points near (lat, lon),
// simulating one of the spec's "three tight triangles" scenario clusters.
func triangleAround(prefix string, lat, lon float64) []domain.Customer {
	return []domain.Customer{
		{ID: prefix + "1", Coords: domain.Coordinates{Lat: lat, Lon: lon}},
		{ID: prefix + "2", Coords: domain.Coordinates{Lat: lat + 0.001, Lon: lon}},
		{ID: prefix + "3", Coords: domain.Coordinates{Lat: lat, Lon: lon + 0.001}},
	}
}

func TestClusteringSeparatesTightTriangles(t *testing.T) {
	depot := domain.Depot{CityCode: "RUH", Coords: domain.Coordinates{Lat: 24.70, Lon: 46.68}}

	var customers []domain.Customer
	customers = append(customers, triangleAround("A", 24.80, 46.70)...)
	customers = append(customers, triangleAround("B", 24.60, 46.90)...)
	customers = append(customers, triangleAround("C", 24.90, 46.50)...)

	req := ports.ZoningRequest{
		City:           "Riyadh",
		DepotCityCode3: "RUH",
		Customers:      customers,
		Depot:          depot,
		TargetZones:    3,
		Seed:           42,
	}

	result, err := Clustering{}.Generate(context.Background(), req, nil)
	require.NoError(t, err)
	require.Len(t, result.Zones, 3)

	zoneOf := func(id string) string { return result.Assignments[id] }
	require.Equal(t, zoneOf("A1"), zoneOf("A2"))
	require.Equal(t, zoneOf("A1"), zoneOf("A3"))
	require.Equal(t, zoneOf("B1"), zoneOf("B2"))
	require.Equal(t, zoneOf("B1"), zoneOf("B3"))
	require.Equal(t, zoneOf("C1"), zoneOf("C2"))
	require.Equal(t, zoneOf("C1"), zoneOf("C3"))

	require.NotEqual(t, zoneOf("A1"), zoneOf("B1"))
	require.NotEqual(t, zoneOf("A1"), zoneOf("C1"))
}

func TestClusteringSplitsOversizedZone(t *testing.T) {
	depot := domain.Depot{CityCode: "RUH", Coords: domain.Coordinates{Lat: 24.70, Lon: 46.68}}

	var customers []domain.Customer
	for i := 0; i < 20; i++ {
		customers = append(customers, domain.Customer{
			ID:     "C" + string(rune('A'+i)),
			Coords: domain.Coordinates{Lat: 24.70 + float64(i)*0.0005, Lon: 46.68 + float64(i)*0.0005},
		})
	}

	req := ports.ZoningRequest{
		City:           "Riyadh",
		DepotCityCode3: "RUH",
		Customers:      customers,
		Depot:          depot,
		TargetZones:    1,
		MaxPerZone:     5,
		Tolerance:      0.1,
		Seed:           7,
	}

	result, err := Clustering{}.Generate(context.Background(), req, nil)
	require.NoError(t, err)
	require.Greater(t, len(result.Zones), 1)

	for _, count := range result.Counts() {
		require.LessOrEqual(t, float64(count.Count), 5*(1+0.1)+1e-9)
	}
}
