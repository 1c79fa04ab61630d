package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCSVLoaderFiltersByCityAndZone(t *testing.T) {
	dir := t.TempDir()

	customersPath := writeTempCSV(t, dir, "customers.csv", ""+
		"id,name,city,zone_code,lat,lon,segment\n"+
		"C1,Alpha,Riyadh,RUH001,24.7136,46.6753,retail\n"+
		"C2,Beta,Riyadh,RUH002,24.7500,46.7000,wholesale\n"+
		"C3,Gamma,Jeddah,,21.4858,39.1925,retail\n")

	depotsPath := writeTempCSV(t, dir, "depots.csv", ""+
		"city,lat,lon\n"+
		"Riyadh,24.7000,46.6800\n"+
		"Jeddah,21.5000,39.2000\n")

	l, err := NewCSVLoader(customersPath, depotsPath)
	require.NoError(t, err)

	riyadh, err := l.CustomersByCity("riyadh", "")
	require.NoError(t, err)
	require.Len(t, riyadh, 2)

	zoned, err := l.CustomersByCity("Riyadh", "RUH001")
	require.NoError(t, err)
	require.Len(t, zoned, 1)
	require.Equal(t, "C1", zoned[0].ID)
	require.Equal(t, "retail", zoned[0].Attributes["segment"])

	depot, err := l.Depot("riyadh")
	require.NoError(t, err)
	require.Equal(t, "RIYADH", depot.CityCode)
	require.InDelta(t, 24.70, depot.Coords.Lat, 1e-9)
}

func TestCSVLoaderMissingDepotErrors(t *testing.T) {
	dir := t.TempDir()

	customersPath := writeTempCSV(t, dir, "customers.csv", ""+
		"id,name,city,zone_code,lat,lon\n"+
		"C1,Alpha,Riyadh,,24.7136,46.6753\n")
	depotsPath := writeTempCSV(t, dir, "depots.csv", "city,lat,lon\n")

	l, err := NewCSVLoader(customersPath, depotsPath)
	require.NoError(t, err)

	_, err = l.Depot("Riyadh")
	require.Error(t, err)
}

func TestCSVLoaderReloadPublishesNewSnapshot(t *testing.T) {
	dir := t.TempDir()

	customersPath := writeTempCSV(t, dir, "customers.csv", ""+
		"id,name,city,zone_code,lat,lon\n"+
		"C1,Alpha,Riyadh,,24.7136,46.6753\n")
	depotsPath := writeTempCSV(t, dir, "depots.csv", ""+
		"city,lat,lon\n"+
		"Riyadh,24.7000,46.6800\n")

	l, err := NewCSVLoader(customersPath, depotsPath)
	require.NoError(t, err)

	before, err := l.CustomersByCity("Riyadh", "")
	require.NoError(t, err)
	require.Len(t, before, 1)

	writeTempCSV(t, dir, "customers.csv", ""+
		"id,name,city,zone_code,lat,lon\n"+
		"C1,Alpha,Riyadh,,24.7136,46.6753\n"+
		"C2,Beta,Riyadh,,24.7300,46.6900\n")

	require.NoError(t, l.Reload())

	after, err := l.CustomersByCity("Riyadh", "")
	require.NoError(t, err)
	require.Len(t, after, 2)
}
