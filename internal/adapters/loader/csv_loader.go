// Package loader implements the dataset loader contract (spec §2 item 2):
// reads the customer master and depot catalogue, normalizes fields, and
// exposes city/zone-filtered iteration. Generalizes the teacher's
// SeedFromJSON read-validate-collect discipline from JSON to CSV, since the
// spec's customer master is explicitly tabular.
package loader

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"zonerouter/internal/domain"
)

// snapshot is the immutable, atomically-published view of the dataset.
type snapshot struct {
	customers []domain.Customer
	depots    map[string]domain.Depot
}

// CSVLoader reads the customer master and depot catalogue from CSV files.
// Reloads publish a new snapshot atomically (spec §9); readers keep
// whichever snapshot they already hold.
type CSVLoader struct {
	customerPath string
	depotPath    string
	current      atomic.Pointer[snapshot]
}

// NewCSVLoader builds a loader and performs the initial load.
func NewCSVLoader(customerPath, depotPath string) (*CSVLoader, error) {
	l := &CSVLoader{customerPath: customerPath, depotPath: depotPath}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload re-reads both CSV files and atomically publishes a new snapshot.
func (l *CSVLoader) Reload() error {
	customers, err := readCustomers(l.customerPath)
	if err != nil {
		return fmt.Errorf("reload dataset: %w", err)
	}

	depots, err := readDepots(l.depotPath)
	if err != nil {
		return fmt.Errorf("reload dataset: %w", err)
	}

	l.current.Store(&snapshot{customers: customers, depots: depots})
	return nil
}

// CustomersByCity returns all customers for a city, optionally filtered by a
// pre-existing zone code.
func (l *CSVLoader) CustomersByCity(city, zoneCode string) ([]domain.Customer, error) {
	snap := l.current.Load()
	if snap == nil {
		return nil, fmt.Errorf("customers by city: dataset not loaded")
	}

	out := make([]domain.Customer, 0, len(snap.customers))
	for _, c := range snap.customers {
		if !strings.EqualFold(c.City, city) {
			continue
		}
		if zoneCode != "" && c.ZoneCode != zoneCode {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Depot returns the depot registered for a city.
func (l *CSVLoader) Depot(city string) (domain.Depot, error) {
	snap := l.current.Load()
	if snap == nil {
		return domain.Depot{}, fmt.Errorf("depot: dataset not loaded")
	}

	d, ok := snap.depots[strings.ToUpper(city)]
	if !ok {
		return domain.Depot{}, fmt.Errorf("depot: no depot registered for city %q", city)
	}
	return d, nil
}

// expected customer CSV columns: id,name,city,zone_code,lat,lon,<filter...>
func readCustomers(path string) ([]domain.Customer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read customers %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read customers %q: header: %w", path, err)
	}
	colIdx := indexHeader(header)

	required := []string{"id", "name", "city", "lat", "lon"}
	for _, col := range required {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("read customers %q: missing required column %q", path, col)
		}
	}

	filterCols := make([]string, 0)
	reserved := map[string]bool{"id": true, "name": true, "city": true, "zone_code": true, "lat": true, "lon": true}
	for _, h := range header {
		if !reserved[h] {
			filterCols = append(filterCols, h)
		}
	}

	var out []domain.Customer
	rowNum := 1
	for {
		row, err := r.Read()
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, fmt.Errorf("read customers %q: row %d: %w", path, rowNum, err)
		}
		rowNum++

		lat, err := strconv.ParseFloat(strings.TrimSpace(row[colIdx["lat"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("read customers %q: row %d: invalid lat: %w", path, rowNum, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(row[colIdx["lon"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("read customers %q: row %d: invalid lon: %w", path, rowNum, err)
		}

		attrs := make(map[string]string, len(filterCols))
		for _, fc := range filterCols {
			v := strings.TrimSpace(row[colIdx[fc]])
			if v != "" {
				attrs[fc] = v
			}
		}

		zoneCode := ""
		if idx, ok := colIdx["zone_code"]; ok {
			zoneCode = strings.TrimSpace(row[idx])
		}

		out = append(out, domain.Customer{
			ID:         strings.TrimSpace(row[colIdx["id"]]),
			Name:       strings.TrimSpace(row[colIdx["name"]]),
			City:       strings.TrimSpace(row[colIdx["city"]]),
			ZoneCode:   zoneCode,
			Coords:     domain.Coordinates{Lat: lat, Lon: lon},
			Attributes: attrs,
		})
	}

	return out, nil
}

// expected depot CSV columns: city,lat,lon
func readDepots(path string) (map[string]domain.Depot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read depots %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read depots %q: header: %w", path, err)
	}
	colIdx := indexHeader(header)

	for _, col := range []string{"city", "lat", "lon"} {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("read depots %q: missing required column %q", path, col)
		}
	}

	out := make(map[string]domain.Depot)
	rowNum := 1
	for {
		row, err := r.Read()
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, fmt.Errorf("read depots %q: row %d: %w", path, rowNum, err)
		}
		rowNum++

		lat, err := strconv.ParseFloat(strings.TrimSpace(row[colIdx["lat"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("read depots %q: row %d: invalid lat: %w", path, rowNum, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(row[colIdx["lon"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("read depots %q: row %d: invalid lon: %w", path, rowNum, err)
		}

		city := strings.ToUpper(strings.TrimSpace(row[colIdx["city"]]))
		out[city] = domain.Depot{CityCode: city, Coords: domain.Coordinates{Lat: lat, Lon: lon}}
	}

	return out, nil
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}
