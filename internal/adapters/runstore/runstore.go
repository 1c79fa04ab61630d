// Package runstore persists zoning/routing results to a timestamped
// directory per run (spec §4.5), generalizing the teacher's "create schema,
// write rows" seeding discipline into create-and-rename filesystem writes.
package runstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"zonerouter/internal/domain"
	"zonerouter/internal/ports"
)

const (
	summaryFileName     = "summary.json"
	assignmentsFileName = "assignments.csv"
	timestampLayout     = "20060102T150405Z"
)

// FilesystemRunStore implements ports.RunStore against a local directory
// tree: <root>/<type>_<timestamp>[_<disambiguator>]/{summary.json,assignments.csv}.
type FilesystemRunStore struct {
	root string
	now  func() time.Time
}

// NewFilesystemRunStore builds a store rooted at root, creating it if needed.
func NewFilesystemRunStore(root string) (*FilesystemRunStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("run store: create root %q: %w", root, err)
	}
	return &FilesystemRunStore{root: root, now: time.Now}, nil
}

type summaryDoc struct {
	ID         string         `json:"id"`
	Type       domain.RunType `json:"type"`
	CreatedAt  string         `json:"created_at"`
	City       string         `json:"city,omitempty"`
	Method     string         `json:"method,omitempty"`
	ZoneID     string         `json:"zone_id,omitempty"`
	ZoneCount  int            `json:"zone_count,omitempty"`
	RouteCount int            `json:"route_count,omitempty"`
	Status     string         `json:"status,omitempty"`
	Response   any            `json:"response"`
}

// WriteZoningRun implements ports.RunStore.
func (s *FilesystemRunStore) WriteZoningRun(result domain.ZoningResult) (string, error) {
	runID := s.allocateRunID(domain.RunTypeZones)
	dir := filepath.Join(s.root, runID)

	doc := summaryDoc{
		ID:        runID,
		Type:      domain.RunTypeZones,
		CreatedAt: s.now().UTC().Format(timestampLayout),
		City:      result.City,
		Method:    result.Method,
		ZoneCount: len(result.Zones),
		Response:  result,
	}

	if err := writeSummary(dir, doc); err != nil {
		return "", err
	}
	if err := writeZoningAssignments(dir, result); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteRoutingRun implements ports.RunStore.
func (s *FilesystemRunStore) WriteRoutingRun(result domain.RoutingResult) (string, error) {
	runID := s.allocateRunID(domain.RunTypeRoutes)
	dir := filepath.Join(s.root, runID)

	status, _ := result.Metadata["status"].(string)
	doc := summaryDoc{
		ID:         runID,
		Type:       domain.RunTypeRoutes,
		CreatedAt:  s.now().UTC().Format(timestampLayout),
		ZoneID:     result.ZoneID,
		RouteCount: len(result.Plans),
		Status:     status,
		Response:   result,
	}

	if err := writeSummary(dir, doc); err != nil {
		return "", err
	}
	if err := writeRoutingAssignments(dir, result); err != nil {
		return "", err
	}
	return runID, nil
}

// List implements ports.RunStore. Manifest parsing is lazy: unreadable or
// corrupt run directories are skipped (spec §4.5 "Enumerate").
func (s *FilesystemRunStore) List(filters ports.RunFilters) ([]ports.RunManifest, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("run store: list: read root: %w", err)
	}

	var manifests []ports.RunManifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		doc, err := readSummary(filepath.Join(s.root, entry.Name()))
		if err != nil {
			continue // skip corrupt/unreadable run directories
		}

		manifest := ports.RunManifest{
			ID:         doc.ID,
			Type:       doc.Type,
			City:       doc.City,
			Method:     methodOrZone(doc),
			ZoneCount:  doc.ZoneCount,
			RouteCount: doc.RouteCount,
			Status:     doc.Status,
			CreatedAt:  doc.CreatedAt,
		}

		if !matchesFilters(manifest, filters) {
			continue
		}
		manifests = append(manifests, manifest)
	}

	sort.Slice(manifests, func(i, j int) bool { return manifests[i].CreatedAt > manifests[j].CreatedAt })

	if filters.Limit > 0 && len(manifests) > filters.Limit {
		manifests = manifests[:filters.Limit]
	}

	return manifests, nil
}

// Fetch implements ports.RunStore. Rejects any file_name that escapes the
// run directory, mirroring the teacher's defensive input validation style.
func (s *FilesystemRunStore) Fetch(runID, fileName string) (io.ReadCloser, error) {
	if strings.ContainsAny(runID, "/\\") {
		return nil, fmt.Errorf("run store: fetch: invalid run id %q", runID)
	}

	cleanName := filepath.Clean(fileName)
	if cleanName == "." || strings.Contains(cleanName, "..") || filepath.IsAbs(cleanName) {
		return nil, fmt.Errorf("run store: fetch: invalid file name %q", fileName)
	}

	runDir := filepath.Join(s.root, runID)
	target := filepath.Join(runDir, cleanName)

	rel, err := filepath.Rel(runDir, target)
	if err != nil || strings.HasPrefix(rel, "..") {
		return nil, fmt.Errorf("run store: fetch: file %q escapes run directory", fileName)
	}

	f, err := os.Open(target)
	if err != nil {
		return nil, fmt.Errorf("run store: fetch: %w", err)
	}
	return f, nil
}

func methodOrZone(doc summaryDoc) string {
	if doc.Method != "" {
		return doc.Method
	}
	return doc.ZoneID
}

func matchesFilters(m ports.RunManifest, f ports.RunFilters) bool {
	if f.Type != "" && string(m.Type) != f.Type {
		return false
	}
	if f.City != "" && !strings.EqualFold(m.City, f.City) {
		return false
	}
	if f.Zone != "" && !strings.EqualFold(m.Method, f.Zone) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(m.ID), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// allocateRunID mints <type>_<timestamp>, appending a short uuid-derived
// disambiguator when a directory for that second already exists (spec §5
// "if two runs collide on the same second, the second appends a short
// disambiguator").
func (s *FilesystemRunStore) allocateRunID(runType domain.RunType) string {
	ts := s.now().UTC().Format(timestampLayout)
	base := fmt.Sprintf("%s_%s", runType, ts)

	if _, err := os.Stat(filepath.Join(s.root, base)); errors.Is(err, os.ErrNotExist) {
		return base
	}

	disambiguator := strconv.FormatUint(uint64(uuid.New().ID()), 36)
	return fmt.Sprintf("%s_%s", base, disambiguator)
}

func writeSummary(dir string, doc summaryDoc) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("run store: write summary: mkdir %q: %w", dir, err)
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("run store: write summary: marshal: %w", err)
	}

	return createAndRename(dir, summaryFileName, payload)
}

func readSummary(dir string) (summaryDoc, error) {
	data, err := os.ReadFile(filepath.Join(dir, summaryFileName))
	if err != nil {
		return summaryDoc{}, err
	}
	var doc summaryDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return summaryDoc{}, err
	}
	return doc, nil
}

// createAndRename writes content to a temp file in dir then renames it into
// place, so readers never observe a partial file (spec §4.5).
func createAndRename(dir, name string, content []byte) error {
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("run store: create temp for %q: %w", name, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("run store: write temp for %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("run store: close temp for %q: %w", name, err)
	}

	if err := os.Rename(tmpPath, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("run store: rename into place for %q: %w", name, err)
	}
	return nil
}
