package domain

import "time"

// RunType distinguishes zoning runs from routing runs in the run store.
type RunType string

const (
	RunTypeZones  RunType = "zones"
	RunTypeRoutes RunType = "routes"
)

// Run is a persisted artifact describing one completed core operation.
// Entities are created at the start of an orchestrator call, mutated only
// within that call, and become immutable once persisted (spec §3).
type Run struct {
	ID         string
	Type       RunType
	City       string
	Method     string // zoning method, or zone_id for routing runs
	ZoneCount  int
	RouteCount int
	Status     string
	CreatedAt  time.Time
	Author     string
	Tags       []string
}
