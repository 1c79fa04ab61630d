package dto

// RunManifestDTO is one entry of the list_runs response (spec §6).
type RunManifestDTO struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	City       string   `json:"city,omitempty"`
	Method     string   `json:"method,omitempty"`
	ZoneCount  int      `json:"zone_count,omitempty"`
	RouteCount int      `json:"route_count,omitempty"`
	Status     string   `json:"status,omitempty"`
	CreatedAt  string   `json:"created_at"`
	Author     string   `json:"author,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// ProbeMatrixResponse is the wire shape of probe_matrix's output.
type ProbeMatrixResponse struct {
	Healthy bool `json:"healthy"`
}
