package ports

import (
	"context"

	"zonerouter/internal/domain"
)

// MatrixProvider returns an N×N pair of distance (km) and duration (minutes)
// matrices for an ordered set of points. Backed by an external routing
// service; falls back to haversine + constant speed when unavailable.
type MatrixProvider interface {
	// Matrix returns distance (km) and duration (minutes) matrices for the
	// given ordered points. Diagonal is zero.
	Matrix(ctx context.Context, points []domain.Coordinates) (dist [][]float64, dur [][]float64, degraded bool, err error)

	// Probe reports whether the backing routing service is reachable.
	Probe(ctx context.Context) bool
}
