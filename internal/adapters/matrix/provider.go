// Package matrix implements the road-network distance/time matrix provider
// contract (spec §4.1): an HTTP "table" client with retry/backoff, chunked
// fan-out, a persistent sqlite cache, and a deterministic haversine fallback.
package matrix

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"zonerouter/internal/domain"
	"zonerouter/internal/geo"
	"zonerouter/internal/platform/obs"
)

// Config controls the HTTP matrix provider's behavior (spec §6 config surface).
type Config struct {
	BaseURL        string // empty selects the fallback provider outright
	Profile        string
	MaxRetries     int
	BackoffSeconds float64
	ChunkSize      int // max points per side of a table request block
	Concurrency    int // max concurrent in-flight chunk requests
}

// HTTPMatrixProvider implements ports.MatrixProvider against an external
// routing service's table endpoint, with a persistent cache and a
// deterministic haversine+constant-speed fallback.
type HTTPMatrixProvider struct {
	session    *http.Client
	baseURL    string
	profile    string
	maxRetries int
	backoff    time.Duration
	chunkSize  int
	concurrent int64
	cache      *SQLiteCache // optional
}

// NewHTTPMatrixProvider builds a provider from cfg. cache may be nil.
func NewHTTPMatrixProvider(cfg Config, cache *SQLiteCache) *HTTPMatrixProvider {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 4
	}
	backoff := cfg.BackoffSeconds
	if backoff <= 0 {
		backoff = 0.2
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 50
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	return &HTTPMatrixProvider{
		session:    &http.Client{Timeout: 10 * time.Second},
		baseURL:    cfg.BaseURL,
		profile:    cfg.Profile,
		maxRetries: maxRetries,
		backoff:    time.Duration(backoff * float64(time.Second)),
		chunkSize:  chunkSize,
		concurrent: int64(concurrency),
		cache:      cache,
	}
}

// Matrix returns distance (km) and duration (minutes) matrices for points.
// Diagonal is zero. Falls back to haversine+constant-speed when no base URL
// is configured, or when all retries for a block are exhausted.
func (p *HTTPMatrixProvider) Matrix(
	ctx context.Context,
	points []domain.Coordinates,
) (dist [][]float64, dur [][]float64, degraded bool, err error) {
	defer obs.Time(ctx, "matrix.Matrix")(&err)

	n := len(points)
	dist = newMatrix(n)
	dur = newMatrix(n)

	if p.baseURL == "" {
		fillFallback(points, dist, dur)
		return dist, dur, false, nil
	}

	blocks := p.blockPlan(n)

	sem := semaphore.NewWeighted(p.concurrent)
	g, gctx := errgroup.WithContext(ctx)

	var degradedAny bool
	for _, blk := range blocks {
		blk := blk
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			ok := p.fetchBlock(gctx, points, blk, dist, dur)
			if !ok {
				degradedAny = true
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, false, fmt.Errorf("matrix: %w", err)
	}

	for i := 0; i < n; i++ {
		dist[i][i] = 0
		dur[i][i] = 0
	}

	return dist, dur, degradedAny, nil
}

// Probe reports whether the backing routing service is reachable with a
// short timeout. Any 2xx response counts as healthy.
func (p *HTTPMatrixProvider) Probe(ctx context.Context) bool {
	if p.baseURL == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := p.newRequest(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := p.session.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func newMatrix(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

func fillFallback(points []domain.Coordinates, dist, dur [][]float64) {
	for i, a := range points {
		for j, b := range points {
			if i == j {
				continue
			}
			d := geo.Haversine(a, b)
			dist[i][j] = d
			dur[i][j] = d / 40.0 * 60.0 // 40 km/h constant speed -> minutes
		}
	}
}
