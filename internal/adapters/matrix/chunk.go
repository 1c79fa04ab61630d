package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"zonerouter/internal/domain"
	"zonerouter/internal/geo"
)

// block is one (sources, destinations) index range of the full N×N matrix,
// stitched together by fetchBlock into the caller's dist/dur matrices.
type block struct {
	rowStart, rowEnd int
	colStart, colEnd int
}

// blockPlan partitions [0,n) x [0,n) into chunkSize-bounded blocks.
func (p *HTTPMatrixProvider) blockPlan(n int) []block {
	if n == 0 {
		return nil
	}

	var blocks []block
	for r := 0; r < n; r += p.chunkSize {
		rEnd := min(r+p.chunkSize, n)
		for c := 0; c < n; c += p.chunkSize {
			cEnd := min(c+p.chunkSize, n)
			blocks = append(blocks, block{rowStart: r, rowEnd: rEnd, colStart: c, colEnd: cEnd})
		}
	}
	return blocks
}

// tableRequest is the wire contract for the external table endpoint: an
// ordered point list plus source/destination index sets, units meters/seconds
// at the wire (spec §6).
type tableRequest struct {
	Locations    [][]float64 `json:"locations"`
	Sources      []int       `json:"sources"`
	Destinations []int       `json:"destinations"`
	Profile      string      `json:"profile"`
}

type tableResponse struct {
	DistancesMeters [][]*float64 `json:"distances"`
	DurationsSecs   [][]*float64 `json:"durations"`
}

// fetchBlock fills dist/dur for one (rows x cols) block. On any failure it
// fills the block with the haversine fallback and returns false (degraded).
func (p *HTTPMatrixProvider) fetchBlock(
	ctx context.Context,
	points []domain.Coordinates,
	blk block,
	dist, dur [][]float64,
) bool {
	rows := blk.rowEnd - blk.rowStart
	cols := blk.colEnd - blk.colStart

	locations := make([][]float64, 0, rows+cols)
	sources := make([]int, 0, rows)
	destinations := make([]int, 0, cols)

	seen := make(map[int]int, rows+cols)
	indexOf := func(pointIdx int) int {
		if idx, ok := seen[pointIdx]; ok {
			return idx
		}
		idx := len(locations)
		locations = append(locations, points[pointIdx].CoordsToList())
		seen[pointIdx] = idx
		return idx
	}

	for i := blk.rowStart; i < blk.rowEnd; i++ {
		sources = append(sources, indexOf(i))
	}
	for j := blk.colStart; j < blk.colEnd; j++ {
		destinations = append(destinations, indexOf(j))
	}

	reqBody := tableRequest{
		Locations:    locations,
		Sources:      sources,
		Destinations: destinations,
		Profile:      p.profile,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		fillFallbackBlock(points, blk, dist, dur)
		return false
	}

	endpoint := p.baseURL + "/v1/table"

	resp, err := p.doWithRetry(ctx, func() (*http.Request, error) {
		return p.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		fillFallbackBlock(points, blk, dist, dur)
		return false
	}
	defer resp.Body.Close()

	var tr tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		fillFallbackBlock(points, blk, dist, dur)
		return false
	}
	if len(tr.DistancesMeters) != rows || len(tr.DurationsSecs) != rows {
		fillFallbackBlock(points, blk, dist, dur)
		return false
	}

	for ri := 0; ri < rows; ri++ {
		if len(tr.DistancesMeters[ri]) != cols || len(tr.DurationsSecs[ri]) != cols {
			fillFallbackBlock(points, blk, dist, dur)
			return false
		}
		for ci := 0; ci < cols; ci++ {
			dm := tr.DistancesMeters[ri][ci]
			ds := tr.DurationsSecs[ri][ci]
			if dm == nil || ds == nil {
				fillFallbackBlock(points, blk, dist, dur)
				return false
			}
			dist[blk.rowStart+ri][blk.colStart+ci] = *dm / 1000.0
			dur[blk.rowStart+ri][blk.colStart+ci] = *ds / 60.0
		}
	}

	if p.cache != nil {
		_ = p.cache.PutBlock(ctx, points, blk, dist, dur)
	}

	return true
}

func fillFallbackBlock(points []domain.Coordinates, blk block, dist, dur [][]float64) {
	for i := blk.rowStart; i < blk.rowEnd; i++ {
		for j := blk.colStart; j < blk.colEnd; j++ {
			if i == j {
				continue
			}
			d := geo.Haversine(points[i], points[j])
			dist[i][j] = d
			dur[i][j] = d / 40.0 * 60.0
		}
	}
}
