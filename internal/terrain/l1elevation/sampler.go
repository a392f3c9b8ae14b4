package l1elevation

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/geovoxel/internal/monitoring"
	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

// NoClass marks a cell whose land-cover class could not be resolved.
const NoClass = -1

// Stats summarises one sampling pass.
type Stats struct {
	Cells          int
	Missing        int // raw samples that were nodata
	NeighborFilled int // missing samples recovered from 4-neighbours
	ZeroFilled     int // missing samples with no valid neighbour
}

// SampleElevation builds a fully populated elevation map over b. Nodata
// cells take the mean of their valid raw 4-neighbours, or 0 when none are
// valid. Neighbour means only ever use raw samples, never filled ones, so
// the result does not depend on visiting order.
func SampleElevation(r ElevationRaster, p Projection, b grid.Bounds) (*grid.ElevationMap, Stats, error) {
	if r == nil || p == nil {
		return nil, Stats{}, fmt.Errorf("elevation raster and projection are required: %w", ErrMissingInput)
	}
	if b.Empty() {
		return nil, Stats{}, fmt.Errorf("empty bounds %s: %w", b, ErrMissingInput)
	}

	raw := grid.NewLayer(b, math.NaN())
	b.Each(func(c grid.Cell) {
		lon, lat := p.CellToLonLat(c)
		if v, ok := r.Sample(lon, lat); ok && validElevation(v) {
			raw.Set(c, v)
		}
	})

	out := raw.Clone()
	stats := Stats{Cells: b.Area()}
	neighbours := make([]float64, 0, 4)
	raw.Each(func(c grid.Cell, v float64) {
		if !math.IsNaN(v) {
			return
		}
		stats.Missing++
		neighbours = neighbours[:0]
		for _, o := range grid.Neighbors4 {
			if nv, ok := raw.At(c.Add(o.DX, o.DZ)); ok && !math.IsNaN(nv) {
				neighbours = append(neighbours, nv)
			}
		}
		if len(neighbours) == 0 {
			stats.ZeroFilled++
			out.Set(c, 0)
			return
		}
		stats.NeighborFilled++
		out.Set(c, stat.Mean(neighbours, nil))
	})

	if stats.Missing > 0 {
		monitoring.Logf("[ElevationSampler] %d/%d cells nodata: %d neighbour-filled, %d zero-filled",
			stats.Missing, stats.Cells, stats.NeighborFilled, stats.ZeroFilled)
	}
	return out, stats, nil
}

// MinElevation returns the lowest elevation in m. m must be non-empty and
// fully populated.
func MinElevation(m *grid.ElevationMap) float64 {
	return floats.Min(m.Values())
}

// SampleLandcover resolves a class code for every cell in b. Missing
// samples take the most frequent class among valid raw 4-neighbours (lowest
// code on ties) or NoClass. A nil raster yields NoClass everywhere.
func SampleLandcover(r LandcoverRaster, p Projection, b grid.Bounds) *grid.Layer[int] {
	raw := grid.NewLayer(b, NoClass)
	if r == nil || p == nil {
		return raw
	}
	b.Each(func(c grid.Cell) {
		lon, lat := p.CellToLonLat(c)
		if code, ok := r.Class(lon, lat); ok {
			raw.Set(c, code)
		}
	})

	out := raw.Clone()
	raw.Each(func(c grid.Cell, code int) {
		if code != NoClass {
			return
		}
		votes := make(map[int]int, 4)
		for _, o := range grid.Neighbors4 {
			if nc, ok := raw.At(c.Add(o.DX, o.DZ)); ok && nc != NoClass {
				votes[nc]++
			}
		}
		best, bestN := NoClass, 0
		for k, n := range votes {
			if n > bestN || (n == bestN && k < best) {
				best, bestN = k, n
			}
		}
		out.Set(c, best)
	})
	return out
}
