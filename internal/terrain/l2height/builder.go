package l2height

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/geovoxel/internal/terrain/grid"
	"github.com/banshee-data/geovoxel/internal/terrain/l1elevation"
)

// Builder turns a filled elevation map into levels.
type Builder struct {
	Baseline     int // level of the lowest sample
	SearchRadius int // ring radius searched by LevelAt outside the field
}

// Build returns round(elev - min) + Baseline for every cell, and the
// minimum elevation it measured against.
func (b Builder) Build(elev *grid.ElevationMap) (*grid.HeightField, float64) {
	minElev := l1elevation.MinElevation(elev)
	hf := grid.NewLayer(elev.Bounds(), b.Baseline)
	elev.Each(func(c grid.Cell, v float64) {
		hf.Set(c, int(math.Round(v-minElev))+b.Baseline)
	})
	return hf, minElev
}

// LevelAt returns the level of c. Cells outside the field take the rounded
// mean of the first square ring (radius 1..SearchRadius) holding any
// populated cell, or Baseline when every ring is empty.
func (b Builder) LevelAt(hf *grid.HeightField, c grid.Cell) int {
	if v, ok := hf.At(c); ok {
		return v
	}
	levels := make([]float64, 0, 8*b.SearchRadius)
	for r := 1; r <= b.SearchRadius; r++ {
		levels = levels[:0]
		for dx := -r; dx <= r; dx++ {
			for dz := -r; dz <= r; dz++ {
				if max(abs(dx), abs(dz)) != r {
					continue
				}
				if v, ok := hf.At(c.Add(dx, dz)); ok {
					levels = append(levels, float64(v))
				}
			}
		}
		if len(levels) > 0 {
			return int(math.Round(stat.Mean(levels, nil)))
		}
	}
	return b.Baseline
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
