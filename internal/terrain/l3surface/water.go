package l3surface

import (
	"github.com/banshee-data/geovoxel/internal/monitoring"
	"github.com/banshee-data/geovoxel/internal/terrain/features"
	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

// HydrographyCells rasterizes water polygons and buffered river
// centerlines. Invalid features are skipped and reported to warn.
func HydrographyCells(water []features.Feature, b grid.Bounds, buffer int, warn *monitoring.CappedLog) (grid.CellSet, int) {
	cells := grid.CellSet{}
	skipped := 0
	for _, f := range water {
		if polys := f.Polygons(); len(polys) > 0 {
			ps, _, err := validPolygons(f)
			if err != nil {
				skipped++
				warn.Reportf("water %s skipped: %v", f.ID, err)
				continue
			}
			for _, p := range ps {
				for _, c := range features.RasterizePolygon(p.poly, b) {
					cells.Add(c)
				}
			}
			continue
		}
		for _, ls := range f.Lines() {
			if err := features.ValidateLine(ls); err != nil {
				skipped++
				warn.Reportf("waterway %s skipped: %v", f.ID, err)
				continue
			}
			for _, c := range features.RasterizeBuffer(ls, float64(buffer), b) {
				cells.Add(c)
			}
		}
	}
	return cells, skipped
}

// WaterCorrection records what ApplyWater changed.
type WaterCorrection struct {
	Cells   []grid.Cell       // cells now water, x-major
	Vacated map[grid.Cell]int // former surface level, to be cleared
}

// ApplyWater makes every cell in water a water cell and lowers its level
// by one, even where that breaks the adjacency property. The caller
// decides whether to settle the height field afterwards.
func ApplyWater(hf *grid.HeightField, mat *grid.MaterialMap, water grid.CellSet) WaterCorrection {
	wc := WaterCorrection{Vacated: make(map[grid.Cell]int, len(water))}
	for _, c := range water.Sorted() {
		level, ok := hf.At(c)
		if !ok {
			continue
		}
		mat.Set(c, grid.Water)
		hf.Set(c, level-1)
		wc.Cells = append(wc.Cells, c)
		wc.Vacated[c] = level
	}
	if len(wc.Cells) > 0 {
		monitoring.Logf("[SurfaceResolver] water correction lowered %d cells", len(wc.Cells))
	}
	return wc
}

// Lowered returns the former level of every cell that sits lower in after
// than in before. The compositor clears those levels.
func Lowered(before, after *grid.HeightField) map[grid.Cell]int {
	out := make(map[grid.Cell]int)
	after.Each(func(c grid.Cell, level int) {
		if prev, ok := before.At(c); ok && prev > level {
			out[c] = prev
		}
	})
	return out
}
