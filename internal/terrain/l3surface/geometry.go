package l3surface

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/banshee-data/geovoxel/internal/monitoring"
	"github.com/banshee-data/geovoxel/internal/terrain/features"
	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

type polyArea struct {
	poly orb.Polygon
	area float64
}

// validPolygons returns the polygon members of f and their total area. Any
// invalid member rejects the whole feature.
func validPolygons(f features.Feature) ([]polyArea, float64, error) {
	polys := f.Polygons()
	if len(polys) == 0 {
		return nil, 0, fmt.Errorf("no polygon geometry: %w", features.ErrInvalidGeometry)
	}
	out := make([]polyArea, 0, len(polys))
	total := 0.0
	for _, p := range polys {
		if err := features.ValidatePolygon(p); err != nil {
			return nil, 0, err
		}
		a := features.PolygonArea(p)
		out = append(out, polyArea{poly: p, area: a})
		total += a
	}
	return out, total, nil
}

// FootprintCells rasterizes building polygons. Invalid buildings are
// skipped and reported to warn.
func FootprintCells(buildings []features.Feature, b grid.Bounds, warn *monitoring.CappedLog) (grid.CellSet, int) {
	cells := grid.CellSet{}
	skipped := 0
	for _, f := range buildings {
		ps, _, err := validPolygons(f)
		if err != nil {
			skipped++
			warn.Reportf("building %s skipped: %v", f.ID, err)
			continue
		}
		for _, p := range ps {
			for _, c := range features.RasterizePolygon(p.poly, b) {
				cells.Add(c)
			}
		}
	}
	return cells, skipped
}
