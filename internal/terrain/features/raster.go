package features

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

// maxCrossingCheck bounds the quadratic self-intersection test.
const maxCrossingCheck = 4096

// ValidatePolygon rejects polygons whose outer ring is unclosed after
// closing, has zero area, or crosses itself.
func ValidatePolygon(p orb.Polygon) error {
	if len(p) == 0 {
		return fmt.Errorf("polygon has no rings: %w", ErrInvalidGeometry)
	}
	outer := closeRing(p[0])
	if len(outer) < 4 {
		return fmt.Errorf("outer ring has %d points: %w", len(outer), ErrInvalidGeometry)
	}
	if math.Abs(planar.Area(outer)) == 0 {
		return fmt.Errorf("outer ring has zero area: %w", ErrInvalidGeometry)
	}
	if len(outer) <= maxCrossingCheck && selfIntersects(outer) {
		return fmt.Errorf("outer ring self-intersects: %w", ErrInvalidGeometry)
	}
	return nil
}

// ValidateLine rejects lines with fewer than two distinct vertices.
func ValidateLine(ls orb.LineString) error {
	for i := 1; i < len(ls); i++ {
		if ls[i] != ls[0] {
			return nil
		}
	}
	return fmt.Errorf("line has no extent: %w", ErrInvalidGeometry)
}

func closeRing(r orb.Ring) orb.Ring {
	if len(r) > 0 && r[0] != r[len(r)-1] {
		out := make(orb.Ring, len(r), len(r)+1)
		copy(out, r)
		return append(out, r[0])
	}
	return r
}

func selfIntersects(r orb.Ring) bool {
	n := len(r) - 1
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if j == i+1 || (i == 0 && j == n-1) {
				continue // adjacent segments share a vertex
			}
			if segmentsCross(r[i], r[i+1], r[j], r[j+1]) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(a, b, c, d orb.Point) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)
	return d1*d2 < 0 && d3*d4 < 0
}

func orient(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// cellRange returns the cells whose centres lie inside bound, clipped to b.
func cellRange(bound orb.Bound, pad float64, b grid.Bounds) grid.Bounds {
	return grid.Bounds{
		MinX: int(math.Ceil(bound.Min[0] - pad)),
		MinZ: int(math.Ceil(bound.Min[1] - pad)),
		MaxX: int(math.Floor(bound.Max[0] + pad)),
		MaxZ: int(math.Floor(bound.Max[1] + pad)),
	}.Intersect(b)
}

// RasterizePolygon returns the in-bounds cells whose centres fall inside p,
// honouring holes. It tests every cell of the bounding rectangle.
func RasterizePolygon(p orb.Polygon, b grid.Bounds) []grid.Cell {
	if len(p) == 0 {
		return nil
	}
	var out []grid.Cell
	cellRange(p.Bound(), 0, b).Each(func(c grid.Cell) {
		if planar.PolygonContains(p, orb.Point{float64(c.X), float64(c.Z)}) {
			out = append(out, c)
		}
	})
	return out
}

// RasterizeBuffer returns the in-bounds cells whose centres lie within
// radius of the line. A radius of 0 keeps the cells the line passes
// through.
func RasterizeBuffer(ls orb.LineString, radius float64, b grid.Bounds) []grid.Cell {
	if len(ls) == 0 {
		return nil
	}
	reach := radius + 0.5
	var out []grid.Cell
	cellRange(ls.Bound(), reach, b).Each(func(c grid.Cell) {
		pt := orb.Point{float64(c.X), float64(c.Z)}
		for i := 1; i < len(ls); i++ {
			if planar.DistanceFromSegment(ls[i-1], ls[i], pt) <= reach {
				out = append(out, c)
				return
			}
		}
		if len(ls) == 1 && planar.Distance(ls[0], pt) <= reach {
			out = append(out, c)
		}
	})
	return out
}

// PolygonArea is the absolute planar area of p in square cells.
func PolygonArea(p orb.Polygon) float64 {
	return math.Abs(planar.Area(p))
}

// GridVertices snaps a line to cell coordinates, dropping consecutive
// repeats.
func GridVertices(ls orb.LineString) []grid.Cell {
	out := make([]grid.Cell, 0, len(ls))
	for _, p := range ls {
		c := grid.Cell{X: int(math.Round(p[0])), Z: int(math.Round(p[1]))}
		if len(out) > 0 && out[len(out)-1] == c {
			continue
		}
		out = append(out, c)
	}
	return out
}
