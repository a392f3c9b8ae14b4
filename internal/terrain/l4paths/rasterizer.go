package l4paths

import (
	"fmt"

	"github.com/banshee-data/geovoxel/internal/terrain/features"
	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

// Segment is one rasterized line of a path feature.
type Segment struct {
	FeatureID  string
	Category   Category
	Style      Style
	Width      int
	Mode       Mode
	Layer      int
	Centerline []grid.Cell
	bands      [][]grid.Cell
	axes       []bool // true when the band runs along z
}

// Length is the number of centerline cells.
func (s *Segment) Length() int { return len(s.Centerline) }

// Band returns the width band across centerline cell i, from the low
// offset to the high one.
func (s *Segment) Band(i int) []grid.Cell { return s.bands[i] }

// Edges returns the two cells just outside the band at centerline cell i.
func (s *Segment) Edges(i int) (lo, hi grid.Cell) {
	band := s.bands[i]
	first, last := band[0], band[len(band)-1]
	if s.axes[i] {
		return first.Add(0, -1), last.Add(0, 1)
	}
	return first.Add(-1, 0), last.Add(1, 0)
}

// Cells returns every band cell once, in centerline order.
func (s *Segment) Cells() []grid.Cell {
	seen := grid.CellSet{}
	var out []grid.Cell
	for _, band := range s.bands {
		for _, c := range band {
			if seen.Has(c) {
				continue
			}
			seen.Add(c)
			out = append(out, c)
		}
	}
	return out
}

// Rasterize turns each line member of f into a Segment. Members with no
// extent after snapping to cells fail with ErrInvalidGeometry; the others
// are still returned.
func Rasterize(f features.Feature) ([]*Segment, error) {
	cat, ok := CategoryOf(f.Tags)
	if !ok {
		return nil, fmt.Errorf("feature %s has no path category: %w", f.ID, features.ErrInvalidGeometry)
	}
	style := StyleFor(cat)
	width := WidthFor(f.Tags, style)
	mode := ModeOf(f.Tags)
	layer := LayerOf(f.Tags)

	var out []*Segment
	var firstErr error
	for _, ls := range f.Lines() {
		verts := features.GridVertices(ls)
		if len(verts) < 2 {
			if firstErr == nil {
				firstErr = fmt.Errorf("feature %s: line collapses to one cell: %w", f.ID, features.ErrInvalidGeometry)
			}
			continue
		}
		seg := &Segment{
			FeatureID: f.ID,
			Category:  cat,
			Style:     style,
			Width:     width,
			Mode:      mode,
			Layer:     layer,
		}
		seg.setCenterline(grid.Polyline(verts))
		out = append(out, seg)
	}
	if len(out) == 0 && firstErr == nil {
		firstErr = fmt.Errorf("feature %s has no line geometry: %w", f.ID, features.ErrInvalidGeometry)
	}
	return out, firstErr
}

// NewSegment builds a segment directly from a centerline, for callers that
// already work in cells.
func NewSegment(id string, cat Category, width int, mode Mode, centerline []grid.Cell) *Segment {
	s := &Segment{FeatureID: id, Category: cat, Style: StyleFor(cat), Width: max(width, 1), Mode: mode}
	s.setCenterline(centerline)
	return s
}

// setCenterline computes the perpendicular band for every centerline
// cell. The band axis follows whichever axis the local direction is not
// dominant in, so bands are axis-aligned steps rather than rotated.
func (s *Segment) setCenterline(cl []grid.Cell) {
	s.Centerline = cl
	s.bands = make([][]grid.Cell, len(cl))
	s.axes = make([]bool, len(cl))
	lo := -(s.Width / 2)
	for i, c := range cl {
		prev, next := cl[max(i-1, 0)], cl[min(i+1, len(cl)-1)]
		dx, dz := next.X-prev.X, next.Z-prev.Z
		alongZ := abs(dx) >= abs(dz)
		s.axes[i] = alongZ
		band := make([]grid.Cell, 0, s.Width)
		for k := lo; k < lo+s.Width; k++ {
			if alongZ {
				band = append(band, c.Add(0, k))
			} else {
				band = append(band, c.Add(k, 0))
			}
		}
		s.bands[i] = band
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
