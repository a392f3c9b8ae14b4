package l1elevation

import (
	"errors"
	"math"

	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

// ErrMissingInput is returned when a required raster or the bounds are absent.
var ErrMissingInput = errors.New("missing required input")

// ElevationRaster samples elevation in metres. ok is false for nodata.
type ElevationRaster interface {
	Sample(lon, lat float64) (metres float64, ok bool)
}

// LandcoverRaster samples a land-cover classification code.
type LandcoverRaster interface {
	Class(lon, lat float64) (code int, ok bool)
}

// Projection back-projects a grid cell centre to geographic coordinates.
type Projection interface {
	CellToLonLat(c grid.Cell) (lon, lat float64)
}

// LinearProjection maps bounds linearly onto a lon/lat box. Row MinZ is the
// northern edge.
type LinearProjection struct {
	Bounds grid.Bounds
	West   float64
	South  float64
	East   float64
	North  float64
}

// CellToLonLat returns the geographic centre of c.
func (p LinearProjection) CellToLonLat(c grid.Cell) (float64, float64) {
	w := float64(max(p.Bounds.Width(), 1))
	d := float64(max(p.Bounds.Depth(), 1))
	fx := (float64(c.X-p.Bounds.MinX) + 0.5) / w
	fz := (float64(c.Z-p.Bounds.MinZ) + 0.5) / d
	return p.West + fx*(p.East-p.West), p.North - fz*(p.North-p.South)
}

// GridRaster is an in-memory geo-referenced raster. Values[row][col] with
// row 0 at North. NaN entries are nodata.
type GridRaster struct {
	West, South, East, North float64
	Values                   [][]float64
}

func (g *GridRaster) lookup(lon, lat float64) (float64, bool) {
	rows := len(g.Values)
	if rows == 0 || lon < g.West || lon > g.East || lat < g.South || lat > g.North {
		return 0, false
	}
	cols := len(g.Values[0])
	col := int((lon - g.West) / (g.East - g.West) * float64(cols))
	row := int((g.North - lat) / (g.North - g.South) * float64(rows))
	col = min(max(col, 0), cols-1)
	row = min(max(row, 0), rows-1)
	return g.Values[row][col], true
}

// Sample implements ElevationRaster.
func (g *GridRaster) Sample(lon, lat float64) (float64, bool) {
	v, ok := g.lookup(lon, lat)
	if !ok || !validElevation(v) {
		return 0, false
	}
	return v, true
}

// Class implements LandcoverRaster by truncating the stored value.
func (g *GridRaster) Class(lon, lat float64) (int, bool) {
	v, ok := g.lookup(lon, lat)
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return int(v), true
}

// FlatRaster returns the same elevation everywhere.
type FlatRaster float64

// Sample implements ElevationRaster.
func (f FlatRaster) Sample(float64, float64) (float64, bool) { return float64(f), true }

// srtmVoid is the SRTM data-void marker.
const srtmVoid = -32768

func validElevation(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v != srtmVoid
}
