package l1elevation

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

// cellRaster addresses samples directly by cell, with the identity
// projection below.
type cellRaster map[grid.Cell]float64

func (r cellRaster) Sample(lon, lat float64) (float64, bool) {
	v, ok := r[grid.Cell{X: int(lon), Z: int(lat)}]
	return v, ok
}

type identityProjection struct{}

func (identityProjection) CellToLonLat(c grid.Cell) (float64, float64) {
	return float64(c.X), float64(c.Z)
}

func filledRaster(b grid.Bounds, v float64) cellRaster {
	r := cellRaster{}
	b.Each(func(c grid.Cell) { r[c] = v })
	return r
}

func TestSampleElevation_TotalCoverageWithHole(t *testing.T) {
	t.Parallel()

	b := grid.NewBounds(0, 0, 8, 8)
	r := filledRaster(b, 10)
	for x := 3; x <= 5; x++ {
		for z := 3; z <= 5; z++ {
			delete(r, grid.Cell{X: x, Z: z})
		}
	}

	m, stats, err := SampleElevation(r, identityProjection{}, b)
	require.NoError(t, err)

	b.Each(func(c grid.Cell) {
		v, ok := m.At(c)
		require.True(t, ok)
		assert.False(t, math.IsNaN(v), "cell %s left unfilled", c)
	})
	assert.Equal(t, 9, stats.Missing)
	assert.Equal(t, 8, stats.NeighborFilled)
	assert.Equal(t, 1, stats.ZeroFilled)
	assert.Equal(t, 0.0, m.Get(grid.Cell{X: 4, Z: 4}), "centre has no valid raw neighbour")
	assert.Equal(t, 10.0, m.Get(grid.Cell{X: 3, Z: 4}))
}

func TestSampleElevation_AllNodata(t *testing.T) {
	t.Parallel()

	b := grid.NewBounds(0, 0, 2, 2)
	m, stats, err := SampleElevation(cellRaster{}, identityProjection{}, b)
	require.NoError(t, err)
	assert.Equal(t, 9, stats.ZeroFilled)
	for _, v := range m.Values() {
		assert.Equal(t, 0.0, v)
	}
}

func TestSampleElevation_AveragesRawNeighbours(t *testing.T) {
	t.Parallel()

	b := grid.NewBounds(0, 0, 2, 0)
	r := cellRaster{{X: 0, Z: 0}: 4, {X: 2, Z: 0}: 8}
	m, _, err := SampleElevation(r, identityProjection{}, b)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, m.Get(grid.Cell{X: 1, Z: 0}), 1e-9)
}

func TestSampleElevation_RejectsVoidAndInf(t *testing.T) {
	t.Parallel()

	b := grid.NewBounds(0, 0, 1, 0)
	r := cellRaster{{X: 0, Z: 0}: srtmVoid, {X: 1, Z: 0}: math.Inf(1)}
	_, stats, err := SampleElevation(r, identityProjection{}, b)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Missing)
}

func TestSampleElevation_MissingInput(t *testing.T) {
	t.Parallel()

	_, _, err := SampleElevation(nil, identityProjection{}, grid.NewBounds(0, 0, 1, 1))
	assert.ErrorIs(t, err, ErrMissingInput)

	_, _, err = SampleElevation(FlatRaster(1), identityProjection{}, grid.Bounds{MinX: 1})
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestMinElevation(t *testing.T) {
	t.Parallel()

	b := grid.NewBounds(0, 0, 1, 1)
	r := cellRaster{{X: 0, Z: 0}: 12, {X: 0, Z: 1}: -3.5, {X: 1, Z: 0}: 7, {X: 1, Z: 1}: 0}
	m, _, err := SampleElevation(r, identityProjection{}, b)
	require.NoError(t, err)
	assert.Equal(t, -3.5, MinElevation(m))
}

type classRaster map[grid.Cell]int

func (r classRaster) Class(lon, lat float64) (int, bool) {
	v, ok := r[grid.Cell{X: int(lon), Z: int(lat)}]
	return v, ok
}

func TestSampleLandcover_FillsFromNeighbours(t *testing.T) {
	t.Parallel()

	b := grid.NewBounds(0, 0, 2, 2)
	r := classRaster{}
	b.Each(func(c grid.Cell) { r[c] = 10 })
	delete(r, grid.Cell{X: 1, Z: 1})
	r[grid.Cell{X: 0, Z: 1}] = 210

	m := SampleLandcover(r, identityProjection{}, b)
	assert.Equal(t, 10, m.Get(grid.Cell{X: 1, Z: 1}))

	none := SampleLandcover(nil, identityProjection{}, b)
	assert.Equal(t, NoClass, none.Get(grid.Cell{X: 0, Z: 0}))
}

func TestLinearProjection(t *testing.T) {
	t.Parallel()

	p := LinearProjection{Bounds: grid.NewBounds(0, 0, 9, 9), West: 8, South: 47, East: 9, North: 48}
	lon, lat := p.CellToLonLat(grid.Cell{X: 0, Z: 0})
	assert.InDelta(t, 8.05, lon, 1e-9)
	assert.InDelta(t, 47.95, lat, 1e-9)
}

func TestParseTileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lat, lon int
		wantErr  bool
	}{
		{"N47E008.hgt", 47, 8, false},
		{"/data/s12w077.hgt.zip", -12, -77, false},
		{"X47E008.hgt", 0, 0, true},
		{"bogus", 0, 0, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lat, lon, err := ParseTileName(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lat, lat)
			assert.Equal(t, tt.lon, lon)
		})
	}
}

func TestReadHGT(t *testing.T) {
	t.Parallel()

	const size = 1201
	samples := make([]int16, size*size)
	samples[0] = 250            // north-west corner
	samples[(size-1)*size] = 17 // south-west corner
	samples[size/2*size+size/2] = srtmVoid
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, samples))

	tile, err := ReadHGT(&buf, 47, 8)
	require.NoError(t, err)
	assert.Equal(t, size, tile.Size)

	v, ok := tile.Sample(8, 48)
	require.True(t, ok)
	assert.Equal(t, 250.0, v)

	v, ok = tile.Sample(8, 47)
	require.True(t, ok)
	assert.Equal(t, 17.0, v)

	_, ok = tile.Sample(8.5, 47.5)
	assert.False(t, ok, "void sample")

	_, ok = TileSet{tile}.Sample(10, 47.5)
	assert.False(t, ok, "outside every tile")

	_, err = ReadHGT(bytes.NewReader(make([]byte, 10)), 0, 0)
	assert.ErrorContains(t, err, "unexpected hgt size")
}
