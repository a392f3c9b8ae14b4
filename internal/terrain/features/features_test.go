package features

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

func TestTags_Truthy(t *testing.T) {
	t.Parallel()

	tags := Tags{"bridge": "yes", "tunnel": "no", "covered": "0", "layer": "-1", "empty": " "}
	assert.True(t, tags.Truthy("bridge"))
	assert.True(t, tags.Truthy("layer"))
	assert.False(t, tags.Truthy("tunnel"))
	assert.False(t, tags.Truthy("covered"))
	assert.False(t, tags.Truthy("empty"))
	assert.False(t, tags.Truthy("missing"))
}

func TestTags_Numbers(t *testing.T) {
	t.Parallel()

	tags := Tags{"layer": "1;2", "level": "-2", "width": "7.5 m", "bad": "wide"}
	n, ok := tags.Int("layer")
	assert.True(t, ok)
	assert.Equal(t, 1, n)
	n, ok = tags.Int("level")
	assert.True(t, ok)
	assert.Equal(t, -2, n)
	f, ok := tags.Float("width")
	assert.True(t, ok)
	assert.InDelta(t, 7.5, f, 1e-9)
	_, ok = tags.Int("bad")
	assert.False(t, ok)
}

func square(x0, z0, x1, z1 float64) orb.Polygon {
	return orb.Polygon{orb.Ring{{x0, z0}, {x1, z0}, {x1, z1}, {x0, z1}, {x0, z0}}}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	line := orb.LineString{{0, 0}, {5, 0}}
	tests := []struct {
		name string
		f    Feature
		want Class
	}{
		{"road", Feature{Tags: Tags{"highway": "primary"}, Geometry: line}, ClassPath},
		{"rail", Feature{Tags: Tags{"railway": "rail"}, Geometry: orb.MultiLineString{line}}, ClassPath},
		{"abandoned rail", Feature{Tags: Tags{"railway": "abandoned"}, Geometry: line}, ClassPath},
		{"platform ignored", Feature{Tags: Tags{"railway": "platform"}, Geometry: line}, ClassIgnored},
		{"river", Feature{Tags: Tags{"waterway": "river"}, Geometry: line}, ClassWater},
		{"lake", Feature{Tags: Tags{"natural": "water"}, Geometry: square(0, 0, 4, 4)}, ClassWater},
		{"building", Feature{Tags: Tags{"building": "yes"}, Geometry: square(0, 0, 4, 4)}, ClassBuilding},
		{"park", Feature{Tags: Tags{"leisure": "park"}, Geometry: square(0, 0, 4, 4)}, ClassZone},
		{"bridge outline", Feature{Tags: Tags{"man_made": "bridge"}, Geometry: square(0, 0, 4, 4)}, ClassBridgeArea},
		{"bridge multipolygon", Feature{Tags: Tags{"bridge": "yes"}, Geometry: orb.MultiPolygon{square(0, 0, 4, 4)}}, ClassBridgeArea},
		{"bridge line is not an area", Feature{Tags: Tags{"man_made": "bridge"}, Geometry: line}, ClassIgnored},
		{"covered tunnel area", Feature{Tags: Tags{"bridge": "yes", "tunnel": "yes"}, Geometry: square(0, 0, 4, 4)}, ClassIgnored},
		{"road as area ignored", Feature{Tags: Tags{"highway": "primary"}, Geometry: square(0, 0, 4, 4)}, ClassIgnored},
		{"point", Feature{Tags: Tags{"amenity": "bench"}, Geometry: orb.Point{1, 1}}, ClassIgnored},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.f))
		})
	}
}

func TestIsRailway(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tags Tags
		want bool
	}{
		{Tags{"railway": "rail"}, true},
		{Tags{"railway": "abandoned"}, true},
		{Tags{"railway": "disused"}, true},
		{Tags{"disused:railway": "rail"}, true},
		{Tags{"disused:railway": "station"}, false},
		{Tags{"railway": "construction", "construction": "light_rail"}, true},
		{Tags{"railway": "construction", "construction:railway": "tram"}, true},
		{Tags{"railway": "construction"}, false},
		{Tags{"railway": "proposed", "proposed": "rail"}, true},
		{Tags{"railway": "platform"}, false},
		{Tags{"railway": "station"}, false},
		{Tags{"highway": "path"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRailway(tt.tags), "%v", tt.tags)
	}
}

const sampleCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": 42, "properties": {"highway": "residential", "layer": 1, "bridge": true},
     "geometry": {"type": "LineString", "coordinates": [[0, 5], [20, 5]]}},
    {"type": "Feature", "properties": {"landuse": "residential"},
     "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [10, 0], [10, 10], [0, 10], [0, 0]]]}},
    {"type": "Feature", "properties": {"waterway": "river"},
     "geometry": {"type": "LineString", "coordinates": [[3, 0], [3, 30]]}},
    {"type": "Feature", "properties": {"name": "unused"}, "geometry": {"type": "Point", "coordinates": [1, 1]}}
  ]
}`

func TestDecode(t *testing.T) {
	t.Parallel()

	c, err := Decode([]byte(sampleCollection))
	require.NoError(t, err)
	require.Len(t, c.Paths, 1)
	assert.Len(t, c.Zones, 1)
	assert.Len(t, c.Water, 1)
	assert.Equal(t, 1, c.Ignored)

	road := c.Paths[0]
	assert.Equal(t, "42", road.ID)
	assert.Equal(t, "1", road.Tags.Get("layer"))
	assert.Equal(t, "yes", road.Tags.Get("bridge"))
	assert.Equal(t, "feature-1", c.Zones[0].ID)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "features.geojson")
	require.NoError(t, os.WriteFile(path, []byte(sampleCollection), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Paths, 1)

	_, err = Load(filepath.Join(dir, "features.shp"))
	assert.ErrorContains(t, err, "extension")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"type":`), 0644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestValidatePolygon(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidatePolygon(square(0, 0, 3, 3)))

	bowtie := orb.Polygon{orb.Ring{{0, 0}, {4, 4}, {4, 0}, {0, 4}, {0, 0}}}
	assert.ErrorIs(t, ValidatePolygon(bowtie), ErrInvalidGeometry)

	flat := orb.Polygon{orb.Ring{{0, 0}, {4, 0}, {8, 0}, {0, 0}}}
	assert.ErrorIs(t, ValidatePolygon(flat), ErrInvalidGeometry)

	assert.ErrorIs(t, ValidatePolygon(orb.Polygon{}), ErrInvalidGeometry)
	assert.ErrorIs(t, ValidateLine(orb.LineString{{1, 1}, {1, 1}}), ErrInvalidGeometry)
	assert.NoError(t, ValidateLine(orb.LineString{{1, 1}, {2, 1}}))
}

func TestRasterizePolygon(t *testing.T) {
	t.Parallel()

	b := grid.NewBounds(0, 0, 20, 20)
	cells := RasterizePolygon(square(1.5, 1.5, 5.5, 4.5), b)
	assert.Len(t, cells, 4*3)

	withHole := square(0.5, 0.5, 6.5, 6.5)
	withHole = append(withHole, orb.Ring{{2.5, 2.5}, {2.5, 4.5}, {4.5, 4.5}, {4.5, 2.5}, {2.5, 2.5}})
	cells = RasterizePolygon(withHole, b)
	assert.Len(t, cells, 36-4)
	assert.NotContains(t, cells, grid.Cell{X: 3, Z: 3})

	clipped := RasterizePolygon(square(-10.5, -10.5, 1.5, 1.5), b)
	assert.Len(t, clipped, 4, "clipped to bounds")
}

func TestRasterizeBuffer(t *testing.T) {
	t.Parallel()

	b := grid.NewBounds(0, 0, 20, 20)
	cells := RasterizeBuffer(orb.LineString{{2, 10}, {12, 10}}, 1, b)
	set := grid.NewCellSet(cells...)
	assert.True(t, set.Has(grid.Cell{X: 7, Z: 9}))
	assert.True(t, set.Has(grid.Cell{X: 7, Z: 11}))
	assert.False(t, set.Has(grid.Cell{X: 7, Z: 12}))
	assert.True(t, set.Has(grid.Cell{X: 13, Z: 10}), "end cap")
}

func TestGridVertices(t *testing.T) {
	t.Parallel()

	got := GridVertices(orb.LineString{{0.2, 0.1}, {0.4, -0.3}, {3.6, 0}})
	assert.Equal(t, []grid.Cell{{X: 0, Z: 0}, {X: 4, Z: 0}}, got)
}
