package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/geovoxel/internal/terrain/grid"
	"github.com/banshee-data/geovoxel/internal/terrain/storage/sqlite"
)

const bridgeGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "way/1",
      "properties": {"highway": "primary", "bridge": "yes", "width": "5"},
      "geometry": {"type": "LineString", "coordinates": [[10, 30], [34, 30]]}
    }
  ]
}`

func TestFlagParsing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want options
	}{
		{
			name: "defaults",
			args: nil,
			want: options{flatMetres: 0, bounds: "0,0,255,255", bbox: "0,0,1,1", minLevel: -128},
		},
		{
			name: "explicit",
			args: []string{"-flat", "12.5", "-bounds", "0,0,63,63", "-db", "runs.db", "-min-level=-64"},
			want: options{flatMetres: 12.5, bounds: "0,0,63,63", bbox: "0,0,1,1", dbPath: "runs.db", minLevel: -64},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var o options
			require.NoError(t, newFlagSet(&o).Parse(tt.args))
			assert.Equal(t, tt.want, o)
		})
	}
}

func TestParseInts(t *testing.T) {
	t.Parallel()

	v, err := parseInts(" 1, -2,3,4", 4)
	require.NoError(t, err)
	assert.Equal(t, []int{1, -2, 3, 4}, v)

	_, err = parseInts("1,2,3", 4)
	assert.Error(t, err)
	_, err = parseInts("1,2,x,4", 4)
	assert.Error(t, err)
}

func TestRun_FlatBridgeWithStoreAndDiagnostics(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	featuresPath := filepath.Join(dir, "features.geojson")
	require.NoError(t, os.WriteFile(featuresPath, []byte(bridgeGeoJSON), 0644))
	dbPath := filepath.Join(dir, "terrain.db")
	outDir := filepath.Join(dir, "out")

	w, err := run(context.Background(), options{
		featuresPath: featuresPath,
		flatMetres:   12,
		bounds:       "0,0,63,63",
		bbox:         "0,0,1,1",
		dbPath:       dbPath,
		outDir:       outDir,
		minLevel:     -128,
	})
	require.NoError(t, err)
	require.Len(t, w.Profiles, 1)
	assert.Equal(t, "way/1", w.Profiles[0].FeatureID)
	assert.Equal(t, w.Config.Baseline+7, w.Result.Levels.Get(grid.Cell{X: 22, Z: 30}))

	for _, name := range []string{"heights.html", "materials.html", filepath.Join("sections", "bridge_way_1.png")} {
		info, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.Greater(t, info.Size(), int64(0), name)
	}

	store, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	defer store.Close()

	runs, err := store.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, sqlite.RunCompleted, runs[0].Status)
	assert.Contains(t, string(runs[0].StatsJSON), `"profiles":1`)

	profiles, err := store.ListProfiles(context.Background(), runs[0].RunID)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

func TestRun_BadInputs(t *testing.T) {
	t.Parallel()

	_, err := run(context.Background(), options{bounds: "0,0,9", bbox: "0,0,1,1"})
	assert.ErrorContains(t, err, "-bounds")

	_, err = run(context.Background(), options{bounds: "0,0,9,9", bbox: "0,0,1,1", hgtPaths: "N00E000.hgt"})
	assert.Error(t, err)
}
