package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/geovoxel/internal/monitoring"
	"github.com/banshee-data/geovoxel/internal/terrain/features"
	"github.com/banshee-data/geovoxel/internal/terrain/grid"
	"github.com/banshee-data/geovoxel/internal/terrain/l1elevation"
	"github.com/banshee-data/geovoxel/internal/terrain/l2height"
	"github.com/banshee-data/geovoxel/internal/terrain/l5profiles"
	"github.com/banshee-data/geovoxel/internal/terrain/l6composite"
	"github.com/banshee-data/geovoxel/internal/terrain/storage/sqlite"
)

func init() {
	monitoring.SetLogger(nil)
}

func square(x0, z0, x1, z1 float64) orb.Polygon {
	return orb.Polygon{orb.Ring{{x0, z0}, {x1, z0}, {x1, z1}, {x0, z1}, {x0, z0}}}
}

func flatInputs(b grid.Bounds, fs ...features.Feature) Inputs {
	coll := &features.Collection{}
	for _, f := range fs {
		coll.Add(f)
	}
	return Inputs{
		Bounds:     b,
		Elevation:  l1elevation.FlatRaster(12),
		Projection: l1elevation.LinearProjection{Bounds: b, West: 0, South: 0, East: 1, North: 1},
		Features:   coll,
	}
}

var bridgeFeature = features.Feature{
	ID:       "way/1",
	Tags:     features.Tags{"highway": "primary", "bridge": "yes", "width": "5"},
	Geometry: orb.LineString{{30, 50}, {54, 50}},
}

// ---- Stage validation ----

func noop(context.Context, *World) error { return nil }

func TestValidate_DefaultStages(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Validate(DefaultStages()))
}

func TestValidate_Rejects(t *testing.T) {
	t.Parallel()

	swapped := DefaultStages()
	swapped[0], swapped[1] = swapped[1], swapped[0]

	noProfiles := DefaultStages()
	noProfiles = append(noProfiles[:6], noProfiles[7:]...)

	tests := []struct {
		name   string
		stages []Stage
		want   string
	}{
		{"heights before sample", swapped, `"heights" reads "elevation"`},
		{"composite without profiles", noProfiles, `"composite" reads "profiles"`},
		{"duplicate name", []Stage{{Name: "a", Run: noop}, {Name: "a", Run: noop}}, "appears twice"},
		{"missing run", []Stage{{Name: "a"}}, "run function"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(tt.stages)
			assert.ErrorIs(t, err, ErrStageOrder)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestRun_InvalidOrderRunsNothing(t *testing.T) {
	t.Parallel()

	ran := 0
	count := func(context.Context, *World) error { ran++; return nil }
	stages := []Stage{
		{Name: "first", Writes: []Layer{LayerElevation}, Run: count},
		{Name: "second", Reads: []Layer{LayerHeights}, Run: count},
	}
	err := Run(context.Background(), &World{}, stages)
	assert.ErrorIs(t, err, ErrStageOrder)
	assert.Zero(t, ran, "validation happens before any stage mutates the world")
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := &World{}
	err := Run(ctx, w, []Stage{{Name: "only", Run: noop}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.Completed)
}

func TestNewWorld_MissingInput(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	_, err := NewWorld(Inputs{}, cfg)
	assert.ErrorIs(t, err, l1elevation.ErrMissingInput)

	in := flatInputs(grid.NewBounds(0, 0, 9, 9))
	in.Elevation = nil
	_, err = NewWorld(in, cfg)
	assert.ErrorIs(t, err, l1elevation.ErrMissingInput)
}

// ---- End to end ----

func TestExecute_FlatDEMWithBridge(t *testing.T) {
	t.Parallel()

	b := grid.NewBounds(0, 0, 99, 99)
	beach := features.Feature{ID: "beach", Tags: features.Tags{"natural": "beach"}, Geometry: square(70.5, 70.5, 80.5, 80.5)}
	in := flatInputs(b, bridgeFeature, beach)
	sink := l6composite.NewMemorySink(b, -64)
	in.Sink = sink

	w, err := Execute(context.Background(), in, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, w.Completed, len(DefaultStages()))

	const g = -60
	assert.Equal(t, 10000, w.Stats.Cells)
	assert.Zero(t, w.Stats.MissingSamples)
	assert.True(t, w.Stats.SolverConverged)
	assert.Empty(t, l2height.CheckAdjacency(w.Heights))

	require.Len(t, w.Profiles, 1)
	p := w.Profiles[0]
	want := []int{
		g, g + 1, g + 2, g + 3, g + 4, g + 5, g + 6,
		g + 7, g + 7, g + 7, g + 7, g + 7, g + 7, g + 7, g + 7, g + 7, g + 7, g + 7,
		g + 6, g + 5, g + 4, g + 3, g + 2, g + 1, g,
	}
	assert.Equal(t, want, p.Centerline)
	assert.Len(t, p.Deck, 125)

	walls := p.VoxelsOf(grid.Wall)
	assert.Len(t, walls, 50)
	for _, v := range walls {
		assert.Contains(t, []int{47, 53}, v.Cell.Z, "walls run along both band edges")
		assert.Equal(t, want[v.Cell.X-30]+1, v.Level)
	}

	res := w.Result
	require.NotNil(t, res)
	assert.Equal(t, g+7, res.Levels.Get(grid.Cell{X: 42, Z: 50}))
	assert.Equal(t, grid.Concrete, res.Materials.Get(grid.Cell{X: 42, Z: 50}))
	assert.Equal(t, g, res.Levels.Get(grid.Cell{X: 10, Z: 10}))
	assert.True(t, res.Masks.Road.Has(grid.Cell{X: 42, Z: 52}))
	assert.True(t, res.Masks.Beach.Has(grid.Cell{X: 75, Z: 75}))
	assert.Equal(t, grid.Sand, res.Materials.Get(grid.Cell{X: 75, Z: 75}))

	assert.Equal(t, 10000+len(p.Voxels), res.Written)
	assert.Zero(t, res.WriteFailures)
	assert.Equal(t, grid.Wall, sink.At(grid.Cell{X: 42, Z: 53}, g+8))
}

func TestExecute_AreaBridgeBesideLinearDeck(t *testing.T) {
	t.Parallel()

	b := grid.NewBounds(0, 0, 99, 99)
	area := features.Feature{
		ID:       "way/2",
		Tags:     features.Tags{"man_made": "bridge"},
		Geometry: orb.Polygon{square(39.5, 40.5, 44.5, 59.5)[0], square(40.5, 55.5, 42.5, 57.5)[0]},
	}
	in := flatInputs(b, bridgeFeature, area)
	sink := l6composite.NewMemorySink(b, -64)
	in.Sink = sink

	w, err := Execute(context.Background(), in, DefaultConfig())
	require.NoError(t, err)

	const g = -60
	require.Len(t, w.Profiles, 2)
	assert.Equal(t, 2, w.Stats.Profiles)
	var deck *l5profiles.Profile
	for _, p := range w.Profiles {
		if p.FeatureID == "way/2" {
			deck = p
		}
	}
	require.NotNil(t, deck)

	// 95 outline cells, less 4 in the hole and 35 under the linear deck
	// and its walls.
	assert.Len(t, deck.Deck, 95-4-35)
	_, ok := deck.Level(grid.Cell{X: 42, Z: 50})
	assert.False(t, ok)
	_, ok = deck.Level(grid.Cell{X: 42, Z: 57})
	assert.False(t, ok)
	level, ok := deck.Level(grid.Cell{X: 42, Z: 45})
	require.True(t, ok)
	assert.Equal(t, g+1, level)

	res := w.Result
	assert.Equal(t, g+1, res.Levels.Get(grid.Cell{X: 42, Z: 45}))
	assert.Equal(t, grid.Concrete, res.Materials.Get(grid.Cell{X: 42, Z: 45}))
	assert.Equal(t, g, res.Levels.Get(grid.Cell{X: 42, Z: 57}))
	assert.Equal(t, g+7, res.Levels.Get(grid.Cell{X: 42, Z: 50}))
	assert.Equal(t, grid.Concrete, sink.At(grid.Cell{X: 40, Z: 59}, g+1))
	assert.Equal(t, grid.Wall, sink.At(grid.Cell{X: 42, Z: 53}, g+8))
}

func TestExecute_WaterAndInvalidGeometry(t *testing.T) {
	t.Parallel()

	b := grid.NewBounds(0, 0, 39, 39)
	lake := features.Feature{ID: "lake", Tags: features.Tags{"natural": "water"}, Geometry: square(9.5, 9.5, 19.5, 19.5)}
	stub := features.Feature{ID: "stub", Tags: features.Tags{"highway": "footway"}, Geometry: orb.LineString{{5, 5}, {5.2, 5.1}}}
	in := flatInputs(b, lake, stub)

	w, err := Execute(context.Background(), in, DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, 100, w.Stats.WaterCells)
	assert.Equal(t, 1, w.Stats.InvalidGeometry)
	assert.Equal(t, 1, w.Warnings.Count())
	assert.Equal(t, -61, w.Heights.Get(grid.Cell{X: 15, Z: 15}))
	assert.Equal(t, grid.Water, w.Result.Materials.Get(grid.Cell{X: 15, Z: 15}))
	assert.True(t, w.Result.Masks.Water.Has(grid.Cell{X: 10, Z: 10}))
	assert.Empty(t, l2height.CheckAdjacency(w.Heights))
	assert.Equal(t, -60, w.Vacated[grid.Cell{X: 15, Z: 15}])
	assert.Equal(t, 100, w.Result.Cleared)
}

// eastSlope rises one metre per cell eastward over a LinearProjection
// spanning lon 0..1.
type eastSlope float64

func (w eastSlope) Sample(lon, _ float64) (float64, bool) { return lon * float64(w), true }

type write struct {
	Level    int
	Material grid.Material
}

// voxelLog records every write per cell, in order.
type voxelLog map[grid.Cell][]write

func (l voxelLog) SetVoxel(c grid.Cell, level int, m grid.Material) error {
	l[c] = append(l[c], write{Level: level, Material: m})
	return nil
}

func TestExecute_SlopedShore(t *testing.T) {
	t.Parallel()

	b := grid.NewBounds(0, 0, 39, 39)
	lake := features.Feature{ID: "lake", Tags: features.Tags{"natural": "water"}, Geometry: square(9.5, 9.5, 19.5, 19.5)}
	shore := grid.Cell{X: 20, Z: 15}
	water := grid.Cell{X: 19, Z: 15}

	run := func(t *testing.T, reconcile bool) (*World, voxelLog) {
		t.Helper()
		in := flatInputs(b, lake)
		in.Elevation = eastSlope(b.Width())
		sink := voxelLog{}
		in.Sink = sink
		cfg := DefaultConfig()
		cfg.ReconcileShorelines = reconcile
		w, err := Execute(context.Background(), in, cfg)
		require.NoError(t, err)
		return w, sink
	}

	t.Run("reconcile lowers the uphill shore", func(t *testing.T) {
		t.Parallel()
		w, sink := run(t, true)
		g := w.Config.Baseline

		assert.Equal(t, g+19-1, w.Heights.Get(water))
		assert.Equal(t, g+19, w.Heights.Get(shore), "one above the water")
		assert.Positive(t, w.Stats.ShorelineSettled)
		assert.Empty(t, l2height.CheckAdjacency(w.Heights))

		assert.Equal(t, g+20, w.Vacated[shore])
		assert.Equal(t, []write{
			{Level: g + 20, Material: grid.Air},
			{Level: g + 19, Material: w.Result.Materials.Get(shore)},
		}, sink[shore])
	})

	t.Run("without reconcile the shore step stays", func(t *testing.T) {
		t.Parallel()
		w, sink := run(t, false)
		g := w.Config.Baseline

		assert.Equal(t, g+20, w.Heights.Get(shore))
		assert.Zero(t, w.Stats.ShorelineSettled)
		violations := l2height.CheckAdjacency(w.Heights)
		require.NotEmpty(t, violations)
		for _, v := range violations {
			assert.Equal(t, 2, max(v.Delta, -v.Delta), "only the lowered water edge breaks adjacency")
		}

		_, lowered := w.Vacated[shore]
		assert.False(t, lowered)
		assert.Len(t, sink[shore], 1)
		assert.Equal(t, []write{
			{Level: g + 19, Material: grid.Air},
			{Level: g + 18, Material: grid.Water},
		}, sink[water])
	})
}

func TestExecute_CommitsThroughStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "terrain.db"))
	require.NoError(t, err)
	defer store.Close()

	b := grid.NewBounds(0, 0, 99, 99)
	run, err := store.CreateRun(ctx, b, nil)
	require.NoError(t, err)

	in := flatInputs(b, bridgeFeature)
	in.Store = store
	in.RunID = run.RunID
	w, err := Execute(ctx, in, DefaultConfig())
	require.NoError(t, err)

	hf, err := store.LoadHeights(ctx, run.RunID)
	require.NoError(t, err)
	assert.True(t, grid.Equal(hf, w.Heights))

	summaries, err := store.ListProfiles(ctx, run.RunID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "way/1", summaries[0].FeatureID)
	assert.Equal(t, 125, summaries[0].DeckCells)
}
