package pipeline

import (
	"context"
	"fmt"

	"github.com/banshee-data/geovoxel/internal/monitoring"
	"github.com/banshee-data/geovoxel/internal/terrain/features"
	"github.com/banshee-data/geovoxel/internal/terrain/grid"
	"github.com/banshee-data/geovoxel/internal/terrain/l1elevation"
	"github.com/banshee-data/geovoxel/internal/terrain/l2height"
	"github.com/banshee-data/geovoxel/internal/terrain/l3surface"
	"github.com/banshee-data/geovoxel/internal/terrain/l4paths"
	"github.com/banshee-data/geovoxel/internal/terrain/l5profiles"
	"github.com/banshee-data/geovoxel/internal/terrain/l6composite"
)

// SnapshotStore persists committed layers and reads them back. It is
// implemented by storage/sqlite.Store.
type SnapshotStore interface {
	SaveHeights(ctx context.Context, runID, stage string, hf *grid.HeightField) error
	LoadHeights(ctx context.Context, runID string) (*grid.HeightField, error)
	SaveMaterials(ctx context.Context, runID, stage string, m *grid.MaterialMap) error
	LoadMaterials(ctx context.Context, runID string) (*grid.MaterialMap, error)
	SaveProfiles(ctx context.Context, runID string, profiles []*l5profiles.Profile) error
}

// Inputs are the read-only sources of a run. Landcover, Features, Sink and
// Store are optional.
type Inputs struct {
	Bounds     grid.Bounds
	Elevation  l1elevation.ElevationRaster
	Landcover  l1elevation.LandcoverRaster
	Projection l1elevation.Projection
	Features   *features.Collection
	Sink       l6composite.VoxelSink
	Store      SnapshotStore
	RunID      string
}

// Stats summarizes a run for logging and the run record.
type Stats struct {
	Cells                int  `json:"cells"`
	MissingSamples       int  `json:"missing_samples"`
	SolverConverged      bool `json:"solver_converged"`
	SettledCells         int  `json:"settled_cells"`
	Segments             int  `json:"segments"`
	InvalidGeometry      int  `json:"invalid_geometry"`
	WaterCells           int  `json:"water_cells"`
	ShorelineSettled     int  `json:"shoreline_settled"`
	Profiles             int  `json:"profiles"`
	UnresolvableProfiles int  `json:"unresolvable_profiles"`
	VoxelsWritten        int  `json:"voxels_written"`
	WriteFailures        int  `json:"write_failures"`
}

// World is the single mutable state of a run. Stages fill it in order.
type World struct {
	In     Inputs
	Config Config

	Elevation      *grid.ElevationMap
	ElevationStats l1elevation.Stats
	Landcover      *grid.Layer[int]
	MinElevation   float64
	Heights        *grid.HeightField
	Solve          l2height.SolveResult
	Segments       []*l4paths.Segment
	Buildings      grid.CellSet
	Infrastructure grid.CellSet
	Surface        *l3surface.Result
	Materials      *grid.MaterialMap
	WaterCells     grid.CellSet
	Water          l3surface.WaterCorrection
	Vacated        map[grid.Cell]int // former level of cells lowered by water
	Profiles       []*l5profiles.Profile
	Result         *l6composite.Result

	Stats     Stats
	Completed []string
	Warnings  *monitoring.CappedLog

	heights l2height.Builder
}

// NewWorld checks the required inputs and returns an empty world.
func NewWorld(in Inputs, cfg Config) (*World, error) {
	if in.Bounds.Empty() {
		return nil, fmt.Errorf("empty bounds %s: %w", in.Bounds, l1elevation.ErrMissingInput)
	}
	if in.Elevation == nil || in.Projection == nil {
		return nil, fmt.Errorf("elevation raster and projection are required: %w", l1elevation.ErrMissingInput)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	if in.Features == nil {
		in.Features = &features.Collection{}
	}
	return &World{
		In:       in,
		Config:   cfg,
		Warnings: monitoring.NewCappedLog("Pipeline", cfg.MaxWarnings),
		heights:  l2height.Builder{Baseline: cfg.Baseline, SearchRadius: cfg.SearchRadius},
	}, nil
}

// CommittedLevel reads the committed height field, resolving cells
// outside it from nearby populated rings.
func (w *World) CommittedLevel(c grid.Cell) int {
	return w.heights.LevelAt(w.Heights, c)
}

// CommittedMaterial reads the committed surface material.
func (w *World) CommittedMaterial(c grid.Cell) (grid.Material, bool) {
	return w.Materials.At(c)
}

// Committed exposes the committed state to the profile builders.
func (w *World) Committed() l5profiles.Surface { return committedSurface{w: w} }

type committedSurface struct{ w *World }

func (s committedSurface) LevelAt(c grid.Cell) int { return s.w.CommittedLevel(c) }

func (s committedSurface) MaterialAt(c grid.Cell) (grid.Material, bool) {
	return s.w.CommittedMaterial(c)
}

// Execute runs the default stage sequence over in.
func Execute(ctx context.Context, in Inputs, cfg Config) (*World, error) {
	w, err := NewWorld(in, cfg)
	if err != nil {
		return nil, err
	}
	if err := Run(ctx, w, DefaultStages()); err != nil {
		return w, err
	}
	return w, nil
}
