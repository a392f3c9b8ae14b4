package pipeline

import (
	"context"
	"errors"
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

// DefaultStages is the full run. Paths are rasterized before surface
// resolution because residential votes ignore infrastructure cells.
func DefaultStages() []Stage {
	return []Stage{
		{Name: "sample", Writes: []Layer{LayerElevation, LayerLandcover}, Run: sampleStage},
		{Name: "heights", Reads: []Layer{LayerElevation}, Writes: []Layer{LayerHeights}, Run: heightsStage},
		{Name: "paths", Writes: []Layer{LayerPaths, LayerBuildings}, Run: pathsStage},
		{
			Name:   "surface",
			Reads:  []Layer{LayerElevation, LayerLandcover, LayerPaths, LayerBuildings},
			Writes: []Layer{LayerMaterials},
			Run:    surfaceStage,
		},
		{
			Name:   "water",
			Reads:  []Layer{LayerHeights, LayerMaterials},
			Writes: []Layer{LayerWater, LayerHeights, LayerMaterials},
			Run:    waterStage,
		},
		{Name: "commit", Reads: []Layer{LayerHeights, LayerMaterials, LayerWater}, Writes: []Layer{LayerCommitted}, Run: commitStage},
		{Name: "profiles", Reads: []Layer{LayerCommitted, LayerPaths}, Writes: []Layer{LayerProfiles}, Run: profilesStage},
		{
			Name:   "composite",
			Reads:  []Layer{LayerCommitted, LayerPaths, LayerBuildings, LayerProfiles, LayerWater},
			Writes: []Layer{LayerComposite},
			Run:    compositeStage,
		},
	}
}

func sampleStage(_ context.Context, w *World) error {
	elev, stats, err := l1elevation.SampleElevation(w.In.Elevation, w.In.Projection, w.In.Bounds)
	if err != nil {
		return err
	}
	w.Elevation, w.ElevationStats = elev, stats
	if w.In.Landcover != nil {
		w.Landcover = l1elevation.SampleLandcover(w.In.Landcover, w.In.Projection, w.In.Bounds)
	}
	w.Stats.Cells = stats.Cells
	w.Stats.MissingSamples = stats.Missing
	monitoring.Logf("[ElevationSampler] cells=%d missing=%d neighbour_filled=%d zero_filled=%d",
		stats.Cells, stats.Missing, stats.NeighborFilled, stats.ZeroFilled)
	return nil
}

func heightsStage(_ context.Context, w *World) error {
	w.Heights, w.MinElevation = w.heights.Build(w.Elevation)
	w.Solve = l2height.SolveAndSmooth(w.Heights, w.Config.Solver)
	w.Stats.SolverConverged = w.Solve.Converged
	w.Stats.SettledCells = w.Solve.Settled
	monitoring.Logf("[SlopeSolver] converged=%v phaseA=%d phaseB=%d settled=%d",
		w.Solve.Converged, w.Solve.PhaseAIterations, w.Solve.PhaseBIterations, w.Solve.Settled)
	return nil
}

func pathsStage(_ context.Context, w *World) error {
	w.Infrastructure = grid.CellSet{}
	for _, f := range w.In.Features.Paths {
		segs, err := l4paths.Rasterize(f)
		if err != nil {
			if !errors.Is(err, features.ErrInvalidGeometry) {
				return err
			}
			w.Stats.InvalidGeometry++
			w.Warnings.Reportf("path %s: %v", f.ID, err)
		}
		for _, s := range segs {
			if s.Mode == l4paths.ModeSurface {
				for _, c := range s.Cells() {
					w.Infrastructure.Add(c)
				}
			}
		}
		w.Segments = append(w.Segments, segs...)
	}
	buildings, skipped := l3surface.FootprintCells(w.In.Features.Buildings, w.In.Bounds, w.Warnings)
	w.Buildings = buildings
	w.Infrastructure.Union(buildings)
	w.Stats.InvalidGeometry += skipped
	w.Stats.Segments = len(w.Segments)
	monitoring.Logf("[PathRasterizer] %d segments from %d paths, %d building cells",
		len(w.Segments), len(w.In.Features.Paths), len(buildings))
	return nil
}

func surfaceStage(_ context.Context, w *World) error {
	r := l3surface.NewResolver(w.Config.Surface)
	res, err := r.Resolve(l3surface.Input{
		Bounds:         w.In.Bounds,
		Landcover:      w.Landcover,
		Elevation:      w.Elevation,
		Zones:          w.In.Features.Zones,
		Infrastructure: w.Infrastructure,
	})
	if err != nil {
		return err
	}
	w.Surface = res
	w.Materials = res.Materials
	w.Stats.InvalidGeometry += res.Skipped
	return nil
}

func waterStage(_ context.Context, w *World) error {
	cells, skipped := l3surface.HydrographyCells(w.In.Features.Water, w.In.Bounds, w.Config.Surface.RiverBuffer, w.Warnings)
	w.Stats.InvalidGeometry += skipped
	w.WaterCells = cells
	before := w.Heights.Clone()
	w.Water = l3surface.ApplyWater(w.Heights, w.Materials, cells)
	w.Stats.WaterCells = len(w.Water.Cells)
	if w.Config.ReconcileShorelines && len(w.Water.Cells) > 0 {
		w.Stats.ShorelineSettled = l2height.Settle(w.Heights)
		monitoring.Logf("[SurfaceResolver] shoreline reconcile lowered %d cells", w.Stats.ShorelineSettled)
	}
	w.Vacated = l3surface.Lowered(before, w.Heights)
	return nil
}

// commitStage persists heights and materials and replaces the in-memory
// layers with what the store returns.
func commitStage(ctx context.Context, w *World) error {
	st := w.In.Store
	if st == nil {
		return nil
	}
	if err := st.SaveHeights(ctx, w.In.RunID, "water", w.Heights); err != nil {
		return err
	}
	if err := st.SaveMaterials(ctx, w.In.RunID, "water", w.Materials); err != nil {
		return err
	}
	hf, err := st.LoadHeights(ctx, w.In.RunID)
	if err != nil {
		return err
	}
	mat, err := st.LoadMaterials(ctx, w.In.RunID)
	if err != nil {
		return err
	}
	if hf.Bounds() != w.In.Bounds || mat.Bounds() != w.In.Bounds {
		return fmt.Errorf("committed layers cover %s, run covers %s", hf.Bounds(), w.In.Bounds)
	}
	w.Heights, w.Materials = hf, mat
	return nil
}

func profilesStage(ctx context.Context, w *World) error {
	bridges := l5profiles.NewBridgeBuilder(w.Config.Bridge)
	tunnels := l5profiles.NewTunnelBuilder(w.Config.Tunnel)
	surface := w.Committed()
	for _, s := range w.Segments {
		var (
			p   *l5profiles.Profile
			err error
		)
		switch s.Mode {
		case l4paths.ModeBridge:
			p, err = bridges.Build(s, surface)
		case l4paths.ModeTunnel:
			p, err = tunnels.Build(s, surface)
		default:
			continue
		}
		if errors.Is(err, l5profiles.ErrUnresolvableProfile) {
			w.Stats.UnresolvableProfiles++
			w.Warnings.Reportf("profile %s skipped: %v", s.FeatureID, err)
			continue
		}
		if err != nil {
			return err
		}
		w.Profiles = append(w.Profiles, p)
	}

	areas := l5profiles.NewAreaBridgeBuilder()
	linear := w.Profiles
	for _, f := range w.In.Features.BridgeAreas {
		p, err := areas.Build(f, w.In.Bounds, surface, linear)
		switch {
		case errors.Is(err, features.ErrInvalidGeometry):
			w.Stats.InvalidGeometry++
			w.Warnings.Reportf("bridge area %s: %v", f.ID, err)
			continue
		case errors.Is(err, l5profiles.ErrUnresolvableProfile):
			w.Stats.UnresolvableProfiles++
			w.Warnings.Reportf("profile %s skipped: %v", f.ID, err)
			continue
		case err != nil:
			return err
		}
		w.Profiles = append(w.Profiles, p)
	}
	w.Stats.Profiles = len(w.Profiles)
	if w.In.Store != nil && len(w.Profiles) > 0 {
		if err := w.In.Store.SaveProfiles(ctx, w.In.RunID, w.Profiles); err != nil {
			return err
		}
	}
	monitoring.Logf("[ProfileBuilder] %d profiles, %d unresolvable", len(w.Profiles), w.Stats.UnresolvableProfiles)
	return nil
}

func compositeStage(_ context.Context, w *World) error {
	var beach grid.CellSet
	if w.Surface != nil {
		beach = w.Surface.Beach
	}
	res, err := l6composite.NewCompositor(w.In.Sink, w.Config.WriteFailureLogCap).Composite(l6composite.Input{
		Heights:   w.Heights,
		Materials: w.Materials,
		Segments:  w.Segments,
		Profiles:  w.Profiles,
		Buildings: w.Buildings,
		Beach:     beach,
		Water:     w.WaterCells,
		Vacated:   w.Vacated,
	})
	if err != nil {
		return err
	}
	w.Result = res
	w.Stats.VoxelsWritten = res.Written
	w.Stats.WriteFailures = res.WriteFailures
	return nil
}
