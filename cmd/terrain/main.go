// Command terrain builds the voxel terrain for one rectangle of cells from
// an elevation source and a GeoJSON feature file.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/banshee-data/geovoxel/internal/config"
	"github.com/banshee-data/geovoxel/internal/monitoring"
	"github.com/banshee-data/geovoxel/internal/terrain/features"
	"github.com/banshee-data/geovoxel/internal/terrain/grid"
	"github.com/banshee-data/geovoxel/internal/terrain/l1elevation"
	"github.com/banshee-data/geovoxel/internal/terrain/l6composite"
	"github.com/banshee-data/geovoxel/internal/terrain/monitor"
	"github.com/banshee-data/geovoxel/internal/terrain/pipeline"
	"github.com/banshee-data/geovoxel/internal/terrain/storage/sqlite"
	"github.com/banshee-data/geovoxel/internal/version"
)

type options struct {
	configPath   string
	featuresPath string
	hgtPaths     string
	flatMetres   float64
	bounds       string
	bbox         string
	dbPath       string
	outDir       string
	minLevel     int
}

func newFlagSet(o *options) *flag.FlagSet {
	fs := flag.NewFlagSet("terrain", flag.ContinueOnError)
	fs.StringVar(&o.configPath, "config", "", "Tuning config (.json or .yaml); built-in defaults when empty")
	fs.StringVar(&o.featuresPath, "features", "", "GeoJSON feature collection in cell coordinates")
	fs.StringVar(&o.hgtPaths, "hgt", "", "Comma-separated SRTM .hgt tiles")
	fs.Float64Var(&o.flatMetres, "flat", 0, "Uniform elevation in metres when no -hgt is given")
	fs.StringVar(&o.bounds, "bounds", "0,0,255,255", "Cell bounds minX,minZ,maxX,maxZ")
	fs.StringVar(&o.bbox, "bbox", "0,0,1,1", "Geographic box west,south,east,north mapped onto the bounds")
	fs.StringVar(&o.dbPath, "db", "", "SQLite database for run records and snapshots")
	fs.StringVar(&o.outDir, "out", "", "Directory for diagnostic charts")
	fs.IntVar(&o.minLevel, "min-level", -128, "Lowest level the voxel sink accepts")
	return fs
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated values, got %q", n, s)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated values, got %q", n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}

func loadTuning(path string) (*config.TuningConfig, error) {
	if path == "" {
		return config.DefaultTuningConfig(), nil
	}
	cfg, err := config.LoadTuningConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tuning config: %w", err)
	}
	return cfg, nil
}

func loadElevation(o options) (l1elevation.ElevationRaster, error) {
	if o.hgtPaths == "" {
		return l1elevation.FlatRaster(o.flatMetres), nil
	}
	var tiles l1elevation.TileSet
	for _, p := range strings.Split(o.hgtPaths, ",") {
		tile, err := l1elevation.OpenHGT(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, tile)
	}
	return tiles, nil
}

// run executes one terrain build and returns the final world.
func run(ctx context.Context, o options) (*pipeline.World, error) {
	bv, err := parseInts(o.bounds, 4)
	if err != nil {
		return nil, fmt.Errorf("-bounds: %w", err)
	}
	box, err := parseFloats(o.bbox, 4)
	if err != nil {
		return nil, fmt.Errorf("-bbox: %w", err)
	}
	b := grid.NewBounds(bv[0], bv[1], bv[2], bv[3])

	tuning, err := loadTuning(o.configPath)
	if err != nil {
		return nil, err
	}
	cfg := pipeline.ConfigFromTuning(tuning)

	elev, err := loadElevation(o)
	if err != nil {
		return nil, err
	}
	coll := &features.Collection{}
	if o.featuresPath != "" {
		if coll, err = features.Load(o.featuresPath); err != nil {
			return nil, err
		}
	}

	sink := l6composite.NewMemorySink(b, o.minLevel)
	in := pipeline.Inputs{
		Bounds:     b,
		Elevation:  elev,
		Projection: l1elevation.LinearProjection{Bounds: b, West: box[0], South: box[1], East: box[2], North: box[3]},
		Features:   coll,
		Sink:       sink,
	}

	var store *sqlite.Store
	var runRecord *sqlite.Run
	if o.dbPath != "" {
		if store, err = sqlite.Open(o.dbPath); err != nil {
			return nil, err
		}
		defer store.Close()

		params, err := json.Marshal(tuning)
		if err != nil {
			return nil, fmt.Errorf("failed to encode run params: %w", err)
		}
		if runRecord, err = store.CreateRun(ctx, b, params); err != nil {
			return nil, err
		}
		in.Store = store
		in.RunID = runRecord.RunID
	}

	w, runErr := pipeline.Execute(ctx, in, cfg)

	if runRecord != nil {
		var stats json.RawMessage
		if w != nil {
			var err error
			if stats, err = json.Marshal(w.Stats); err != nil {
				runErr = errors.Join(runErr, fmt.Errorf("failed to encode run stats: %w", err))
			}
		}
		status := sqlite.RunCompleted
		if runErr != nil {
			status = sqlite.RunFailed
		}
		if err := store.FinishRun(context.WithoutCancel(ctx), runRecord.RunID, status, stats); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}
	if runErr != nil {
		return w, runErr
	}

	monitoring.Logf("[Terrain] %s: %d voxels stored, %d profiles, %d warnings",
		b, sink.Len(), w.Stats.Profiles, w.Warnings.Count())

	if o.outDir != "" {
		if err := writeDiagnostics(o.outDir, w); err != nil {
			return w, err
		}
	}
	return w, nil
}

func writeDiagnostics(dir string, w *pipeline.World) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	heights, err := os.Create(filepath.Join(dir, "heights.html"))
	if err != nil {
		return fmt.Errorf("create height chart: %w", err)
	}
	defer heights.Close()
	if err := monitor.RenderHeightChart(w.Result.Levels, "Final surface levels", 0, heights); err != nil {
		return err
	}

	materials, err := os.Create(filepath.Join(dir, "materials.html"))
	if err != nil {
		return fmt.Errorf("create material chart: %w", err)
	}
	defer materials.Close()
	if err := monitor.RenderMaterialChart(w.Result.Materials, "Surface materials", materials); err != nil {
		return err
	}

	sections := monitor.SectionsOf(w.Profiles, w.Segments, w.Committed())
	_, err = monitor.WriteSections(filepath.Join(dir, "sections"), sections)
	return err
}

func main() {
	var o options
	fs := newFlagSet(&o)
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}
	if *showVersion {
		fmt.Println(version.String("terrain"))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := run(ctx, o); err != nil {
		log.Fatalf("terrain build failed: %v", err)
	}
}
