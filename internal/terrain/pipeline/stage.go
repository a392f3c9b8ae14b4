package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/geovoxel/internal/monitoring"
)

// Layer names a piece of world state a stage reads or writes.
type Layer string

const (
	LayerElevation Layer = "elevation"
	LayerLandcover Layer = "landcover"
	LayerHeights   Layer = "heights"
	LayerPaths     Layer = "paths"
	LayerBuildings Layer = "buildings"
	LayerMaterials Layer = "materials"
	LayerWater     Layer = "water"
	LayerCommitted Layer = "committed"
	LayerProfiles  Layer = "profiles"
	LayerComposite Layer = "composite"
)

// ErrStageOrder marks a stage sequence that fails validation.
var ErrStageOrder = errors.New("invalid stage order")

// Stage is one step of a run.
type Stage struct {
	Name   string
	Reads  []Layer
	Writes []Layer
	Run    func(ctx context.Context, w *World) error
}

// Validate checks that every stage only reads layers written by an
// earlier stage, and that names are unique.
func Validate(stages []Stage) error {
	written := map[Layer]string{}
	names := map[string]bool{}
	for i, s := range stages {
		if s.Name == "" || s.Run == nil {
			return fmt.Errorf("stage %d needs a name and a run function: %w", i, ErrStageOrder)
		}
		if names[s.Name] {
			return fmt.Errorf("stage %q appears twice: %w", s.Name, ErrStageOrder)
		}
		names[s.Name] = true
		for _, r := range s.Reads {
			if _, ok := written[r]; !ok {
				return fmt.Errorf("stage %q reads %q before any stage writes it: %w", s.Name, r, ErrStageOrder)
			}
		}
		for _, l := range s.Writes {
			written[l] = s.Name
		}
	}
	return nil
}

// Run validates stages and then runs them in order against w. Nothing
// runs if validation fails.
func Run(ctx context.Context, w *World, stages []Stage) error {
	if err := Validate(stages); err != nil {
		return err
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("stage %s not started: %w", s.Name, err)
		}
		start := time.Now()
		if err := s.Run(ctx, w); err != nil {
			return fmt.Errorf("stage %s failed: %w", s.Name, err)
		}
		w.Completed = append(w.Completed, s.Name)
		monitoring.Logf("[Pipeline] stage %s done in %s", s.Name, time.Since(start).Round(time.Millisecond))
	}
	return nil
}
