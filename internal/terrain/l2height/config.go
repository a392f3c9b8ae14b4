package l2height

import (
	"fmt"

	"github.com/banshee-data/geovoxel/internal/config"
)

// SolverConfig bounds the slope relaxation.
type SolverConfig struct {
	HardCap         int // 4-adjacent level difference tolerated by phase A (default: 3)
	TerraceDistance int // largest Chebyshev pair distance visited by phase B (default: 3)
	MaxIterations   int // sweep cap for each phase (default: 64)
	MedianPasses    int // cosmetic smoothing passes, 0 disables (default: 0)
}

// DefaultSolverConfig returns the solver settings from the canonical
// tuning defaults file. Panics if the file cannot be found.
func DefaultSolverConfig() SolverConfig {
	return SolverConfigFromTuning(config.MustLoadDefaultConfig())
}

// SolverConfigFromTuning builds a SolverConfig from a loaded TuningConfig.
func SolverConfigFromTuning(cfg *config.TuningConfig) SolverConfig {
	return SolverConfig{
		HardCap:         cfg.GetHardSlopeCap(),
		TerraceDistance: cfg.GetTerraceDistance(),
		MaxIterations:   cfg.GetSolverMaxIterations(),
		MedianPasses:    cfg.GetMedianPasses(),
	}
}

// Validate checks the solver bounds.
func (c SolverConfig) Validate() error {
	if c.HardCap < 1 {
		return fmt.Errorf("HardCap must be >= 1, got %d", c.HardCap)
	}
	if c.TerraceDistance < 1 {
		return fmt.Errorf("TerraceDistance must be >= 1, got %d", c.TerraceDistance)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("MaxIterations must be >= 1, got %d", c.MaxIterations)
	}
	if c.MedianPasses < 0 {
		return fmt.Errorf("MedianPasses must be >= 0, got %d", c.MedianPasses)
	}
	return nil
}

// WithMaxIterations sets the per-phase sweep cap.
func (c SolverConfig) WithMaxIterations(n int) SolverConfig {
	c.MaxIterations = n
	return c
}

// WithMedianPasses sets the number of cosmetic smoothing passes.
func (c SolverConfig) WithMedianPasses(n int) SolverConfig {
	c.MedianPasses = n
	return c
}
