package pipeline

import (
	"github.com/banshee-data/geovoxel/internal/config"
	"github.com/banshee-data/geovoxel/internal/terrain/l2height"
	"github.com/banshee-data/geovoxel/internal/terrain/l3surface"
	"github.com/banshee-data/geovoxel/internal/terrain/l5profiles"
)

// Config gathers the per-layer settings of a run.
type Config struct {
	Baseline            int
	SearchRadius        int
	Solver              l2height.SolverConfig
	Surface             l3surface.Config
	Bridge              l5profiles.BridgeConfig
	Tunnel              l5profiles.TunnelConfig
	ReconcileShorelines bool
	MaxWarnings         int
	WriteFailureLogCap  int
}

// DefaultConfig returns the settings from the canonical tuning defaults
// file. Panics if the file cannot be found.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Baseline:            cfg.GetBaseline(),
		SearchRadius:        cfg.GetOutOfBoundsSearchRadius(),
		Solver:              l2height.SolverConfigFromTuning(cfg),
		Surface:             l3surface.ConfigFromTuning(cfg),
		Bridge:              l5profiles.BridgeConfigFromTuning(cfg),
		Tunnel:              l5profiles.TunnelConfigFromTuning(cfg),
		ReconcileShorelines: cfg.GetReconcileShorelines(),
		MaxWarnings:         cfg.GetMaxWarnings(),
		WriteFailureLogCap:  cfg.GetWriteFailureLogCap(),
	}
}

// Validate checks every layer's settings.
func (c Config) Validate() error {
	if err := c.Solver.Validate(); err != nil {
		return err
	}
	if err := c.Bridge.Validate(); err != nil {
		return err
	}
	return c.Tunnel.Validate()
}
