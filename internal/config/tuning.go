package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds every knob of the terrain pipeline. Fields are
// pointers so a partial file only overrides what it names; the Get*
// accessors supply defaults for the rest.
type TuningConfig struct {
	// Height field
	Baseline                *int     `json:"baseline,omitempty" yaml:"baseline,omitempty"`
	SeaLevelMetres          *float64 `json:"sea_level_m,omitempty" yaml:"sea_level_m,omitempty"`
	OutOfBoundsSearchRadius *int     `json:"out_of_bounds_search_radius,omitempty" yaml:"out_of_bounds_search_radius,omitempty"`

	// Slope solver
	HardSlopeCap        *int `json:"hard_slope_cap,omitempty" yaml:"hard_slope_cap,omitempty"`
	TerraceDistance     *int `json:"terrace_distance,omitempty" yaml:"terrace_distance,omitempty"`
	SolverMaxIterations *int `json:"solver_max_iterations,omitempty" yaml:"solver_max_iterations,omitempty"`
	MedianPasses        *int `json:"median_passes,omitempty" yaml:"median_passes,omitempty"`

	// Surface materials
	SurfaceBlurIterations  *int  `json:"surface_blur_iterations,omitempty" yaml:"surface_blur_iterations,omitempty"`
	SurfaceBlurMinMajority *int  `json:"surface_blur_min_majority,omitempty" yaml:"surface_blur_min_majority,omitempty"`
	ResidentialVoteRadius  *int  `json:"residential_vote_radius,omitempty" yaml:"residential_vote_radius,omitempty"`
	RiverBufferCells       *int  `json:"river_buffer_cells,omitempty" yaml:"river_buffer_cells,omitempty"`
	ReconcileShorelines    *bool `json:"reconcile_shorelines,omitempty" yaml:"reconcile_shorelines,omitempty"`

	// Bridges
	BridgeShortSpan   *int `json:"bridge_short_span,omitempty" yaml:"bridge_short_span,omitempty"`
	BridgeClearance   *int `json:"bridge_clearance,omitempty" yaml:"bridge_clearance,omitempty"`
	BridgeRampLength  *int `json:"bridge_ramp_length,omitempty" yaml:"bridge_ramp_length,omitempty"`
	PillarPeriod      *int `json:"pillar_period,omitempty" yaml:"pillar_period,omitempty"`
	PillarSearchReach *int `json:"pillar_search_reach,omitempty" yaml:"pillar_search_reach,omitempty"`

	// Tunnels
	TunnelShortLength *int `json:"tunnel_short_length,omitempty" yaml:"tunnel_short_length,omitempty"`
	TunnelDepth       *int `json:"tunnel_depth,omitempty" yaml:"tunnel_depth,omitempty"`
	TunnelHeadroom    *int `json:"tunnel_headroom,omitempty" yaml:"tunnel_headroom,omitempty"`
	TunnelRampLength  *int `json:"tunnel_ramp_length,omitempty" yaml:"tunnel_ramp_length,omitempty"`

	// Error accounting
	MaxWarnings        *int `json:"max_warnings,omitempty" yaml:"max_warnings,omitempty"`
	WriteFailureLogCap *int `json:"write_failure_log_cap,omitempty" yaml:"write_failure_log_cap,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a config with every field populated from the
// Get* defaults. It matches config/tuning.defaults.json.
func DefaultTuningConfig() *TuningConfig {
	e := EmptyTuningConfig()
	return &TuningConfig{
		Baseline:                ptrInt(e.GetBaseline()),
		OutOfBoundsSearchRadius: ptrInt(e.GetOutOfBoundsSearchRadius()),
		HardSlopeCap:            ptrInt(e.GetHardSlopeCap()),
		TerraceDistance:         ptrInt(e.GetTerraceDistance()),
		SolverMaxIterations:     ptrInt(e.GetSolverMaxIterations()),
		MedianPasses:            ptrInt(e.GetMedianPasses()),
		SurfaceBlurIterations:   ptrInt(e.GetSurfaceBlurIterations()),
		SurfaceBlurMinMajority:  ptrInt(e.GetSurfaceBlurMinMajority()),
		ResidentialVoteRadius:   ptrInt(e.GetResidentialVoteRadius()),
		RiverBufferCells:        ptrInt(e.GetRiverBufferCells()),
		ReconcileShorelines:     ptrBool(e.GetReconcileShorelines()),
		BridgeShortSpan:         ptrInt(e.GetBridgeShortSpan()),
		BridgeClearance:         ptrInt(e.GetBridgeClearance()),
		BridgeRampLength:        ptrInt(e.GetBridgeRampLength()),
		PillarPeriod:            ptrInt(e.GetPillarPeriod()),
		PillarSearchReach:       ptrInt(e.GetPillarSearchReach()),
		TunnelShortLength:       ptrInt(e.GetTunnelShortLength()),
		TunnelDepth:             ptrInt(e.GetTunnelDepth()),
		TunnelHeadroom:          ptrInt(e.GetTunnelHeadroom()),
		TunnelRampLength:        ptrInt(e.GetTunnelRampLength()),
		MaxWarnings:             ptrInt(e.GetMaxWarnings()),
		WriteFailureLogCap:      ptrInt(e.GetWriteFailureLogCap()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON or YAML file.
// The file must have a .json, .yaml or .yml extension and be under 1MB.
// Fields omitted from the file retain their default values, so partial
// configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	ext := filepath.Ext(cleanPath)
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if ext == ".json" {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,          // from internal/config/
		"../../../" + DefaultConfigPath,       // from internal/terrain/l2height/
		"../../../../" + DefaultConfigPath,    // from internal/terrain/storage/sqlite/
		"../../../../../" + DefaultConfigPath, // even deeper
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	positive := []struct {
		name string
		v    *int
	}{
		{"hard_slope_cap", c.HardSlopeCap},
		{"terrace_distance", c.TerraceDistance},
		{"solver_max_iterations", c.SolverMaxIterations},
		{"surface_blur_min_majority", c.SurfaceBlurMinMajority},
		{"bridge_short_span", c.BridgeShortSpan},
		{"bridge_clearance", c.BridgeClearance},
		{"bridge_ramp_length", c.BridgeRampLength},
		{"pillar_period", c.PillarPeriod},
		{"tunnel_short_length", c.TunnelShortLength},
		{"tunnel_depth", c.TunnelDepth},
		{"tunnel_headroom", c.TunnelHeadroom},
		{"tunnel_ramp_length", c.TunnelRampLength},
	}
	for _, p := range positive {
		if p.v != nil && *p.v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, *p.v)
		}
	}

	nonNegative := []struct {
		name string
		v    *int
	}{
		{"out_of_bounds_search_radius", c.OutOfBoundsSearchRadius},
		{"median_passes", c.MedianPasses},
		{"surface_blur_iterations", c.SurfaceBlurIterations},
		{"residential_vote_radius", c.ResidentialVoteRadius},
		{"river_buffer_cells", c.RiverBufferCells},
		{"pillar_search_reach", c.PillarSearchReach},
		{"max_warnings", c.MaxWarnings},
		{"write_failure_log_cap", c.WriteFailureLogCap},
	}
	for _, p := range nonNegative {
		if p.v != nil && *p.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", p.name, *p.v)
		}
	}

	if c.SurfaceBlurMinMajority != nil && *c.SurfaceBlurMinMajority > 8 {
		return fmt.Errorf("surface_blur_min_majority must be in [1, 8], got %d", *c.SurfaceBlurMinMajority)
	}
	if c.TerraceDistance != nil && *c.TerraceDistance > 8 {
		return fmt.Errorf("terrace_distance must be at most 8, got %d", *c.TerraceDistance)
	}
	if c.BridgeRampLength != nil && c.BridgeShortSpan != nil && 2**c.BridgeRampLength > *c.BridgeShortSpan {
		return fmt.Errorf("bridge_ramp_length %d leaves no central span for bridge_short_span %d",
			*c.BridgeRampLength, *c.BridgeShortSpan)
	}

	return nil
}

// GetBaseline returns the world level that the lowest sampled elevation
// maps to.
func (c *TuningConfig) GetBaseline() int {
	if c.Baseline == nil {
		return -60
	}
	return *c.Baseline
}

// GetSeaLevel returns the sea level in metres and whether flooding is
// enabled.
func (c *TuningConfig) GetSeaLevel() (float64, bool) {
	if c.SeaLevelMetres == nil {
		return 0, false
	}
	return *c.SeaLevelMetres, true
}

// GetOutOfBoundsSearchRadius returns the out_of_bounds_search_radius value or the default.
func (c *TuningConfig) GetOutOfBoundsSearchRadius() int {
	if c.OutOfBoundsSearchRadius == nil {
		return 3
	}
	return *c.OutOfBoundsSearchRadius
}

// GetHardSlopeCap returns the hard_slope_cap value or the default.
func (c *TuningConfig) GetHardSlopeCap() int {
	if c.HardSlopeCap == nil {
		return 3
	}
	return *c.HardSlopeCap
}

// GetTerraceDistance returns the terrace_distance value or the default.
func (c *TuningConfig) GetTerraceDistance() int {
	if c.TerraceDistance == nil {
		return 3
	}
	return *c.TerraceDistance
}

// GetSolverMaxIterations returns the solver_max_iterations value or the default.
func (c *TuningConfig) GetSolverMaxIterations() int {
	if c.SolverMaxIterations == nil {
		return 64
	}
	return *c.SolverMaxIterations
}

// GetMedianPasses returns the median_passes value or the default.
func (c *TuningConfig) GetMedianPasses() int {
	if c.MedianPasses == nil {
		return 0 // smoothing is opt-in
	}
	return *c.MedianPasses
}

// GetSurfaceBlurIterations returns the surface_blur_iterations value or the default.
func (c *TuningConfig) GetSurfaceBlurIterations() int {
	if c.SurfaceBlurIterations == nil {
		return 8
	}
	return *c.SurfaceBlurIterations
}

// GetSurfaceBlurMinMajority returns the surface_blur_min_majority value or the default.
func (c *TuningConfig) GetSurfaceBlurMinMajority() int {
	if c.SurfaceBlurMinMajority == nil {
		return 4
	}
	return *c.SurfaceBlurMinMajority
}

// GetResidentialVoteRadius returns the residential_vote_radius value or the default.
func (c *TuningConfig) GetResidentialVoteRadius() int {
	if c.ResidentialVoteRadius == nil {
		return 20
	}
	return *c.ResidentialVoteRadius
}

// GetRiverBufferCells returns the river_buffer_cells value or the default.
func (c *TuningConfig) GetRiverBufferCells() int {
	if c.RiverBufferCells == nil {
		return 1
	}
	return *c.RiverBufferCells
}

// GetReconcileShorelines returns the reconcile_shorelines value or the default.
func (c *TuningConfig) GetReconcileShorelines() bool {
	if c.ReconcileShorelines == nil {
		return true
	}
	return *c.ReconcileShorelines
}

// GetBridgeShortSpan returns the bridge_short_span value or the default.
func (c *TuningConfig) GetBridgeShortSpan() int {
	if c.BridgeShortSpan == nil {
		return 20
	}
	return *c.BridgeShortSpan
}

// GetBridgeClearance returns the bridge_clearance value or the default.
func (c *TuningConfig) GetBridgeClearance() int {
	if c.BridgeClearance == nil {
		return 7
	}
	return *c.BridgeClearance
}

// GetBridgeRampLength returns the bridge_ramp_length value or the default.
func (c *TuningConfig) GetBridgeRampLength() int {
	if c.BridgeRampLength == nil {
		return 7
	}
	return *c.BridgeRampLength
}

// GetPillarPeriod returns the pillar_period value or the default.
func (c *TuningConfig) GetPillarPeriod() int {
	if c.PillarPeriod == nil {
		return 50
	}
	return *c.PillarPeriod
}

// GetPillarSearchReach returns the pillar_search_reach value or the default.
func (c *TuningConfig) GetPillarSearchReach() int {
	if c.PillarSearchReach == nil {
		return 2
	}
	return *c.PillarSearchReach
}

// GetTunnelShortLength returns the tunnel_short_length value or the default.
func (c *TuningConfig) GetTunnelShortLength() int {
	if c.TunnelShortLength == nil {
		return 25
	}
	return *c.TunnelShortLength
}

// GetTunnelDepth returns the tunnel_depth value or the default.
func (c *TuningConfig) GetTunnelDepth() int {
	if c.TunnelDepth == nil {
		return 7
	}
	return *c.TunnelDepth
}

// GetTunnelHeadroom returns the tunnel_headroom value or the default.
func (c *TuningConfig) GetTunnelHeadroom() int {
	if c.TunnelHeadroom == nil {
		return 3
	}
	return *c.TunnelHeadroom
}

// GetTunnelRampLength returns the tunnel_ramp_length value or the default.
func (c *TuningConfig) GetTunnelRampLength() int {
	if c.TunnelRampLength == nil {
		return 7
	}
	return *c.TunnelRampLength
}

// GetMaxWarnings returns the max_warnings value or the default.
func (c *TuningConfig) GetMaxWarnings() int {
	if c.MaxWarnings == nil {
		return 10
	}
	return *c.MaxWarnings
}

// GetWriteFailureLogCap returns the write_failure_log_cap value or the default.
func (c *TuningConfig) GetWriteFailureLogCap() int {
	if c.WriteFailureLogCap == nil {
		return 20
	}
	return *c.WriteFailureLogCap
}
