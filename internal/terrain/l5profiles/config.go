package l5profiles

import (
	"fmt"

	"github.com/banshee-data/geovoxel/internal/config"
)

// BridgeConfig shapes bridge decks.
type BridgeConfig struct {
	ShortSpan    int // spans shorter than this use a flat deck one above the higher end (default: 20)
	Clearance    int // central span height above local ground per layer (default: 7)
	RampLength   int // cells per end ramp on long spans (default: 7)
	PillarPeriod int // centerline cells between pillars (default: 50)
	PillarReach  int // outward cells searched for a footing (default: 2)
}

// TunnelConfig shapes tunnel bores.
type TunnelConfig struct {
	ShortLength int // paths shorter than this stay at grade (default: 25)
	Depth       int // interior floor depth below local ground (default: 7)
	Headroom    int // cleared levels above the floor (default: 3)
	RampLength  int // cells per portal ramp (default: 7)
}

// BridgeConfigFromTuning builds a BridgeConfig from a loaded TuningConfig.
func BridgeConfigFromTuning(cfg *config.TuningConfig) BridgeConfig {
	return BridgeConfig{
		ShortSpan:    cfg.GetBridgeShortSpan(),
		Clearance:    cfg.GetBridgeClearance(),
		RampLength:   cfg.GetBridgeRampLength(),
		PillarPeriod: cfg.GetPillarPeriod(),
		PillarReach:  cfg.GetPillarSearchReach(),
	}
}

// TunnelConfigFromTuning builds a TunnelConfig from a loaded TuningConfig.
func TunnelConfigFromTuning(cfg *config.TuningConfig) TunnelConfig {
	return TunnelConfig{
		ShortLength: cfg.GetTunnelShortLength(),
		Depth:       cfg.GetTunnelDepth(),
		Headroom:    cfg.GetTunnelHeadroom(),
		RampLength:  cfg.GetTunnelRampLength(),
	}
}

// Validate checks the bridge settings.
func (c BridgeConfig) Validate() error {
	if c.ShortSpan < 2 {
		return fmt.Errorf("ShortSpan must be >= 2, got %d", c.ShortSpan)
	}
	if c.Clearance < 1 || c.RampLength < 1 || c.PillarPeriod < 1 {
		return fmt.Errorf("Clearance, RampLength and PillarPeriod must be positive")
	}
	if c.PillarReach < 0 {
		return fmt.Errorf("PillarReach must be >= 0, got %d", c.PillarReach)
	}
	return nil
}

// Validate checks the tunnel settings.
func (c TunnelConfig) Validate() error {
	if c.ShortLength < 2 {
		return fmt.Errorf("ShortLength must be >= 2, got %d", c.ShortLength)
	}
	if c.Depth < 1 || c.Headroom < 1 || c.RampLength < 1 {
		return fmt.Errorf("Depth, Headroom and RampLength must be positive")
	}
	if c.Headroom+1 > c.Depth {
		return fmt.Errorf("Headroom %d leaves no cover at depth %d", c.Headroom, c.Depth)
	}
	return nil
}
