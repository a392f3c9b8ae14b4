package l3surface

import "github.com/banshee-data/geovoxel/internal/config"

// Config controls surface resolution.
type Config struct {
	BlurIterations int     // majority smoothing passes (default: 8)
	MinMajority    int     // neighbours required to flip a cell (default: 4)
	VoteRadius     int     // residential vote radius in cells (default: 20)
	RiverBuffer    int     // half-width of rasterized river centerlines (default: 1)
	MaxWarnings    int     // invalid-geometry warnings logged per run (default: 10)
	SeaLevel       float64 // elevation at or below which cells flood, when Flood is set
	Flood          bool
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	sea, flood := cfg.GetSeaLevel()
	return Config{
		BlurIterations: cfg.GetSurfaceBlurIterations(),
		MinMajority:    cfg.GetSurfaceBlurMinMajority(),
		VoteRadius:     cfg.GetResidentialVoteRadius(),
		RiverBuffer:    cfg.GetRiverBufferCells(),
		MaxWarnings:    cfg.GetMaxWarnings(),
		SeaLevel:       sea,
		Flood:          flood,
	}
}
