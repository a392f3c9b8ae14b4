package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyTuningConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := EmptyTuningConfig()
	assert.Equal(t, -60, cfg.GetBaseline())
	assert.Equal(t, 3, cfg.GetHardSlopeCap())
	assert.Equal(t, 3, cfg.GetTerraceDistance())
	assert.Equal(t, 8, cfg.GetSurfaceBlurIterations())
	assert.Equal(t, 4, cfg.GetSurfaceBlurMinMajority())
	assert.Equal(t, 20, cfg.GetResidentialVoteRadius())
	assert.Equal(t, 20, cfg.GetBridgeShortSpan())
	assert.Equal(t, 7, cfg.GetBridgeClearance())
	assert.Equal(t, 50, cfg.GetPillarPeriod())
	assert.Equal(t, 25, cfg.GetTunnelShortLength())
	assert.Equal(t, 3, cfg.GetTunnelHeadroom())
	assert.True(t, cfg.GetReconcileShorelines())

	_, ok := cfg.GetSeaLevel()
	assert.False(t, ok, "flooding is disabled unless sea_level_m is set")
}

func TestDefaultTuningConfig_MatchesDefaultsFile(t *testing.T) {
	t.Parallel()

	fromFile := MustLoadDefaultConfig()
	assert.Equal(t, DefaultTuningConfig(), fromFile)
}

func TestLoadTuningConfig_PartialJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"baseline": 0, "sea_level_m": 1.5}`), 0644))

	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.GetBaseline())
	sea, ok := cfg.GetSeaLevel()
	assert.True(t, ok)
	assert.InDelta(t, 1.5, sea, 1e-9)
	assert.Equal(t, 7, cfg.GetTunnelDepth(), "unset fields fall back to defaults")
}

func TestLoadTuningConfig_YAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "bridge_clearance: 9\nreconcile_shorelines: false\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.GetBridgeClearance())
	assert.False(t, cfg.GetReconcileShorelines())
}

func TestLoadTuningConfig_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	t.Run("bad extension", func(t *testing.T) {
		_, err := LoadTuningConfig(filepath.Join(dir, "tuning.toml"))
		assert.ErrorContains(t, err, "extension")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTuningConfig(filepath.Join(dir, "absent.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"baseline":`), 0644))
		_, err := LoadTuningConfig(path)
		assert.ErrorContains(t, err, "failed to parse config JSON")
	})

	t.Run("invalid value", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"hard_slope_cap": 0}`), 0644))
		_, err := LoadTuningConfig(path)
		assert.ErrorContains(t, err, "hard_slope_cap must be positive")
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     TuningConfig
		wantErr string
	}{
		{"empty is valid", TuningConfig{}, ""},
		{"negative radius", TuningConfig{ResidentialVoteRadius: ptrInt(-1)}, "residential_vote_radius"},
		{"majority above eight", TuningConfig{SurfaceBlurMinMajority: ptrInt(9)}, "surface_blur_min_majority"},
		{"ramps overrun span", TuningConfig{BridgeRampLength: ptrInt(11), BridgeShortSpan: ptrInt(20)}, "no central span"},
		{"sea level any value", TuningConfig{SeaLevelMetres: ptrFloat64(-3)}, ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
