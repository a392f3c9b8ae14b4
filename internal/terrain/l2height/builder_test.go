package l2height

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

func TestBuilder_Build(t *testing.T) {
	t.Parallel()

	elev := grid.NewLayer(grid.NewBounds(0, 0, 2, 0), 0.0)
	elev.Set(grid.Cell{X: 0, Z: 0}, 101.2)
	elev.Set(grid.Cell{X: 1, Z: 0}, 102.6)
	elev.Set(grid.Cell{X: 2, Z: 0}, 104.0)

	hf, minElev := Builder{Baseline: -60}.Build(elev)
	assert.InDelta(t, 101.2, minElev, 1e-9)
	assert.Equal(t, []int{-60, -59, -57}, hf.Values())
}

func TestBuilder_LevelAt(t *testing.T) {
	t.Parallel()

	hf := grid.NewLayer(grid.NewBounds(0, 0, 3, 3), 5)
	hf.Set(grid.Cell{X: 3, Z: 3}, 9)
	b := Builder{Baseline: -60, SearchRadius: 3}

	tests := []struct {
		name string
		c    grid.Cell
		want int
	}{
		{"inside", grid.Cell{X: 3, Z: 3}, 9},
		{"corner ring one", grid.Cell{X: 4, Z: 4}, 9},
		{"edge ring one", grid.Cell{X: 4, Z: 1}, 5},
		{"ring three", grid.Cell{X: -3, Z: 0}, 5},
		{"beyond search", grid.Cell{X: 10, Z: 10}, -60},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, b.LevelAt(hf, tt.c))
		})
	}
}
