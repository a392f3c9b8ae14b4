package l5profiles

import (
	"errors"

	"github.com/banshee-data/geovoxel/internal/terrain/grid"
	"github.com/banshee-data/geovoxel/internal/terrain/l4paths"
)

// ErrUnresolvableProfile marks a feature whose profile cannot be computed:
// a zero-length path or one with no admissible deck cell.
var ErrUnresolvableProfile = errors.New("unresolvable profile")

// Surface is the committed terrain a builder reads.
type Surface interface {
	// LevelAt returns the surface level, resolving cells outside the
	// field from their neighbours.
	LevelAt(c grid.Cell) int
	// MaterialAt returns the surface material and whether c is in bounds.
	MaterialAt(c grid.Cell) (grid.Material, bool)
}

// Voxel is one structure block. Material Air clears the position.
type Voxel struct {
	Cell     grid.Cell
	Level    int
	Material grid.Material
}

// Profile is the vertical layout of one bridge or tunnel.
type Profile struct {
	FeatureID string
	Mode      l4paths.Mode
	Material  grid.Material // deck or floor material
	Length    int           // centerline cells

	// Deck maps each footprint cell to its deck (bridge) or floor
	// (tunnel) level.
	Deck map[grid.Cell]int
	// Openings are footprint cells inside a declared ramp, portal or bore,
	// where the deck may sit at or below the terrain.
	Openings grid.CellSet
	// Centerline holds the deck level along the centerline, index by index.
	Centerline []int
	// Portals are the centerline indices where a bored tunnel leaves its
	// ramps. Zero for bridges and at-grade tunnels.
	Portals [2]int
	// Voxels are written in order; later entries win.
	Voxels []Voxel
}

func newProfile(seg *l4paths.Segment) *Profile {
	return &Profile{
		FeatureID: seg.FeatureID,
		Mode:      seg.Mode,
		Material:  seg.Style.Material,
		Length:    seg.Length(),
		Deck:      make(map[grid.Cell]int),
		Openings:  grid.CellSet{},
	}
}

// Level returns the profile level at c.
func (p *Profile) Level(c grid.Cell) (int, bool) {
	l, ok := p.Deck[c]
	return l, ok
}

// Cells returns the footprint x-major.
func (p *Profile) Cells() []grid.Cell {
	out := make([]grid.Cell, 0, len(p.Deck))
	for c := range p.Deck {
		out = append(out, c)
	}
	grid.SortCells(out)
	return out
}

// VoxelsOf returns the voxels of one material, in write order.
func (p *Profile) VoxelsOf(m grid.Material) []Voxel {
	var out []Voxel
	for _, v := range p.Voxels {
		if v.Material == m {
			out = append(out, v)
		}
	}
	return out
}

// admit records a deck cell unless it would sit at or below the terrain
// outside a declared opening.
func (p *Profile) admit(c grid.Cell, level, ground int) bool {
	if level <= ground && !p.Openings.Has(c) {
		return false
	}
	if prev, ok := p.Deck[c]; ok && prev >= level {
		return true
	}
	p.Deck[c] = level
	return true
}

func (p *Profile) put(c grid.Cell, level int, m grid.Material) {
	p.Voxels = append(p.Voxels, Voxel{Cell: c, Level: level, Material: m})
}

// clearRange clears levels lo..hi inclusive at c.
func (p *Profile) clearRange(c grid.Cell, lo, hi int) {
	for y := lo; y <= hi; y++ {
		p.put(c, y, grid.Air)
	}
}

// fillRange places m at levels lo..hi inclusive at c.
func (p *Profile) fillRange(c grid.Cell, lo, hi int, m grid.Material) {
	for y := lo; y <= hi; y++ {
		p.put(c, y, m)
	}
}
