package l5profiles

import (
	"fmt"

	"github.com/banshee-data/geovoxel/internal/terrain/grid"
	"github.com/banshee-data/geovoxel/internal/terrain/l4paths"
)

// TunnelBuilder sinks tunnel segments below the terrain.
type TunnelBuilder struct {
	Config TunnelConfig
}

// NewTunnelBuilder returns a builder with the given settings.
func NewTunnelBuilder(cfg TunnelConfig) *TunnelBuilder {
	return &TunnelBuilder{Config: cfg}
}

// Build computes the floor profile of seg under s. Every footprint cell
// of a tunnel is a declared opening.
func (t *TunnelBuilder) Build(seg *l4paths.Segment, s Surface) (*Profile, error) {
	n := seg.Length()
	if n < 2 {
		return nil, fmt.Errorf("tunnel %s has %d centerline cells: %w", seg.FeatureID, n, ErrUnresolvableProfile)
	}
	p := newProfile(seg)
	for _, c := range seg.Cells() {
		p.Openings.Add(c)
	}
	if n < t.Config.ShortLength {
		t.atGrade(seg, s, p)
	} else {
		t.bored(seg, s, p)
	}
	return p, nil
}

// atGrade keeps short underpasses on the surface and clears headroom
// above them.
func (t *TunnelBuilder) atGrade(seg *l4paths.Segment, s Surface, p *Profile) {
	p.Centerline = make([]int, seg.Length())
	for i, c := range seg.Centerline {
		p.Centerline[i] = s.LevelAt(c)
		for _, bc := range seg.Band(i) {
			g := s.LevelAt(bc)
			p.admit(bc, g, g)
		}
	}
	for _, c := range p.Cells() {
		f := p.Deck[c]
		p.clearRange(c, f+1, f+t.Config.Headroom)
		p.put(c, f, p.Material)
	}
}

// bored drops the interior Depth levels below local ground, with ramps
// descending one level per cell from each portal.
func (t *TunnelBuilder) bored(seg *l4paths.Segment, s Surface, p *Profile) {
	cfg := t.Config
	n := seg.Length()
	cl := seg.Centerline
	ramp := max(cfg.RampLength, cfg.Depth)
	entry, exit := s.LevelAt(cl[0]), s.LevelAt(cl[n-1])

	levels := make([]int, n)
	for i := range levels {
		down := entry - rise(i, cfg.Depth, ramp)
		up := exit - rise(n-1-i, cfg.Depth, ramp)
		levels[i] = max(down, up, s.LevelAt(cl[i])-cfg.Depth)
	}
	lipschitzAbove(levels)
	p.Centerline = levels
	if ramp < n-ramp {
		p.Portals = [2]int{ramp, n - 1 - ramp}
	} else {
		p.Portals = [2]int{n / 2, n / 2}
	}

	for i := 0; i < n; i++ {
		for _, c := range seg.Band(i) {
			p.admit(c, levels[i], s.LevelAt(c))
		}
	}

	footprint := p.Cells()
	for _, c := range footprint {
		f := p.Deck[c]
		p.clearRange(c, f+1, f+cfg.Headroom)
		p.put(c, f, p.Material)
		if roof := f + cfg.Headroom + 1; roof <= s.LevelAt(c) {
			p.put(c, roof, grid.Ceiling)
		}
	}
	t.walls(p, s, footprint)
}

// walls lines the footprint perimeter from just above the floor to the
// ceiling, never above the terrain surface.
func (t *TunnelBuilder) walls(p *Profile, s Surface, footprint []grid.Cell) {
	type span struct{ lo, hi int }
	spans := map[grid.Cell]span{}
	for _, c := range footprint {
		f := p.Deck[c]
		for _, o := range grid.Neighbors8 {
			nb := c.Add(o.DX, o.DZ)
			if _, inside := p.Deck[nb]; inside {
				continue
			}
			sp, seen := spans[nb]
			if !seen {
				sp = span{lo: f + 1, hi: f + t.Config.Headroom + 1}
			} else {
				sp.lo = min(sp.lo, f+1)
				sp.hi = max(sp.hi, f+t.Config.Headroom+1)
			}
			spans[nb] = sp
		}
	}
	cells := make([]grid.Cell, 0, len(spans))
	for c := range spans {
		cells = append(cells, c)
	}
	grid.SortCells(cells)
	for _, c := range cells {
		sp := spans[c]
		p.fillRange(c, sp.lo, min(sp.hi, s.LevelAt(c)), grid.Wall)
	}
}

// lipschitzAbove raises levels until neighbours differ by at most one.
func lipschitzAbove(levels []int) {
	for i := 1; i < len(levels); i++ {
		levels[i] = max(levels[i], levels[i-1]-1)
	}
	for i := len(levels) - 2; i >= 0; i-- {
		levels[i] = max(levels[i], levels[i+1]-1)
	}
}
