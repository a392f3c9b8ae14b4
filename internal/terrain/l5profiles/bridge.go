package l5profiles

import (
	"fmt"

	"github.com/banshee-data/geovoxel/internal/terrain/grid"
	"github.com/banshee-data/geovoxel/internal/terrain/l4paths"
)

// BridgeBuilder lifts bridge segments above the terrain.
type BridgeBuilder struct {
	Config BridgeConfig
}

// NewBridgeBuilder returns a builder with the given settings.
func NewBridgeBuilder(cfg BridgeConfig) *BridgeBuilder {
	return &BridgeBuilder{Config: cfg}
}

// Build computes the deck profile of seg over s.
//
// Spans shorter than ShortSpan get a flat deck one level above the higher
// end. Longer spans climb one level per cell over the end ramps to a
// central span held Clearance levels above local ground; a positive layer
// tag multiplies the clearance. Guard walls run along both band edges and
// pillars stand at the ends and every PillarPeriod cells where a footing
// exists.
func (b *BridgeBuilder) Build(seg *l4paths.Segment, s Surface) (*Profile, error) {
	n := seg.Length()
	if n < 2 {
		return nil, fmt.Errorf("bridge %s has %d centerline cells: %w", seg.FeatureID, n, ErrUnresolvableProfile)
	}

	p := newProfile(seg)
	if n < b.Config.ShortSpan {
		p.Centerline = b.shortSpan(seg, s)
	} else {
		p.Centerline = b.longSpan(seg, s, p)
	}

	for i := 0; i < n; i++ {
		for _, c := range seg.Band(i) {
			p.admit(c, p.Centerline[i], s.LevelAt(c))
		}
	}
	if len(p.Deck) == 0 {
		return nil, fmt.Errorf("bridge %s has no deck cell above ground: %w", seg.FeatureID, ErrUnresolvableProfile)
	}

	for _, c := range p.Cells() {
		p.put(c, p.Deck[c], p.Material)
	}
	b.guardWalls(seg, p, s)
	b.pillars(seg, p, s)
	return p, nil
}

func (b *BridgeBuilder) shortSpan(seg *l4paths.Segment, s Surface) []int {
	n := seg.Length()
	deck := max(s.LevelAt(seg.Centerline[0]), s.LevelAt(seg.Centerline[n-1])) + 1
	levels := make([]int, n)
	for i := range levels {
		levels[i] = deck
	}
	return levels
}

func (b *BridgeBuilder) longSpan(seg *l4paths.Segment, s Surface, p *Profile) []int {
	n := seg.Length()
	cl := seg.Centerline
	clearance := b.Config.Clearance * max(seg.Layer, 1)
	// Ramps climb at most one level per cell.
	ramp := max(b.Config.RampLength, clearance)
	entry, exit := s.LevelAt(cl[0]), s.LevelAt(cl[n-1])

	levels := make([]int, n)
	for i := range levels {
		up := entry + rise(i, clearance, ramp)
		down := exit + rise(n-1-i, clearance, ramp)
		levels[i] = min(up, down, s.LevelAt(cl[i])+clearance)
		if i < ramp || i >= n-ramp {
			for _, c := range seg.Band(i) {
				p.Openings.Add(c)
			}
		}
	}
	lipschitzBelow(levels)
	return levels
}

// rise is the ramp height k cells in from an end. It keeps climbing past
// the ramp; the span term caps it.
func rise(k, height, length int) int {
	return k * height / length
}

// lipschitzBelow lowers levels until neighbours differ by at most one.
func lipschitzBelow(levels []int) {
	for i := 1; i < len(levels); i++ {
		levels[i] = min(levels[i], levels[i-1]+1)
	}
	for i := len(levels) - 2; i >= 0; i-- {
		levels[i] = min(levels[i], levels[i+1]+1)
	}
}

// guardWalls places a curb at deck level and a wall one above it on the
// cells just outside both band edges.
func (b *BridgeBuilder) guardWalls(seg *l4paths.Segment, p *Profile, s Surface) {
	walls := map[grid.Cell]int{}
	for i := 0; i < seg.Length(); i++ {
		band := seg.Band(i)
		lo, hi := seg.Edges(i)
		for _, e := range []struct{ edge, inner grid.Cell }{{lo, band[0]}, {hi, band[len(band)-1]}} {
			deck, ok := p.Deck[e.inner]
			if !ok {
				continue
			}
			if _, onDeck := p.Deck[e.edge]; onDeck {
				continue
			}
			if deck <= s.LevelAt(e.edge) && !p.Openings.Has(e.inner) {
				continue
			}
			if prev, seen := walls[e.edge]; !seen || deck > prev {
				walls[e.edge] = deck
			}
		}
	}
	cells := make([]grid.Cell, 0, len(walls))
	for c := range walls {
		cells = append(cells, c)
	}
	grid.SortCells(cells)
	for _, c := range cells {
		p.put(c, walls[c], grid.Curb)
		p.put(c, walls[c]+1, grid.Wall)
	}
}

// pillars raises support columns at both ends and every PillarPeriod
// cells, on each side of the deck.
func (b *BridgeBuilder) pillars(seg *l4paths.Segment, p *Profile, s Surface) {
	n := seg.Length()
	idx := []int{0}
	for i := b.Config.PillarPeriod; i < n-1; i += b.Config.PillarPeriod {
		idx = append(idx, i)
	}
	idx = append(idx, n-1)

	for _, i := range idx {
		band := seg.Band(i)
		lo, hi := seg.Edges(i)
		deck := p.Centerline[i]
		b.pillar(p, s, lo, lo.X-band[0].X, lo.Z-band[0].Z, deck)
		last := band[len(band)-1]
		b.pillar(p, s, hi, hi.X-last.X, hi.Z-last.Z, deck)
	}
}

// pillar walks outward from start looking for a foundation and fills the
// column from its surface up to, but excluding, the deck.
func (b *BridgeBuilder) pillar(p *Profile, s Surface, start grid.Cell, dx, dz, deck int) bool {
	for k := 0; k <= b.Config.PillarReach; k++ {
		c := start.Add(dx*k, dz*k)
		if _, onDeck := p.Deck[c]; onDeck {
			continue
		}
		m, ok := s.MaterialAt(c)
		if !ok || !m.CanFound() {
			continue
		}
		top := s.LevelAt(c)
		if top+1 > deck-1 {
			return false
		}
		p.fillRange(c, top+1, deck-1, grid.Pillar)
		return true
	}
	return false
}
