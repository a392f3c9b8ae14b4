package l6composite

import (
	"fmt"
	"sort"

	"github.com/banshee-data/geovoxel/internal/monitoring"
	"github.com/banshee-data/geovoxel/internal/terrain/grid"
	"github.com/banshee-data/geovoxel/internal/terrain/l1elevation"
	"github.com/banshee-data/geovoxel/internal/terrain/l4paths"
	"github.com/banshee-data/geovoxel/internal/terrain/l5profiles"
)

// Masks are the membership sets of the final grid.
type Masks struct {
	Road     grid.CellSet
	Rail     grid.CellSet
	Building grid.CellSet
	Beach    grid.CellSet
	Water    grid.CellSet
}

func newMasks() Masks {
	return Masks{
		Road:     grid.CellSet{},
		Rail:     grid.CellSet{},
		Building: grid.CellSet{},
		Beach:    grid.CellSet{},
		Water:    grid.CellSet{},
	}
}

// Input is the committed state of the lower layers.
type Input struct {
	Heights   *grid.HeightField
	Materials *grid.MaterialMap
	Segments  []*l4paths.Segment // surface-mode segments only are painted
	Profiles  []*l5profiles.Profile
	Buildings grid.CellSet
	Beach     grid.CellSet
	Water     grid.CellSet
	// Vacated holds the former top level of cells the water correction
	// or shoreline settling lowered.
	Vacated map[grid.Cell]int
}

// Result is the final per-cell surface.
type Result struct {
	Materials *grid.MaterialMap
	Levels    *grid.HeightField
	Masks     Masks

	Painted       int // surface path cells painted
	Carved        int // surface path cells skipped under a profile
	Cleared       int // vacated levels cleared above lowered cells
	Written       int // voxels accepted by the sink
	WriteFailures int
}

// Compositor merges the layers into the final grid.
type Compositor struct {
	sink *CountingSink
}

// NewCompositor returns a compositor streaming to sink, which may be nil.
// At most logCap write failures are logged.
func NewCompositor(sink VoxelSink, logCap int) *Compositor {
	c := &Compositor{}
	if sink != nil {
		c.sink = NewCountingSink(sink, logCap)
	}
	return c
}

// Composite paints surface paths in rank order, skipping cells owned by a
// profile, then raises bridge decks and opened tunnel floors to the top of
// their cells. The terrain surface and every profile voxel are streamed to
// the sink, terrain first. Vacated levels above lowered cells are cleared
// before their terrain voxel.
func (c *Compositor) Composite(in Input) (*Result, error) {
	if in.Heights == nil || in.Materials == nil {
		return nil, fmt.Errorf("composite needs heights and materials: %w", l1elevation.ErrMissingInput)
	}
	b := in.Heights.Bounds()
	res := &Result{
		Materials: in.Materials.Clone(),
		Levels:    in.Heights.Clone(),
		Masks:     newMasks(),
	}
	res.Masks.Building.Union(in.Buildings)
	res.Masks.Beach.Union(in.Beach)
	res.Masks.Water.Union(in.Water)

	owned := grid.CellSet{}
	profiles := sortedProfiles(in.Profiles)
	for _, p := range profiles {
		for cell := range p.Deck {
			owned.Add(cell)
		}
	}

	c.paintSegments(in.Segments, owned, res)

	if c.sink != nil {
		b.Each(func(cell grid.Cell) {
			level := res.Levels.Get(cell)
			if top, ok := in.Vacated[cell]; ok {
				for y := level + 1; y <= top; y++ {
					_ = c.sink.SetVoxel(cell, y, grid.Air)
					res.Cleared++
				}
			}
			_ = c.sink.SetVoxel(cell, level, res.Materials.Get(cell))
		})
	}

	for _, p := range profiles {
		c.applyProfile(p, in.Heights, res)
	}

	if c.sink != nil {
		res.Written = c.sink.Written()
		res.WriteFailures = c.sink.Failed()
	}
	monitoring.Logf("[Compositor] painted=%d carved=%d cleared=%d profiles=%d written=%d failures=%d",
		res.Painted, res.Carved, res.Cleared, len(profiles), res.Written, res.WriteFailures)
	return res, nil
}

func sortedProfiles(in []*l5profiles.Profile) []*l5profiles.Profile {
	out := append([]*l5profiles.Profile(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].FeatureID < out[j].FeatureID })
	return out
}

// paintSegments paints lower ranks first so higher ranks win shared cells.
func (c *Compositor) paintSegments(segs []*l4paths.Segment, owned grid.CellSet, res *Result) {
	var surface []*l4paths.Segment
	for _, s := range segs {
		if s.Mode == l4paths.ModeSurface {
			surface = append(surface, s)
		}
	}
	sort.SliceStable(surface, func(i, j int) bool {
		if surface[i].Style.Rank != surface[j].Style.Rank {
			return surface[i].Style.Rank < surface[j].Style.Rank
		}
		return surface[i].FeatureID < surface[j].FeatureID
	})

	for _, s := range surface {
		rail := s.Category == l4paths.CategoryRail
		for _, cell := range s.Cells() {
			if !res.Materials.Bounds().Contains(cell) {
				continue
			}
			if owned.Has(cell) {
				res.Carved++
				continue
			}
			res.Materials.Set(cell, s.Style.Material)
			res.Painted++
			markPath(res.Masks, cell, rail)
		}
	}
}

func markPath(m Masks, cell grid.Cell, rail bool) {
	if rail {
		delete(m.Road, cell)
		m.Rail.Add(cell)
		return
	}
	delete(m.Rail, cell)
	m.Road.Add(cell)
}

// applyProfile streams the profile voxels and lifts the final surface to
// the deck where the structure is the topmost walkable block.
func (c *Compositor) applyProfile(p *l5profiles.Profile, ground *grid.HeightField, res *Result) {
	if c.sink != nil {
		for _, v := range p.Voxels {
			_ = c.sink.SetVoxel(v.Cell, v.Level, v.Material)
		}
	}

	cleared := map[grid.Cell]int{}
	if p.Mode == l4paths.ModeTunnel {
		for _, v := range p.Voxels {
			if v.Material != grid.Air {
				continue
			}
			if top, ok := cleared[v.Cell]; !ok || v.Level > top {
				cleared[v.Cell] = v.Level
			}
		}
	}

	rail := p.Material == grid.Rail
	for _, cell := range p.Cells() {
		g, ok := ground.At(cell)
		if !ok {
			continue
		}
		deck := p.Deck[cell]
		if p.Mode == l4paths.ModeTunnel {
			// Covered bores leave the terrain surface on top.
			if top, ok := cleared[cell]; deck != g && (!ok || top < g) {
				continue
			}
		} else if deck < res.Levels.Get(cell) {
			continue
		}
		res.Levels.Set(cell, deck)
		res.Materials.Set(cell, p.Material)
		markPath(res.Masks, cell, rail)
	}
}
