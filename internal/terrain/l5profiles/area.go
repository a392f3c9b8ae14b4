package l5profiles

import (
	"errors"
	"fmt"

	"github.com/banshee-data/geovoxel/internal/terrain/features"
	"github.com/banshee-data/geovoxel/internal/terrain/grid"
	"github.com/banshee-data/geovoxel/internal/terrain/l4paths"
)

// AreaBridgeBuilder lays flat decks over bridges mapped as outlines.
type AreaBridgeBuilder struct{}

// NewAreaBridgeBuilder returns an area bridge builder.
func NewAreaBridgeBuilder() *AreaBridgeBuilder {
	return &AreaBridgeBuilder{}
}

// Build fills every cell inside the outline of f, and outside its holes,
// with a concrete deck one level above the surface. Cells where a profile
// in linear already reaches the deck level are skipped.
func (a *AreaBridgeBuilder) Build(f features.Feature, b grid.Bounds, s Surface, linear []*Profile) (*Profile, error) {
	polys := f.Polygons()
	if len(polys) == 0 {
		return nil, fmt.Errorf("bridge area %s has no outline: %w", f.ID, features.ErrInvalidGeometry)
	}
	var errs []error
	cells := grid.CellSet{}
	for _, poly := range polys {
		if err := features.ValidatePolygon(poly); err != nil {
			errs = append(errs, err)
			continue
		}
		for _, c := range features.RasterizePolygon(poly, b) {
			cells.Add(c)
		}
	}
	if len(errs) == len(polys) {
		return nil, fmt.Errorf("bridge area %s: %w", f.ID, errors.Join(errs...))
	}

	above := structureTops(linear)
	p := &Profile{
		FeatureID: f.ID,
		Mode:      l4paths.ModeBridge,
		Material:  grid.Concrete,
		Deck:      make(map[grid.Cell]int),
		Openings:  grid.CellSet{},
	}
	for _, c := range cells.Sorted() {
		ground := s.LevelAt(c)
		deck := ground + 1
		if top, ok := above[c]; ok && top >= deck {
			continue
		}
		p.admit(c, deck, ground)
	}
	if len(p.Deck) == 0 {
		return nil, fmt.Errorf("bridge area %s has no free deck cell: %w", f.ID, ErrUnresolvableProfile)
	}
	p.Length = len(p.Deck)
	for _, c := range p.Cells() {
		p.put(c, p.Deck[c], p.Material)
	}
	return p, nil
}

// structureTops maps each cell to the highest solid level any bridge
// profile places there.
func structureTops(profiles []*Profile) map[grid.Cell]int {
	tops := map[grid.Cell]int{}
	raise := func(c grid.Cell, level int) {
		if prev, ok := tops[c]; !ok || level > prev {
			tops[c] = level
		}
	}
	for _, p := range profiles {
		if p.Mode != l4paths.ModeBridge {
			continue
		}
		for c, level := range p.Deck {
			raise(c, level)
		}
		for _, v := range p.Voxels {
			if v.Material != grid.Air {
				raise(v.Cell, v.Level)
			}
		}
	}
	return tops
}
