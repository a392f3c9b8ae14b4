package l3surface

import (
	"github.com/banshee-data/geovoxel/internal/terrain/features"
	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

// ZoneKind selects how a zone assigns material.
type ZoneKind int

const (
	ZoneFixed       ZoneKind = iota // assign Material
	ZoneResidential                 // majority of surrounding ground
	ZoneSand                        // force sand
)

// ZoneRule is the resolved effect of one zone's tags.
type ZoneRule struct {
	Kind     ZoneKind
	Material grid.Material
}

type tagRule struct {
	key    string
	values []string
	rule   ZoneRule
}

// zoneRules are matched in order; the first hit wins.
var zoneRules = []tagRule{
	{"natural", []string{"sand", "beach", "desert", "dune"}, ZoneRule{ZoneSand, grid.Sand}},
	{"landuse", []string{"residential", "retail", "commercial", "construction"}, ZoneRule{ZoneResidential, grid.Ground}},
	{"place", []string{"neighbourhood", "suburb"}, ZoneRule{ZoneResidential, grid.Ground}},
	{"natural", []string{"water", "bay"}, ZoneRule{ZoneFixed, grid.Water}},
	{"landuse", []string{"reservoir", "basin"}, ZoneRule{ZoneFixed, grid.Water}},
	{"natural", []string{"wetland", "mud"}, ZoneRule{ZoneFixed, grid.Mud}},
	{"natural", []string{"bare_rock", "scree", "cliff"}, ZoneRule{ZoneFixed, grid.Stone}},
	{"natural", []string{"glacier"}, ZoneRule{ZoneFixed, grid.Snow}},
	{"natural", []string{"wood", "scrub", "heath"}, ZoneRule{ZoneFixed, grid.Moss}},
	{"natural", []string{"grassland"}, ZoneRule{ZoneFixed, grid.Grass}},
	{"landuse", []string{"industrial", "quarry", "landfill"}, ZoneRule{ZoneFixed, grid.Stone}},
	{"landuse", []string{"railway"}, ZoneRule{ZoneFixed, grid.Gravel}},
	{"landuse", []string{"forest"}, ZoneRule{ZoneFixed, grid.Moss}},
	{"landuse", []string{"grass", "meadow", "farmland", "orchard", "vineyard", "village_green", "allotments", "cemetery", "recreation_ground"}, ZoneRule{ZoneFixed, grid.Grass}},
	{"leisure", []string{"park", "garden", "pitch", "golf_course", "playground"}, ZoneRule{ZoneFixed, grid.Grass}},
	{"amenity", []string{"parking"}, ZoneRule{ZoneFixed, grid.Ground}},
}

// RuleForTags resolves a zone's effect. ok is false for tags with no rule.
func RuleForTags(t features.Tags) (ZoneRule, bool) {
	for _, r := range zoneRules {
		if t.Is(r.key, r.values...) {
			return r.rule, true
		}
	}
	return ZoneRule{}, false
}
