package l4paths

import (
	"strings"

	"github.com/banshee-data/geovoxel/internal/terrain/features"
	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

// Category names a path class, e.g. "primary", "rail" or "aeroway:runway".
type Category string

// CategoryRail is every kind of railway track.
const CategoryRail Category = "rail"

// Style is how a category is drawn. Higher Rank wins where paths overlap.
type Style struct {
	Material grid.Material
	Width    int
	Rank     int
}

// DefaultStyle applies to categories missing from the table.
var DefaultStyle = Style{Material: grid.Stone, Width: 4, Rank: 1}

var styles = map[Category]Style{
	"motorway":      {grid.Concrete, 20, 90},
	"trunk":         {grid.Concrete, 15, 80},
	"primary":       {grid.Concrete, 15, 70},
	"secondary":     {grid.Concrete, 15, 60},
	"tertiary":      {grid.Concrete, 15, 50},
	"residential":   {grid.Concrete, 15, 40},
	"living_street": {grid.Concrete, 8, 35},
	"unclassified":  {grid.Concrete, 6, 30},
	"service":       {grid.Concrete, 5, 25},
	"track":         {grid.Cobblestone, 4, 15},
	"footway":       {grid.Stone, 4, 10},
	"path":          {grid.Stone, 4, 10},
	"cycleway":      {grid.Stone, 4, 10},
	"pedestrian":    {grid.Stone, 4, 10},
	"steps":         {grid.Stone, 3, 10},
	"bridleway":     {grid.Gravel, 3, 5},

	"aeroway:runway":   {grid.Concrete, 45, 95},
	"aeroway:taxiway":  {grid.Concrete, 15, 85},
	"aeroway:taxilane": {grid.Concrete, 8, 85},

	CategoryRail: {grid.Rail, 3, 100},
}

// StyleFor looks up a category, falling back to DefaultStyle.
func StyleFor(c Category) Style {
	if s, ok := styles[c]; ok {
		return s
	}
	return DefaultStyle
}

// IsRail reports whether tags describe railway track.
func IsRail(t features.Tags) bool {
	return features.IsRailway(t)
}

// CategoryOf derives the category from tags. Link roads share their parent
// class. ok is false when the tags describe no path at all.
func CategoryOf(t features.Tags) (Category, bool) {
	switch {
	case IsRail(t):
		return CategoryRail, true
	case t.Has("aeroway"):
		return Category("aeroway:" + t.Get("aeroway")), true
	case t.Has("highway"):
		return Category(strings.TrimSuffix(t.Get("highway"), "_link")), true
	}
	return "", false
}

// WidthFor returns the drawn width: an explicit width tag in metres
// (one cell per metre, at least 1) or the style width.
func WidthFor(t features.Tags, s Style) int {
	if w, ok := t.Float("width"); ok && w > 0 {
		return max(1, int(w+0.5))
	}
	return s.Width
}
