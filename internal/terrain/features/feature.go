package features

import (
	"errors"

	"github.com/paulmach/orb"
)

// ErrInvalidGeometry marks a degenerate or self-intersecting feature.
var ErrInvalidGeometry = errors.New("invalid geometry")

// Class is the role a feature plays in terrain generation.
type Class int

const (
	ClassIgnored Class = iota // no terrain role
	ClassPath                 // highway, railway or aeroway line
	ClassZone                 // land-use area
	ClassBuilding             // building footprint
	ClassWater                // hydrography polygon or river centerline
	ClassBridgeArea           // bridge deck outline
)

func (c Class) String() string {
	switch c {
	case ClassPath:
		return "path"
	case ClassZone:
		return "zone"
	case ClassBuilding:
		return "building"
	case ClassWater:
		return "water"
	case ClassBridgeArea:
		return "bridge_area"
	default:
		return "ignored"
	}
}

// Feature is one tagged geometry in grid coordinates: X maps to cell X and
// Y maps to cell Z, with the cell centre at integer coordinates.
type Feature struct {
	ID       string
	Tags     Tags
	Geometry orb.Geometry
}

// Lines resolves the geometry to its line members. A LineString is a
// single member, a MultiLineString a group; anything else has none.
func (f Feature) Lines() []orb.LineString {
	switch g := f.Geometry.(type) {
	case orb.LineString:
		return []orb.LineString{g}
	case orb.MultiLineString:
		return []orb.LineString(g)
	}
	return nil
}

// Polygons resolves the geometry to its polygon members in the same way.
func (f Feature) Polygons() []orb.Polygon {
	switch g := f.Geometry.(type) {
	case orb.Polygon:
		return []orb.Polygon{g}
	case orb.MultiPolygon:
		return []orb.Polygon(g)
	}
	return nil
}

// Classify decides what a feature is used for from its tags and geometry.
func Classify(f Feature) Class {
	t := f.Tags
	areal := len(f.Polygons()) > 0
	linear := len(f.Lines()) > 0
	switch {
	case isWater(t) && (areal || linear):
		return ClassWater
	case isBridgeArea(t) && areal:
		return ClassBridgeArea
	case t.Truthy("building") && areal:
		return ClassBuilding
	case (t.Has("highway") || IsRailway(t) || t.Has("aeroway")) && linear:
		return ClassPath
	case (t.Has("landuse") || t.Has("natural") || t.Has("leisure") || t.Has("amenity")) && areal:
		return ClassZone
	}
	return ClassIgnored
}

func isWater(t Tags) bool {
	return t.Is("natural", "water", "bay", "strait") ||
		t.Is("waterway", "river", "stream", "canal", "riverbank", "dock") ||
		t.Is("landuse", "reservoir", "basin")
}

func isBridgeArea(t Tags) bool {
	if t.Truthy("tunnel") {
		return false
	}
	return t.Is("man_made", "bridge") || t.Truthy("bridge") || t.Has("bridge:structure")
}

var railwayKinds = map[string]bool{
	"rail": true, "light_rail": true, "subway": true, "tram": true,
	"narrow_gauge": true, "monorail": true, "funicular": true,
	"preserved": true, "disused": true, "abandoned": true,
}

// trackKinds are the railway values a construction, proposal or disused
// lifecycle prefix must name to count as track.
var trackKinds = []string{"rail", "tram", "light_rail"}

// IsRailway reports whether tags describe railway track, including track
// that is disused, abandoned or under construction. Platforms, stations
// and other railway furniture are not track.
func IsRailway(t Tags) bool {
	kind := t.Get("railway")
	switch {
	case railwayKinds[kind]:
		return true
	case kind == "construction":
		return t.Is("construction", trackKinds...) || t.Is("construction:railway", trackKinds...)
	case kind == "proposed":
		return t.Is("proposed", trackKinds...) || t.Is("proposed:railway", trackKinds...)
	}
	return t.Is("disused:railway", trackKinds...)
}

// Collection groups decoded features by class.
type Collection struct {
	Paths       []Feature
	Zones       []Feature
	Buildings   []Feature
	Water       []Feature
	// BridgeAreas are decks mapped as closed outlines rather than lines.
	BridgeAreas []Feature
	Ignored     int
}

// Add files f under its class.
func (c *Collection) Add(f Feature) {
	switch Classify(f) {
	case ClassPath:
		c.Paths = append(c.Paths, f)
	case ClassZone:
		c.Zones = append(c.Zones, f)
	case ClassBuilding:
		c.Buildings = append(c.Buildings, f)
	case ClassWater:
		c.Water = append(c.Water, f)
	case ClassBridgeArea:
		c.BridgeAreas = append(c.BridgeAreas, f)
	default:
		c.Ignored++
	}
}
