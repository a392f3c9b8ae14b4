package l4paths

import "github.com/banshee-data/geovoxel/internal/terrain/features"

// Mode is the vertical placement of a path.
type Mode int

const (
	ModeSurface Mode = iota
	ModeBridge
	ModeTunnel
)

func (m Mode) String() string {
	switch m {
	case ModeBridge:
		return "bridge"
	case ModeTunnel:
		return "tunnel"
	default:
		return "surface"
	}
}

// IsTunnelLike reports whether tags put a path underground: a tunnel tag,
// a negative layer or level, or location=underground. Building passages
// and covered ways stay at grade.
func IsTunnelLike(t features.Tags) bool {
	if t.Is("tunnel", "building_passage") || t.Truthy("covered") {
		return false
	}
	if t.Truthy("tunnel") || t.Is("location", "underground") {
		return true
	}
	if l, ok := t.Int("layer"); ok && l < 0 {
		return true
	}
	if l, ok := t.Int("level"); ok && l < 0 {
		return true
	}
	return false
}

// IsBridgeLike reports whether tags lift a path: a bridge or
// bridge:structure tag, or a positive layer, unless it is a tunnel.
func IsBridgeLike(t features.Tags) bool {
	if IsTunnelLike(t) {
		return false
	}
	if t.Truthy("bridge") || t.Truthy("bridge:structure") {
		return true
	}
	l, ok := t.Int("layer")
	return ok && l > 0
}

// ModeOf classifies tags into a vertical mode.
func ModeOf(t features.Tags) Mode {
	switch {
	case IsTunnelLike(t):
		return ModeTunnel
	case IsBridgeLike(t):
		return ModeBridge
	}
	return ModeSurface
}

// LayerOf returns the layer tag, or 0.
func LayerOf(t features.Tags) int {
	l, _ := t.Int("layer")
	return l
}
