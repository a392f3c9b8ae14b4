package features

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"
)

// maxInputSize caps a single feature file.
const maxInputSize = 256 * 1024 * 1024

// Decode parses a GeoJSON FeatureCollection whose coordinates are already
// in grid space, and classifies every feature.
func Decode(data []byte) (*Collection, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feature collection: %w", err)
	}
	out := &Collection{}
	for i, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			out.Ignored++
			continue
		}
		out.Add(Feature{
			ID:       featureID(f, i),
			Tags:     propertiesToTags(f.Properties),
			Geometry: f.Geometry,
		})
	}
	return out, nil
}

// Load reads and decodes a .geojson or .json feature file.
func Load(path string) (*Collection, error) {
	cleanPath := filepath.Clean(path)
	switch ext := filepath.Ext(cleanPath); ext {
	case ".geojson", ".json":
	default:
		return nil, fmt.Errorf("feature file must have .geojson or .json extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat feature file: %w", err)
	}
	if info.Size() > maxInputSize {
		return nil, fmt.Errorf("feature file too large: %d bytes (max %d)", info.Size(), maxInputSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read feature file: %w", err)
	}
	return Decode(data)
}

func featureID(f *geojson.Feature, index int) string {
	if f.ID != nil {
		return fmt.Sprint(f.ID)
	}
	for _, key := range []string{"id", "@id", "osm_id"} {
		if v, ok := f.Properties[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return fmt.Sprintf("feature-%d", index)
}

func propertiesToTags(p geojson.Properties) Tags {
	tags := make(Tags, len(p))
	for k, v := range p {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			tags[k] = val
		case bool:
			if val {
				tags[k] = "yes"
			} else {
				tags[k] = "no"
			}
		case float64:
			if val == float64(int64(val)) {
				tags[k] = fmt.Sprintf("%d", int64(val))
			} else {
				tags[k] = fmt.Sprint(val)
			}
		default:
			tags[k] = fmt.Sprint(val)
		}
	}
	return tags
}
