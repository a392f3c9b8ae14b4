// Package features holds tagged vector input already projected into grid
// space: paths, zones, building footprints and hydrography.
//
// It decodes GeoJSON feature collections, classifies features by their
// tags, validates geometry and rasterizes polygons and buffered lines
// onto grid cells. Layers L3 and above consume it; it depends on grid only.
package features
