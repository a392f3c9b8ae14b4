// Package l4paths owns Layer 4 (Paths) of the terrain data model.
//
// Responsibilities: classifying tagged lines into road, rail and aeroway
// categories with a material and width, deciding whether a feature runs
// at grade, on a bridge or in a tunnel, and rasterizing centerlines into
// width-expanded cell bands.
// Key types: Category, Style, Mode, Segment.
//
// Dependency rule: L4 may depend on features and grid, but never on L5+.
package l4paths
