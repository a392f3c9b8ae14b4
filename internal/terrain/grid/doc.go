// Package grid owns Layer 0 of the terrain data model: discrete cells,
// inclusive bounding rectangles and the dense per-cell layers every later
// stage reads and writes.
//
// Responsibilities: cell arithmetic, neighbourhood offsets, integer line
// drawing and the material vocabulary shared by all layers.
// Key types: Cell, Bounds, Layer, CellSet, Material.
//
// Dependency rule: grid depends on nothing else in internal/terrain.
package grid
