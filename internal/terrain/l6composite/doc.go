// Package l6composite owns Layer 6 (Composite) of the terrain data model.
//
// Responsibilities: merging resolved surface materials, rasterized surface
// paths and bridge/tunnel profiles into one final (material, level) per
// cell, building the membership masks, and streaming voxels to a sink
// with write-failure accounting.
// Key types: Compositor, Input, Result, Masks, VoxelSink, MemorySink.
//
// Dependency rule: L6 may depend on L5, L4, grid and monitoring. Nothing in
// the terrain layers depends on L6; only the pipeline does.
package l6composite
