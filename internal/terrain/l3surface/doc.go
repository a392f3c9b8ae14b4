// Package l3surface owns Layer 3 (Surface) of the terrain data model.
//
// Responsibilities: mapping land-cover classes to materials, rasterizing
// zone polygons over them (with majority-vote and forced-sand rules),
// majority-vote smoothing, and the final hydrography correction that also
// lowers the height field under water.
// Key types: Resolver, ZoneRule, WaterCorrection.
//
// Dependency rule: L3 may depend on L1-L2, features and grid, but never on
// L4+. Infrastructure cells are passed in as a plain cell set.
package l3surface
