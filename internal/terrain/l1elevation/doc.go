// Package l1elevation owns Layer 1 (Elevation) of the terrain data model.
//
// Responsibilities: back-projecting grid cells to geographic coordinates,
// sampling elevation and land-cover rasters, and filling nodata so every
// in-bounds cell carries a finite elevation.
// Key types: ElevationRaster, LandcoverRaster, Projection, SRTMTile,
// GridRaster, Stats.
//
// Dependency rule: L1 may depend on grid only.
package l1elevation
