// Package l5profiles owns Layer 5 (Profiles) of the terrain data model.
//
// Responsibilities: computing the per-cell vertical profile of every
// bridge and tunnel, together with the structure voxels it needs: decks,
// ramps, guard walls, pillars, portals, cleared headroom, ceilings and
// tunnel walls. Bridges mapped as outlines get a flat deck over their area.
// Key types: Profile, Voxel, Surface, BridgeBuilder, AreaBridgeBuilder,
// TunnelBuilder.
//
// Profiles read terrain only through Surface, which callers back with the
// committed grid state. Once built a Profile is not modified.
//
// Dependency rule: L5 may depend on L4, features and grid, but never on L6.
package l5profiles
