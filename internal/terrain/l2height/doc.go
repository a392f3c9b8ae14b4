// Package l2height owns Layer 2 (Height) of the terrain data model.
//
// Responsibilities: converting filled elevation into integer levels,
// resolving levels for cells outside the sampled area, and relaxing the
// field until every pair of king-adjacent cells differs by at most one
// level.
// Key types: Builder, SolverConfig, SolveResult, Violation.
//
// Dependency rule: L2 may depend on L1 and grid, but never on L3+.
package l2height
