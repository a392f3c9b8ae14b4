// Package sqlite contains the SQLite repository for terrain runs.
//
// A run records the bounds and tuning it was built with. Height fields and
// material maps are stored as gob+gzip snapshots tagged with the stage
// that committed them, so later stages and later tools read back the
// committed state rather than an in-memory copy. Profiles are stored per
// feature.
//
// The schema is managed by golang-migrate from embedded migrations.
package sqlite
