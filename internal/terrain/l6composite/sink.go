package l6composite

import (
	"errors"
	"fmt"

	"github.com/banshee-data/geovoxel/internal/monitoring"
	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

// ErrWriteRejected is returned by sinks that refuse a voxel.
var ErrWriteRejected = errors.New("voxel write rejected")

// VoxelSink receives voxel writes. Air clears the position.
type VoxelSink interface {
	SetVoxel(c grid.Cell, level int, m grid.Material) error
}

// CountingSink wraps a sink, counting writes and logging failures up to
// a cap. A failed write never stops the stream.
type CountingSink struct {
	sink     VoxelSink
	failures *monitoring.CappedLog
	written  int
}

// NewCountingSink wraps sink, logging at most logCap failures.
func NewCountingSink(sink VoxelSink, logCap int) *CountingSink {
	return &CountingSink{sink: sink, failures: monitoring.NewCappedLog("VoxelSink", logCap)}
}

// SetVoxel forwards one write and records its outcome.
func (s *CountingSink) SetVoxel(c grid.Cell, level int, m grid.Material) error {
	if err := s.sink.SetVoxel(c, level, m); err != nil {
		s.failures.Reportf("write %s@%d %s failed: %v", c, level, m, err)
		return err
	}
	s.written++
	return nil
}

// Written is the number of accepted writes.
func (s *CountingSink) Written() int { return s.written }

// Failed is the number of rejected writes.
func (s *CountingSink) Failed() int { return s.failures.Count() }

type voxelKey struct {
	cell  grid.Cell
	level int
}

// MemorySink keeps voxels in a map and rejects writes outside its bounds
// or below MinLevel. Clearing a position removes it.
type MemorySink struct {
	Bounds   grid.Bounds
	MinLevel int
	voxels   map[voxelKey]grid.Material
}

// NewMemorySink returns an empty sink over b.
func NewMemorySink(b grid.Bounds, minLevel int) *MemorySink {
	return &MemorySink{Bounds: b, MinLevel: minLevel, voxels: make(map[voxelKey]grid.Material)}
}

func (s *MemorySink) SetVoxel(c grid.Cell, level int, m grid.Material) error {
	if !s.Bounds.Contains(c) {
		return fmt.Errorf("cell %s outside %s: %w", c, s.Bounds, ErrWriteRejected)
	}
	if level < s.MinLevel {
		return fmt.Errorf("level %d below %d: %w", level, s.MinLevel, ErrWriteRejected)
	}
	k := voxelKey{cell: c, level: level}
	if m == grid.Air {
		delete(s.voxels, k)
		return nil
	}
	s.voxels[k] = m
	return nil
}

// At returns the material at a position, Air when empty.
func (s *MemorySink) At(c grid.Cell, level int) grid.Material {
	if m, ok := s.voxels[voxelKey{cell: c, level: level}]; ok {
		return m
	}
	return grid.Air
}

// Len is the number of solid voxels held.
func (s *MemorySink) Len() int { return len(s.voxels) }
