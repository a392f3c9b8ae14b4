package sqlite

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

// Snapshot layer names.
const (
	LayerHeights   = "heights"
	LayerMaterials = "materials"
)

type layerBlob[T any] struct {
	Bounds grid.Bounds
	Values []T
}

// serializeLayer compresses a layer using gob encoding and gzip compression.
func serializeLayer[T any](l *grid.Layer[T]) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := gob.NewEncoder(gz)
	if err := enc.Encode(layerBlob[T]{Bounds: l.Bounds(), Values: l.Values()}); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deserializeLayer decompresses and decodes a layer from a gob+gzip blob.
func deserializeLayer[T any](blob []byte) (*grid.Layer[T], error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("empty layer blob")
	}
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	var lb layerBlob[T]
	if err := gob.NewDecoder(gz).Decode(&lb); err != nil {
		return nil, fmt.Errorf("failed to decode layer: %w", err)
	}
	return grid.LayerFromValues(lb.Bounds, lb.Values)
}

func (s *Store) insertSnapshot(ctx context.Context, runID, layer, stage string, cells int, blob []byte) error {
	err := retryOnBusy(func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO terrain_snapshots (run_id, layer, stage, cells, blob, taken_unix_nanos)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, layer, stage, cells, blob, time.Now().UnixNano())
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert %s snapshot: %w", layer, err)
	}
	return nil
}

func (s *Store) latestSnapshot(ctx context.Context, runID, layer string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT blob FROM terrain_snapshots
		WHERE run_id = ? AND layer = ?
		ORDER BY snapshot_id DESC LIMIT 1`, runID, layer).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s snapshot for run %s: %w", layer, runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s snapshot: %w", layer, err)
	}
	return blob, nil
}

// SaveHeights stores a height field snapshot committed by stage.
func (s *Store) SaveHeights(ctx context.Context, runID, stage string, hf *grid.HeightField) error {
	blob, err := serializeLayer(hf)
	if err != nil {
		return fmt.Errorf("failed to serialize heights: %w", err)
	}
	return s.insertSnapshot(ctx, runID, LayerHeights, stage, hf.Bounds().Area(), blob)
}

// LoadHeights returns the latest height field snapshot of a run.
func (s *Store) LoadHeights(ctx context.Context, runID string) (*grid.HeightField, error) {
	blob, err := s.latestSnapshot(ctx, runID, LayerHeights)
	if err != nil {
		return nil, err
	}
	return deserializeLayer[int](blob)
}

// SaveMaterials stores a material map snapshot committed by stage.
func (s *Store) SaveMaterials(ctx context.Context, runID, stage string, m *grid.MaterialMap) error {
	blob, err := serializeLayer(m)
	if err != nil {
		return fmt.Errorf("failed to serialize materials: %w", err)
	}
	return s.insertSnapshot(ctx, runID, LayerMaterials, stage, m.Bounds().Area(), blob)
}

// LoadMaterials returns the latest material map snapshot of a run.
func (s *Store) LoadMaterials(ctx context.Context, runID string) (*grid.MaterialMap, error) {
	blob, err := s.latestSnapshot(ctx, runID, LayerMaterials)
	if err != nil {
		return nil, err
	}
	return deserializeLayer[grid.Material](blob)
}

// SnapshotInfo describes a stored snapshot without its payload.
type SnapshotInfo struct {
	SnapshotID     int64
	Layer          string
	Stage          string
	Cells          int
	TakenUnixNanos int64
}

// ListSnapshots returns the snapshots of a run in commit order.
func (s *Store) ListSnapshots(ctx context.Context, runID string) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT snapshot_id, layer, stage, cells, taken_unix_nanos
		FROM terrain_snapshots WHERE run_id = ? ORDER BY snapshot_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var si SnapshotInfo
		if err := rows.Scan(&si.SnapshotID, &si.Layer, &si.Stage, &si.Cells, &si.TakenUnixNanos); err != nil {
			return nil, err
		}
		out = append(out, si)
	}
	return out, rows.Err()
}
