package sqlite

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/gob"
	"fmt"

	"github.com/banshee-data/geovoxel/internal/terrain/grid"
	"github.com/banshee-data/geovoxel/internal/terrain/l4paths"
	"github.com/banshee-data/geovoxel/internal/terrain/l5profiles"
)

type deckLevel struct {
	Cell  grid.Cell
	Level int
}

// profileRecord is the gob form of a Profile. Sets and maps become sorted
// slices so the encoding is stable.
type profileRecord struct {
	FeatureID  string
	Mode       l4paths.Mode
	Material   grid.Material
	Length     int
	Deck       []deckLevel
	Openings   []grid.Cell
	Centerline []int
	Portals    [2]int
	Voxels     []l5profiles.Voxel
}

func toRecord(p *l5profiles.Profile) profileRecord {
	rec := profileRecord{
		FeatureID:  p.FeatureID,
		Mode:       p.Mode,
		Material:   p.Material,
		Length:     p.Length,
		Openings:   p.Openings.Sorted(),
		Centerline: p.Centerline,
		Portals:    p.Portals,
		Voxels:     p.Voxels,
	}
	for _, c := range p.Cells() {
		rec.Deck = append(rec.Deck, deckLevel{Cell: c, Level: p.Deck[c]})
	}
	return rec
}

func (rec profileRecord) profile() *l5profiles.Profile {
	p := &l5profiles.Profile{
		FeatureID:  rec.FeatureID,
		Mode:       rec.Mode,
		Material:   rec.Material,
		Length:     rec.Length,
		Deck:       make(map[grid.Cell]int, len(rec.Deck)),
		Openings:   grid.NewCellSet(rec.Openings...),
		Centerline: rec.Centerline,
		Portals:    rec.Portals,
		Voxels:     rec.Voxels,
	}
	for _, d := range rec.Deck {
		p.Deck[d.Cell] = d.Level
	}
	return p
}

func encodeProfile(p *l5profiles.Profile) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(gz).Encode(toRecord(p)); err != nil {
		gz.Close()
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeProfile(blob []byte) (*l5profiles.Profile, error) {
	gz, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()
	var rec profileRecord
	if err := gob.NewDecoder(gz).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return rec.profile(), nil
}

// SaveProfiles stores every profile of a run in one transaction.
func (s *Store) SaveProfiles(ctx context.Context, runID string, profiles []*l5profiles.Profile) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO terrain_profiles (run_id, feature_id, mode, material, length, deck_cells, voxels, blob)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare profile insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range profiles {
		blob, err := encodeProfile(p)
		if err != nil {
			return fmt.Errorf("failed to serialize profile %s: %w", p.FeatureID, err)
		}
		if _, err := stmt.ExecContext(ctx, runID, p.FeatureID, p.Mode.String(), string(p.Material),
			p.Length, len(p.Deck), len(p.Voxels), blob); err != nil {
			return fmt.Errorf("failed to insert profile %s: %w", p.FeatureID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit profiles: %w", err)
	}
	return nil
}

// LoadProfiles returns the profiles of a run in insertion order.
func (s *Store) LoadProfiles(ctx context.Context, runID string) ([]*l5profiles.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT blob FROM terrain_profiles WHERE run_id = ? ORDER BY profile_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var out []*l5profiles.Profile
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		p, err := decodeProfile(blob)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProfileSummary is the indexed part of a stored profile.
type ProfileSummary struct {
	FeatureID string
	Mode      string
	Material  string
	Length    int
	DeckCells int
	Voxels    int
}

// ListProfiles summarizes the profiles of a run without decoding them.
func (s *Store) ListProfiles(ctx context.Context, runID string) ([]ProfileSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT feature_id, mode, material, length, deck_cells, voxels
		FROM terrain_profiles WHERE run_id = ? ORDER BY profile_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var out []ProfileSummary
	for rows.Next() {
		var ps ProfileSummary
		if err := rows.Scan(&ps.FeatureID, &ps.Mode, &ps.Material, &ps.Length, &ps.DeckCells, &ps.Voxels); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}
