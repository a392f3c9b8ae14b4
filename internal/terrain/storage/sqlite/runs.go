package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/geovoxel/internal/terrain/grid"
)

// Run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Run is one pipeline execution.
type Run struct {
	RunID      string          `json:"run_id"`
	CreatedAt  int64           `json:"created_at"`
	Bounds     grid.Bounds     `json:"bounds"`
	ParamsJSON json.RawMessage `json:"params_json,omitempty"`
	Status     string          `json:"status"`
	StatsJSON  json.RawMessage `json:"stats_json,omitempty"`
	FinishedAt int64           `json:"finished_at,omitempty"`
}

// CreateRun inserts a new running run with a fresh UUID.
func (s *Store) CreateRun(ctx context.Context, b grid.Bounds, params json.RawMessage) (*Run, error) {
	run := &Run{
		RunID:      uuid.New().String(),
		CreatedAt:  time.Now().UnixNano(),
		Bounds:     b,
		ParamsJSON: params,
		Status:     RunRunning,
	}
	var paramsStr interface{}
	if len(params) > 0 {
		paramsStr = string(params)
	}
	err := retryOnBusy(func() error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO terrain_runs (run_id, created_at, min_x, min_z, max_x, max_z, params_json, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.CreatedAt, b.MinX, b.MinZ, b.MaxX, b.MaxZ, paramsStr, run.Status)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert run: %w", err)
	}
	return run, nil
}

// FinishRun records the final status and stats of a run.
func (s *Store) FinishRun(ctx context.Context, runID, status string, stats json.RawMessage) error {
	var statsStr interface{}
	if len(stats) > 0 {
		statsStr = string(stats)
	}
	var res sql.Result
	err := retryOnBusy(func() error {
		var err error
		res, err = s.db.ExecContext(ctx, `
			UPDATE terrain_runs SET status = ?, stats_json = ?, finished_at = ? WHERE run_id = ?`,
			status, statsStr, time.Now().UnixNano(), runID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// GetRun loads one run.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, created_at, min_x, min_z, max_x, max_z, params_json, status, stats_json, finished_at
		FROM terrain_runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return run, err
}

// ListRuns returns the most recent runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, created_at, min_x, min_z, max_x, max_z, params_json, status, stats_json, finished_at
		FROM terrain_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run      Run
		params   sql.NullString
		stats    sql.NullString
		finished sql.NullInt64
	)
	err := sc.Scan(&run.RunID, &run.CreatedAt,
		&run.Bounds.MinX, &run.Bounds.MinZ, &run.Bounds.MaxX, &run.Bounds.MaxZ,
		&params, &run.Status, &stats, &finished)
	if err != nil {
		return nil, err
	}
	if params.Valid {
		run.ParamsJSON = json.RawMessage(params.String)
	}
	if stats.Valid {
		run.StatsJSON = json.RawMessage(stats.String)
	}
	run.FinishedAt = finished.Int64
	return &run, nil
}
