package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fcff_engine/pkg/core/forecast"
	"fcff_engine/pkg/core/pipeline"
)

// ForecastRun is everything one end-to-end run produced, persisted as a
// single JSONB document keyed by run ID.
type ForecastRun struct {
	RunID       string                       `json:"run_id"`
	Source      string                       `json:"source"`
	Extraction  *pipeline.Result             `json:"extraction"`
	Assumptions forecast.Inputs              `json:"assumptions"`
	Projections []forecast.Projection        `json:"projections"`
	Sensitivity []forecast.SensitivityResult `json:"sensitivity,omitempty"`
	Simulation  *forecast.Distribution       `json:"simulation,omitempty"`
	CreatedAt   time.Time                    `json:"created_at"`
}

// ForecastRepository is the persistence surface, kept as an interface so the
// API layer can run without a database in tests.
type ForecastRepository interface {
	Save(ctx context.Context, run *ForecastRun) error
	Load(ctx context.Context, runID string) (*ForecastRun, error)
	NewRunID() string
}

// ForecastRepo stores runs in Postgres.
//
// Schema assumption (managed by migrations, not this code):
//
//	CREATE TABLE IF NOT EXISTS forecast_runs (
//	  run_id UUID PRIMARY KEY,
//	  source TEXT,
//	  run_json JSONB,
//	  created_at TIMESTAMPTZ
//	);
type ForecastRepo struct{}

var _ ForecastRepository = (*ForecastRepo)(nil)

func NewForecastRepo() *ForecastRepo {
	return &ForecastRepo{}
}

func (r *ForecastRepo) NewRunID() string {
	return uuid.NewString()
}

// Save upserts the run document. Re-saving a run ID replaces the document,
// which is how a run picks up its sensitivity and simulation results after
// the initial projection is stored.
func (r *ForecastRepo) Save(ctx context.Context, run *ForecastRun) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if run.RunID == "" {
		run.RunID = r.NewRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	jsonData, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	query := `
		INSERT INTO forecast_runs (run_id, source, run_json, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id)
		DO UPDATE SET
			source = EXCLUDED.source,
			run_json = EXCLUDED.run_json;
	`
	if _, err := pool.Exec(ctx, query, run.RunID, run.Source, jsonData, run.CreatedAt); err != nil {
		return fmt.Errorf("failed to save forecast run: %w", err)
	}
	return nil
}

// Load retrieves one run by ID.
func (r *ForecastRepo) Load(ctx context.Context, runID string) (*ForecastRun, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	var jsonData []byte
	err := pool.QueryRow(ctx, `SELECT run_json FROM forecast_runs WHERE run_id = $1`, runID).Scan(&jsonData)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no forecast run %s", runID)
		}
		return nil, fmt.Errorf("failed to load forecast run: %w", err)
	}

	var run ForecastRun
	if err := json.Unmarshal(jsonData, &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal forecast run: %w", err)
	}
	return &run, nil
}
