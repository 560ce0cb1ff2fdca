package forecast

import (
	"encoding/json"
	"fmt"
	"net/http"

	"fcff_engine/pkg/core/agent"
	"fcff_engine/pkg/core/forecast"
	"fcff_engine/pkg/core/report"
	"fcff_engine/pkg/core/store"
)

var repo store.ForecastRepository
var agentManager *agent.Manager

// InitHandler wires the repository and the optional agent manager used for
// report narratives. A nil repo disables persistence; forecasts still run.
func InitHandler(r store.ForecastRepository, mgr *agent.Manager) {
	repo = r
	agentManager = mgr
}

// ForecastRequest carries the base revenue and assumptions, plus switches
// for the two analysis layers.
type ForecastRequest struct {
	Source         string          `json:"source,omitempty"`
	BaseRevenue    float64         `json:"baseRevenue"`
	Assumptions    forecast.Inputs `json:"assumptions"`
	RunSensitivity bool            `json:"runSensitivity,omitempty"`
	RunSimulation  bool            `json:"runSimulation,omitempty"`
	Iterations     int             `json:"iterations,omitempty"`
	Seed           int64           `json:"seed,omitempty"`
}

// ForecastResponse mirrors the stored run document.
type ForecastResponse struct {
	RunID       string                       `json:"runId,omitempty"`
	Projections []forecast.Projection        `json:"projections"`
	Sensitivity []forecast.SensitivityResult `json:"sensitivity,omitempty"`
	Simulation  *forecast.Distribution       `json:"simulation,omitempty"`
}

// HandleForecast runs the projection and, on request, the sensitivity sweep
// and Monte Carlo simulation. The run is persisted when a repository is
// configured.
func HandleForecast(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	run, status, err := executeForecast(&req)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	if repo != nil {
		if err := repo.Save(r.Context(), run); err != nil {
			fmt.Printf("[FORECAST] persistence failed: %v\n", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ForecastResponse{
		RunID:       run.RunID,
		Projections: run.Projections,
		Sensitivity: run.Sensitivity,
		Simulation:  run.Simulation,
	})
}

// HandleReport renders a forecast request straight to an HTML report without
// a persistence round-trip.
func HandleReport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != "POST" {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	run, status, err := executeForecast(&req)
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	narrative := ""
	if agentManager != nil {
		text, err := report.Narrative(r.Context(), agentManager, run)
		if err != nil {
			fmt.Printf("[FORECAST] narrative skipped: %v\n", err)
		} else {
			narrative = text
		}
	}

	html, err := report.HTMLWith(run, narrative)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, html)
}

// executeForecast runs the three engines per the request switches.
func executeForecast(req *ForecastRequest) (*store.ForecastRun, int, error) {
	if req.BaseRevenue <= 0 {
		return nil, http.StatusBadRequest, fmt.Errorf("baseRevenue must be positive")
	}

	projections, err := forecast.Project(req.BaseRevenue, req.Assumptions)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	run := &store.ForecastRun{
		Source:      req.Source,
		Assumptions: req.Assumptions,
		Projections: projections,
	}
	if repo != nil {
		run.RunID = repo.NewRunID()
	}

	if req.RunSensitivity {
		sensitivity, err := forecast.Sweep(req.BaseRevenue, req.Assumptions)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		run.Sensitivity = sensitivity
	}

	if req.RunSimulation {
		dist, err := forecast.Simulate(req.Assumptions, projections, forecast.SimulationConfig{
			Iterations: req.Iterations,
			Seed:       req.Seed,
		})
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		run.Simulation = dist
	}

	fmt.Printf("[FORECAST] %d years, sensitivity=%v, simulation=%v\n",
		req.Assumptions.ProjectionYears, req.RunSensitivity, req.RunSimulation)
	return run, http.StatusOK, nil
}
