package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"fcff_engine/pkg/core/forecast"
	"fcff_engine/pkg/core/pipeline"
	"fcff_engine/pkg/core/report"
	"fcff_engine/pkg/core/store"
)

// Batch runner: extracts every given statement file, projects FCFF from the
// derived assumptions, and writes one report per document.
func main() {
	years := flag.Int("years", 5, "projection horizon in years")
	sensitivity := flag.Bool("sensitivity", true, "run the sensitivity sweep")
	simulate := flag.Bool("simulate", false, "run the Monte Carlo simulation")
	iterations := flag.Int("iterations", 1000, "Monte Carlo iterations")
	seed := flag.Int64("seed", 1, "Monte Carlo seed")
	outDir := flag.String("out", ".", "directory for report output")
	persist := flag.Bool("persist", false, "save runs to the database")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("usage: pipeline [flags] <statement files...>")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	ctx := context.Background()
	var repo store.ForecastRepository
	if *persist {
		if err := store.InitDB(ctx); err != nil {
			log.Fatalf("Database required with -persist: %v", err)
		}
		defer store.Close()
		repo = store.NewForecastRepo()
	}

	var inputs []pipeline.Input
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Cannot read %s: %v", path, err)
		}
		inputs = append(inputs, pipeline.Input{
			Source:       filepath.Base(path),
			Data:         data,
			DeclaredType: filepath.Ext(path),
		})
	}

	orchestrator := pipeline.NewOrchestrator()
	items := orchestrator.ProcessBatch(inputs)

	failures := 0
	for _, item := range items {
		if item.Err != nil {
			failures++
			continue
		}
		if err := runForecast(ctx, repo, item, *years, *sensitivity, *simulate, *iterations, *seed, *outDir); err != nil {
			fmt.Printf("[PIPELINE] %s: forecast failed: %v\n", item.Source, err)
			failures++
		}
	}

	fmt.Printf("[PIPELINE] Done: %d ok, %d failed\n", len(items)-failures, failures)
	if failures == len(items) {
		os.Exit(1)
	}
}

func runForecast(ctx context.Context, repo store.ForecastRepository, item pipeline.BatchItem, years int, sensitivity, simulate bool, iterations int, seed int64, outDir string) error {
	assumptions := item.Result.SuggestedInputs(years)
	baseRevenue := item.Result.BaseRevenue()

	projections, err := forecast.Project(baseRevenue, assumptions)
	if err != nil {
		return err
	}

	run := &store.ForecastRun{
		Source:      item.Source,
		Extraction:  item.Result,
		Assumptions: assumptions,
		Projections: projections,
	}
	if repo != nil {
		run.RunID = repo.NewRunID()
	}

	if sensitivity {
		run.Sensitivity, err = forecast.Sweep(baseRevenue, assumptions)
		if err != nil {
			return err
		}
	}
	if simulate {
		run.Simulation, err = forecast.Simulate(assumptions, projections, forecast.SimulationConfig{
			Iterations: iterations,
			Seed:       seed,
		})
		if err != nil {
			return err
		}
	}

	if repo != nil {
		if err := repo.Save(ctx, run); err != nil {
			return err
		}
		fmt.Printf("[PIPELINE] %s: saved run %s\n", item.Source, run.RunID)
	}

	base := item.Source[:len(item.Source)-len(filepath.Ext(item.Source))]
	jsonPath := filepath.Join(outDir, base+".forecast.json")
	jsonData, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return err
	}

	htmlPath := filepath.Join(outDir, base+".report.html")
	html, err := report.HTML(run)
	if err != nil {
		return err
	}
	if err := os.WriteFile(htmlPath, []byte(html), 0644); err != nil {
		return err
	}

	fmt.Printf("[PIPELINE] %s: wrote %s and %s\n", item.Source, jsonPath, htmlPath)
	return nil
}
