package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	apiconfig "fcff_engine/pkg/api/config"
	apiextract "fcff_engine/pkg/api/extract"
	apiforecast "fcff_engine/pkg/api/forecast"
	"fcff_engine/pkg/core/agent"
	"fcff_engine/pkg/core/store"
)

func main() {
	godotenv.Load()

	// Provider config is optional; an empty config falls back to Claude.
	var agentCfg agent.Config
	if configData, err := os.ReadFile("config/models.yaml"); err == nil {
		if err := yaml.Unmarshal(configData, &agentCfg); err != nil {
			fmt.Printf("[WARNING] config/models.yaml unreadable: %v\n", err)
		}
	}
	agentMgr := agent.NewManager(agentCfg)

	// Persistence is optional too: without DATABASE_URL, forecasts run but
	// are not stored.
	var repo store.ForecastRepository
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			fmt.Printf("[WARNING] Database unavailable, persistence disabled: %v\n", err)
		} else {
			repo = store.NewForecastRepo()
			defer store.Close()
		}
	}

	configHandler := apiconfig.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	apiextract.InitHandler(agentMgr)
	http.HandleFunc("/api/extract", apiextract.HandleExtract)

	apiforecast.InitHandler(repo, agentMgr)
	http.HandleFunc("/api/forecast", apiforecast.HandleForecast)
	http.HandleFunc("/api/forecast/report", apiforecast.HandleReport)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")
	fmt.Println("  - POST /api/extract")
	fmt.Println("  - POST /api/forecast")
	fmt.Println("  - POST /api/forecast/report")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
