package aiextract

import (
	"math"
	"testing"

	"fcff_engine/pkg/core/agent"
	"fcff_engine/pkg/core/alias"
	"fcff_engine/pkg/core/reconcile"
)

func newTestExtractor() *Extractor {
	return NewExtractor(agent.NewManager(agent.Config{ActiveProvider: "claude"}))
}

func TestParseMetricsCanonicalKeys(t *testing.T) {
	e := newTestExtractor()
	metrics, err := e.ParseMetrics(`{"revenue": 1000000, "ebit": 200000, "netIncome": 150000}`)
	if err != nil {
		t.Fatalf("ParseMetrics failed: %v", err)
	}
	if metrics[alias.Revenue] != 1000000 {
		t.Errorf("revenue = %f, want 1000000", metrics[alias.Revenue])
	}
	if metrics[alias.EBIT] != 200000 {
		t.Errorf("ebit = %f, want 200000", metrics[alias.EBIT])
	}
	if metrics[alias.NetIncome] != 150000 {
		t.Errorf("netIncome = %f, want 150000", metrics[alias.NetIncome])
	}
}

func TestParseMetricsDropsUnknownKeys(t *testing.T) {
	e := newTestExtractor()
	metrics, err := e.ParseMetrics(`{"revenue": 500, "stockTicker": "AAPL", "confidence": 0.9}`)
	if err != nil {
		t.Fatalf("ParseMetrics failed: %v", err)
	}
	if len(metrics) != 1 {
		t.Errorf("expected only revenue to survive, got %v", metrics)
	}
}

func TestParseMetricsResolvesAliasKeys(t *testing.T) {
	// Models sometimes answer with the statement line name despite the
	// prompt; alias resolution still maps it.
	e := newTestExtractor()
	metrics, err := e.ParseMetrics(`{"营业总收入": 880000}`)
	if err != nil {
		t.Fatalf("ParseMetrics failed: %v", err)
	}
	if math.Abs(metrics[alias.Revenue]-880000) > 1e-9 {
		t.Errorf("revenue = %f, want 880000", metrics[alias.Revenue])
	}
}

func TestParseMetricsRepairsFencedJSON(t *testing.T) {
	e := newTestExtractor()
	metrics, err := e.ParseMetrics("```json\n{\"ebit\": 42000,}\n```")
	if err != nil {
		t.Fatalf("ParseMetrics failed on fenced response: %v", err)
	}
	if metrics[alias.EBIT] != 42000 {
		t.Errorf("ebit = %f, want 42000", metrics[alias.EBIT])
	}
}

func TestMergePrefersAIOnOverlap(t *testing.T) {
	traditional := reconcile.MetricSet{
		alias.Revenue:   1000,
		alias.NetIncome: 100,
	}
	ai := reconcile.MetricSet{
		alias.Revenue: 1100,
		alias.EBIT:    220,
	}

	merged := Merge(traditional, ai)
	if merged[alias.Revenue] != 1100 {
		t.Errorf("overlap must prefer AI: revenue = %f, want 1100", merged[alias.Revenue])
	}
	if merged[alias.NetIncome] != 100 {
		t.Errorf("traditional-only metric lost: netIncome = %f, want 100", merged[alias.NetIncome])
	}
	if merged[alias.EBIT] != 220 {
		t.Errorf("ai-only metric lost: ebit = %f, want 220", merged[alias.EBIT])
	}

	if traditional[alias.Revenue] != 1000 {
		t.Error("Merge mutated its input")
	}
}
