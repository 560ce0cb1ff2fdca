package pipeline

import (
	"math"
	"strings"
	"testing"

	"fcff_engine/pkg/core/alias"
)

const twoYearCSV = `年份,营业总收入,营业利润,净利润,折旧,资本支出,流动资产合计,流动负债合计
2022,1000000,200000,150000,50000,70000,900000,600000
2023,1100000,230000,170000,55000,80000,950000,620000
`

func TestProcessCSVEndToEnd(t *testing.T) {
	o := NewOrchestrator()
	result, err := o.Process("statements.csv", []byte(twoYearCSV), "text/csv")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(result.Periods) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(result.Periods))
	}
	if result.Periods[0].Period != "2022" || result.Periods[1].Period != "2023" {
		t.Errorf("period labels = %s, %s", result.Periods[0].Period, result.Periods[1].Period)
	}

	latest := result.Periods[1].Metrics
	if latest[alias.Revenue] != 1100000 {
		t.Errorf("latest revenue = %f, want 1100000", latest[alias.Revenue])
	}
	// Working capital has no direct column; it comes from CA - CL.
	if math.Abs(latest[alias.WorkingCapital]-330000) > 1e-9 {
		t.Errorf("workingCapital = %f, want 330000", latest[alias.WorkingCapital])
	}
	if len(result.Periods[1].Estimations) == 0 {
		t.Error("expected the working capital estimation to be recorded")
	}
}

func TestProcessDerivesRatiosFromLatestPeriod(t *testing.T) {
	o := NewOrchestrator()
	result, err := o.Process("statements.csv", []byte(twoYearCSV), "csv")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	// 2023: ebit 230000 / revenue 1100000.
	wantMargin := 230000.0 / 1100000 * 100
	if math.Abs(result.Ratios.EBITMargin-wantMargin) > 1e-9 {
		t.Errorf("ebitMargin = %f, want %f", result.Ratios.EBITMargin, wantMargin)
	}
	wantCapex := 80000.0 / 1100000 * 100
	if math.Abs(result.Ratios.CapexRate-wantCapex) > 1e-9 {
		t.Errorf("capexRate = %f, want %f", result.Ratios.CapexRate, wantCapex)
	}
}

func TestProcessYearlyChanges(t *testing.T) {
	o := NewOrchestrator()
	result, err := o.Process("statements.csv", []byte(twoYearCSV), "csv")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	growth, ok := result.YearlyChanges[alias.Revenue]
	if !ok {
		t.Fatal("revenue change missing")
	}
	if math.Abs(growth-10) > 1e-9 {
		t.Errorf("revenue growth = %f, want 10", growth)
	}

	in := result.SuggestedInputs(5)
	if math.Abs(in.RevenueGrowthRate-10) > 1e-9 {
		t.Errorf("suggested growth = %f, want 10", in.RevenueGrowthRate)
	}
	if in.ProjectionYears != 5 {
		t.Errorf("projectionYears = %d, want 5", in.ProjectionYears)
	}
	if result.BaseRevenue() != 1100000 {
		t.Errorf("base revenue = %f, want 1100000", result.BaseRevenue())
	}
}

func TestProcessUnsupportedType(t *testing.T) {
	o := NewOrchestrator()
	if _, err := o.Process("notes.docx", []byte("x"), "application/msword"); err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestProcessDegradesBadPeriods(t *testing.T) {
	// Second row has no resolvable metrics at all; the document still
	// succeeds, and the bad row stays in the output with a processing
	// error and nil metrics instead of being dropped.
	csv := "营业总收入,净利润\n" +
		"1000000,150000\n" +
		"abc,def\n"
	o := NewOrchestrator()
	result, err := o.Process("partial.csv", []byte(csv), "csv")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(result.Periods) != 2 {
		t.Fatalf("expected both periods retained, got %d", len(result.Periods))
	}
	bad := result.Periods[1]
	if bad.ProcessingError == "" {
		t.Error("failed period has no processingError")
	}
	if bad.Metrics != nil {
		t.Errorf("failed period metrics = %v, want nil", bad.Metrics)
	}
	if result.Periods[0].ProcessingError != "" {
		t.Errorf("clean period carries processingError %q", result.Periods[0].ProcessingError)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", result.Warnings)
	}
}

func TestProcessSkipsErroredPeriodsInDerivations(t *testing.T) {
	// The latest row is garbage, so ratios and base revenue must come from
	// the last period that reconciled. EBIT is estimated as NI / 0.75.
	csv := "营业总收入,净利润\n" +
		"1000000,150000\n" +
		"abc,def\n"
	o := NewOrchestrator()
	result, err := o.Process("partial.csv", []byte(csv), "csv")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.BaseRevenue() != 1000000 {
		t.Errorf("base revenue = %f, want 1000000", result.BaseRevenue())
	}
	wantMargin := 150000.0 / 0.75 / 1000000 * 100
	if math.Abs(result.Ratios.EBITMargin-wantMargin) > 1e-9 {
		t.Errorf("ebitMargin = %f, want %f", result.Ratios.EBITMargin, wantMargin)
	}
	// Only one reconciled period, so there is no year-over-year change.
	if result.YearlyChanges != nil {
		t.Errorf("yearlyChanges = %v, want none", result.YearlyChanges)
	}
}

func TestProcessBatchIsolatesFailures(t *testing.T) {
	o := NewOrchestrator()
	items := o.ProcessBatch([]Input{
		{Source: "good.csv", Data: []byte(twoYearCSV), DeclaredType: "csv"},
		{Source: "bad.docx", Data: []byte("x"), DeclaredType: "docx"},
		{Source: "good2.csv", Data: []byte(twoYearCSV), DeclaredType: "csv"},
	})
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Err != nil || items[2].Err != nil {
		t.Errorf("good documents failed: %v, %v", items[0].Err, items[2].Err)
	}
	if items[1].Err == nil {
		t.Error("bad document did not fail")
	}
	if !strings.Contains(items[1].Err.Error(), "unsupported") {
		t.Errorf("unexpected error: %v", items[1].Err)
	}
}

func TestProcessMetadata(t *testing.T) {
	o := NewOrchestrator()
	result, err := o.Process("statements.csv", []byte(twoYearCSV), "csv")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if result.Metadata.Format != "CSV" {
		t.Errorf("format = %s, want CSV", result.Metadata.Format)
	}
	if len(result.Metadata.Periods) != 2 {
		t.Errorf("metadata periods = %v", result.Metadata.Periods)
	}
	if result.Metadata.Years != 2 {
		t.Errorf("metadata years = %d, want 2", result.Metadata.Years)
	}
	if len(result.Metadata.Metrics) != len(alias.RequiredMetrics) {
		t.Errorf("metadata metrics = %v, want all %d required", result.Metadata.Metrics, len(alias.RequiredMetrics))
	}
}
