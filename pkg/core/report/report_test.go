package report

import (
	"strings"
	"testing"

	"fcff_engine/pkg/core/forecast"
	"fcff_engine/pkg/core/store"
)

func sampleRun(t *testing.T) *store.ForecastRun {
	t.Helper()
	inputs := forecast.Inputs{
		RevenueGrowthRate: 5,
		EBITMargin:        20,
		TaxRate:           25,
		DepreciationRate:  5,
		CapexRate:         7,
		NWCRate:           2,
		ProjectionYears:   3,
	}
	projections, err := forecast.Project(1_000_000, inputs)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	sensitivity, err := forecast.Sweep(1_000_000, inputs)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	return &store.ForecastRun{
		RunID:       "9f2c7c1e-0000-0000-0000-000000000000",
		Source:      "statements.csv",
		Assumptions: inputs,
		Projections: projections,
		Sensitivity: sensitivity,
	}
}

func TestMarkdownSections(t *testing.T) {
	md := Markdown(sampleRun(t))
	for _, want := range []string{
		"# FCFF Forecast Report",
		"## Assumptions",
		"## Projections",
		"## Sensitivity",
		"| 1 | 1050000 |",
		"115500",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "Monte Carlo") {
		t.Error("Monte Carlo section rendered without simulation data")
	}
}

func TestMarkdownSkipsZeroDeltaRows(t *testing.T) {
	md := Markdown(sampleRun(t))
	if strings.Contains(md, "| +0.0 |") {
		t.Error("zero-delta sensitivity rows should be omitted")
	}
}

func TestHTMLRendersTables(t *testing.T) {
	html, err := HTML(sampleRun(t))
	if err != nil {
		t.Fatalf("HTML failed: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Error("tables not rendered to HTML")
	}
	if !strings.Contains(html, "<!DOCTYPE html>") {
		t.Error("missing document wrapper")
	}
}

func TestCleanNarrative(t *testing.T) {
	got := cleanNarrative("```markdown\nRevenue grows steadily.\n```")
	if got != "Revenue grows steadily." {
		t.Errorf("cleanNarrative = %q", got)
	}
	got = cleanNarrative("  plain text  ")
	if got != "plain text" {
		t.Errorf("cleanNarrative = %q", got)
	}
}
