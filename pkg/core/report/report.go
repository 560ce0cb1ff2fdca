// Package report renders a forecast run into Markdown and HTML. The tables
// are deterministic; an optional LLM narrative is appended when a manager is
// supplied.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"fcff_engine/pkg/core/agent"
	"fcff_engine/pkg/core/prompt"
	"fcff_engine/pkg/core/store"
)

// Markdown builds the report body for one run.
func Markdown(run *store.ForecastRun) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# FCFF Forecast Report\n\n")
	fmt.Fprintf(&b, "Run `%s`", run.RunID)
	if run.Source != "" {
		fmt.Fprintf(&b, " (source: %s)", run.Source)
	}
	b.WriteString("\n\n")

	b.WriteString("## Assumptions\n\n")
	b.WriteString("| Assumption | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Revenue growth | %.2f%% |\n", run.Assumptions.RevenueGrowthRate)
	fmt.Fprintf(&b, "| EBIT margin | %.2f%% |\n", run.Assumptions.EBITMargin)
	fmt.Fprintf(&b, "| Tax rate | %.2f%% |\n", run.Assumptions.TaxRate)
	fmt.Fprintf(&b, "| Depreciation | %.2f%% of revenue |\n", run.Assumptions.DepreciationRate)
	fmt.Fprintf(&b, "| Capex | %.2f%% of revenue |\n", run.Assumptions.CapexRate)
	fmt.Fprintf(&b, "| NWC change | %.2f%% of revenue |\n", run.Assumptions.NWCRate)
	fmt.Fprintf(&b, "| Horizon | %d years |\n\n", run.Assumptions.ProjectionYears)

	b.WriteString("## Projections\n\n")
	b.WriteString("| Year | Revenue | EBIT | NOPAT | Depreciation | Capex | NWC change | FCFF |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, p := range run.Projections {
		fmt.Fprintf(&b, "| %d | %.0f | %.0f | %.0f | %.0f | %.0f | %.0f | %.0f |\n",
			p.Year, p.Revenue, p.EBIT, p.NOPAT, p.Depreciation, p.Capex, p.NWCChange, p.FCFF)
	}
	b.WriteString("\n")

	if len(run.Sensitivity) > 0 {
		b.WriteString("## Sensitivity\n\n")
		b.WriteString("Terminal-year FCFF impact per assumption shift.\n\n")
		b.WriteString("| Parameter | Shift (pp) | Terminal FCFF | Impact |\n|---|---|---|---|\n")
		for _, s := range run.Sensitivity {
			if s.Delta == 0 {
				continue
			}
			fmt.Fprintf(&b, "| %s | %+.1f | %.0f | %+.2f%% |\n",
				s.Parameter, s.Delta, s.TerminalFCFF, s.ImpactPct)
		}
		b.WriteString("\n")
	}

	if run.Simulation != nil {
		fmt.Fprintf(&b, "## Monte Carlo (%d iterations)\n\n", run.Simulation.Iterations)
		b.WriteString("| Year | P10 | P25 | P50 | P75 | P90 |\n|---|---|---|---|---|---|\n")
		for _, y := range run.Simulation.Years {
			fmt.Fprintf(&b, "| %d | %.0f | %.0f | %.0f | %.0f | %.0f |\n",
				y.Year, y.P10, y.P25, y.P50, y.P75, y.P90)
		}
		b.WriteString("\n")
	}

	if run.Extraction != nil && len(run.Extraction.Warnings) > 0 {
		b.WriteString("## Extraction warnings\n\n")
		for _, w := range run.Extraction.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTML renders the Markdown report to a standalone HTML document.
func HTML(run *store.ForecastRun) (string, error) {
	return HTMLWith(run, "")
}

// HTMLWith appends a commentary section before rendering.
func HTMLWith(run *store.ForecastRun, narrative string) (string, error) {
	body := Markdown(run)
	if narrative != "" {
		body += "## Commentary\n\n" + narrative + "\n"
	}
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("markdown render failed: %w", err)
	}
	return "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>FCFF Forecast</title></head><body>\n" +
		buf.String() + "</body></html>\n", nil
}

// Narrative asks the reporter role for two paragraphs of commentary on the
// projections and returns them as Markdown.
func Narrative(ctx context.Context, manager *agent.Manager, run *store.ForecastRun) (string, error) {
	tmpl, err := prompt.Get().Lookup("report.narrative")
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(run.Projections)
	if err != nil {
		return "", err
	}
	userPrompt, err := tmpl.Render(map[string]interface{}{
		"Company": run.Source,
		"Data":    string(data),
	})
	if err != nil {
		return "", err
	}
	text, err := manager.ExecutePrompt(ctx, "reporter", userPrompt, tmpl.SystemPrompt, nil)
	if err != nil {
		return "", err
	}
	return cleanNarrative(text), nil
}

// cleanNarrative strips code fences a model may wrap its prose in.
func cleanNarrative(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```markdown")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	return cleaned
}
