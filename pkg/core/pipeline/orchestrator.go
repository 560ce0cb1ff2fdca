package pipeline

import (
	"context"
	"fmt"
	"time"

	"fcff_engine/pkg/core/aiextract"
	"fcff_engine/pkg/core/alias"
	"fcff_engine/pkg/core/extract"
	"fcff_engine/pkg/core/forecast"
	"fcff_engine/pkg/core/reconcile"
)

// PeriodMetrics is one reporting period. A period that failed reconciliation
// is still listed, with nil Metrics and the failure in ProcessingError.
type PeriodMetrics struct {
	Period          string                 `json:"period"`
	Metrics         reconcile.MetricSet    `json:"metrics"`
	Estimations     []reconcile.Estimation `json:"estimations,omitempty"`
	ProcessingError string                 `json:"processingError,omitempty"`
}

// Ratios are the operating ratios implied by the most recent period, in
// percent. They seed forecast assumptions.
type Ratios struct {
	EBITMargin       float64 `json:"ebitMargin"`
	DepreciationRate float64 `json:"depreciationRate"`
	CapexRate        float64 `json:"capexRate"`
	NWCRate          float64 `json:"nwcRate"`
}

// Metadata describes where a result came from and what it holds.
type Metadata struct {
	Source      string    `json:"source"`
	Format      string    `json:"format"`
	Metrics     []string  `json:"metrics"`
	Periods     []string  `json:"periods"`
	Years       int       `json:"years"`
	ExtractedAt time.Time `json:"extractedAt"`
}

// Result is the pipeline output for one document.
type Result struct {
	Periods       []PeriodMetrics            `json:"financialData"`
	YearlyChanges map[alias.MetricID]float64 `json:"yearlyChanges,omitempty"`
	Ratios        Ratios                     `json:"ratios"`
	Metadata      Metadata                   `json:"metadata"`
	Warnings      []string                   `json:"warnings,omitempty"`
}

// Input is one document queued for batch processing.
type Input struct {
	Source       string
	Data         []byte
	DeclaredType string
}

// BatchItem pairs an input with its outcome. A failed item carries its error
// and a nil result; the batch itself never aborts.
type BatchItem struct {
	Source string
	Result *Result
	Err    error
}

// Orchestrator runs the document flow: format detection, extraction,
// per-period reconciliation, ratio derivation.
type Orchestrator struct {
	resolver   *alias.Resolver
	reconciler *reconcile.Reconciler
	ai         *aiextract.Extractor
}

func NewOrchestrator() *Orchestrator {
	resolver := alias.NewResolver()
	return &Orchestrator{
		resolver:   resolver,
		reconciler: reconcile.NewReconciler(resolver),
	}
}

// EnableAI attaches an LLM extractor. When set, MergeAI becomes available;
// Process itself stays deterministic.
func (o *Orchestrator) EnableAI(extractor *aiextract.Extractor) {
	o.ai = extractor
}

// Process extracts and reconciles a single document. A period that cannot be
// reconciled (metrics missing beyond what estimators cover) stays in the
// output with nil metrics and a processingError, plus a document-level
// warning; the document fails only when every period errors.
func (o *Orchestrator) Process(source string, data []byte, declaredType string) (*Result, error) {
	start := time.Now()

	format, err := extract.DetectFormat(declaredType)
	if err != nil {
		return nil, err
	}
	extractor, err := extract.ForFormat(format, o.resolver)
	if err != nil {
		return nil, err
	}

	fmt.Printf("[PIPELINE] %s: extracting as %s\n", source, format)
	records, err := extractor.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("extraction failed for %s: %w", source, err)
	}

	result := &Result{
		Metadata: Metadata{
			Source:      source,
			Format:      string(format),
			ExtractedAt: time.Now().UTC(),
		},
	}
	reconciled := 0
	for i := range records {
		rec := &records[i]
		period := rec.Period
		if period == "" {
			period = fmt.Sprintf("period_%d", i+1)
		}
		metrics, estimations, err := o.reconciler.Reconcile(rec)
		if err != nil {
			warning := fmt.Sprintf("period %d (%s): %v", i+1, rec.Period, err)
			fmt.Printf("[PIPELINE] %s: %s\n", source, warning)
			result.Warnings = append(result.Warnings, warning)
			result.Periods = append(result.Periods, PeriodMetrics{
				Period:          period,
				ProcessingError: err.Error(),
			})
			continue
		}
		reconciled++
		result.Periods = append(result.Periods, PeriodMetrics{
			Period:      period,
			Metrics:     metrics,
			Estimations: estimations,
		})
	}
	if reconciled == 0 {
		return nil, fmt.Errorf("no usable periods in %s: %d of %d failed reconciliation", source, len(result.Warnings), len(records))
	}

	o.deriveRatios(result)
	o.deriveYearlyChanges(result)
	o.fillMetadata(result)

	fmt.Printf("[PIPELINE] %s: %d periods, %d metrics in %v\n",
		source, len(result.Periods), len(result.Metadata.Metrics), time.Since(start))
	return result, nil
}

// MergeAI runs the LLM extractor over raw document text and overlays its
// metrics on the latest period. AI values win on overlap; the deterministic
// result is otherwise retained.
func (o *Orchestrator) MergeAI(ctx context.Context, text string, result *Result) error {
	if o.ai == nil {
		return fmt.Errorf("AI extraction not enabled")
	}
	aiMetrics, err := o.ai.ExtractMetrics(ctx, text)
	if err != nil {
		return err
	}
	latest := result.latestReconciled()
	if len(aiMetrics) == 0 || latest == nil {
		return nil
	}
	latest.Metrics = aiextract.Merge(latest.Metrics, aiMetrics)
	fmt.Printf("[PIPELINE] %s: merged %d AI metrics into period %s\n",
		result.Metadata.Source, len(aiMetrics), latest.Period)
	o.deriveRatios(result)
	o.fillMetadata(result)
	return nil
}

// ProcessBatch runs every input independently. One document's failure is
// recorded on its item and does not stop the rest.
func (o *Orchestrator) ProcessBatch(inputs []Input) []BatchItem {
	items := make([]BatchItem, 0, len(inputs))
	for _, in := range inputs {
		result, err := o.Process(in.Source, in.Data, in.DeclaredType)
		if err != nil {
			fmt.Printf("[PIPELINE] %s: failed: %v\n", in.Source, err)
		}
		items = append(items, BatchItem{Source: in.Source, Result: result, Err: err})
	}
	return items
}

// SuggestedInputs turns the derived ratios into forecast assumptions, using
// the revenue trend for growth and a statutory default for tax.
func (r *Result) SuggestedInputs(years int) forecast.Inputs {
	growth := 5.0
	if g, ok := r.YearlyChanges[alias.Revenue]; ok {
		growth = g
	}
	return forecast.Inputs{
		RevenueGrowthRate: growth,
		EBITMargin:        r.Ratios.EBITMargin,
		TaxRate:           25,
		DepreciationRate:  r.Ratios.DepreciationRate,
		CapexRate:         r.Ratios.CapexRate,
		NWCRate:           r.Ratios.NWCRate,
		ProjectionYears:   years,
	}
}

// BaseRevenue is the revenue of the latest reconciled period.
func (r *Result) BaseRevenue() float64 {
	if latest := r.latestReconciled(); latest != nil {
		return latest.Metrics[alias.Revenue]
	}
	return 0
}

// latestReconciled returns the most recent period without a processing error,
// or nil when every period errored.
func (r *Result) latestReconciled() *PeriodMetrics {
	for i := len(r.Periods) - 1; i >= 0; i-- {
		if r.Periods[i].ProcessingError == "" {
			return &r.Periods[i]
		}
	}
	return nil
}

func (o *Orchestrator) deriveRatios(result *Result) {
	period := result.latestReconciled()
	if period == nil {
		return
	}
	latest := period.Metrics
	revenue := latest[alias.Revenue]
	if revenue == 0 {
		return
	}
	result.Ratios = Ratios{
		EBITMargin:       latest[alias.EBIT] / revenue * 100,
		DepreciationRate: latest[alias.Depreciation] / revenue * 100,
		CapexRate:        latest[alias.Capex] / revenue * 100,
		NWCRate:          latest[alias.WorkingCapital] / revenue * 100,
	}
}

// deriveYearlyChanges records the percent change of each required metric
// between the two most recent reconciled periods.
func (o *Orchestrator) deriveYearlyChanges(result *Result) {
	var clean []reconcile.MetricSet
	for i := range result.Periods {
		if result.Periods[i].ProcessingError == "" {
			clean = append(clean, result.Periods[i].Metrics)
		}
	}
	if len(clean) < 2 {
		return
	}
	prior := clean[len(clean)-2]
	latest := clean[len(clean)-1]

	changes := map[alias.MetricID]float64{}
	for _, id := range alias.RequiredMetrics {
		p, okPrior := prior[id]
		l, okLatest := latest[id]
		if okPrior && okLatest && p != 0 {
			changes[id] = (l - p) / p * 100
		}
	}
	if len(changes) > 0 {
		result.YearlyChanges = changes
	}
}

func (o *Orchestrator) fillMetadata(result *Result) {
	seen := map[alias.MetricID]bool{}
	result.Metadata.Metrics = result.Metadata.Metrics[:0]
	result.Metadata.Periods = result.Metadata.Periods[:0]
	for _, period := range result.Periods {
		result.Metadata.Periods = append(result.Metadata.Periods, period.Period)
		for _, id := range alias.RequiredMetrics {
			if _, ok := period.Metrics[id]; ok && !seen[id] {
				seen[id] = true
				result.Metadata.Metrics = append(result.Metadata.Metrics, string(id))
			}
		}
	}
	result.Metadata.Years = len(result.Metadata.Periods)
}
