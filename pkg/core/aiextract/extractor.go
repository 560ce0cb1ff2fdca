package aiextract

import (
	"context"
	"fmt"

	"fcff_engine/pkg/core/agent"
	"fcff_engine/pkg/core/alias"
	"fcff_engine/pkg/core/llm"
	"fcff_engine/pkg/core/prompt"
	"fcff_engine/pkg/core/reconcile"
	"fcff_engine/pkg/core/utils"
)

// Extractor pulls financial metrics out of unstructured document text via an
// LLM, as a complement to the deterministic format extractors. Its output is
// advisory: the pipeline merges it over the traditional result rather than
// trusting it alone.
type Extractor struct {
	manager  *agent.Manager
	resolver *alias.Resolver
}

func NewExtractor(manager *agent.Manager) *Extractor {
	return &Extractor{
		manager:  manager,
		resolver: alias.NewResolver(),
	}
}

// ExtractMetrics prompts the extraction role with the raw text and parses
// the response leniently. Unrecognized keys are dropped; recognized ones are
// mapped to canonical metric IDs.
func (e *Extractor) ExtractMetrics(ctx context.Context, text string) (reconcile.MetricSet, error) {
	tmpl, err := prompt.Get().Lookup("extraction.metrics")
	if err != nil {
		return nil, err
	}
	userPrompt, err := tmpl.Render(map[string]interface{}{"Text": text})
	if err != nil {
		return nil, err
	}

	raw, err := e.manager.ExecutePrompt(ctx, "extractor", userPrompt, tmpl.SystemPrompt, llm.JSONMode())
	if err != nil {
		return nil, fmt.Errorf("ai extraction failed: %w", err)
	}
	return e.ParseMetrics(raw)
}

// ParseMetrics turns a model response into a canonical metric set. The
// response is parsed with the full repair ladder since models wrap JSON in
// fences or drift from strict syntax.
func (e *Extractor) ParseMetrics(response string) (reconcile.MetricSet, error) {
	var parsed map[string]interface{}
	if _, err := utils.SmartParse(response, &parsed); err != nil {
		return nil, fmt.Errorf("unparseable extraction response: %w", err)
	}

	metrics := reconcile.MetricSet{}
	for key, value := range parsed {
		id, ok := e.canonicalize(key)
		if !ok {
			continue
		}
		num, ok := reconcile.ParseNumber(value)
		if !ok {
			continue
		}
		if _, taken := metrics[id]; !taken {
			metrics[id] = num
		}
	}
	return metrics, nil
}

// canonicalize accepts the exact canonical IDs the prompt asks for, and
// falls back to alias resolution for models that answer with statement-line
// names anyway.
func (e *Extractor) canonicalize(key string) (alias.MetricID, bool) {
	for _, id := range canonicalIDs {
		if key == string(id) {
			return id, true
		}
	}
	return e.resolver.Resolve(key)
}

var canonicalIDs = []alias.MetricID{
	alias.Revenue,
	alias.EBIT,
	alias.NetIncome,
	alias.Depreciation,
	alias.Capex,
	alias.WorkingCapital,
	alias.EBITDA,
	alias.CurrentAssets,
	alias.CurrentLiability,
	alias.FixedAssets,
}

// Merge overlays the AI result on the traditional extraction. AI values win
// on overlap; metrics only the traditional pass found are retained.
func Merge(traditional, ai reconcile.MetricSet) reconcile.MetricSet {
	merged := reconcile.MetricSet{}
	for id, v := range traditional {
		merged[id] = v
	}
	for id, v := range ai {
		merged[id] = v
	}
	return merged
}
