package prompt

import (
	"fmt"
	"sync"
)

// Registry maps prompt IDs to templates.
type Registry struct {
	prompts map[string]*Template
	mu      sync.RWMutex
}

var globalRegistry *Registry
var once sync.Once

// Get returns the global registry, populated with the built-in templates on
// first use.
func Get() *Registry {
	once.Do(func() {
		globalRegistry = &Registry{
			prompts: make(map[string]*Template),
		}
		for _, t := range builtins {
			globalRegistry.prompts[t.ID] = t
		}
	})
	return globalRegistry
}

// Register adds or replaces a template. Used to override built-ins at
// startup.
func (r *Registry) Register(t *Template) error {
	if t.ID == "" {
		return fmt.Errorf("prompt ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts[t.ID] = t
	return nil
}

// Lookup fetches a template by ID.
func (r *Registry) Lookup(id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.prompts[id]
	if !ok {
		return nil, fmt.Errorf("prompt %s not registered", id)
	}
	return t, nil
}

var builtins = []*Template{
	{
		ID:          "extraction.metrics",
		Description: "Pull canonical financial metrics out of raw filing text",
		SystemPrompt: "You are a financial data extraction engine. You read raw financial " +
			"statement text, in English or Chinese, and return ONLY a JSON object. " +
			"Keys must come from this exact set: revenue, ebit, netIncome, depreciation, " +
			"capex, workingCapital, ebitda, currentAssets, currentLiabilities, fixedAssets. " +
			"Values are plain numbers in the statement's own currency unit, with scale " +
			"suffixes (thousands, 万, 亿) already multiplied out. Omit any metric " +
			"you cannot find. Never invent values and never add commentary.",
		UserTmpl: "Extract the financial metrics from this document:\n\n{{.Text}}",
	},
	{
		ID:          "report.narrative",
		Description: "Draft the commentary section of a forecast report",
		SystemPrompt: "You are a sell-side analyst writing in terse, factual prose. " +
			"You receive projection figures as JSON and write two short paragraphs: one on " +
			"the revenue and margin trajectory, one on free cash flow quality. No headers, " +
			"no bullet lists, no hedging boilerplate.",
		UserTmpl: "Company: {{.Company}}\nProjection data:\n{{.Data}}",
	},
}
