package llm

import "context"

// Provider is a chat-completion backend. The extraction pipeline uses it to
// pull financial metrics out of unstructured filing text; the report builder
// uses it for narrative drafting.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// JSONMode returns an options map requesting structured JSON output. Not
// every backend honors it natively; providers that don't fall back to prompt
// steering and the caller repairs the output.
func JSONMode() map[string]interface{} {
	return map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	}
}
