package llm

import (
	"context"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestHarvestTextKeepsOnlyTextBlocks(t *testing.T) {
	blocks := []anthropic.ContentBlockUnion{
		{Type: "text", Text: "Revenue grew "},
		{Type: "tool_use", Name: "lookup"},
		{Type: "text", Text: "10% year over year."},
	}
	got := harvestText(blocks)
	if got != "Revenue grew 10% year over year." {
		t.Errorf("harvestText = %q", got)
	}
}

func TestHarvestTextEmptyResponse(t *testing.T) {
	blocks := []anthropic.ContentBlockUnion{
		{Type: "tool_use", Name: "lookup"},
	}
	if got := harvestText(blocks); got != "" {
		t.Errorf("harvestText = %q, want empty", got)
	}
}

func TestClaudeRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	p := &ClaudeProvider{}
	if _, err := p.GenerateResponse(context.Background(), "prompt", "", nil); err == nil {
		t.Fatal("expected an error without an API key")
	}
}
