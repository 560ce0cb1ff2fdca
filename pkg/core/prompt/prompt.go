// Package prompt holds the prompt library for LLM interactions. Templates
// are registered in code and rendered with text/template, so call sites
// never concatenate prompt strings by hand.
package prompt

import (
	"bytes"
	"fmt"
	"text/template"
)

// Template is a reusable prompt: a fixed system prompt plus a Go template
// for the user message.
type Template struct {
	ID           string
	Description  string
	SystemPrompt string
	UserTmpl     string
}

// Render substitutes vars into the user template and returns the user
// message. The system prompt is static and read from the struct directly.
func (t *Template) Render(vars map[string]interface{}) (string, error) {
	tmpl, err := template.New(t.ID).Parse(t.UserTmpl)
	if err != nil {
		return "", fmt.Errorf("prompt %s: bad template: %w", t.ID, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("prompt %s: render failed: %w", t.ID, err)
	}
	return buf.String(), nil
}
