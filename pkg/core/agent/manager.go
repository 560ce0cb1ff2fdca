package agent

import (
	"context"
	"fmt"

	"fcff_engine/pkg/core/llm"
)

// Config selects which backend serves each role. Loaded from
// config/models.yaml.
type Config struct {
	ActiveProvider string                `yaml:"active_provider"`
	Roles          map[string]RoleConfig `yaml:"roles"`
}

// RoleConfig optionally pins a role (e.g. "extractor", "reporter") to a
// specific provider or model.
type RoleConfig struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	Description string `yaml:"description"`
}

type Manager struct {
	config    Config
	providers map[string]llm.Provider
}

func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"claude":   &llm.ClaudeProvider{},
			"gemini":   &llm.GeminiProvider{},
			"deepseek": &llm.DeepSeekProvider{},
		},
	}
}

// GetProvider resolves a role to a provider: role override first, then the
// global active provider, then Claude.
func (m *Manager) GetProvider(role string) llm.Provider {
	if roleConfig, ok := m.config.Roles[role]; ok && roleConfig.Provider != "" {
		if p, ok := m.providers[roleConfig.Provider]; ok {
			return p
		}
	}
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return p
	}
	return m.providers["claude"]
}

// ExecutePrompt routes a prompt through the role's provider, carrying any
// per-role model override into the options.
func (m *Manager) ExecutePrompt(ctx context.Context, role string, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	provider := m.GetProvider(role)
	if options == nil {
		options = map[string]interface{}{}
	}
	if roleConfig, ok := m.config.Roles[role]; ok && roleConfig.Model != "" {
		if _, set := options["model"]; !set {
			options["model"] = roleConfig.Model
		}
	}
	return provider.GenerateResponse(ctx, prompt, systemPrompt, options)
}

func (m *Manager) SetGlobalProvider(name string) error {
	if _, ok := m.providers[name]; !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	m.config.ActiveProvider = name
	return nil
}

func (m *Manager) GetActiveProvider() string {
	return m.config.ActiveProvider
}
