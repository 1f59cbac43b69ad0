package conductor

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/conductor/provider"
	"github.com/tailored-agentic-units/conductor/retrieval"
	"github.com/tailored-agentic-units/conductor/session"
)

// DefaultSystemPrompt is the directive applied when none is configured. It is
// an overridable configuration default, not compiled-in behavior: any
// non-empty SystemPrompt in config or an explicit SetSystemPrompt call
// replaces it entirely.
const DefaultSystemPrompt = "You are a helpful AI assistant. " +
	"Be concise, helpful, and friendly. If you don't know something, say so honestly."

// ProviderConfig selects and parameterizes the completion backend.
type ProviderConfig struct {
	// Backend selects the adapter: "openai" (any OpenAI-compatible
	// service, remote or local). Empty requires a WithProvider option.
	Backend string `json:"backend,omitempty"`
	Model   string `json:"model,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *ProviderConfig) Merge(source *ProviderConfig) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
}

// Config holds initialization parameters for all conductor subsystems.
// Each subsystem section delegates to that subsystem's config-driven
// constructor.
type Config struct {
	SystemPrompt string           `json:"system_prompt,omitempty"`
	Provider     ProviderConfig   `json:"provider"`
	Session      session.Config   `json:"session"`
	Retrieval    retrieval.Config `json:"retrieval"`
	// Options are default request parameters passed through to the
	// provider on every call (temperature, max_tokens, ...).
	Options provider.Options `json:"options,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		SystemPrompt: DefaultSystemPrompt,
		Session:      session.DefaultConfig(),
		Retrieval:    retrieval.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Provider.Merge(&source.Provider)
	c.Session.Merge(&source.Session)
	c.Retrieval.Merge(&source.Retrieval)

	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
	if len(source.Options) > 0 {
		c.Options = source.Options
	}
}

// LoadConfig reads a JSON config file, merges it over defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
