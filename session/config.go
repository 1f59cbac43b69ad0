package session

import "fmt"

// TrimPolicy selects which turns survive when history exceeds the bound.
type TrimPolicy string

const (
	// TrimRecent keeps only the most recent MaxHistory entries, dropping
	// the oldest regardless of role.
	TrimRecent TrimPolicy = "recent"
	// TrimPreserveSystem always retains system-role entries and drops the
	// oldest non-system entries until the bound holds. When system entries
	// alone meet or exceed the bound, non-system history may empty out.
	TrimPreserveSystem TrimPolicy = "preserve_system"
)

const defaultMaxHistory = 50

// Config holds session initialization parameters.
type Config struct {
	// MaxHistory bounds stored history length. Zero means unbounded.
	MaxHistory int `json:"max_history,omitempty"`
	// TrimPolicy selects the retention policy applied when the bound is
	// exceeded. Defaults to TrimPreserveSystem.
	TrimPolicy TrimPolicy `json:"trim_policy,omitempty"`
	// SystemPrompt is the default directive used when no explicit
	// directive is supplied to MessagesForRequest.
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistory: defaultMaxHistory,
		TrimPolicy: TrimPreserveSystem,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.MaxHistory != 0 {
		c.MaxHistory = source.MaxHistory
	}
	if source.TrimPolicy != "" {
		c.TrimPolicy = source.TrimPolicy
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
}

// Validate checks construction arguments before any state is created.
func (c *Config) Validate() error {
	if c.MaxHistory < 0 {
		return fmt.Errorf("%w: max_history %d is negative", ErrInvalidConfig, c.MaxHistory)
	}
	switch c.TrimPolicy {
	case "", TrimRecent, TrimPreserveSystem:
	default:
		return fmt.Errorf("%w: unknown trim policy %q", ErrInvalidConfig, c.TrimPolicy)
	}
	return nil
}

// New creates a Session from configuration. Returns ErrInvalidConfig when the
// configuration is invalid.
func New(cfg *Config) (Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newMemorySession(cfg), nil
}
