package retrieval

import "fmt"

const defaultTopK = 3

// Config holds retrieval store initialization parameters.
type Config struct {
	// Backend selects the store implementation: "memory" or "qdrant".
	// Empty disables retrieval.
	Backend string `json:"backend,omitempty"`
	// TopK is the number of documents injected per request.
	TopK int `json:"top_k,omitempty"`
	// URL is the server address for server-backed stores.
	URL string `json:"url,omitempty"`
	// Collection names the server-side collection to search.
	Collection string `json:"collection,omitempty"`
	// APIKey authenticates server-backed stores. Optional.
	APIKey string `json:"api_key,omitempty"`
}

// DefaultConfig returns the default retrieval configuration (disabled).
func DefaultConfig() Config {
	return Config{TopK: defaultTopK}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.TopK > 0 {
		c.TopK = source.TopK
	}
	if source.URL != "" {
		c.URL = source.URL
	}
	if source.Collection != "" {
		c.Collection = source.Collection
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
}

// NewStore creates a Store from configuration. Returns a nil Store when
// Backend is empty, indicating retrieval is disabled. The "qdrant" backend
// lives in the qdrant subpackage and is wired by the caller to keep the
// gRPC dependency out of the core path.
func NewStore(cfg *Config) (Store, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown retrieval backend: %s", cfg.Backend)
	}
}
