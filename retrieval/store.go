// Package retrieval provides the document store used to augment the request
// directive with retrieved context. The in-memory implementation is a
// linear-scan placeholder; the qdrant subpackage provides a server-backed
// implementation of the same contract.
package retrieval

import "context"

// Document is a chunk of retrievable content.
type Document struct {
	ID        string         `json:"id,omitempty"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
}

// Store holds documents and answers similarity queries. Implementations are
// technology-agnostic: the conductor only ever sees this interface.
type Store interface {
	// Add stores documents, overwriting by ID when one is set.
	Add(ctx context.Context, docs ...Document) error
	// Search returns up to limit documents most similar to the query
	// vector. An empty vector returns the most recently added documents —
	// the placeholder behavior for callers without an embedder.
	Search(ctx context.Context, vector []float32, limit int) ([]Document, error)
	// Close releases any resources held by the store.
	Close() error
}
