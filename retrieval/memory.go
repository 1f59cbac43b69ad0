package retrieval

import (
	"context"
	"math"
	"sort"
	"sync"
)

// memoryStore is a linear-scan Store. Queries with an embedding are ranked by
// cosine similarity; queries without one fall back to recency. Suitable for
// small corpora and tests, not for production retrieval.
type memoryStore struct {
	mu   sync.RWMutex
	docs []Document
}

// NewMemoryStore creates an empty in-memory Store.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) Add(ctx context.Context, docs ...Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		if doc.ID != "" {
			if i := s.indexOf(doc.ID); i >= 0 {
				s.docs[i] = doc
				continue
			}
		}
		s.docs = append(s.docs, doc)
	}
	return nil
}

// indexOf returns the position of the document with the given ID, or -1.
// Caller holds the lock.
func (s *memoryStore) indexOf(id string) int {
	for i, doc := range s.docs {
		if doc.ID == id {
			return i
		}
	}
	return -1
}

func (s *memoryStore) Search(ctx context.Context, vector []float32, limit int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || len(s.docs) == 0 {
		return nil, nil
	}

	if len(vector) == 0 {
		// Recency fallback: the most recently added documents, newest last.
		start := len(s.docs) - limit
		if start < 0 {
			start = 0
		}
		out := make([]Document, len(s.docs)-start)
		copy(out, s.docs[start:])
		return out, nil
	}

	type scored struct {
		doc   Document
		score float64
	}
	candidates := make([]scored, 0, len(s.docs))
	for _, doc := range s.docs {
		if len(doc.Embedding) != len(vector) {
			continue
		}
		candidates = append(candidates, scored{doc: doc, score: cosine(vector, doc.Embedding)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > len(candidates) {
		limit = len(candidates)
	}
	out := make([]Document, limit)
	for i := range out {
		out[i] = candidates[i].doc
	}
	return out, nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = nil
	return nil
}

func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
