// Package qdrant implements retrieval.Store backed by a Qdrant server.
// It is plumbing only: embedding generation and relevance quality are the
// caller's concern.
package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/tailored-agentic-units/conductor/retrieval"
)

const defaultPort = 6334

// Config holds Qdrant connection parameters.
type Config struct {
	// URL is the Qdrant server address, e.g. "https://example.qdrant.io:6334".
	URL string
	// Collection is the collection to upsert into and search.
	Collection string
	// APIKey is an optional authentication key.
	APIKey string
}

// Store implements retrieval.Store for Qdrant.
type Store struct {
	client     *qdrant.Client
	collection string
}

// New creates a Store connected to the configured Qdrant server.
func New(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}

	raw := cfg.URL
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse qdrant url: %w", err)
	}

	port := defaultPort
	if u.Port() != "" {
		p, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant port: %w", err)
		}
		port = p
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &Store{client: client, collection: cfg.Collection}, nil
}

// Add upserts documents as points. Documents without an ID are assigned one.
func (s *Store) Add(ctx context.Context, docs ...retrieval.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(docs))
	for i, doc := range docs {
		id := doc.ID
		if id == "" {
			id = uuid.Must(uuid.NewV7()).String()
		}

		payload := map[string]any{"content": doc.Content}
		for k, v := range doc.Metadata {
			if k != "content" {
				payload[k] = v
			}
		}

		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectors(doc.Embedding...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// Search queries the collection by vector similarity.
func (s *Store) Search(ctx context.Context, vector []float32, limit int) ([]retrieval.Document, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("qdrant search requires a query vector")
	}

	limitUint64 := uint64(limit)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limitUint64,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search failed: %w", err)
	}

	docs := make([]retrieval.Document, 0, len(points))
	for _, point := range points {
		doc := retrieval.Document{Metadata: make(map[string]any)}

		if point.Id != nil {
			if id := point.Id.GetUuid(); id != "" {
				doc.ID = id
			} else {
				doc.ID = strconv.FormatUint(point.Id.GetNum(), 10)
			}
		}

		for k, v := range point.Payload {
			if k == "content" {
				doc.Content = v.GetStringValue()
				continue
			}
			doc.Metadata[k] = extractValue(v)
		}
		doc.Metadata["score"] = point.Score

		docs = append(docs, doc)
	}
	return docs, nil
}

// Close releases the underlying gRPC connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// extractValue converts a qdrant payload value to a plain Go value.
func extractValue(v *qdrant.Value) any {
	switch kind := v.GetKind().(type) {
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	default:
		return v.String()
	}
}
