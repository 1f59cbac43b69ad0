// Package provider defines the text-completion backend contract. A Provider
// is the only thing the conductor knows about inference: where the model
// actually runs — a remote service or a local accelerator behind a host
// bridge — is an adapter concern.
package provider

import (
	"context"

	"github.com/tailored-agentic-units/conductor/core/protocol"
	"github.com/tailored-agentic-units/conductor/core/response"
)

// ChunkFunc receives partial response text in arrival order during a
// streaming completion.
type ChunkFunc func(partial string)

// Options carries backend-specific request parameters (temperature,
// max_tokens, etc.). The contents pass through to the adapter unconstrained.
type Options map[string]any

// Provider is a text-completion backend. Implementations own their own
// connection and marshaling state; none retain the message sequences they
// are given.
type Provider interface {
	// Name returns a stable provider identifier.
	Name() string

	// Complete submits the full ordered message sequence and blocks until
	// the backend returns a final result. Usage fields the backend does
	// not report default to zero.
	Complete(ctx context.Context, messages []protocol.Message, opts Options) (*response.ChatResponse, error)

	// Stream behaves like Complete but additionally invokes onChunk zero
	// or more times as partial text arrives, before returning the final
	// result. A backend that cannot stream may satisfy this by calling
	// Complete and invoking onChunk once with the full text.
	Stream(ctx context.Context, messages []protocol.Message, onChunk ChunkFunc, opts Options) (*response.ChatResponse, error)
}
