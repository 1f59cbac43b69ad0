// Package hooks provides the lifecycle event pipeline for conversation
// requests. External observers register callbacks against a closed set of
// event kinds; the conductor emits events at fixed points of each request
// without knowing who is listening.
package hooks

import (
	"context"
	"sync"

	"github.com/tailored-agentic-units/conductor/core/response"
)

// Type identifies a lifecycle event kind. The set is closed.
type Type string

const (
	// BeforeRequest fires after the user turn is recorded, before the
	// provider is invoked. Payload: BeforeRequestPayload.
	BeforeRequest Type = "before_request"
	// AfterRequest fires after the assistant turn is recorded.
	// Payload: AfterRequestPayload.
	AfterRequest Type = "after_request"
	// OnError fires when a request fails. Payload: ErrorPayload.
	OnError Type = "on_error"
	// OnStreamChunk fires once per streamed partial. Payload: the raw
	// partial text string, unwrapped.
	OnStreamChunk Type = "on_stream_chunk"
)

// Callback handles one emitted event. Callbacks are invoked sequentially in
// registration order; a callback that needs to do asynchronous work blocks
// until that work completes, so the next callback in line observes its side
// effects. Returning a non-nil error aborts the remaining callbacks for that
// emission.
type Callback func(ctx context.Context, payload any) error

// BeforeRequestPayload accompanies BeforeRequest events.
type BeforeRequestPayload struct {
	Prompt        string
	HistoryLength int
}

// AfterRequestPayload accompanies AfterRequest events.
type AfterRequestPayload struct {
	Response string
	Usage    response.Usage
}

// ErrorPayload accompanies OnError events.
type ErrorPayload struct {
	Err error
}

// Registry maps event kinds to ordered callback lists. Registration order is
// invocation order; duplicates are permitted. There is no unregister
// operation — callbacks live for the registry's lifetime.
type Registry struct {
	mu        sync.RWMutex
	callbacks map[Type][]Callback
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		callbacks: make(map[Type][]Callback),
	}
}

// Register appends a callback to the given event kind's list.
func (r *Registry) Register(kind Type, cb Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[kind] = append(r.callbacks[kind], cb)
}

// Len returns the number of callbacks registered for the given kind.
func (r *Registry) Len(kind Type) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.callbacks[kind])
}

// Emit invokes every callback registered for kind, sequentially, in
// registration order. The payload is forwarded verbatim. The first callback
// error aborts the remaining callbacks and is returned wrapped in a
// *CallbackError identifying which callback faulted. Emitting a kind with no
// callbacks is a no-op.
func (r *Registry) Emit(ctx context.Context, kind Type, payload any) error {
	r.mu.RLock()
	cbs := r.callbacks[kind]
	r.mu.RUnlock()

	for i, cb := range cbs {
		if err := cb(ctx, payload); err != nil {
			return &CallbackError{Kind: kind, Index: i, Err: err}
		}
	}
	return nil
}
