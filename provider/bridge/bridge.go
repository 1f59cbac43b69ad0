// Package bridge implements a Provider whose backend lives across a process
// or host boundary. The adapter owns marshaling: messages are serialized to
// the portable wire shape [{role, content, name?}], handed to an injected
// transport, and the result is decoded with missing optional fields
// defaulting rather than faulting.
//
// The transport functions are supplied by the host environment — an embedded
// runtime, a subprocess pipe, an FFI boundary. The adapter never assumes what
// is on the other side beyond the wire contract.
package bridge

import (
	"context"
	"encoding/json"

	"github.com/tailored-agentic-units/conductor/core/protocol"
	"github.com/tailored-agentic-units/conductor/core/response"
	"github.com/tailored-agentic-units/conductor/provider"
)

// CompleteFunc submits an encoded request across the boundary and returns the
// encoded final response.
type CompleteFunc func(ctx context.Context, request []byte) ([]byte, error)

// StreamFunc submits an encoded request and invokes onChunk for each partial
// text fragment before returning the encoded final response.
type StreamFunc func(ctx context.Context, request []byte, onChunk func(string)) ([]byte, error)

const defaultName = "bridge"

// Provider bridges completion calls to an injected transport.
type Provider struct {
	name     string
	model    string
	complete CompleteFunc
	stream   StreamFunc
}

// Option configures a Provider.
type Option func(*Provider)

// WithName overrides the provider identifier.
func WithName(name string) Option {
	return func(p *Provider) { p.name = name }
}

// WithStream supplies a streaming transport. Without one, Stream degrades to
// Complete plus a single chunk carrying the full text.
func WithStream(fn StreamFunc) Option {
	return func(p *Provider) { p.stream = fn }
}

// New creates a bridge Provider for the given model backed by the given
// completion transport.
func New(model string, complete CompleteFunc, opts ...Option) *Provider {
	p := &Provider{
		name:     defaultName,
		model:    model,
		complete: complete,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return p.name
}

// wireMessage is the portable per-message encoding sent across the boundary.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// wireRequest pairs the message sequence with passthrough options.
type wireRequest struct {
	Model    string           `json:"model,omitempty"`
	Messages []wireMessage    `json:"messages"`
	Options  provider.Options `json:"options,omitempty"`
}

func (p *Provider) encode(messages []protocol.Message, opts provider.Options) ([]byte, error) {
	wire := wireRequest{
		Model:    p.model,
		Messages: make([]wireMessage, len(messages)),
		Options:  opts,
	}
	for i, msg := range messages {
		wire.Messages[i] = wireMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
			Name:    msg.Name,
		}
	}
	return json.Marshal(wire)
}

func (p *Provider) decode(body []byte) (*response.ChatResponse, error) {
	resp, err := response.ParseChat(body)
	if err != nil {
		return nil, provider.NewError(p.name, "malformed backend response", err)
	}
	if resp.Model == "" {
		resp.Model = p.model
	}
	return resp, nil
}

func (p *Provider) Complete(ctx context.Context, messages []protocol.Message, opts provider.Options) (*response.ChatResponse, error) {
	payload, err := p.encode(messages, opts)
	if err != nil {
		return nil, provider.NewError(p.name, "failed to encode request", err)
	}

	body, err := p.complete(ctx, payload)
	if err != nil {
		return nil, provider.NewError(p.name, err.Error(), err)
	}

	return p.decode(body)
}

func (p *Provider) Stream(ctx context.Context, messages []protocol.Message, onChunk provider.ChunkFunc, opts provider.Options) (*response.ChatResponse, error) {
	if p.stream == nil {
		// Degenerate fallback: complete, then deliver the full text as
		// one chunk. Permitted by the provider contract.
		resp, err := p.Complete(ctx, messages, opts)
		if err != nil {
			return nil, err
		}
		if onChunk != nil {
			onChunk(resp.Text())
		}
		return resp, nil
	}

	payload, err := p.encode(messages, opts)
	if err != nil {
		return nil, provider.NewError(p.name, "failed to encode request", err)
	}

	deliver := func(partial string) {
		if onChunk != nil {
			onChunk(partial)
		}
	}

	body, err := p.stream(ctx, payload, deliver)
	if err != nil {
		return nil, provider.NewError(p.name, err.Error(), err)
	}

	return p.decode(body)
}
