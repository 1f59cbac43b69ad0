// Package conductor implements the session orchestration runtime that drives
// one conversational request end-to-end: record the user turn, emit the
// before-request hook, assemble the bounded context, invoke the provider,
// record the assistant turn, emit the after-request hook, and return the
// response. Failures at any stage emit the on-error hook best-effort and
// propagate the original error.
//
// The conductor initializes from configuration via New, creating all
// subsystems internally. Functional options allow overrides of any subsystem.
//
//	c, err := conductor.New(&cfg)
//	result, err := c.Run(ctx, "Hello! What can you help me with?")
package conductor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tailored-agentic-units/conductor/core/protocol"
	"github.com/tailored-agentic-units/conductor/core/response"
	"github.com/tailored-agentic-units/conductor/hooks"
	"github.com/tailored-agentic-units/conductor/observability"
	"github.com/tailored-agentic-units/conductor/provider"
	"github.com/tailored-agentic-units/conductor/provider/openai"
	"github.com/tailored-agentic-units/conductor/retrieval"
	"github.com/tailored-agentic-units/conductor/retrieval/qdrant"
	"github.com/tailored-agentic-units/conductor/session"
)

// Result holds the outcome of one completed request.
type Result struct {
	Response     string         // Final assistant text.
	Usage        response.Usage // Backend-reported token accounting.
	Model        string         // Model identifier reported by the backend.
	FinishReason string         // Why generation stopped; "stop" by default.
}

// HistoryEntry is one turn of the read-only history projection exposed to
// hosts. It is not the canonical store.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// EmbedFunc converts a prompt into a query vector for retrieval search.
// Without one, the conductor searches with an empty vector, which the
// in-memory store answers by recency.
type EmbedFunc func(ctx context.Context, prompt string) ([]float32, error)

// Option configures a Conductor after config-driven initialization.
// Applied by New after cold start — overrides replace config-created defaults.
type Option func(*Conductor)

// WithProvider overrides the config-created provider.
func WithProvider(p provider.Provider) Option {
	return func(c *Conductor) { c.provider = p }
}

// WithSession overrides the config-created session.
func WithSession(s session.Session) Option {
	return func(c *Conductor) { c.session = s }
}

// WithHooks overrides the conductor's hook registry.
func WithHooks(r *hooks.Registry) Option {
	return func(c *Conductor) { c.hooks = r }
}

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(c *Conductor) { c.observer = o }
}

// WithRetrievalStore overrides the config-created retrieval store.
func WithRetrievalStore(s retrieval.Store) Option {
	return func(c *Conductor) { c.store = s }
}

// WithQueryEmbedder supplies the embedder used to turn prompts into
// retrieval query vectors.
func WithQueryEmbedder(fn EmbedFunc) Option {
	return func(c *Conductor) { c.embed = fn }
}

// Conductor orchestrates one logical conversation. At most one Run is in
// flight per Conductor at a time; the session and hook registry it owns are
// not shared across instances.
type Conductor struct {
	session      session.Session
	hooks        *hooks.Registry
	provider     provider.Provider
	store        retrieval.Store
	embed        EmbedFunc
	observer     observability.Observer
	options      provider.Options
	topK         int
	systemPrompt string
	initialized  bool
}

// New creates a Conductor from configuration. Subsystems (session, retrieval,
// provider) are initialized from their respective config sections; functional
// options applied afterwards can override any of them. Invalid configuration
// fails here, before any request state exists.
func New(cfg *Config, opts ...Option) (*Conductor, error) {
	sesh, err := session.New(&cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	store, err := newRetrievalStore(&cfg.Retrieval)
	if err != nil {
		return nil, fmt.Errorf("failed to create retrieval store: %w", err)
	}

	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = cfg.Session.SystemPrompt
	}

	c := &Conductor{
		session:      sesh,
		hooks:        hooks.NewRegistry(),
		store:        store,
		observer:     observability.NewSlogObserver(slog.Default()),
		options:      cfg.Options,
		topK:         cfg.Retrieval.TopK,
		systemPrompt: systemPrompt,
	}

	switch cfg.Provider.Backend {
	case "":
		// Provider must arrive via WithProvider.
	case "openai":
		c.provider = openai.New(openai.Config{
			Model:   cfg.Provider.Model,
			BaseURL: cfg.Provider.BaseURL,
			APIKey:  cfg.Provider.APIKey,
		})
	default:
		return nil, fmt.Errorf("%w: provider %q", ErrUnknownBackend, cfg.Provider.Backend)
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.provider == nil {
		return nil, ErrNoProvider
	}

	return c, nil
}

// NewSession is the factory entry point consumed by host environments:
// an OpenAI-compatible conductor for the given model, with an optional
// system prompt override.
func NewSession(model, systemPrompt string) (*Conductor, error) {
	cfg := DefaultConfig()
	cfg.Provider.Backend = "openai"
	cfg.Provider.Model = model
	if systemPrompt != "" {
		cfg.SystemPrompt = systemPrompt
	}
	return New(&cfg)
}

func newRetrievalStore(cfg *retrieval.Config) (retrieval.Store, error) {
	if cfg.Backend == "qdrant" {
		return qdrant.New(qdrant.Config{
			URL:        cfg.URL,
			Collection: cfg.Collection,
			APIKey:     cfg.APIKey,
		})
	}
	return retrieval.NewStore(cfg)
}

// Hooks returns the conductor's hook registry for callback registration.
func (c *Conductor) Hooks() *hooks.Registry {
	return c.hooks
}

// SessionID returns the underlying session identifier.
func (c *Conductor) SessionID() string {
	return c.session.ID()
}

// Initialize transitions the conductor to ready. It is one-way and
// idempotent; Run and RunStream call it implicitly.
func (c *Conductor) Initialize() {
	if c.initialized {
		return
	}
	c.session.SetSystemPrompt(c.systemPrompt)
	c.initialized = true
}

// Run executes one non-streaming request for the given prompt.
func (c *Conductor) Run(ctx context.Context, prompt string) (*Result, error) {
	return c.run(ctx, prompt, nil)
}

// RunStream executes one streaming request, invoking onChunk with partial
// text in arrival order. A nil onChunk degrades to the non-streaming path.
func (c *Conductor) RunStream(ctx context.Context, prompt string, onChunk provider.ChunkFunc) (*Result, error) {
	return c.run(ctx, prompt, onChunk)
}

func (c *Conductor) run(ctx context.Context, prompt string, onChunk provider.ChunkFunc) (*Result, error) {
	c.Initialize()

	// The user turn is recorded before anything can fail and is never
	// rolled back: the conversation records that the user asked, even if
	// no answer was produced.
	c.session.AddMessage(protocol.NewMessage(protocol.RoleUser, prompt))
	historyLength := len(c.session.Messages())

	c.emit(ctx, observability.Event{
		Type:   EventRunStart,
		Level:  observability.LevelInfo,
		Source: "conductor.run",
		Data: map[string]any{
			"prompt_length":  len(prompt),
			"history_length": historyLength,
			"stream":         onChunk != nil,
		},
	})

	if err := c.hooks.Emit(ctx, hooks.BeforeRequest, hooks.BeforeRequestPayload{
		Prompt:        prompt,
		HistoryLength: historyLength,
	}); err != nil {
		return nil, c.fail(ctx, err)
	}

	directive, err := c.buildDirective(ctx, prompt)
	if err != nil {
		return nil, c.fail(ctx, err)
	}

	messages := c.session.MessagesForRequest(directive)

	c.emit(ctx, observability.Event{
		Type:   EventProviderCall,
		Level:  observability.LevelVerbose,
		Source: "conductor.run",
		Data: map[string]any{
			"provider": c.provider.Name(),
			"messages": len(messages),
		},
	})

	var resp *response.ChatResponse
	var chunkHookErr error
	if onChunk != nil {
		deliver := func(partial string) {
			onChunk(partial)
			if chunkHookErr == nil {
				chunkHookErr = c.hooks.Emit(ctx, hooks.OnStreamChunk, partial)
			}
		}
		resp, err = c.provider.Stream(ctx, messages, deliver, c.options)
	} else {
		resp, err = c.provider.Complete(ctx, messages, c.options)
	}
	if err != nil {
		return nil, c.fail(ctx, err)
	}
	if chunkHookErr != nil {
		return nil, c.fail(ctx, chunkHookErr)
	}

	text := resp.Text()
	c.session.AddMessage(protocol.NewMessage(protocol.RoleAssistant, text))

	if err := c.hooks.Emit(ctx, hooks.AfterRequest, hooks.AfterRequestPayload{
		Response: text,
		Usage:    resp.Usage,
	}); err != nil {
		return nil, c.fail(ctx, err)
	}

	c.emit(ctx, observability.Event{
		Type:   EventResponse,
		Level:  observability.LevelInfo,
		Source: "conductor.run",
		Data: map[string]any{
			"response_length": len(text),
			"total_tokens":    resp.Usage.TotalTokens,
		},
	})

	return &Result{
		Response:     text,
		Usage:        resp.Usage,
		Model:        resp.Model,
		FinishReason: resp.FinishReason,
	}, nil
}

// fail emits the on-error hook best-effort and returns the original error.
// A failure inside the on-error emission itself is logged and swallowed so
// it cannot mask the cause.
func (c *Conductor) fail(ctx context.Context, cause error) error {
	if hookErr := c.hooks.Emit(ctx, hooks.OnError, hooks.ErrorPayload{Err: cause}); hookErr != nil {
		c.emit(ctx, observability.Event{
			Type:   EventError,
			Level:  observability.LevelWarning,
			Source: "conductor.fail",
			Data: map[string]any{
				"stage": "on_error emission",
				"error": hookErr.Error(),
			},
		})
	}

	c.emit(ctx, observability.Event{
		Type:   EventError,
		Level:  observability.LevelError,
		Source: "conductor.run",
		Data:   map[string]any{"error": cause.Error()},
	})

	return cause
}

// buildDirective composes the effective system directive: the configured
// prompt plus formatted retrieval context when a store is wired.
func (c *Conductor) buildDirective(ctx context.Context, prompt string) (string, error) {
	directive := c.systemPrompt

	if c.store == nil {
		return directive, nil
	}

	var vector []float32
	if c.embed != nil {
		var err error
		vector, err = c.embed(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("failed to embed prompt: %w", err)
		}
	}

	docs, err := c.store.Search(ctx, vector, c.topK)
	if err != nil {
		return "", fmt.Errorf("failed to search retrieval store: %w", err)
	}

	if formatted := retrieval.FormatContext(docs); formatted != "" {
		if directive != "" {
			directive += "\n\n"
		}
		directive += formatted
	}
	return directive, nil
}

// SetSystemPrompt replaces the directive used for subsequent requests.
func (c *Conductor) SetSystemPrompt(prompt string) {
	c.systemPrompt = prompt
	c.session.SetSystemPrompt(prompt)
}

// ClearHistory resets the conversation history. The system directive is
// retained.
func (c *Conductor) ClearHistory(ctx context.Context) {
	c.session.Clear()
	c.emit(ctx, observability.Event{
		Type:   EventHistoryClear,
		Level:  observability.LevelVerbose,
		Source: "conductor.ClearHistory",
	})
}

// History returns a read-only projection of the stored conversation for
// host-side display.
func (c *Conductor) History() []HistoryEntry {
	msgs := c.session.Messages()
	entries := make([]HistoryEntry, len(msgs))
	for i, msg := range msgs {
		entries[i] = HistoryEntry{Role: string(msg.Role), Content: msg.Content}
	}
	return entries
}

func (c *Conductor) emit(ctx context.Context, event observability.Event) {
	event.Timestamp = time.Now()
	event.SessionID = c.session.ID()
	c.observer.OnEvent(ctx, event)
}
