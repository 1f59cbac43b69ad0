// Package openai implements a Provider backed by an OpenAI-compatible chat
// completion service. Pointing BaseURL at a local runtime (llama.cpp, Ollama,
// vLLM) makes this the adapter for accelerator-backed local inference as well.
package openai

import (
	"context"
	"errors"
	"io"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/tailored-agentic-units/conductor/core/protocol"
	"github.com/tailored-agentic-units/conductor/core/response"
	"github.com/tailored-agentic-units/conductor/provider"
)

const providerName = "openai"

// Config holds connection parameters for the backend service.
type Config struct {
	// Model is the model identifier sent with every request.
	Model string `json:"model,omitempty"`
	// BaseURL overrides the service endpoint. Empty uses the OpenAI API.
	BaseURL string `json:"base_url,omitempty"`
	// APIKey authenticates requests. May be empty for local runtimes.
	APIKey string `json:"api_key,omitempty"`
}

// Provider is an OpenAI-compatible chat completion adapter.
type Provider struct {
	client *goopenai.Client
	model  string
}

// New creates a Provider from configuration.
func New(cfg Config) *Provider {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Provider{
		client: goopenai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
}

func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) buildRequest(messages []protocol.Message, opts provider.Options) goopenai.ChatCompletionRequest {
	req := goopenai.ChatCompletionRequest{
		Model:    p.model,
		Messages: make([]goopenai.ChatCompletionMessage, len(messages)),
	}
	for i, msg := range messages {
		req.Messages[i] = goopenai.ChatCompletionMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			Name:       msg.Name,
			ToolCallID: msg.ToolCallID,
		}
	}

	// Recognized passthrough options; everything else is ignored rather
	// than rejected, matching the unconstrained-map contract.
	if v, ok := floatOption(opts, "temperature"); ok {
		req.Temperature = float32(v)
	}
	if v, ok := floatOption(opts, "top_p"); ok {
		req.TopP = float32(v)
	}
	if v, ok := intOption(opts, "max_tokens"); ok {
		req.MaxTokens = v
	}
	if v, ok := opts["model"].(string); ok && v != "" {
		req.Model = v
	}
	return req
}

func (p *Provider) Complete(ctx context.Context, messages []protocol.Message, opts provider.Options) (*response.ChatResponse, error) {
	resp, err := p.client.CreateChatCompletion(ctx, p.buildRequest(messages, opts))
	if err != nil {
		return nil, wrapBackendError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, provider.NewError(providerName, "backend returned no choices", nil)
	}

	choice := resp.Choices[0]
	result := response.NewChatResponse(choice.Message.Content, response.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	})
	result.Model = resp.Model
	if choice.FinishReason != "" {
		result.FinishReason = string(choice.FinishReason)
	}
	return result, nil
}

func (p *Provider) Stream(ctx context.Context, messages []protocol.Message, onChunk provider.ChunkFunc, opts provider.Options) (*response.ChatResponse, error) {
	req := p.buildRequest(messages, opts)
	req.Stream = true
	req.StreamOptions = &goopenai.StreamOptions{IncludeUsage: true}

	stream, err := p.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, wrapBackendError(err)
	}
	defer stream.Close()

	var (
		text         []byte
		usage        response.Usage
		model        string
		finishReason string
	)

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapBackendError(err)
		}

		if chunk.Model != "" {
			model = chunk.Model
		}
		if chunk.Usage != nil {
			usage = response.Usage{
				PromptTokens:     chunk.Usage.PromptTokens,
				CompletionTokens: chunk.Usage.CompletionTokens,
				TotalTokens:      chunk.Usage.TotalTokens,
			}
		}
		if len(chunk.Choices) == 0 {
			continue
		}

		choice := chunk.Choices[0]
		if choice.Delta.Content != "" {
			text = append(text, choice.Delta.Content...)
			if onChunk != nil {
				onChunk(choice.Delta.Content)
			}
		}
		if choice.FinishReason != "" {
			finishReason = string(choice.FinishReason)
		}
	}

	result := response.NewChatResponse(string(text), usage)
	result.Model = model
	if finishReason != "" {
		result.FinishReason = finishReason
	}
	return result, nil
}

func wrapBackendError(err error) *provider.Error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return provider.NewError(providerName, apiErr.Message, err)
	}
	return provider.NewError(providerName, err.Error(), err)
}

func floatOption(opts provider.Options, key string) (float64, bool) {
	switch v := opts[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func intOption(opts provider.Options, key string) (int, bool) {
	switch v := opts[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}
