package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tailored-agentic-units/conductor/core/protocol"
	"github.com/tailored-agentic-units/conductor/provider"
	"github.com/tailored-agentic-units/conductor/provider/openai"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *openai.Provider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return openai.New(openai.Config{
		Model:   "test-model",
		BaseURL: srv.URL + "/v1",
		APIKey:  "test-key",
	})
}

func TestProvider_Name(t *testing.T) {
	p := openai.New(openai.Config{Model: "m"})
	if p.Name() != "openai" {
		t.Errorf("got name %q, want %q", p.Name(), "openai")
	}
}

func TestComplete(t *testing.T) {
	var captured struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"model": "test-model-0314",
			"choices": [{"message": {"role": "assistant", "content": "hello there"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 3, "total_tokens": 13}
		}`)
	})

	messages := []protocol.Message{
		{Role: protocol.RoleSystem, Content: "directive"},
		{Role: protocol.RoleUser, Content: "hi"},
	}
	opts := provider.Options{"temperature": 0.2, "max_tokens": 64}

	resp, err := p.Complete(context.Background(), messages, opts)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Text() != "hello there" {
		t.Errorf("got text %q, want %q", resp.Text(), "hello there")
	}
	if resp.Usage.TotalTokens != 13 {
		t.Errorf("got total tokens %d, want 13", resp.Usage.TotalTokens)
	}
	if resp.Model != "test-model-0314" {
		t.Errorf("got model %q, want %q", resp.Model, "test-model-0314")
	}
	if resp.FinishReason != "stop" {
		t.Errorf("got finish reason %q, want %q", resp.FinishReason, "stop")
	}

	if captured.Model != "test-model" {
		t.Errorf("request model: got %q, want %q", captured.Model, "test-model")
	}
	if captured.Temperature != 0.2 {
		t.Errorf("request temperature: got %v, want 0.2", captured.Temperature)
	}
	if captured.MaxTokens != 64 {
		t.Errorf("request max_tokens: got %d, want 64", captured.MaxTokens)
	}
	if len(captured.Messages) != 2 || captured.Messages[0].Role != "system" {
		t.Errorf("request messages: got %+v", captured.Messages)
	}
}

func TestComplete_ModelOverrideOption(t *testing.T) {
	var gotModel string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotModel = req.Model
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices": [{"message": {"content": "ok"}}]}`)
	})

	_, err := p.Complete(context.Background(), nil, provider.Options{"model": "other-model"})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if gotModel != "other-model" {
		t.Errorf("got model %q, want %q", gotModel, "other-model")
	}
}

func TestComplete_BackendError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "rate limit exceeded", "type": "rate_limit_error"}}`)
	})

	_, err := p.Complete(context.Background(), nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}

	var provErr *provider.Error
	if !errors.As(err, &provErr) {
		t.Fatalf("error should be a *provider.Error, got %T", err)
	}
	if provErr.Provider != "openai" {
		t.Errorf("got provider %q, want %q", provErr.Provider, "openai")
	}
	if provErr.Message != "rate limit exceeded" {
		t.Errorf("got message %q, want backend message surfaced", provErr.Message)
	}
}

func TestComplete_NoChoices(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices": []}`)
	})

	_, err := p.Complete(context.Background(), nil, nil)
	var provErr *provider.Error
	if !errors.As(err, &provErr) {
		t.Fatalf("error should be a *provider.Error, got %v", err)
	}
}

func TestStream(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`{"model":"test-model-0314","choices":[{"delta":{"content":"Hel"}}]}`,
			`{"model":"test-model-0314","choices":[{"delta":{"content":"lo"},"finish_reason":"stop"}]}`,
			`{"model":"test-model-0314","choices":[],"usage":{"prompt_tokens":4,"completion_tokens":2,"total_tokens":6}}`,
		}
		for _, chunk := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var chunks []string
	resp, err := p.Stream(context.Background(), []protocol.Message{
		{Role: protocol.RoleUser, Content: "hi"},
	}, func(partial string) {
		chunks = append(chunks, partial)
	}, nil)
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}

	if len(chunks) != 2 || chunks[0] != "Hel" || chunks[1] != "lo" {
		t.Errorf("got chunks %v, want [Hel lo]", chunks)
	}
	if resp.Text() != "Hello" {
		t.Errorf("got text %q, want %q", resp.Text(), "Hello")
	}
	if resp.Usage.TotalTokens != 6 {
		t.Errorf("got total tokens %d, want 6", resp.Usage.TotalTokens)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("got finish reason %q, want %q", resp.FinishReason, "stop")
	}
	if resp.Model != "test-model-0314" {
		t.Errorf("got model %q, want %q", resp.Model, "test-model-0314")
	}
}

func TestStream_BackendError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": {"message": "backend down", "type": "server_error"}}`)
	})

	_, err := p.Stream(context.Background(), nil, nil, nil)
	var provErr *provider.Error
	if !errors.As(err, &provErr) {
		t.Fatalf("error should be a *provider.Error, got %v", err)
	}
	if provErr.Message != "backend down" {
		t.Errorf("got message %q, want %q", provErr.Message, "backend down")
	}
}
