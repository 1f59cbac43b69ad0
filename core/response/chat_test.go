package response_test

import (
	"testing"

	"github.com/tailored-agentic-units/conductor/core/response"
)

func TestNewChatResponse(t *testing.T) {
	resp := response.NewChatResponse("hello", response.Usage{TotalTokens: 5})

	if resp.Text() != "hello" {
		t.Errorf("got text %q, want %q", resp.Text(), "hello")
	}
	if resp.Usage.TotalTokens != 5 {
		t.Errorf("got total tokens %d, want 5", resp.Usage.TotalTokens)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("got finish reason %q, want %q", resp.FinishReason, "stop")
	}
}

func TestChatResponse_Text_FlattensBlocks(t *testing.T) {
	resp := &response.ChatResponse{
		Content: []response.Block{
			response.TextBlock{Text: "Hello, "},
			response.TextBlock{Text: "world!"},
		},
	}

	if got := resp.Text(); got != "Hello, world!" {
		t.Errorf("got %q, want %q", got, "Hello, world!")
	}
}

func TestChatResponse_Text_Empty(t *testing.T) {
	resp := &response.ChatResponse{}
	if got := resp.Text(); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestParseChat(t *testing.T) {
	tests := []struct {
		name             string
		body             string
		wantText         string
		wantUsage        response.Usage
		wantModel        string
		wantFinishReason string
	}{
		{
			name:             "full response",
			body:             `{"content":"hi","usage":{"prompt_tokens":1,"completion_tokens":2,"total_tokens":3},"model":"m1","finish_reason":"length"}`,
			wantText:         "hi",
			wantUsage:        response.Usage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3},
			wantModel:        "m1",
			wantFinishReason: "length",
		},
		{
			name:             "missing usage defaults to zero",
			body:             `{"content":"hi"}`,
			wantText:         "hi",
			wantFinishReason: "stop",
		},
		{
			name:             "partial usage defaults remaining fields",
			body:             `{"content":"hi","usage":{"total_tokens":9}}`,
			wantText:         "hi",
			wantUsage:        response.Usage{TotalTokens: 9},
			wantFinishReason: "stop",
		},
		{
			name:             "empty content",
			body:             `{}`,
			wantText:         "",
			wantFinishReason: "stop",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := response.ParseChat([]byte(tt.body))
			if err != nil {
				t.Fatalf("ParseChat failed: %v", err)
			}
			if resp.Text() != tt.wantText {
				t.Errorf("got text %q, want %q", resp.Text(), tt.wantText)
			}
			if resp.Usage != tt.wantUsage {
				t.Errorf("got usage %+v, want %+v", resp.Usage, tt.wantUsage)
			}
			if resp.Model != tt.wantModel {
				t.Errorf("got model %q, want %q", resp.Model, tt.wantModel)
			}
			if resp.FinishReason != tt.wantFinishReason {
				t.Errorf("got finish reason %q, want %q", resp.FinishReason, tt.wantFinishReason)
			}
		})
	}
}

func TestParseChat_Malformed(t *testing.T) {
	if _, err := response.ParseChat([]byte("not json")); err == nil {
		t.Error("expected error for malformed body")
	}
}
