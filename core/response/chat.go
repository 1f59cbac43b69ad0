// Package response defines the completion result types returned by providers.
// Content is modeled as a sequence of typed blocks so richer block kinds can
// be added without changing the provider contract; TextBlock is the only
// block kind currently defined.
package response

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultFinishReason is used when a backend does not report why generation
// stopped.
const DefaultFinishReason = "stop"

// Usage holds token accounting as reported by the backend. All fields default
// to zero when unreported. TotalTokens is backend-reported and is not required
// to equal PromptTokens + CompletionTokens.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Block is one unit of response content.
type Block interface {
	// BlockType returns the block kind discriminator ("text").
	BlockType() string
}

// TextBlock is a plain text content block.
type TextBlock struct {
	Text string `json:"text"`
}

func (TextBlock) BlockType() string { return "text" }

// ChatResponse is the final result of one completion request. It is owned
// transiently by the caller for the duration of one request and is not
// retained by any subsystem.
type ChatResponse struct {
	Content      []Block
	Usage        Usage
	Model        string
	FinishReason string
}

// NewChatResponse creates a ChatResponse with a single text block and the
// default finish reason.
func NewChatResponse(text string, usage Usage) *ChatResponse {
	return &ChatResponse{
		Content:      []Block{TextBlock{Text: text}},
		Usage:        usage,
		FinishReason: DefaultFinishReason,
	}
}

// Text flattens all text blocks into the response string.
func (r *ChatResponse) Text() string {
	var b strings.Builder
	for _, block := range r.Content {
		if tb, ok := block.(TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String()
}

// wireChat is the portable completion response shape used across a host
// boundary: {content, usage?, model?, finish_reason?}. Every optional field
// defaults rather than faults.
type wireChat struct {
	Content      string `json:"content"`
	Usage        *Usage `json:"usage,omitempty"`
	Model        string `json:"model,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// ParseChat parses a wire-format completion response body into a ChatResponse.
// Absent usage sub-fields default to zero and an absent finish_reason defaults
// to "stop".
func ParseChat(body []byte) (*ChatResponse, error) {
	var wire wireChat
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("failed to parse chat response: %w", err)
	}

	resp := &ChatResponse{
		Content:      []Block{TextBlock{Text: wire.Content}},
		Model:        wire.Model,
		FinishReason: wire.FinishReason,
	}
	if wire.Usage != nil {
		resp.Usage = *wire.Usage
	}
	if resp.FinishReason == "" {
		resp.FinishReason = DefaultFinishReason
	}
	return resp, nil
}
