package llm

import (
	"context"
	"errors"
)

// ErrProviderUnavailable wraps any failure of the provider call itself
// (network, authentication, provider-side error). The caller treats it
// as terminal for the execution: no retry, no charge.
var ErrProviderUnavailable = errors.New("llm provider unavailable")

// Provider is the uniform contract over heterogeneous LLM vendors.
// One Complete call sends one prompt and returns the full text plus
// actual token usage as reported by the vendor.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *Request) (*Response, error)
}

type Request struct {
	Model        string   `json:"model"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	Prompt       string   `json:"prompt"`
	MaxTokens    int      `json:"max_tokens,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
}

type Response struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

const defaultMaxTokens = 4096
