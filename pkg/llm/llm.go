// Package llm provides a uniform client abstraction over external
// large-language-model providers for the generation pipeline.
package llm

import (
	"context"
	"errors"
)

// ErrProviderUnavailable indicates the provider returned a non-success
// response or was unreachable. Stage failures caused by it are not retried.
var ErrProviderUnavailable = errors.New("llm provider unavailable")

// CompletionRequest is the provider-independent input for one model call.
type CompletionRequest struct {
	Model        string  `json:"model,omitempty"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	Prompt       string  `json:"prompt"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
}

// Usage reports token consumption for one completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompletionResponse is the provider-independent output of one model call.
type CompletionResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Provider is the uniform interface every model backend implements. Complete
// blocks until the provider responds or ctx expires.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
