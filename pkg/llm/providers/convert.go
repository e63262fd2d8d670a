// Package providers implements llm.Provider adapters for the external model
// backends used by the generation pipeline.
package providers

import (
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/flowgen-io/flowgen/pkg/llm"
)

// toMessages builds the langchaingo message sequence for a completion
// request: optional system message followed by the user prompt.
func toMessages(req llm.CompletionRequest) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, 2)

	if req.SystemPrompt != "" {
		messages = append(messages, llms.MessageContent{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(req.SystemPrompt)},
		})
	}

	messages = append(messages, llms.MessageContent{
		Role:  llms.ChatMessageTypeHuman,
		Parts: []llms.ContentPart{llms.TextPart(req.Prompt)},
	})

	return messages
}

// callOptions maps the stage's fixed generation parameters onto langchaingo
// call options.
func callOptions(req llm.CompletionRequest) []llms.CallOption {
	opts := make([]llms.CallOption, 0, 3)

	if req.Model != "" {
		opts = append(opts, llms.WithModel(req.Model))
	}

	if req.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(req.Temperature))
	}

	if req.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(req.MaxTokens))
	}

	return opts
}

// fromResponse maps a langchaingo content response back onto the uniform
// completion response.
func fromResponse(resp *llms.ContentResponse, model string) *llm.CompletionResponse {
	out := &llm.CompletionResponse{Model: model}

	if resp == nil || len(resp.Choices) == 0 {
		return out
	}

	choice := resp.Choices[0]
	out.Content = strings.TrimSpace(choice.Content)

	if choice.GenerationInfo != nil {
		if v, ok := asInt(choice.GenerationInfo["PromptTokens"]); ok {
			out.Usage.PromptTokens = v
		}

		if v, ok := asInt(choice.GenerationInfo["CompletionTokens"]); ok {
			out.Usage.CompletionTokens = v
		}

		out.Usage.TotalTokens = out.Usage.PromptTokens + out.Usage.CompletionTokens
	}

	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
