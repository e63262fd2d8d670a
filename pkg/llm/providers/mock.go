package providers

import (
	"context"
	"errors"
	"sync"

	"github.com/flowgen-io/flowgen/pkg/llm"
)

// MockCall records one request received by the mock provider.
type MockCall struct {
	Request llm.CompletionRequest
}

// Mock is a recording llm.Provider for tests. Responses are returned in
// order; an entry may instead be an error to simulate provider failures.
type Mock struct {
	mu        sync.Mutex
	responses []any // string or error
	index     int
	calls     []MockCall
}

// NewMock creates a mock provider that replies with the given responses in
// order, cycling when exhausted.
func NewMock(responses ...string) *Mock {
	m := &Mock{}
	for _, r := range responses {
		m.responses = append(m.responses, r)
	}

	return m
}

// QueueResponse appends a canned response.
func (p *Mock) QueueResponse(content string) *Mock {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, content)

	return p
}

// QueueError appends a canned provider failure.
func (p *Mock) QueueError(err error) *Mock {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, err)

	return p
}

// Calls returns a copy of every request received so far.
func (p *Mock) Calls() []MockCall {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]MockCall, len(p.calls))
	copy(out, p.calls)

	return out
}

// CallCount returns how many completion requests were received.
func (p *Mock) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.calls)
}

func (p *Mock) Name() string {
	return "mock"
}

func (p *Mock) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.calls = append(p.calls, MockCall{Request: req})

	if len(p.responses) == 0 {
		p.mu.Unlock()

		return nil, errors.Join(llm.ErrProviderUnavailable, errors.New("mock: no responses configured"))
	}

	next := p.responses[p.index%len(p.responses)]
	p.index++
	p.mu.Unlock()

	switch v := next.(type) {
	case error:
		return nil, v
	case string:
		return &llm.CompletionResponse{
			Content: v,
			Model:   req.Model,
			Usage: llm.Usage{
				PromptTokens:     len(req.Prompt) / 4,
				CompletionTokens: len(v) / 4,
				TotalTokens:      (len(req.Prompt) + len(v)) / 4,
			},
		}, nil
	default:
		return nil, errors.New("mock: unsupported response type")
	}
}
