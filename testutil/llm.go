// Package testutil provides shared in-memory fakes for the engine's
// collaborator interfaces, grounded on the teacher's colocated
// MockDiscovery (core/mock_discovery.go): a deterministic, full
// interface implementation with no network calls.
package testutil

import (
	"context"
	"sync"

	"github.com/shaonidutta/converge-ai/llm"
)

// FakeLLMClient returns a scripted response (or error) for every
// Generate call and records every prompt it was asked to complete.
type FakeLLMClient struct {
	mu        sync.Mutex
	Responses []llm.Response
	Err       error
	Prompts   []string
	calls     int
}

func NewFakeLLMClient(responses ...llm.Response) *FakeLLMClient {
	return &FakeLLMClient{Responses: responses}
}

func (f *FakeLLMClient) Generate(ctx context.Context, prompt string, opts *llm.GenerationOptions) (*llm.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts = append(f.Prompts, prompt)
	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.Responses) == 0 {
		return &llm.Response{Content: "{}"}, nil
	}
	idx := f.calls
	if idx >= len(f.Responses) {
		idx = len(f.Responses) - 1
	}
	f.calls++
	resp := f.Responses[idx]
	return &resp, nil
}

func (f *FakeLLMClient) ProviderInfo() llm.ProviderInfo {
	return llm.ProviderInfo{Name: "fake", Models: []string{"fake-model"}, Version: "test"}
}

var _ llm.Client = (*FakeLLMClient)(nil)
