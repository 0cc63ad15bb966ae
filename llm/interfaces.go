// Package llm wraps a hosted chat-completion provider behind a single
// Client interface, with retry/backoff and three token-optimized presets
// (classify/extract/generate), grounded on the teacher's pkg/ai package.
package llm

import "context"

// Client provides a unified interface over chat-completion providers.
type Client interface {
	Generate(ctx context.Context, prompt string, opts *GenerationOptions) (*Response, error)
	ProviderInfo() ProviderInfo
}

// GenerationOptions configures a single completion call (§4.1).
type GenerationOptions struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	TopP         float64
	SystemPrompt string
}

// Response is a completed chat-completion result.
type Response struct {
	Content      string
	Model        string
	Usage        TokenUsage
	FinishReason string
}

// TokenUsage tracks provider-reported token accounting.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ProviderInfo describes the backing provider, mirroring ai.ProviderInfo.
type ProviderInfo struct {
	Name    string
	Models  []string
	Version string
}

// Task names the three presets §4.1 defines.
type Task string

const (
	TaskClassify Task = "classify"
	TaskExtract  Task = "extract"
	TaskGenerate Task = "generate"
)

// PresetOptions returns the token-optimized GenerationOptions for task,
// per §4.1: classification (temp≈0.3, 512 tok), extraction (temp≈0.2,
// 256 tok), generation (temp≈0.7, 1024 tok).
func PresetOptions(task Task, model string) *GenerationOptions {
	switch task {
	case TaskClassify:
		return &GenerationOptions{Model: model, Temperature: 0.3, MaxTokens: 512}
	case TaskExtract:
		return &GenerationOptions{Model: model, Temperature: 0.2, MaxTokens: 256}
	case TaskGenerate:
		return &GenerationOptions{Model: model, Temperature: 0.7, MaxTokens: 1024}
	default:
		return &GenerationOptions{Model: model, Temperature: 0.5, MaxTokens: 512}
	}
}
