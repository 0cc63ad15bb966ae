package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/shaonidutta/converge-ai/logger"
	"github.com/shaonidutta/converge-ai/resilience"
)

// AnthropicClient implements Client against the hosted Anthropic Messages
// API, grounded on the teacher's ai/providers/anthropic.Client shape but
// using the real github.com/anthropics/anthropic-sdk-go instead of a
// hand-rolled HTTP call.
type AnthropicClient struct {
	sdk          anthropic.Client
	defaultModel string
	retryConfig  *resilience.RetryConfig
	breaker      *resilience.CircuitBreaker
	logger       logger.Logger
}

// NewAnthropicClient builds a client; maxRetries is §6's
// MAX_RETRY_ATTEMPTS (default 3).
func NewAnthropicClient(apiKey, defaultModel string, maxRetries int, log logger.Logger) *AnthropicClient {
	if defaultModel == "" {
		defaultModel = "claude-3-5-sonnet-latest"
	}
	retryCfg := resilience.DefaultRetryConfig()
	if maxRetries > 0 {
		retryCfg.MaxAttempts = maxRetries
	}
	return &AnthropicClient{
		sdk:          anthropic.NewClient(option.WithAPIKey(apiKey)),
		defaultModel: defaultModel,
		retryConfig:  retryCfg,
		breaker:      resilience.NewCircuitBreaker(nil),
		logger:       logger.Component(log, "llm"),
	}
}

func (c *AnthropicClient) Generate(ctx context.Context, prompt string, opts *GenerationOptions) (*Response, error) {
	ctx, cancel := timeoutContext(ctx, 30*time.Second)
	defer cancel()

	if opts == nil {
		opts = PresetOptions(TaskGenerate, c.defaultModel)
	}
	model := opts.Model
	if model == "" {
		model = c.defaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(opts.Temperature),
	}
	if opts.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: opts.SystemPrompt}}
	}

	var result *anthropic.Message
	err := resilience.RetryWithCircuitBreaker(ctx, c.retryConfig, c.breaker, func() error {
		msg, callErr := c.sdk.Messages.New(ctx, params)
		if callErr != nil {
			return callErr
		}
		result = msg
		return nil
	})
	if err != nil {
		c.logger.ErrorWithContext(ctx, "llm generate failed", map[string]interface{}{
			"model": model, "error": err.Error(),
		})
		return nil, fmt.Errorf("anthropic generate: %w", err)
	}

	content := ""
	for _, block := range result.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return &Response{
		Content:      content,
		Model:        string(result.Model),
		FinishReason: string(result.StopReason),
		Usage: TokenUsage{
			PromptTokens:     int(result.Usage.InputTokens),
			CompletionTokens: int(result.Usage.OutputTokens),
			TotalTokens:      int(result.Usage.InputTokens + result.Usage.OutputTokens),
		},
	}, nil
}

func (c *AnthropicClient) ProviderInfo() ProviderInfo {
	return ProviderInfo{
		Name:    "anthropic",
		Models:  []string{"claude-3-5-sonnet-latest", "claude-3-5-haiku-latest"},
		Version: "messages-2023-06-01",
	}
}

var _ Client = (*AnthropicClient)(nil)

// timeoutContext bounds a single call with §5's default LLM timeout
// (30s) unless the caller's context already carries a tighter deadline.
func timeoutContext(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
