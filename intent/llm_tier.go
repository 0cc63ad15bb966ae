package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/llm"
	"github.com/shaonidutta/converge-ai/logger"
)

// HistoryTurn is one prior turn fed into the context-aware prompt.
type HistoryTurn struct {
	Role string
	Text string
}

// DialogSummary is the subset of dialog.State the prompt needs, kept as
// a narrow view so this package doesn't import the dialog package and
// create a cycle (dialog consumes intent, not the other way round).
type DialogSummary struct {
	State         string
	Intent        string
	Collected     map[string]string
	Needed        []string
	LastQuestion  string
}

type llmResponse struct {
	PrimaryIntent          string           `json:"primary_intent"`
	Intents                []llmIntentEntry `json:"intents"`
	RequiresClarification  bool             `json:"requires_clarification"`
	ClarificationReason    string           `json:"clarification_reason"`
}

type llmIntentEntry struct {
	Intent     string            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Entities   map[string]string `json:"entities"`
}

// LLMTier builds the context-aware prompt §4.6 describes and parses the
// model's structured verdict.
type LLMTier struct {
	client llm.Client
	model  string
	logger logger.Logger
}

func NewLLMTier(client llm.Client, model string, log logger.Logger) *LLMTier {
	return &LLMTier{client: client, model: model, logger: logger.Component(log, "intent_llm_tier")}
}

// Classify calls the LLM with the context-aware prompt and parses its
// JSON verdict into a ClassifiedIntent.
func (t *LLMTier) Classify(ctx context.Context, text string, history []HistoryTurn, dialog *DialogSummary) (domain.ClassifiedIntent, error) {
	prompt := buildPrompt(text, history, dialog)
	opts := llm.PresetOptions(llm.TaskClassify, t.model)
	opts.SystemPrompt = systemPrompt

	resp, err := t.client.Generate(ctx, prompt, opts)
	if err != nil {
		return domain.ClassifiedIntent{}, fmt.Errorf("intent llm tier: %w", err)
	}

	parsed, unknownLabel, err := parseResponse(resp.Content)
	if err != nil {
		t.logger.Warn("intent llm tier: unparseable response, falling back to unclear", map[string]interface{}{"error": err.Error()})
		return fallbackUnclear(), nil
	}
	if unknownLabel != "" {
		t.logger.Warn("intent llm tier: model returned a label outside the closed set, falling back to unclear",
			map[string]interface{}{"label": unknownLabel, "error": fmt.Errorf("%w: %s", domain.ErrUnknownIntent, unknownLabel).Error()})
	}
	return parsed, nil
}

const systemPrompt = "You are the intent classifier for a home-services marketplace chat assistant. " +
	"You must respond with a single JSON object and nothing else."

func buildPrompt(text string, history []HistoryTurn, dialog *DialogSummary) string {
	var b strings.Builder

	b.WriteString("Closed set of allowed intent labels:\n")
	for label := range domain.AllIntents {
		b.WriteString("- " + string(label) + "\n")
	}

	if len(history) > 0 {
		b.WriteString("\nConversation history (most recent last):\n")
		for _, h := range history {
			b.WriteString(fmt.Sprintf("%s: %s\n", h.Role, h.Text))
		}
	}

	if dialog != nil {
		b.WriteString("\nActive dialog state:\n")
		b.WriteString(fmt.Sprintf("state=%s intent=%s needed=%v last_question=%q\n",
			dialog.State, dialog.Intent, dialog.Needed, dialog.LastQuestion))
		b.WriteString(
			"If state is awaiting_confirmation and the message is a short confirmation or denial, " +
				"classify as the in-progress intent, not a new one. " +
				"If state is collecting_info and the message is short and matches the expected entity type, " +
				"classify as the in-progress intent. " +
				"If the message clearly proposes a new action, reclassify as the new intent.\n")
	}

	b.WriteString("\nUser message:\n")
	b.WriteString(text)
	b.WriteString("\n\nRespond with JSON of shape: " +
		`{"primary_intent": "...", "intents": [{"intent": "...", "confidence": 0.0, "entities": {}}], ` +
		`"requires_clarification": false, "clarification_reason": ""}`)

	return b.String()
}

// parseResponse parses content into a ClassifiedIntent. unknownLabel is
// set to the raw primary_intent string when the model returned a label
// outside the closed intent enumeration, so the caller can log it
// against domain.ErrUnknownIntent without changing the fallback result.
func parseResponse(content string) (result domain.ClassifiedIntent, unknownLabel string, err error) {
	content = extractJSON(content)

	var parsed llmResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return domain.ClassifiedIntent{}, "", fmt.Errorf("parse llm response: %w", err)
	}

	primary := domain.IntentLabel(parsed.PrimaryIntent)
	if !domain.AllIntents[primary] {
		return fallbackUnclear(), parsed.PrimaryIntent, nil
	}

	candidates := make([]domain.IntentCandidate, 0, len(parsed.Intents))
	for _, e := range parsed.Intents {
		label := domain.IntentLabel(e.Intent)
		if !domain.AllIntents[label] {
			continue
		}
		entities := make(map[string]*domain.Entity, len(e.Entities))
		for k, v := range e.Entities {
			entities[k] = &domain.Entity{Type: domain.EntityType(k), RawValue: v, NormalizedValue: v}
		}
		candidates = append(candidates, domain.IntentCandidate{
			Intent:     label,
			Confidence: e.Confidence,
			Entities:   entities,
		})
	}
	if len(candidates) == 0 {
		candidates = append(candidates, domain.IntentCandidate{Intent: primary, Confidence: 0.6})
	}

	return domain.ClassifiedIntent{
		PrimaryIntent:         primary,
		Intents:               candidates,
		ClassificationMethod:  domain.MethodLLM,
		RequiresClarification: parsed.RequiresClarification,
		ClarificationReason:   parsed.ClarificationReason,
	}, "", nil
}

// extractJSON trims any leading/trailing prose a model adds despite
// instructions, keeping only the outermost JSON object.
func extractJSON(s string) string {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

func fallbackUnclear() domain.ClassifiedIntent {
	return domain.ClassifiedIntent{
		PrimaryIntent:        domain.IntentUnclear,
		Intents:              []domain.IntentCandidate{{Intent: domain.IntentUnclear, Confidence: 0.3}},
		ClassificationMethod: domain.MethodFallback,
	}
}
