package guardrail

import (
	"context"

	"github.com/shaonidutta/converge-ai/domain"
)

// ToxicDetector matches text against a keyword/pattern list and blocks
// once the match count reaches Threshold. The same implementation backs
// both InputToxicDetector and OutputToxicDetector (§4.5); only the name
// and fallback message differ, same as original_source's
// ToxicContentDetector reused for input and output.
type ToxicDetector struct {
	GuardrailName string
	Threshold     int
	FallbackMsg   string
}

func NewInputToxicDetector(threshold int) *ToxicDetector {
	return &ToxicDetector{
		GuardrailName: "input_toxic_detector",
		Threshold:     normalizeThreshold(threshold),
		FallbackMsg:   "Let's keep our conversation respectful. Could you rephrase that?",
	}
}

func NewOutputToxicDetector(threshold int) *ToxicDetector {
	return &ToxicDetector{
		GuardrailName: "output_toxic_detector",
		Threshold:     normalizeThreshold(threshold),
		FallbackMsg:   "I wasn't able to generate an appropriate response. Let me try again.",
	}
}

func normalizeThreshold(t int) int {
	if t <= 0 {
		return 1
	}
	return t
}

func (d *ToxicDetector) Name() string { return d.GuardrailName }

func (d *ToxicDetector) Check(_ context.Context, text string, _ Context) domain.GuardrailResult {
	matches := 0
	for _, p := range toxicKeywordPatterns {
		matches += len(p.FindAllString(text, -1))
	}

	if matches < d.Threshold {
		return domain.GuardrailResult{
			GuardrailName: d.Name(),
			Action:        domain.ActionAllow,
			Passed:        true,
			Severity:      SeverityLow,
			Message:       "No toxic content detected",
		}
	}

	return domain.GuardrailResult{
		GuardrailName: d.Name(),
		Action:        domain.ActionBlock,
		Passed:        false,
		Severity:      SeverityCritical,
		Message:       d.FallbackMsg,
		Details:       map[string]interface{}{"toxic_matches": matches, "threshold": d.Threshold},
	}
}

var _ Guardrail = (*ToxicDetector)(nil)
