package guardrail

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shaonidutta/converge-ai/domain"
)

// InputValidator rejects null/whitespace-only input and input outside
// [MinLength, MaxLength], or with invalid UTF-8. Grounded on
// original_source's InputValidator.
type InputValidator struct {
	MinLength int
	MaxLength int
}

func NewInputValidator(minLength, maxLength int) *InputValidator {
	if minLength <= 0 {
		minLength = 1
	}
	if maxLength <= 0 {
		maxLength = 10000
	}
	return &InputValidator{MinLength: minLength, MaxLength: maxLength}
}

func (v *InputValidator) Name() string { return "input_validator" }

func (v *InputValidator) Check(_ context.Context, text string, _ Context) domain.GuardrailResult {
	if strings.TrimSpace(text) == "" {
		return domain.GuardrailResult{
			GuardrailName: v.Name(),
			Action:        domain.ActionBlock,
			Passed:        false,
			Severity:      SeverityMedium,
			Message:       "Your message appears to be empty. Could you try again?",
			Details:       map[string]interface{}{"reason": "empty_input"},
		}
	}

	if len(text) < v.MinLength {
		return domain.GuardrailResult{
			GuardrailName: v.Name(),
			Action:        domain.ActionBlock,
			Passed:        false,
			Severity:      SeverityLow,
			Message:       "Your message is too short. Could you add a bit more detail?",
			Details:       map[string]interface{}{"reason": "too_short", "length": len(text)},
		}
	}

	if len(text) > v.MaxLength {
		return domain.GuardrailResult{
			GuardrailName: v.Name(),
			Action:        domain.ActionBlock,
			Passed:        false,
			Severity:      SeverityMedium,
			Message:       "Your message is too long. Could you shorten it?",
			Details:       map[string]interface{}{"reason": "too_long", "length": len(text)},
		}
	}

	if !utf8.ValidString(text) {
		return domain.GuardrailResult{
			GuardrailName: v.Name(),
			Action:        domain.ActionBlock,
			Passed:        false,
			Severity:      SeverityMedium,
			Message:       "Your message contains characters we couldn't process.",
			Details:       map[string]interface{}{"reason": "invalid_encoding"},
		}
	}

	return domain.GuardrailResult{
		GuardrailName: v.Name(),
		Action:        domain.ActionAllow,
		Passed:        true,
		Severity:      SeverityLow,
		Message:       "Input validation passed",
		Details:       map[string]interface{}{"length": len(text)},
	}
}

var _ Guardrail = (*InputValidator)(nil)
