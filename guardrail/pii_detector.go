package guardrail

import (
	"context"

	"github.com/shaonidutta/converge-ai/domain"
)

// PIIDetector flags PII in user input, masking it when MaskPII is true
// and blocking otherwise. Grounded on original_source's PIIDetector.
type PIIDetector struct {
	Types   []PIIType
	MaskPII bool
}

func NewPIIDetector(mask bool) *PIIDetector {
	return &PIIDetector{Types: AllPIITypes, MaskPII: mask}
}

func (d *PIIDetector) Name() string { return "pii_detector" }

func (d *PIIDetector) Check(ctx context.Context, text string, gctx Context) domain.GuardrailResult {
	return piiCheck(d.Name(), text, d.Types, d.MaskPII, SeverityMedium, SeverityHigh,
		"We noticed some personal information in your message and removed it for your safety.")
}

func (d *PIIDetector) Sanitize(_ context.Context, text string, _ Context) (string, error) {
	masked, _ := MaskPII(text, d.Types)
	return masked, nil
}

// PIILeakageDetector runs the same detection over model output, one
// severity tier higher than the input-side check since a leak here is
// the model's own mistake rather than user-supplied content.
type PIILeakageDetector struct {
	Types   []PIIType
	MaskPII bool
}

func NewPIILeakageDetector(mask bool) *PIILeakageDetector {
	return &PIILeakageDetector{Types: AllPIITypes, MaskPII: mask}
}

func (d *PIILeakageDetector) Name() string { return "pii_leakage_detector" }

func (d *PIILeakageDetector) Check(ctx context.Context, text string, gctx Context) domain.GuardrailResult {
	return piiCheck(d.Name(), text, d.Types, d.MaskPII, SeverityHigh, SeverityCritical,
		"I wasn't able to share that response safely. Let me try rephrasing.")
}

func (d *PIILeakageDetector) Sanitize(_ context.Context, text string, _ Context) (string, error) {
	masked, _ := MaskPII(text, d.Types)
	return masked, nil
}

func piiCheck(name, text string, types []PIIType, mask bool, sanitizeSeverity, blockSeverity int, blockedMessage string) domain.GuardrailResult {
	detected := DetectAllPII(text, types)
	if len(detected) == 0 {
		return domain.GuardrailResult{
			GuardrailName: name,
			Action:        domain.ActionAllow,
			Passed:        true,
			Severity:      SeverityLow,
			Message:       "No PII detected",
		}
	}

	summary := make(map[string]interface{}, len(detected))
	for t, vals := range detected {
		summary[string(t)] = len(vals)
	}

	if mask {
		maskedText, counts := MaskPII(text, types)
		countSummary := make(map[string]interface{}, len(counts))
		for t, c := range counts {
			countSummary[string(t)] = c
		}
		return domain.GuardrailResult{
			GuardrailName: name,
			Action:        domain.ActionSanitize,
			Passed:        false,
			Severity:      sanitizeSeverity,
			Message:       "PII detected and masked",
			Details:       map[string]interface{}{"pii_detected": summary, "pii_masked": countSummary},
			SanitizedText: maskedText,
		}
	}

	return domain.GuardrailResult{
		GuardrailName: name,
		Action:        domain.ActionBlock,
		Passed:        false,
		Severity:      blockSeverity,
		Message:       blockedMessage,
		Details:       map[string]interface{}{"pii_detected": summary},
	}
}

var _ Guardrail = (*PIIDetector)(nil)
var _ Sanitizer = (*PIIDetector)(nil)
var _ Guardrail = (*PIILeakageDetector)(nil)
var _ Sanitizer = (*PIILeakageDetector)(nil)
