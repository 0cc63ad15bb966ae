package guardrail

import (
	"context"

	"github.com/shaonidutta/converge-ai/domain"
)

// Severity levels, ordered low to critical, mirrored on
// original_source's guardrail_result.Severity.
const (
	SeverityLow int = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// Context carries the per-request information a guardrail needs beyond
// the text itself.
type Context struct {
	UserID    string
	SessionID string
	Extra     map[string]interface{}
}

// Guardrail is the capability every check implements (§9 "Guardrail
// composition"): a name plus a check. Sanitize is optional and
// implemented only by checks that can repair rather than merely
// reject (PIIDetector, PIILeakageDetector).
type Guardrail interface {
	Name() string
	Check(ctx context.Context, text string, gctx Context) domain.GuardrailResult
}

// Sanitizer is implemented by guardrails that can produce a cleaned
// version of the text instead of blocking it outright.
type Sanitizer interface {
	Sanitize(ctx context.Context, text string, gctx Context) (string, error)
}
