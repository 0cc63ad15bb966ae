// Package intent implements the two-tier classifier described in §4.6:
// a fast regex/keyword pattern tier, falling back to a context-aware LLM
// tier when no pattern clears the confidence threshold.
package intent

import (
	"regexp"

	"github.com/shaonidutta/converge-ai/domain"
)

// Pattern is one curated rule: if Regexp matches, emit Intent at
// Confidence. Classify keeps every match at or above the tier threshold
// and picks the primary with PrimaryCandidate; only MatchPattern stops
// at the first match in declaration order.
type Pattern struct {
	Intent     domain.IntentLabel
	Regexp     *regexp.Regexp
	Confidence float64
}

// DefaultPatternThreshold is §4.6's "confidence ≥ pattern_threshold".
const DefaultPatternThreshold = 0.85

// DefaultPatterns is a curated seed set covering the closed intent
// enumeration's most unambiguous phrasing. Production deployments are
// expected to grow this list; it is intentionally small and readable
// rather than exhaustive, mirroring the teacher's preference for a
// short keyword table over a generated one (pkg/routing/workflow.go's
// WorkflowTriggers.Keywords).
var DefaultPatterns = []Pattern{
	{domain.IntentGreeting, regexp.MustCompile(`(?i)^\s*(hi|hello|hey|good (morning|afternoon|evening))\s*[!.]?\s*$`), 0.95},
	{domain.IntentCancellationReq, regexp.MustCompile(`(?i)\bcancel\b.*\b(booking|order|appointment)\b`), 0.9},
	{domain.IntentCancellationReq, regexp.MustCompile(`(?i)\bcancel (my|the|this) (booking|order)\b`), 0.9},
	{domain.IntentRefundRequest, regexp.MustCompile(`(?i)\b(refund|money back|reimburse)\b`), 0.88},
	{domain.IntentComplaint, regexp.MustCompile(`(?i)\b(complain|complaint|unhappy|terrible service|worst experience|very disappointed)\b`), 0.87},
	{domain.IntentPaymentIssue, regexp.MustCompile(`(?i)\b(payment (failed|declined|issue)|charged twice|double charge)\b`), 0.88},
	{domain.IntentPricingInquiry, regexp.MustCompile(`(?i)\b(how much|price|cost|quote|charges?)\b`), 0.86},
	{domain.IntentAvailabilityCheck, regexp.MustCompile(`(?i)\b(available|availability|slot|free on)\b`), 0.85},
	{domain.IntentBookingManagement, regexp.MustCompile(`(?i)\b(book|schedule|hire)\b.*\b(cleaner|plumber|electrician|service|technician|appointment)\b`), 0.88},
	{domain.IntentPolicyInquiry, regexp.MustCompile(`(?i)\b(policy|terms|cancellation policy|refund policy|warranty)\b`), 0.86},
	{domain.IntentServiceDiscovery, regexp.MustCompile(`(?i)\b(what services|which services|do you (offer|provide|have))\b`), 0.85},
	{domain.IntentServiceInquiry, regexp.MustCompile(`(?i)\btell me (more )?about\b.*\bservice\b`), 0.85},
}

// actionPriority ranks intents that ask the assistant to DO something
// above intents that merely ask for information, so a turn like "book
// AC service and know the price" (§4.6) surfaces booking_management as
// primary even though both patterns clear the threshold. Lower number
// wins; intents absent from the table fall back to confidence only.
var actionPriority = map[domain.IntentLabel]int{
	domain.IntentBookingManagement: 0,
	domain.IntentCancellationReq:   0,
	domain.IntentRefundRequest:     0,
	domain.IntentPaymentIssue:      0,
	domain.IntentComplaint:         1,
	domain.IntentPricingInquiry:    2,
	domain.IntentAvailabilityCheck: 2,
	domain.IntentPolicyInquiry:     2,
	domain.IntentServiceDiscovery:  2,
	domain.IntentServiceInquiry:    2,
	domain.IntentGreeting:          3,
}

// MatchAllPatterns returns every distinct intent whose pattern clears
// threshold against text (§4.6's multi-intent patterns, e.g. "book and
// price" emits both booking_management and pricing_inquiry), keeping
// the highest confidence seen per intent when more than one pattern for
// that intent matches.
func MatchAllPatterns(text string, patterns []Pattern, threshold float64) []domain.IntentCandidate {
	best := map[domain.IntentLabel]float64{}
	order := []domain.IntentLabel{}
	for _, p := range patterns {
		if p.Confidence < threshold {
			continue
		}
		if !p.Regexp.MatchString(text) {
			continue
		}
		if _, seen := best[p.Intent]; !seen {
			order = append(order, p.Intent)
		}
		if p.Confidence > best[p.Intent] {
			best[p.Intent] = p.Confidence
		}
	}
	candidates := make([]domain.IntentCandidate, 0, len(order))
	for _, intent := range order {
		candidates = append(candidates, domain.IntentCandidate{Intent: intent, Confidence: best[intent]})
	}
	return candidates
}

// PrimaryCandidate picks the principled primary out of a candidate
// list: the lowest actionPriority tier wins (actions before
// informational asks), ties broken by confidence, so "book AC service
// and know the price" resolves to booking_management rather than
// whichever pattern happened to be declared first.
func PrimaryCandidate(candidates []domain.IntentCandidate) domain.IntentCandidate {
	primary := candidates[0]
	for _, c := range candidates[1:] {
		pc, cc := actionPriority[primary.Intent], actionPriority[c.Intent]
		if cc < pc || (cc == pc && c.Confidence > primary.Confidence) {
			primary = c
		}
	}
	return primary
}

// MatchPattern returns the first pattern matching text at or above
// threshold, or ok=false if none does. Retained for callers that only
// need a single match; Classify uses MatchAllPatterns instead.
func MatchPattern(text string, patterns []Pattern, threshold float64) (Pattern, bool) {
	for _, p := range patterns {
		if p.Confidence < threshold {
			continue
		}
		if p.Regexp.MatchString(text) {
			return p, true
		}
	}
	return Pattern{}, false
}
