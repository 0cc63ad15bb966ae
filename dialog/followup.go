package dialog

import (
	"regexp"
	"strings"

	"github.com/shaonidutta/converge-ai/domain"
)

var confirmTokens = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "yup": true, "confirm": true,
	"no": true, "nope": true, "cancel": true, "nah": true, "ok": true, "okay": true,
}

// actionVerbPattern covers entity.ExtractActionVerb's book/cancel/reschedule
// verbs plus schedule, refund, complain and complaint; it is kept local to
// avoid a dialog→entity import for one regex.
var actionVerbPattern = regexp.MustCompile(`(?i)\b(book|schedule|cancel|reschedule|refund|complain|complaint)\b`)

// actionVerbIntent maps each action verb to the intent it starts.
var actionVerbIntent = map[string]domain.IntentLabel{
	"book": domain.IntentBookingManagement, "schedule": domain.IntentBookingManagement,
	"reschedule": domain.IntentBookingManagement, "cancel": domain.IntentCancellationReq,
	"refund": domain.IntentRefundRequest, "complain": domain.IntentComplaint, "complaint": domain.IntentComplaint,
}

// entityPatterns give a loose shape-check for "does this short reply
// look like the kind of value we asked for" without a full extraction
// pass, per §4.9's collecting_info heuristic.
var entityPatterns = map[domain.EntityType]*regexp.Regexp{
	domain.EntityDate:          regexp.MustCompile(`(?i)\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}|today|tomorrow|mon|tue|wed|thu|fri|sat|sun`),
	domain.EntityTime:          regexp.MustCompile(`(?i)\d{1,2}(:\d{2})?\s*(am|pm)?`),
	domain.EntityLocation:      regexp.MustCompile(`\d{6}`),
	domain.EntityBookingID:     regexp.MustCompile(`(?i)ORD[A-Z0-9]{8}`),
	domain.EntityServiceSubcat: regexp.MustCompile(`(?i)^\d+$|^[a-z ]+$`),
	domain.EntityServiceType:   regexp.MustCompile(`(?i)^[a-z ]+$`),
}

// FollowUpResult is the verdict of IsFollowUpResponse.
type FollowUpResult struct {
	IsFollowUp bool
	Confidence float64
	Reason     string
}

// IsFollowUpResponse implements the four heuristics of §4.9, in order.
func IsFollowUpResponse(text string, state *domain.DialogState) FollowUpResult {
	tokens := strings.Fields(text)
	lower := strings.ToLower(text)

	if state != nil && state.State == domain.StateAwaitingConfirmation && len(tokens) < 5 && containsConfirmToken(lower) {
		return FollowUpResult{IsFollowUp: true, Confidence: 0.95, Reason: "confirmation"}
	}

	if state != nil && state.State == domain.StateCollectingInfo && len(tokens) <= 3 && len(state.NeededEntities) > 0 {
		expected := state.NeededEntities[0]
		if pattern, ok := entityPatterns[expected]; ok && pattern.MatchString(text) {
			return FollowUpResult{IsFollowUp: true, Confidence: 0.9, Reason: "matches_expected_entity_pattern"}
		}
	}

	if len(tokens) > 8 {
		return FollowUpResult{IsFollowUp: false, Confidence: 0.85, Reason: "message_too_long"}
	}
	if loc := actionVerbPattern.FindStringIndex(lower); loc != nil && loc[0] == 0 {
		if state == nil || actionVerbIntent[lower[loc[0]:loc[1]]] != state.Intent {
			return FollowUpResult{IsFollowUp: false, Confidence: 0.85, Reason: "starts_with_different_action_verb"}
		}
	}

	return FollowUpResult{IsFollowUp: false, Confidence: 0, Reason: "defer_to_classifier"}
}

func containsConfirmToken(lower string) bool {
	for _, w := range strings.Fields(lower) {
		if confirmTokens[strings.Trim(w, ".,!?")] {
			return true
		}
	}
	return false
}
