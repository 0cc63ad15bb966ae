package slotfill

import "github.com/shaonidutta/converge-ai/domain"

// actionForIntent maps a slot-filled intent onto the closed ActionVerb
// set a pending_action carries (§9 Open Question, decided in
// domain.ActionVerb).
var actionForIntent = map[domain.IntentLabel]domain.ActionVerb{
	domain.IntentBookingManagement: domain.ActionBook,
	domain.IntentCancellationReq:   domain.ActionCancel,
	domain.IntentComplaint:        domain.ActionFileComplaint,
	domain.IntentRefundRequest:    domain.ActionRequestRefund,
	domain.IntentPricingInquiry:   domain.ActionQuotePrice,
	domain.IntentAvailabilityCheck: domain.ActionCheckAvailability,
}

func actionVerbFor(intent domain.IntentLabel) domain.ActionVerb {
	if v, ok := actionForIntent[intent]; ok {
		return v
	}
	return domain.ActionNone
}

// neededEntitiesForIntent is the starting needed_entities list the
// coordinator seeds a new dialog with, per the slot requirements
// implied by each intent in §6's handler table.
var neededEntitiesForIntent = map[domain.IntentLabel][]domain.EntityType{
	domain.IntentBookingManagement: {domain.EntityServiceType, domain.EntityDate, domain.EntityTime, domain.EntityLocation},
	domain.IntentCancellationReq:   {domain.EntityBookingID},
	domain.IntentComplaint:        {domain.EntityBookingID, domain.EntityIssueType},
	domain.IntentRefundRequest:    {domain.EntityBookingID},
	domain.IntentPricingInquiry:   {domain.EntityServiceType},
	domain.IntentAvailabilityCheck: {domain.EntityServiceType, domain.EntityDate},
}

// NeededEntitiesFor returns the starting needed_entities list for
// intent, excluding any type already present in collected.
func NeededEntitiesFor(intent domain.IntentLabel, collected map[string]string) []domain.EntityType {
	base := neededEntitiesForIntent[intent]
	if len(base) == 0 {
		return nil
	}
	out := make([]domain.EntityType, 0, len(base))
	for _, t := range base {
		if _, have := collected[string(t)]; !have {
			out = append(out, t)
		}
	}
	return out
}
