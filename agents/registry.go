package agents

import "github.com/shaonidutta/converge-ai/domain"

// Collaborators bundles every external seam the default handler map
// needs, so callers wire one struct instead of N constructor args.
type Collaborators struct {
	Booking      BookingCollaborator
	Complaint    ComplaintCollaborator
	Refund       RefundCollaborator
	Pricing      PricingCollaborator
	Availability AvailabilityCollaborator
	Payment      PaymentCollaborator
	Catalog      CatalogBrowser
	Policy       PolicyAnswerer
	Queue        *PriorityQueue
}

// DefaultHandlerMap builds the static intent→handler table §6
// specifies. Adding a new IntentLabel means adding its entry here.
func DefaultHandlerMap(c Collaborators) map[domain.IntentLabel]Handler {
	return map[domain.IntentLabel]Handler{
		domain.IntentBookingManagement:  NewBookingHandler(c.Booking),
		domain.IntentCancellationReq:    NewCancellationHandler(c.Booking),
		domain.IntentComplaint:          NewComplaintHandler(c.Complaint, c.Queue),
		domain.IntentRefundRequest:      NewRefundHandler(c.Refund),
		domain.IntentPricingInquiry:     NewPricingHandler(c.Pricing),
		domain.IntentAvailabilityCheck:  NewAvailabilityHandler(c.Availability),
		domain.IntentPaymentIssue:       NewPaymentHandler(c.Payment),
		domain.IntentPolicyInquiry:      NewPolicyHandler(c.Policy),
		domain.IntentServiceInquiry:     NewBrowseHandler(c.Catalog),
		domain.IntentServiceDiscovery:   NewBrowseHandler(c.Catalog),
		domain.IntentGreeting:           GreetingHandler{},
		domain.IntentOutOfScope:         DeclineHandler{},
		domain.IntentUnclear:            DeclineHandler{},
	}
}
