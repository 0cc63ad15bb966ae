package agents

import (
	"context"
	"fmt"

	"github.com/shaonidutta/converge-ai/domain"
)

// PaymentCollaborator owns payment-gateway status lookups.
type PaymentCollaborator interface {
	InvestigatePaymentIssue(ctx context.Context, userID int64, bookingID, paymentType string) (ticketID string, err error)
}

type PaymentHandler struct {
	collaborator PaymentCollaborator
}

func NewPaymentHandler(collaborator PaymentCollaborator) *PaymentHandler {
	return &PaymentHandler{collaborator: collaborator}
}

func (h *PaymentHandler) Execute(ctx context.Context, req Request) (Result, error) {
	bookingID := req.Entities[string(domain.EntityBookingID)]
	paymentType := req.Entities[string(domain.EntityPaymentType)]

	ticketID, err := h.collaborator.InvestigatePaymentIssue(ctx, req.UserID, bookingID, paymentType)
	if err != nil {
		return Result{}, fmt.Errorf("payment handler: investigate: %w: %w", domain.ErrCollaboratorUnavailable, err)
	}
	return Result{
		ResponseText: fmt.Sprintf("I've raised this with our payments team (ticket %s). They'll reach out about your %s payment.", ticketID, paymentType),
		ActionTaken:  domain.ActionNone,
		Metadata:     map[string]interface{}{"ticket_id": ticketID},
	}, nil
}

var _ Handler = (*PaymentHandler)(nil)
