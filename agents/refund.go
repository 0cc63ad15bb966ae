package agents

import (
	"context"
	"fmt"

	"github.com/shaonidutta/converge-ai/domain"
)

// RefundCollaborator owns refund persistence/payment-gateway calls.
type RefundCollaborator interface {
	RequestRefund(ctx context.Context, userID int64, bookingID string) (refundID string, err error)
}

type RefundHandler struct {
	collaborator RefundCollaborator
}

func NewRefundHandler(collaborator RefundCollaborator) *RefundHandler {
	return &RefundHandler{collaborator: collaborator}
}

func (h *RefundHandler) Execute(ctx context.Context, req Request) (Result, error) {
	bookingID := req.Entities[string(domain.EntityBookingID)]
	refundID, err := h.collaborator.RequestRefund(ctx, req.UserID, bookingID)
	if err != nil {
		return Result{}, fmt.Errorf("refund handler: request refund: %w: %w", domain.ErrCollaboratorUnavailable, err)
	}
	return Result{
		ResponseText: fmt.Sprintf("Your refund request (%s) for booking %s has been submitted. It typically takes 5-7 business days.", refundID, bookingID),
		ActionTaken:  domain.ActionRequestRefund,
		Metadata:     map[string]interface{}{"refund_id": refundID, "booking_id": bookingID},
	}, nil
}

var _ Handler = (*RefundHandler)(nil)
