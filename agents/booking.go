package agents

import (
	"context"
	"fmt"

	"github.com/shaonidutta/converge-ai/domain"
)

// BookingCollaborator owns booking persistence.
type BookingCollaborator interface {
	CreateBooking(ctx context.Context, userID int64, serviceType, subcategory, date, timeStr, pincode string) (bookingID string, err error)
	CancelBooking(ctx context.Context, userID int64, bookingID string) error
}

type BookingHandler struct {
	collaborator BookingCollaborator
}

func NewBookingHandler(collaborator BookingCollaborator) *BookingHandler {
	return &BookingHandler{collaborator: collaborator}
}

func (h *BookingHandler) Execute(ctx context.Context, req Request) (Result, error) {
	e := req.Entities
	bookingID, err := h.collaborator.CreateBooking(ctx, req.UserID,
		e[string(domain.EntityServiceType)], e[string(domain.EntityServiceSubcat)],
		e[string(domain.EntityDate)], e[string(domain.EntityTime)], e[string(domain.EntityLocation)])
	if err != nil {
		return Result{}, fmt.Errorf("booking handler: create booking: %w: %w", domain.ErrCollaboratorUnavailable, err)
	}

	return Result{
		ResponseText: fmt.Sprintf("Your booking is confirmed (ID %s) for %s on %s at %s.", bookingID,
			e[string(domain.EntityServiceType)], e[string(domain.EntityDate)], e[string(domain.EntityTime)]),
		ActionTaken: domain.ActionBook,
		Metadata:    map[string]interface{}{"booking_id": bookingID},
	}, nil
}

type CancellationHandler struct {
	collaborator BookingCollaborator
}

func NewCancellationHandler(collaborator BookingCollaborator) *CancellationHandler {
	return &CancellationHandler{collaborator: collaborator}
}

func (h *CancellationHandler) Execute(ctx context.Context, req Request) (Result, error) {
	bookingID := req.Entities[string(domain.EntityBookingID)]
	if err := h.collaborator.CancelBooking(ctx, req.UserID, bookingID); err != nil {
		return Result{}, fmt.Errorf("cancellation handler: cancel booking: %w: %w", domain.ErrCollaboratorUnavailable, err)
	}
	return Result{
		ResponseText: fmt.Sprintf("Booking %s has been cancelled.", bookingID),
		ActionTaken:  domain.ActionCancel,
		Metadata:     map[string]interface{}{"booking_id": bookingID},
	}, nil
}

var (
	_ Handler = (*BookingHandler)(nil)
	_ Handler = (*CancellationHandler)(nil)
)
