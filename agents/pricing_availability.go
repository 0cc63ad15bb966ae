package agents

import (
	"context"
	"fmt"

	"github.com/shaonidutta/converge-ai/domain"
)

// PricingCollaborator looks up rate-card pricing for a service.
type PricingCollaborator interface {
	Quote(ctx context.Context, serviceType, subcategory string) (startingPrice float64, err error)
}

type PricingHandler struct {
	collaborator PricingCollaborator
}

func NewPricingHandler(collaborator PricingCollaborator) *PricingHandler {
	return &PricingHandler{collaborator: collaborator}
}

func (h *PricingHandler) Execute(ctx context.Context, req Request) (Result, error) {
	serviceType := req.Entities[string(domain.EntityServiceType)]
	subcategory := req.Entities[string(domain.EntityServiceSubcat)]
	price, err := h.collaborator.Quote(ctx, serviceType, subcategory)
	if err != nil {
		return Result{}, fmt.Errorf("pricing handler: quote: %w: %w", domain.ErrCollaboratorUnavailable, err)
	}
	return Result{
		ResponseText: fmt.Sprintf("%s starts at ₹%.0f.", serviceType, price),
		ActionTaken:  domain.ActionQuotePrice,
		Metadata:     map[string]interface{}{"starting_price": price},
	}, nil
}

// AvailabilityCollaborator checks open slots for a service on a date.
type AvailabilityCollaborator interface {
	CheckAvailability(ctx context.Context, serviceType, date string) (available bool, slots []string, err error)
}

type AvailabilityHandler struct {
	collaborator AvailabilityCollaborator
}

func NewAvailabilityHandler(collaborator AvailabilityCollaborator) *AvailabilityHandler {
	return &AvailabilityHandler{collaborator: collaborator}
}

func (h *AvailabilityHandler) Execute(ctx context.Context, req Request) (Result, error) {
	serviceType := req.Entities[string(domain.EntityServiceType)]
	date := req.Entities[string(domain.EntityDate)]
	available, slots, err := h.collaborator.CheckAvailability(ctx, serviceType, date)
	if err != nil {
		return Result{}, fmt.Errorf("availability handler: check: %w: %w", domain.ErrCollaboratorUnavailable, err)
	}
	if !available {
		return Result{
			ResponseText: fmt.Sprintf("Sorry, %s isn't available on %s. Would you like to try another date?", serviceType, date),
			ActionTaken:  domain.ActionCheckAvailability,
		}, nil
	}
	return Result{
		ResponseText: fmt.Sprintf("%s is available on %s. Open slots: %v.", serviceType, date, slots),
		ActionTaken:  domain.ActionCheckAvailability,
		Metadata:     map[string]interface{}{"slots": slots},
	}, nil
}

var (
	_ Handler = (*PricingHandler)(nil)
	_ Handler = (*AvailabilityHandler)(nil)
)
