package agents

import (
	"context"

	"github.com/shaonidutta/converge-ai/domain"
)

// GreetingHandler returns the fixed friendly opener (§6: "greeting →
// canned response").
type GreetingHandler struct{}

func (GreetingHandler) Execute(ctx context.Context, req Request) (Result, error) {
	return Result{
		ResponseText: "Hi! I can help you book a service, check a booking, or answer questions about our policies. What do you need?",
		ActionTaken:  domain.ActionNone,
	}, nil
}

// DeclineHandler is the shared inline response for out_of_scope and
// unclear_intent (§6: "polite decline + suggestions").
type DeclineHandler struct{}

func (DeclineHandler) Execute(ctx context.Context, req Request) (Result, error) {
	return Result{
		ResponseText: "I'm not able to help with that directly, but I can assist with booking a service, cancellations, refunds, or answering policy questions. What would you like to do?",
		ActionTaken:  domain.ActionNone,
	}, nil
}

var (
	_ Handler = GreetingHandler{}
	_ Handler = DeclineHandler{}
)
