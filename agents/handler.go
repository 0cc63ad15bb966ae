// Package agents implements the closed set of per-intent handlers
// (§6's intent→handler mapping table) the coordinator dispatches to
// once a pending_action is ready or a non-slot-filled intent is
// classified.
package agents

import (
	"context"

	"github.com/shaonidutta/converge-ai/domain"
)

// Request is what the coordinator hands a Handler for one turn.
type Request struct {
	UserID    int64
	SessionID string
	Intent    domain.IntentLabel
	Verb      domain.ActionVerb
	Entities  map[string]string // collected_entities, REPLACE-semantics slot values
}

// Result is a handler's response, assembled by the coordinator into a
// domain.TurnResult.
type Result struct {
	ResponseText   string
	ActionTaken    domain.ActionVerb
	Metadata       map[string]interface{}
	GroundingScore *float64
	Sources        []map[string]interface{}
}

// Handler executes one fully slot-filled (or slot-free) intent.
type Handler interface {
	Execute(ctx context.Context, req Request) (Result, error)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, req Request) (Result, error)

func (f HandlerFunc) Execute(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}
