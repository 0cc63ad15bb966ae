package agents

import (
	"context"
	"fmt"

	"github.com/shaonidutta/converge-ai/domain"
)

// PolicyAnswerer is the Policy RAG Engine's contract, satisfied by
// *rag.Engine. Declared locally to avoid agents importing rag for a
// single method.
type PolicyAnswerer interface {
	Answer(ctx context.Context, query string) (domain.PolicyAnswer, error)
}

type PolicyHandler struct {
	rag PolicyAnswerer
}

func NewPolicyHandler(rag PolicyAnswerer) *PolicyHandler {
	return &PolicyHandler{rag: rag}
}

func (h *PolicyHandler) Execute(ctx context.Context, req Request) (Result, error) {
	query := req.Entities[string(domain.EntityQuery)]
	if query == "" {
		return Result{}, fmt.Errorf("policy handler: no query entity present")
	}

	answer, err := h.rag.Answer(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("policy handler: answer: %w", err)
	}

	return Result{
		ResponseText:   answer.Response,
		ActionTaken:    domain.ActionAnswerPolicy,
		GroundingScore: &answer.GroundingScore,
		Sources:        answer.Sources,
		Metadata:       map[string]interface{}{"confidence": answer.Confidence},
	}, nil
}

var _ Handler = (*PolicyHandler)(nil)
