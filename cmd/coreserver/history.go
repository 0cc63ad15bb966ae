package main

import (
	"context"
	"sync"

	"github.com/shaonidutta/converge-ai/domain"
)

// demoHistory is an in-process stand-in for the chat-history
// collaborator (§1 Non-goals: the core never persists transcripts).
type demoHistory struct {
	mu   sync.Mutex
	byID map[string][]domain.Message
}

func newDemoHistory() *demoHistory { return &demoHistory{byID: map[string][]domain.Message{}} }

func (h *demoHistory) RecentTurns(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := h.byID[sessionID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (h *demoHistory) SaveMessage(ctx context.Context, sessionID string, msg domain.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byID[sessionID] = append(h.byID[sessionID], msg)
	return nil
}

type demoAudit struct{}

func (demoAudit) RecordAction(ctx context.Context, sessionID string, userID int64, in domain.IntentLabel, action domain.ActionVerb, metadata map[string]interface{}) {
}
