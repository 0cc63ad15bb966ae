package coordinator

import (
	"context"

	"github.com/shaonidutta/converge-ai/domain"
)

// HistoryStore is the collaborator that owns conversation persistence;
// the core never writes message rows itself (§1 Non-goals).
type HistoryStore interface {
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)
	SaveMessage(ctx context.Context, sessionID string, msg domain.Message) error
}

// AuditSink records every action taken for compliance, per
// SUPPLEMENTED FEATURES' audit trail hook. Data ownership stays with
// the collaborator; the coordinator only describes the call site and
// payload shape.
type AuditSink interface {
	RecordAction(ctx context.Context, sessionID string, userID int64, intent domain.IntentLabel, action domain.ActionVerb, metadata map[string]interface{})
}

// NoOpAuditSink is used when no collaborator audit sink is configured.
type NoOpAuditSink struct{}

func (NoOpAuditSink) RecordAction(context.Context, string, int64, domain.IntentLabel, domain.ActionVerb, map[string]interface{}) {
}

var (
	_ AuditSink = NoOpAuditSink{}
)
