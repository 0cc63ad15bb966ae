// Package coordinator implements the Coordinator (Router), §4.13: the
// top-level per-turn pipeline tying guardrails, dialog state, intent
// classification, slot-filling and the agent handlers together.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/shaonidutta/converge-ai/agents"
	"github.com/shaonidutta/converge-ai/dialog"
	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/guardrail"
	"github.com/shaonidutta/converge-ai/intent"
	"github.com/shaonidutta/converge-ai/logger"
	"github.com/shaonidutta/converge-ai/slotfill"
)

const fallbackTroubleText = "I'm having trouble with that right now. Could you try again in a moment?"

// collaboratorUnavailableText is §7's CollaboratorUnavailable row:
// distinct from the generic fallback because the request itself
// succeeded up to the point the handler's collaborator call failed.
const collaboratorUnavailableText = "Your request was received but we couldn't complete it right now."

// handlerFallbackText picks the §7 user-visible text for a failed
// handler call, branching on the wrapped error kind rather than
// collapsing every failure into the same generic message.
func handlerFallbackText(err error) string {
	if errors.Is(err, domain.ErrCollaboratorUnavailable) {
		return collaboratorUnavailableText
	}
	return fallbackTroubleText
}

// DefaultTurnDeadline is §5's per-turn cancellation-safe deadline.
const DefaultTurnDeadline = 30 * time.Second

// DefaultHistoryLimit is §6's CONVERSATION_HISTORY_LIMIT default.
const DefaultHistoryLimit = 10

// Coordinator is the per-turn driver.
type Coordinator struct {
	Guardrails    *guardrail.Manager
	DialogMgr     *dialog.Manager
	Classifier    *intent.Classifier
	Orchestrator  *slotfill.Orchestrator
	Handlers      map[domain.IntentLabel]agents.Handler
	History       HistoryStore
	Audit         AuditSink
	HistoryLimit  int
	TurnDeadline  time.Duration
	logger        logger.Logger
	sessions      sessionLocks
}

func New(guardrails *guardrail.Manager, dialogMgr *dialog.Manager, classifier *intent.Classifier,
	orchestrator *slotfill.Orchestrator, handlers map[domain.IntentLabel]agents.Handler,
	history HistoryStore, audit AuditSink, log logger.Logger) *Coordinator {
	if audit == nil {
		audit = NoOpAuditSink{}
	}
	return &Coordinator{
		Guardrails:   guardrails,
		DialogMgr:    dialogMgr,
		Classifier:   classifier,
		Orchestrator: orchestrator,
		Handlers:     handlers,
		History:      history,
		Audit:        audit,
		HistoryLimit: DefaultHistoryLimit,
		TurnDeadline: DefaultTurnDeadline,
		logger:       logger.Component(log, "coordinator"),
	}
}

// HandleTurn runs the full §4.13 pipeline for one incoming utterance.
func (c *Coordinator) HandleTurn(ctx context.Context, userID int64, sessionID, text, channel string) domain.TurnResult {
	if sessionID == "" {
		sessionID = dialog.NewSessionID()
	}

	ctx, cancel := context.WithTimeout(ctx, c.TurnDeadline)
	defer cancel()

	unlock := c.sessions.lock(sessionID)
	defer unlock()

	tracer := otel.Tracer("converge-ai.coordinator")
	ctx, span := tracer.Start(ctx, "Coordinator.HandleTurn",
		trace.WithAttributes(attribute.String("session_id", sessionID), attribute.Int64("user_id", userID)))
	defer span.End()

	start := time.Now()
	userMsg := domain.Message{ID: uuid.New().String(), Role: "user", Text: text, CreatedAt: start}

	result, err := c.runPipeline(ctx, userID, sessionID, channel, userMsg)
	if err != nil {
		c.logger.ErrorWithContext(ctx, "turn pipeline failed", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		result = c.fallbackResult(sessionID, userMsg)
	}

	result.ResponseTimeMS = time.Since(start).Milliseconds()
	return result
}

func (c *Coordinator) runPipeline(ctx context.Context, userID int64, sessionID, channel string, userMsg domain.Message) (result domain.TurnResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("coordinator: handler panic: %v", r)
		}
	}()

	gctx := guardrail.Context{UserID: strconv.FormatInt(userID, 10), SessionID: sessionID, Extra: map[string]interface{}{"channel": channel}}

	inputReport := c.Guardrails.CheckInput(ctx, userMsg.Text, gctx)
	if inputReport.IsBlocked {
		assistantMsg := domain.Message{ID: uuid.New().String(), Role: "assistant", Text: inputReport.FinalText, CreatedAt: time.Now()}
		c.persist(ctx, sessionID, userMsg, assistantMsg)
		return domain.TurnResult{
			SessionID: sessionID, UserMessage: userMsg, AssistantMessage: assistantMsg,
			Intent: domain.IntentOutOfScope, ActionTaken: domain.ActionNone,
		}, nil
	}
	text := inputReport.FinalText

	state, stateErr := c.DialogMgr.GetActiveState(ctx, sessionID)
	if stateErr != nil {
		return domain.TurnResult{}, fmt.Errorf("coordinator: load dialog state: %w", stateErr)
	}

	history := c.loadHistory(ctx, sessionID)

	followUp := dialog.IsFollowUpResponse(text, state)

	classification, classifyErr := c.classify(ctx, text, history, state, followUp)
	if classifyErr != nil {
		return domain.TurnResult{}, fmt.Errorf("coordinator: classify: %w", classifyErr)
	}

	if !followUp.IsFollowUp && state != nil && state.Active(time.Now()) && classification.PrimaryIntent != state.Intent {
		if clearErr := c.DialogMgr.ClearState(ctx, sessionID); clearErr != nil {
			c.logger.WarnWithContext(ctx, "failed to clear stale dialog state", map[string]interface{}{"session_id": sessionID, "error": clearErr.Error()})
		}
		state = nil
	}

	responseText, actionTaken, method, groundingScore, sources, agentUsed, metadata, dispatchErr := c.dispatch(ctx, userID, sessionID, text, state, classification)
	if dispatchErr != nil {
		return domain.TurnResult{}, dispatchErr
	}

	outputReport := c.Guardrails.CheckOutput(ctx, responseText, gctx)
	finalText := outputReport.FinalText
	if outputReport.IsBlocked {
		finalText = fallbackTroubleText
	}

	assistantMsg := domain.Message{
		ID: uuid.New().String(), Role: "assistant", Text: finalText,
		Intent: classification.PrimaryIntent, Confidence: topConfidence(classification), CreatedAt: time.Now(),
	}
	userMsg.Intent = classification.PrimaryIntent
	userMsg.Confidence = topConfidence(classification)

	c.persist(ctx, sessionID, userMsg, assistantMsg)
	c.Audit.RecordAction(ctx, sessionID, userID, classification.PrimaryIntent, actionTaken, metadata)

	return domain.TurnResult{
		SessionID:            sessionID,
		UserMessage:          userMsg,
		AssistantMessage:     assistantMsg,
		Intent:               classification.PrimaryIntent,
		Confidence:           topConfidence(classification),
		AgentUsed:            agentUsed,
		ActionTaken:          actionTaken,
		ClassificationMethod: method,
		GroundingScore:       groundingScore,
		Sources:              sources,
		IsFollowUp:           followUp.IsFollowUp,
		Metadata:             metadata,
	}, nil
}

func (c *Coordinator) classify(ctx context.Context, text string, history []intent.HistoryTurn, state *domain.DialogState, followUp dialog.FollowUpResult) (domain.ClassifiedIntent, error) {
	if followUp.IsFollowUp && state != nil {
		return domain.ClassifiedIntent{
			PrimaryIntent: state.Intent,
			Intents:       []domain.IntentCandidate{{Intent: state.Intent, Confidence: followUp.Confidence}},
			ClassificationMethod: domain.MethodPattern,
			ContextSummary:       followUp.Reason,
		}, nil
	}
	return c.Classifier.Classify(ctx, text, history, summaryOf(state))
}

// dispatch decides between the slot-filling orchestrator and the
// static handler table, per §4.13 step 6.
func (c *Coordinator) dispatch(ctx context.Context, userID int64, sessionID, text string, state *domain.DialogState, classification domain.ClassifiedIntent) (
	responseText string, actionTaken domain.ActionVerb, method domain.ClassificationMethod, groundingScore *float64,
	sources []map[string]interface{}, agentUsed string, metadata map[string]interface{}, err error) {

	method = classification.ClassificationMethod

	if state != nil && state.Active(time.Now()) && (state.State == domain.StateCollectingInfo || state.State == domain.StateAwaitingConfirmation) {
		return c.dispatchSlotFill(ctx, userID, sessionID, text, state)
	}

	if state == nil {
		needed := slotfill.NeededEntitiesFor(classification.PrimaryIntent, nil)
		if len(needed) > 0 {
			collected := map[string]string{}
			if cand := firstCandidate(classification); cand != nil {
				for k, e := range cand.Entities {
					collected[k] = e.NormalizedValue
				}
			}
			needed = slotfill.NeededEntitiesFor(classification.PrimaryIntent, collected)
			if _, startErr := c.DialogMgr.StartDialog(ctx, sessionID, userID, classification.PrimaryIntent, needed, collected); startErr != nil {
				return "", domain.ActionNone, method, nil, nil, "", nil, fmt.Errorf("coordinator: start dialog: %w", startErr)
			}
			return c.dispatchSlotFill(ctx, userID, sessionID, text, nil)
		}
	}

	handler, ok := c.Handlers[classification.PrimaryIntent]
	if !ok {
		handler = agents.DeclineHandler{}
	}

	req := agents.Request{UserID: userID, SessionID: sessionID, Intent: classification.PrimaryIntent, Entities: map[string]string{}}
	if cand := firstCandidate(classification); cand != nil {
		for k, e := range cand.Entities {
			req.Entities[k] = e.NormalizedValue
		}
	}

	handlerResult, handlerErr := handler.Execute(ctx, req)
	if handlerErr != nil {
		c.logger.ErrorWithContext(ctx, "handler failed", map[string]interface{}{"intent": classification.PrimaryIntent, "error": handlerErr.Error()})
		return handlerFallbackText(handlerErr), domain.ActionNone, method, nil, nil, string(classification.PrimaryIntent), nil, nil
	}

	return handlerResult.ResponseText, handlerResult.ActionTaken, method, handlerResult.GroundingScore, handlerResult.Sources, string(classification.PrimaryIntent), handlerResult.Metadata, nil
}

func (c *Coordinator) dispatchSlotFill(ctx context.Context, userID int64, sessionID, text string, state *domain.DialogState) (
	string, domain.ActionVerb, domain.ClassificationMethod, *float64, []map[string]interface{}, string, map[string]interface{}, error) {

	turn, err := c.Orchestrator.Step(ctx, sessionID, userID, text)
	if err != nil {
		return "", domain.ActionNone, domain.MethodPattern, nil, nil, "slotfill", nil, fmt.Errorf("coordinator: slot fill step: %w", err)
	}

	if !turn.Done {
		return turn.Question, domain.ActionNone, domain.MethodPattern, nil, nil, "slotfill", nil, nil
	}

	// needed_entities emptied: dispatch to the specialized handler with
	// the now-complete collected_entities.
	handler, ok := c.Handlers[turn.State.Intent]
	if !ok {
		return fallbackTroubleText, domain.ActionNone, domain.MethodPattern, nil, nil, "slotfill", nil, nil
	}

	entities := map[string]string{}
	for k, v := range turn.State.CollectedEntities {
		entities[k] = v
	}

	req := agents.Request{UserID: userID, SessionID: sessionID, Intent: turn.State.Intent, Entities: entities}
	handlerResult, handlerErr := handler.Execute(ctx, req)
	if handlerErr != nil {
		c.logger.ErrorWithContext(ctx, "slot-filled handler failed", map[string]interface{}{"intent": turn.State.Intent, "error": handlerErr.Error()})
		return handlerFallbackText(handlerErr), domain.ActionNone, domain.MethodPattern, nil, nil, string(turn.State.Intent), nil, nil
	}

	if clearErr := c.DialogMgr.ClearState(ctx, sessionID); clearErr != nil {
		c.logger.WarnWithContext(ctx, "failed to clear completed dialog state", map[string]interface{}{"session_id": sessionID, "error": clearErr.Error()})
	}

	return handlerResult.ResponseText, handlerResult.ActionTaken, domain.MethodPattern, handlerResult.GroundingScore, handlerResult.Sources, string(turn.State.Intent), handlerResult.Metadata, nil
}

func (c *Coordinator) loadHistory(ctx context.Context, sessionID string) []intent.HistoryTurn {
	if c.History == nil {
		return nil
	}
	msgs, err := c.History.RecentTurns(ctx, sessionID, c.HistoryLimit)
	if err != nil {
		c.logger.WarnWithContext(ctx, "failed to load conversation history", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		return nil
	}
	turns := make([]intent.HistoryTurn, len(msgs))
	for i, m := range msgs {
		turns[i] = intent.HistoryTurn{Role: m.Role, Text: m.Text}
	}
	return turns
}

func (c *Coordinator) persist(ctx context.Context, sessionID string, userMsg, assistantMsg domain.Message) {
	if c.History == nil {
		return
	}
	if err := c.History.SaveMessage(ctx, sessionID, userMsg); err != nil {
		c.logger.WarnWithContext(ctx, "failed to persist user message", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
	}
	if err := c.History.SaveMessage(ctx, sessionID, assistantMsg); err != nil {
		c.logger.WarnWithContext(ctx, "failed to persist assistant message", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
	}
}

func (c *Coordinator) fallbackResult(sessionID string, userMsg domain.Message) domain.TurnResult {
	assistantMsg := domain.Message{ID: uuid.New().String(), Role: "assistant", Text: fallbackTroubleText, CreatedAt: time.Now()}
	return domain.TurnResult{
		SessionID: sessionID, UserMessage: userMsg, AssistantMessage: assistantMsg,
		Intent: domain.IntentUnclear, ActionTaken: domain.ActionNone,
	}
}

func summaryOf(state *domain.DialogState) *intent.DialogSummary {
	if state == nil {
		return nil
	}
	needed := make([]string, len(state.NeededEntities))
	for i, t := range state.NeededEntities {
		needed[i] = string(t)
	}
	return &intent.DialogSummary{
		State:    string(state.State),
		Intent:   string(state.Intent),
		Collected: state.CollectedEntities,
		Needed:    needed,
	}
}

func firstCandidate(c domain.ClassifiedIntent) *domain.IntentCandidate {
	if len(c.Intents) == 0 {
		return nil
	}
	return &c.Intents[0]
}

func topConfidence(c domain.ClassifiedIntent) float64 {
	if cand := firstCandidate(c); cand != nil {
		return cand.Confidence
	}
	return 0
}
