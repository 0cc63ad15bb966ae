package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaonidutta/converge-ai/agents"
	"github.com/shaonidutta/converge-ai/dialog"
	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/entity"
	"github.com/shaonidutta/converge-ai/guardrail"
	"github.com/shaonidutta/converge-ai/intent"
	"github.com/shaonidutta/converge-ai/logger"
	"github.com/shaonidutta/converge-ai/question"
	"github.com/shaonidutta/converge-ai/slotfill"
)

type fakeHistory struct {
	mu   sync.Mutex
	msgs map[string][]domain.Message
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{msgs: map[string][]domain.Message{}}
}

func (f *fakeHistory) RecentTurns(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.msgs[sessionID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func (f *fakeHistory) SaveMessage(ctx context.Context, sessionID string, msg domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs[sessionID] = append(f.msgs[sessionID], msg)
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	actions []domain.ActionVerb
}

func (f *fakeAudit) RecordAction(ctx context.Context, sessionID string, userID int64, in domain.IntentLabel, action domain.ActionVerb, metadata map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
}

type fakeBookingCollaborator struct{}

func (fakeBookingCollaborator) CreateBooking(ctx context.Context, userID int64, serviceType, subcategory, date, timeStr, pincode string) (string, error) {
	return "BKG999", nil
}
func (fakeBookingCollaborator) CancelBooking(ctx context.Context, userID int64, bookingID string) error {
	return nil
}

type fakeAddresses struct{}

func (fakeAddresses) DefaultPincode(ctx context.Context, userID int64) (string, bool) {
	return "", false
}

func newTestCoordinator(t *testing.T) (*Coordinator, *fakeHistory, *fakeAudit) {
	t.Helper()
	log := logger.NoOpLogger{}

	guardrails := guardrail.NewManager(guardrail.NewCache(time.Minute), log)
	dialogMgr := dialog.NewManager(dialog.NewMemoryStore(), 24*time.Hour, log)
	classifier := intent.NewClassifier(nil, log)

	extractor := entity.NewExtractor(entity.DefaultCatalog(), nil, "", log)
	validator := entity.NewValidator(entity.DefaultCatalog())
	questions := question.NewGenerator()
	orchestrator := slotfill.NewOrchestrator(extractor, validator, questions, dialogMgr, fakeAddresses{}, entity.DefaultCatalog(), log)

	handlers := agents.DefaultHandlerMap(agents.Collaborators{
		Booking: fakeBookingCollaborator{},
		Queue:   agents.NewPriorityQueue(),
	})

	history := newFakeHistory()
	audit := &fakeAudit{}

	c := New(guardrails, dialogMgr, classifier, orchestrator, handlers, history, audit, log)
	return c, history, audit
}

type fakeFailingPayment struct{}

func (fakeFailingPayment) InvestigatePaymentIssue(ctx context.Context, userID int64, bookingID, paymentType string) (string, error) {
	return "", errors.New("payments service unreachable")
}

func TestHandleTurn_CollaboratorFailureReturnsDistinctFallbackText(t *testing.T) {
	log := logger.NoOpLogger{}

	guardrails := guardrail.NewManager(guardrail.NewCache(time.Minute), log)
	dialogMgr := dialog.NewManager(dialog.NewMemoryStore(), 24*time.Hour, log)
	classifier := intent.NewClassifier(nil, log)

	extractor := entity.NewExtractor(entity.DefaultCatalog(), nil, "", log)
	validator := entity.NewValidator(entity.DefaultCatalog())
	questions := question.NewGenerator()
	orchestrator := slotfill.NewOrchestrator(extractor, validator, questions, dialogMgr, fakeAddresses{}, entity.DefaultCatalog(), log)

	handlers := agents.DefaultHandlerMap(agents.Collaborators{
		Payment: fakeFailingPayment{},
		Queue:   agents.NewPriorityQueue(),
	})

	c := New(guardrails, dialogMgr, classifier, orchestrator, handlers, newFakeHistory(), &fakeAudit{}, log)

	result := c.HandleTurn(context.Background(), 1, "sess-collab-fail", "my payment failed on this order", "web")

	assert.Equal(t, collaboratorUnavailableText, result.AssistantMessage.Text)
}

func TestHandleTurn_GreetingReturnsCannedResponseAndPersistsHistory(t *testing.T) {
	c, history, audit := newTestCoordinator(t)

	result := c.HandleTurn(context.Background(), 1, "sess1", "hello", "web")

	assert.Equal(t, domain.IntentGreeting, result.Intent)
	assert.NotEmpty(t, result.AssistantMessage.Text)
	msgs, _ := history.RecentTurns(context.Background(), "sess1", 10)
	assert.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "assistant", msgs[1].Role)
	_ = audit
}

func TestHandleTurn_GeneratesSessionIDWhenEmpty(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	result := c.HandleTurn(context.Background(), 1, "", "hello", "web")
	assert.NotEmpty(t, result.SessionID)
}

func TestHandleTurn_StartsSlotFillingForBookingIntent(t *testing.T) {
	c, _, _ := newTestCoordinator(t)

	result := c.HandleTurn(context.Background(), 1, "sess2", "I want to book a plumber", "web")

	assert.Equal(t, domain.ActionNone, result.ActionTaken)
	assert.NotEmpty(t, result.AssistantMessage.Text)

	state, err := c.DialogMgr.GetActiveState(context.Background(), "sess2")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, domain.StateCollectingInfo, state.State)
}

func TestHandleTurn_UnknownIntentWithoutLLMTierFallsBackToDecline(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	result := c.HandleTurn(context.Background(), 1, "sess3", "asdkjaslkdjalksjd", "web")
	assert.NotEmpty(t, result.AssistantMessage.Text)
}

func TestHandleTurn_SetsResponseTimeAndSessionOnResult(t *testing.T) {
	c, _, _ := newTestCoordinator(t)
	result := c.HandleTurn(context.Background(), 42, "sess4", "hello", "web")
	assert.Equal(t, "sess4", result.SessionID)
	assert.GreaterOrEqual(t, result.ResponseTimeMS, int64(0))
}
