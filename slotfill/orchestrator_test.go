package slotfill

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaonidutta/converge-ai/dialog"
	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/entity"
	"github.com/shaonidutta/converge-ai/logger"
	"github.com/shaonidutta/converge-ai/question"
)

type fakeAddresses struct {
	pincode string
	ok      bool
}

func (f fakeAddresses) DefaultPincode(ctx context.Context, userID int64) (string, bool) {
	return f.pincode, f.ok
}

func newTestOrchestrator(addr AddressProvider) (*Orchestrator, *dialog.Manager) {
	catalog := entity.DefaultCatalog()
	extractor := entity.NewExtractor(catalog, nil, "", logger.NoOpLogger{})
	validator := entity.NewValidator(catalog)
	gen := question.NewGenerator()
	dialogMgr := dialog.NewManager(dialog.NewMemoryStore(), 24*time.Hour, logger.NoOpLogger{})
	return NewOrchestrator(extractor, validator, gen, dialogMgr, addr, catalog, logger.NoOpLogger{}), dialogMgr
}

func TestStep_ValidAnswerAdvancesNeededEntities(t *testing.T) {
	ctx := context.Background()
	o, dialogMgr := newTestOrchestrator(nil)

	_, err := dialogMgr.StartDialog(ctx, "sess-1", 1, domain.IntentAvailabilityCheck,
		[]domain.EntityType{domain.EntityServiceType, domain.EntityDate}, nil)
	require.NoError(t, err)

	turn, err := o.Step(ctx, "sess-1", 1, "plumbing")
	require.NoError(t, err)
	assert.False(t, turn.Done)
	assert.Contains(t, turn.Question, "date")
	assert.Equal(t, []domain.EntityType{domain.EntityDate}, turn.State.NeededEntities)
}

func TestStep_LastEntityTransitionsToAwaitingConfirmation(t *testing.T) {
	ctx := context.Background()
	o, dialogMgr := newTestOrchestrator(nil)

	_, err := dialogMgr.StartDialog(ctx, "sess-2", 1, domain.IntentCancellationReq, []domain.EntityType{domain.EntityBookingID}, nil)
	require.NoError(t, err)

	turn, err := o.Step(ctx, "sess-2", 1, "my booking id is ORDAB123456")
	require.NoError(t, err)
	assert.True(t, turn.Done)
	require.NotNil(t, turn.PendingAction)
	assert.Equal(t, domain.ActionCancel, turn.PendingAction.Verb)
	assert.Equal(t, "ORDAB123456", turn.PendingAction.Entities["BOOKING_ID"])
}

func TestStep_MultiSubcategoryServiceInjectsSelectionQuestion(t *testing.T) {
	ctx := context.Background()
	o, dialogMgr := newTestOrchestrator(nil)

	_, err := dialogMgr.StartDialog(ctx, "sess-3", 1, domain.IntentBookingManagement,
		[]domain.EntityType{domain.EntityServiceType, domain.EntityDate}, nil)
	require.NoError(t, err)

	turn, err := o.Step(ctx, "sess-3", 1, "painting")
	require.NoError(t, err)
	assert.False(t, turn.Done)
	assert.Equal(t, domain.EntityServiceSubcat, turn.State.NeededEntities[0])
	assert.Contains(t, turn.Question, "Interior Painting")
}

func TestStep_AutoFillsLocationFromDefaultAddress(t *testing.T) {
	ctx := context.Background()
	o, dialogMgr := newTestOrchestrator(fakeAddresses{pincode: "560001", ok: true})

	_, err := dialogMgr.StartDialog(ctx, "sess-4", 1, domain.IntentBookingManagement,
		[]domain.EntityType{domain.EntityBookingID, domain.EntityLocation}, nil)
	require.NoError(t, err)

	turn, err := o.Step(ctx, "sess-4", 1, "ORDAB123456")
	require.NoError(t, err)
	assert.True(t, turn.Done)
	assert.Equal(t, "560001", turn.PendingAction.Entities["LOCATION"])
}

func TestStep_EscalatesAfterMaxFailedAttempts(t *testing.T) {
	ctx := context.Background()
	o, dialogMgr := newTestOrchestrator(nil)

	_, err := dialogMgr.StartDialog(ctx, "sess-5", 1, domain.IntentCancellationReq, []domain.EntityType{domain.EntityBookingID}, nil)
	require.NoError(t, err)

	var turn Turn
	for i := 0; i < question.MaxAttempts; i++ {
		turn, err = o.Step(ctx, "sess-5", 1, "not a valid id at all")
		require.NoError(t, err)
	}
	assert.True(t, turn.Escalated)
	assert.Equal(t, domain.StateError, turn.State.State)
}
