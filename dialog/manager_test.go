package dialog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/logger"
)

func newTestManager() *Manager {
	return NewManager(NewMemoryStore(), 24*time.Hour, logger.NoOpLogger{})
}

func TestStartDialog_SeedsCollectingInfoWhenEntitiesNeeded(t *testing.T) {
	m := newTestManager()
	state, err := m.StartDialog(context.Background(), "sess-1", 42, domain.IntentBookingManagement,
		[]domain.EntityType{domain.EntityDate, domain.EntityTime}, map[string]string{"SERVICE_TYPE": "Plumbing"})
	require.NoError(t, err)
	assert.Equal(t, domain.StateCollectingInfo, state.State)
	assert.Len(t, state.NeededEntities, 2)
}

func TestStartDialog_NoNeededEntitiesGoesStraightToConfirmation(t *testing.T) {
	m := newTestManager()
	state, err := m.StartDialog(context.Background(), "sess-2", 42, domain.IntentCancellationReq, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StateAwaitingConfirmation, state.State)
}

func TestRemoveNeededEntity_AdvancesToConfirmationWhenEmpty(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	_, err := m.StartDialog(ctx, "sess-3", 1, domain.IntentBookingManagement, []domain.EntityType{domain.EntityDate}, nil)
	require.NoError(t, err)

	_, err = m.AddEntity(ctx, "sess-3", domain.EntityDate, "2026-08-02", nil)
	require.NoError(t, err)

	pending := &domain.PendingAction{Intent: domain.IntentBookingManagement, Verb: domain.ActionBook}
	state, err := m.RemoveNeededEntity(ctx, "sess-3", domain.EntityDate, pending)
	require.NoError(t, err)
	assert.Empty(t, state.NeededEntities)
	assert.Equal(t, domain.StateAwaitingConfirmation, state.State)
	assert.Equal(t, pending, state.PendingAction)
}

func TestAddEntity_ReplacesSlotButPreservesOtherContext(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	_, err := m.StartDialog(ctx, "sess-4", 1, domain.IntentBookingManagement, []domain.EntityType{domain.EntityDate}, nil)
	require.NoError(t, err)

	_, err = m.AddEntity(ctx, "sess-4", domain.EntityDate, "2026-08-01", map[string]interface{}{"_category_id": "cat-painting"})
	require.NoError(t, err)
	state, err := m.AddEntity(ctx, "sess-4", domain.EntityDate, "2026-08-02", nil)
	require.NoError(t, err)

	assert.Equal(t, "2026-08-02", state.CollectedEntities["DATE"])
	assert.Equal(t, "cat-painting", state.Context["_category_id"])
}

func TestPrependNeededEntity_PutsSubcategoryFirst(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	_, err := m.StartDialog(ctx, "sess-5", 1, domain.IntentBookingManagement, []domain.EntityType{domain.EntityDate}, nil)
	require.NoError(t, err)

	state, err := m.PrependNeededEntity(ctx, "sess-5", domain.EntityServiceSubcat, "cat-painting", []string{"Interior Painting", "Exterior Painting"})
	require.NoError(t, err)
	require.Len(t, state.NeededEntities, 2)
	assert.Equal(t, domain.EntityServiceSubcat, state.NeededEntities[0])
	assert.Equal(t, domain.EntityDate, state.NeededEntities[1])
}

func TestGetActiveState_ExpiredStateReturnsNil(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	state := &domain.DialogState{
		SessionID: "sess-6",
		State:     domain.StateCollectingInfo,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.CreateState(ctx, state))

	got, err := store.GetActiveState(ctx, "sess-6")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIsFollowUpResponse_ShortConfirmationDuringAwaitingConfirmation(t *testing.T) {
	state := &domain.DialogState{State: domain.StateAwaitingConfirmation}
	result := IsFollowUpResponse("yes please", state)
	assert.True(t, result.IsFollowUp)
	assert.Equal(t, "confirmation", result.Reason)
}

func TestIsFollowUpResponse_ShortEntityReplyDuringCollectingInfo(t *testing.T) {
	state := &domain.DialogState{State: domain.StateCollectingInfo, NeededEntities: []domain.EntityType{domain.EntityTime}}
	result := IsFollowUpResponse("4pm", state)
	assert.True(t, result.IsFollowUp)
	assert.Equal(t, 0.9, result.Confidence)
}

func TestIsFollowUpResponse_LongMessageIsNotFollowUp(t *testing.T) {
	state := &domain.DialogState{State: domain.StateCollectingInfo, NeededEntities: []domain.EntityType{domain.EntityTime}}
	result := IsFollowUpResponse("actually I want to cancel my previous booking instead of scheduling a new one", state)
	assert.False(t, result.IsFollowUp)
}

func TestIsFollowUpResponse_StartsWithDifferentActionVerb(t *testing.T) {
	state := &domain.DialogState{State: domain.StateCollectingInfo, NeededEntities: []domain.EntityType{domain.EntityTime}}
	result := IsFollowUpResponse("cancel this", state)
	assert.False(t, result.IsFollowUp)
	assert.Equal(t, "starts_with_different_action_verb", result.Reason)
}

func TestIsFollowUpResponse_DefersToClassifierOtherwise(t *testing.T) {
	state := &domain.DialogState{State: domain.StateIdle}
	result := IsFollowUpResponse("hello there", state)
	assert.False(t, result.IsFollowUp)
	assert.Equal(t, "defer_to_classifier", result.Reason)
}
