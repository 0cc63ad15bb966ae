package dialog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/logger"
)

// DefaultTTL is the fallback dialog-state lifetime used when a caller
// passes a zero TTL; callers should normally supply
// config.Config.DialogStateExpiry instead.
const DefaultTTL = 24 * time.Hour

// Manager is the Dialog State Manager (§4.9): the facade the
// coordinator and slot-filling orchestrator call into, wrapping a Store
// with the entity-merge and needed-entity bookkeeping rules.
type Manager struct {
	store  Store
	ttl    time.Duration
	logger logger.Logger
}

// NewManager builds a Manager whose dialog states expire after ttl.
// Callers should pass config.Config.DialogStateExpiry, which is already
// bounded to 1h..168h with a 24h default.
func NewManager(store Store, ttl time.Duration, log logger.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: store, ttl: ttl, logger: logger.Component(log, "dialog_manager")}
}

// StartDialog opens a new collecting_info state for intent, seeded with
// the entities already extracted on the triggering turn. When needed is
// empty the state opens directly in awaiting_confirmation.
func (m *Manager) StartDialog(ctx context.Context, sessionID string, userID int64, intent domain.IntentLabel, needed []domain.EntityType, collected map[string]string) (*domain.DialogState, error) {
	if collected == nil {
		collected = map[string]string{}
	}
	state := &domain.DialogState{
		SessionID:         sessionID,
		UserID:            userID,
		State:             domain.StateCollectingInfo,
		Intent:            intent,
		CollectedEntities: collected,
		Metadata:          map[string]interface{}{},
		NeededEntities:    needed,
		Context:           map[string]interface{}{},
		ExpiresAt:         time.Now().Add(m.ttl),
	}
	if len(needed) == 0 {
		state.State = domain.StateAwaitingConfirmation
	}
	if err := m.store.CreateState(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (m *Manager) GetActiveState(ctx context.Context, sessionID string) (*domain.DialogState, error) {
	return m.store.GetActiveState(ctx, sessionID)
}

// GetStateStatus returns a small status projection safe to surface to
// callers that only need to know whether a dialog is in progress.
type StateStatus struct {
	Active         bool
	State          domain.DialogStateKind
	Intent         domain.IntentLabel
	NeededEntities []domain.EntityType
}

func (m *Manager) GetStateStatus(ctx context.Context, sessionID string) (StateStatus, error) {
	state, err := m.store.GetActiveState(ctx, sessionID)
	if err != nil {
		return StateStatus{}, err
	}
	if state == nil {
		return StateStatus{Active: false}, nil
	}
	return StateStatus{Active: true, State: state.State, Intent: state.Intent, NeededEntities: state.NeededEntities}, nil
}

// AddEntity merges value into collected_entities by entity type,
// REPLACE semantics for the slot itself but preserving any
// "_metadata_*"-prefixed sibling keys already present unless the caller
// supplies new ones via metadataPatch, per §4.9's merge rule for
// context vs. the needed_entities REPLACE rule.
func (m *Manager) AddEntity(ctx context.Context, sessionID string, entityType domain.EntityType, value string, metadataPatch map[string]interface{}) (*domain.DialogState, error) {
	return m.store.UpdateState(ctx, sessionID, func(s *domain.DialogState) {
		if s.CollectedEntities == nil {
			s.CollectedEntities = map[string]string{}
		}
		s.CollectedEntities[string(entityType)] = value
		if s.Context == nil {
			s.Context = map[string]interface{}{}
		}
		for k, v := range metadataPatch {
			s.Context[k] = v
		}
	})
}

// RemoveNeededEntity drops entityType from needed_entities (REPLACE
// semantics on the slice itself, as §4.9 specifies) and advances the
// state to awaiting_confirmation once the list empties.
func (m *Manager) RemoveNeededEntity(ctx context.Context, sessionID string, entityType domain.EntityType, pending *domain.PendingAction) (*domain.DialogState, error) {
	return m.store.UpdateState(ctx, sessionID, func(s *domain.DialogState) {
		remaining := make([]domain.EntityType, 0, len(s.NeededEntities))
		for _, t := range s.NeededEntities {
			if t != entityType {
				remaining = append(remaining, t)
			}
		}
		s.NeededEntities = remaining
		if len(remaining) == 0 {
			s.State = domain.StateAwaitingConfirmation
			s.PendingAction = pending
		}
	})
}

// PrependNeededEntity inserts entityType at the front of
// needed_entities, used when validate_entity flags
// requires_subcategory_selection and SERVICE_SUBCATEGORY must be
// collected before anything already queued.
func (m *Manager) PrependNeededEntity(ctx context.Context, sessionID string, entityType domain.EntityType, categoryID string, availableSubcategories []string) (*domain.DialogState, error) {
	return m.store.UpdateState(ctx, sessionID, func(s *domain.DialogState) {
		filtered := make([]domain.EntityType, 0, len(s.NeededEntities)+1)
		filtered = append(filtered, entityType)
		for _, t := range s.NeededEntities {
			if t != entityType {
				filtered = append(filtered, t)
			}
		}
		s.NeededEntities = filtered
		if s.Context == nil {
			s.Context = map[string]interface{}{}
		}
		s.Context["_category_id"] = categoryID
		s.Context["available_subcategories"] = availableSubcategories
	})
}

func (m *Manager) UpdateState(ctx context.Context, sessionID string, patch func(*domain.DialogState)) (*domain.DialogState, error) {
	return m.store.UpdateState(ctx, sessionID, patch)
}

func (m *Manager) ClearState(ctx context.Context, sessionID string) error {
	return m.store.ClearState(ctx, sessionID)
}

// NewSessionID mints a session identifier for a fresh conversation,
// grounded on the teacher's uuid.New().String() usage across core/.
func NewSessionID() string {
	return uuid.New().String()
}
