package dialog

import (
	"context"
	"sync"
	"time"

	"github.com/shaonidutta/converge-ai/domain"
)

// MemoryStore is an in-memory Store for tests and local development,
// grounded on core.MemoryStore's mutex-guarded map.
type MemoryStore struct {
	mu    sync.Mutex
	byKey map[string]*domain.DialogState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byKey: map[string]*domain.DialogState{}}
}

func (m *MemoryStore) CreateState(ctx context.Context, state *domain.DialogState) error {
	now := time.Now()
	state.CreatedAt = now
	state.UpdatedAt = now
	if state.ExpiresAt.IsZero() {
		state.ExpiresAt = now.Add(DefaultTTL)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *state
	m.byKey[state.SessionID] = &cp
	return nil
}

func (m *MemoryStore) GetActiveState(ctx context.Context, sessionID string) (*domain.DialogState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.byKey[sessionID]
	if !ok {
		return nil, nil
	}
	if !state.Active(time.Now()) {
		delete(m.byKey, sessionID)
		return nil, nil
	}
	cp := *state
	return &cp, nil
}

func (m *MemoryStore) UpdateState(ctx context.Context, sessionID string, patch func(*domain.DialogState)) (*domain.DialogState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.byKey[sessionID]
	if !ok {
		return nil, errNoSuchSession(sessionID)
	}
	patch(state)
	state.UpdatedAt = time.Now()
	cp := *state
	return &cp, nil
}

func (m *MemoryStore) ClearState(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byKey, sessionID)
	return nil
}

func (m *MemoryStore) SweepExpired(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	swept := 0
	for sessionID, state := range m.byKey {
		if !state.Active(now) {
			delete(m.byKey, sessionID)
			swept++
		}
	}
	return swept, nil
}

var _ Store = (*MemoryStore)(nil)
