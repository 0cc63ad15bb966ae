// Package dialog implements the per-session slot-filling state machine
// (§4.9): creation, lookup, patching, and TTL-based expiry, backed by
// Redis the way the teacher's orchestration package persists workflow
// execution state (one JSON blob per key, watched for optimistic
// updates).
package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shaonidutta/converge-ai/domain"
	"github.com/shaonidutta/converge-ai/logger"
)

func stateKey(sessionID string) string {
	return "dialog:state:" + sessionID
}

// Store is the Dialog State Manager's persistence contract.
type Store interface {
	CreateState(ctx context.Context, state *domain.DialogState) error
	GetActiveState(ctx context.Context, sessionID string) (*domain.DialogState, error)
	UpdateState(ctx context.Context, sessionID string, patch func(*domain.DialogState)) (*domain.DialogState, error)
	ClearState(ctx context.Context, sessionID string) error
	SweepExpired(ctx context.Context) (int, error)
}

// RedisStore is the production Store, grounded on
// orchestration/workflow_state.go's RedisStateStore.
type RedisStore struct {
	client *redis.Client
	logger logger.Logger
}

func NewRedisStore(client *redis.Client, log logger.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger.Component(log, "dialog_store")}
}

func (s *RedisStore) CreateState(ctx context.Context, state *domain.DialogState) error {
	now := time.Now()
	state.CreatedAt = now
	state.UpdatedAt = now
	if state.ExpiresAt.IsZero() {
		state.ExpiresAt = now.Add(24 * time.Hour)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("dialog store: marshal: %w", err)
	}

	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Minute
	}
	if err := s.client.Set(ctx, stateKey(state.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("dialog store: create: %w", err)
	}
	return nil
}

// GetActiveState returns nil (no error) both when no row exists and
// when the row is logically expired, per §4.9: "any get_active_state
// call on an expired row returns null and schedules deletion."
func (s *RedisStore) GetActiveState(ctx context.Context, sessionID string) (*domain.DialogState, error) {
	data, err := s.client.Get(ctx, stateKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dialog store: get: %w", err)
	}

	var state domain.DialogState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("dialog store: unmarshal: %w", err)
	}

	if !state.Active(time.Now()) {
		s.logger.Debug("dialog store: state expired, clearing and treating as new conversation",
			map[string]interface{}{"session_id": sessionID, "error": domain.ErrDialogStateExpired.Error()})
		if delErr := s.client.Del(ctx, stateKey(sessionID)).Err(); delErr != nil {
			s.logger.Warn("dialog store: failed to delete expired state", map[string]interface{}{"session_id": sessionID, "error": delErr.Error()})
		}
		return nil, nil
	}
	return &state, nil
}

// UpdateState applies patch under an optimistic Redis transaction,
// grounded on workflow_state.go's Watch-based UpdateExecution.
func (s *RedisStore) UpdateState(ctx context.Context, sessionID string, patch func(*domain.DialogState)) (*domain.DialogState, error) {
	key := stateKey(sessionID)
	var updated domain.DialogState

	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return errNoSuchSession(sessionID)
		}
		if err != nil {
			return fmt.Errorf("dialog store: get for update: %w", err)
		}

		var state domain.DialogState
		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("dialog store: unmarshal for update: %w", err)
		}

		patch(&state)
		state.UpdatedAt = time.Now()

		newData, err := json.Marshal(&state)
		if err != nil {
			return fmt.Errorf("dialog store: marshal for update: %w", err)
		}

		ttl := time.Until(state.ExpiresAt)
		if ttl <= 0 {
			ttl = time.Minute
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newData, ttl)
			return nil
		})
		updated = state
		return err
	}, key)

	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *RedisStore) ClearState(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, stateKey(sessionID)).Err()
}

// SweepExpired scans dialog:state:* keys and deletes any row that is
// logically expired but whose Redis TTL hasn't fired yet (e.g. a
// state written with a stale ExpiresAt). Ordinary reads already delete
// expired rows opportunistically; this is the belt-and-suspenders pass
// the background sweeper runs (§4.9).
func (s *RedisStore) SweepExpired(ctx context.Context) (int, error) {
	var cursor uint64
	var swept int
	now := time.Now()

	for {
		keys, next, err := s.client.Scan(ctx, cursor, "dialog:state:*", 200).Result()
		if err != nil {
			return swept, fmt.Errorf("dialog store: scan: %w", err)
		}

		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Bytes()
			if err != nil {
				continue
			}
			var state domain.DialogState
			if err := json.Unmarshal(data, &state); err != nil {
				continue
			}
			if !state.Active(now) {
				if err := s.client.Del(ctx, key).Err(); err == nil {
					swept++
				}
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}
	return swept, nil
}

var _ Store = (*RedisStore)(nil)
