package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/cache"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// SessionValidTTL bounds how long a session is reported alive without a
// refresh from its owner.
const SessionValidTTL = 300 * time.Second

type SessionStateRepository struct {
	cache cache.Client
}

func NewSessionStateRepository(cache cache.Client) session.StateRepository {
	return &SessionStateRepository{
		cache: cache,
	}
}

func (r *SessionStateRepository) SaveState(ctx context.Context, state *session.State, ttl time.Duration) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return r.cache.Set(ctx, fmt.Sprintf(cache.SessionStateKeyPattern, state.SessionID), string(stateJSON), ttl)
}

func (r *SessionStateRepository) GetState(ctx context.Context, id uuid.UUID) (*session.State, error) {
	stateJSON, err := r.cache.Get(ctx, fmt.Sprintf(cache.SessionStateKeyPattern, id))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.NewNotFoundError("session state", id)
		}
		return nil, err
	}
	var state session.State
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	return &state, nil
}

func (r *SessionStateRepository) DeleteState(ctx context.Context, id uuid.UUID) error {
	if err := r.cache.Delete(ctx, fmt.Sprintf(cache.SessionStateKeyPattern, id)); err != nil {
		return err
	}
	return r.cache.Delete(ctx, fmt.Sprintf(cache.SessionValidKeyPattern, id))
}

func (r *SessionStateRepository) MarkValid(ctx context.Context, id uuid.UUID) error {
	return r.cache.Set(ctx, fmt.Sprintf(cache.SessionValidKeyPattern, id), "1", SessionValidTTL)
}

func (r *SessionStateRepository) IsValid(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.cache.Exists(ctx, fmt.Sprintf(cache.SessionValidKeyPattern, id))
}
