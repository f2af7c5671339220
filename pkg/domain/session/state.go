package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// State is the ephemeral snapshot kept in the shared key-value store so that
// other nodes can answer "is this session alive and what is it doing".
type State struct {
	SessionID    uuid.UUID `json:"session_id"`
	ClientID     string    `json:"client_id"`
	Status       Status    `json:"status"`
	TurnState    string    `json:"turn_state"`
	TurnID       string    `json:"turn_id,omitempty"`
	LastActivity time.Time `json:"last_activity"`
}

//go:generate mockery --name=StateRepository --dir=. --output=./mocks --filename=session_state_repository_mock.go --case=underscore --with-expecter
type StateRepository interface {
	SaveState(ctx context.Context, state *State, ttl time.Duration) error
	GetState(ctx context.Context, id uuid.UUID) (*State, error)
	DeleteState(ctx context.Context, id uuid.UUID) error
	MarkValid(ctx context.Context, id uuid.UUID) error
	IsValid(ctx context.Context, id uuid.UUID) (bool, error)
}
