package repository_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/cache"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/repository"
	"github.com/go-redis/redismock/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStateRepository() (session.StateRepository, redismock.ClientMock) {
	redisClient, redisMock := redismock.NewClientMock()
	return repository.NewSessionStateRepository(cache.NewClientFromRedis(redisClient)), redisMock
}

func TestSessionStateRepository_SaveAndGet(t *testing.T) {
	repo, redisMock := newStateRepository()
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	state := &session.State{
		SessionID:    id,
		ClientID:     "client-1",
		Status:       session.StatusActive,
		TurnState:    "listening",
		LastActivity: time.Unix(1740730536, 0).UTC(),
	}
	raw, err := json.Marshal(state)
	require.NoError(t, err)

	redisMock.ExpectSet("session_state:"+id.String(), string(raw), 5*time.Minute).SetVal("OK")
	redisMock.ExpectGet("session_state:" + id.String()).SetVal(string(raw))

	require.NoError(t, repo.SaveState(context.Background(), state, 5*time.Minute))
	got, err := repo.GetState(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, state, got)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestSessionStateRepository_GetMissing(t *testing.T) {
	repo, redisMock := newStateRepository()
	id := uuid.New()
	redisMock.ExpectGet("session_state:" + id.String()).RedisNil()

	got, err := repo.GetState(context.Background(), id)

	assert.Nil(t, got)
	assert.True(t, domain.IsNotFoundError(err))
}

func TestSessionStateRepository_Validity(t *testing.T) {
	repo, redisMock := newStateRepository()
	id := uuid.New()
	key := "session_valid:" + id.String()

	redisMock.ExpectSet(key, "1", repository.SessionValidTTL).SetVal("OK")
	redisMock.ExpectExists(key).SetVal(1)
	redisMock.ExpectDel("session_state:" + id.String()).SetVal(1)
	redisMock.ExpectDel(key).SetVal(1)
	redisMock.ExpectExists(key).SetVal(0)

	require.NoError(t, repo.MarkValid(context.Background(), id))
	valid, err := repo.IsValid(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, valid)

	require.NoError(t, repo.DeleteState(context.Background(), id))
	valid, err = repo.IsValid(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, valid)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestSessionStateRepository_DeleteError(t *testing.T) {
	repo, redisMock := newStateRepository()
	id := uuid.New()
	redisMock.ExpectDel("session_state:" + id.String()).SetErr(errors.New("connection reset"))

	err := repo.DeleteState(context.Background(), id)

	require.Error(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}
