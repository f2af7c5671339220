package audiobuffer

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=audio_buffer_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	Save(ctx context.Context, buffer *AudioBuffer) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*AudioBuffer, error)
}
