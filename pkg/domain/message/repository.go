package message

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=message_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	Save(ctx context.Context, message *Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*Message, error)
	Delete(ctx context.Context, sessionID uuid.UUID, ids []uuid.UUID) error
}
