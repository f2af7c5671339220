package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrEntityNotFound       *notFoundError
	ErrCrossSessionParent   = errors.New("parent message belongs to a different session")
	ErrCrossSessionAudio    = errors.New("audio buffer message belongs to a different session")
	ErrInvalidMessageRole   = errors.New("invalid message role")
	ErrInvalidContentType   = errors.New("invalid message content type")
	ErrInvalidSessionStatus = errors.New("invalid session status")
)

type notFoundError struct {
	EntityType string
	ID         uuid.UUID
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.EntityType, e.ID.String())
}

func NewNotFoundError(entityType string, id uuid.UUID) error {
	return &notFoundError{
		EntityType: entityType,
		ID:         id,
	}
}

func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFoundError *notFoundError
	ok := errors.As(err, &notFoundError)
	return ok
}
