package repository

import (
	"context"
	"errors"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/message"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) message.Repository {
	return &MessageRepository{
		db: db,
	}
}

func (r *MessageRepository) Save(ctx context.Context, m *message.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	var entity message.Message
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("message", id)
		}
		return nil, err
	}
	return &entity, nil
}

func (r *MessageRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*message.Message, error) {
	var messages []*message.Message
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Delete removes ids from the session. Ids from other sessions are ignored.
func (r *MessageRepository) Delete(ctx context.Context, sessionID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("session_id = ? AND id IN ?", sessionID, ids).
		Delete(&message.Message{}).Error
}
