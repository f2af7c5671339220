package repository

import (
	"context"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/audiobuffer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AudioBufferRepository struct {
	db *gorm.DB
}

func NewAudioBufferRepository(db *gorm.DB) audiobuffer.Repository {
	return &AudioBufferRepository{
		db: db,
	}
}

func (r *AudioBufferRepository) Save(ctx context.Context, buffer *audiobuffer.AudioBuffer) error {
	return r.db.WithContext(ctx).Create(buffer).Error
}

func (r *AudioBufferRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*audiobuffer.AudioBuffer, error) {
	var buffers []*audiobuffer.AudioBuffer
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&buffers).Error
	if err != nil {
		return nil, err
	}
	return buffers, nil
}
