package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) session.Repository {
	return &SessionRepository{
		db: db,
	}
}

func (r *SessionRepository) Save(ctx context.Context, s *session.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SessionRepository) Update(ctx context.Context, s *session.Session) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	var entity session.Session
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("session", id)
		}
		return nil, err
	}
	return &entity, nil
}

func (r *SessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status session.Status) error {
	switch status {
	case session.StatusActive, session.StatusCompleted, session.StatusExpired, session.StatusError:
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidSessionStatus, status)
	}
	return r.updates(ctx, id, map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
}

func (r *SessionRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.updates(ctx, id, map[string]interface{}{
		"last_activity_at": at,
		"updated_at":       time.Now(),
	})
}

func (r *SessionRepository) updates(ctx context.Context, id uuid.UUID, values map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&session.Session{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("session", id)
	}
	return nil
}
