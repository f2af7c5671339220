package repository

import (
	"context"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/ratelimit"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RateLimitRepository struct {
	db *gorm.DB
}

func NewRateLimitRepository(db *gorm.DB) ratelimit.Repository {
	return &RateLimitRepository{
		db: db,
	}
}

// Upsert keeps one row per client and limit name.
func (r *RateLimitRepository) Upsert(ctx context.Context, limit *ratelimit.RateLimit) error {
	limit.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"session_id", "limit", "remaining", "reset_at", "updated_at"}),
	}).Create(limit).Error
}

func (r *RateLimitRepository) ListByClient(ctx context.Context, clientID string) ([]*ratelimit.RateLimit, error) {
	var limits []*ratelimit.RateLimit
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("name ASC").
		Find(&limits).Error
	if err != nil {
		return nil, err
	}
	return limits, nil
}
