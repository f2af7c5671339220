package ratelimit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NameRequests = "requests"
	NameTokens   = "tokens"
)

// RateLimit is the persisted per-client counter for one limit type.
type RateLimit struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ClientID  string    `json:"client_id" gorm:"type:text;not null"`
	SessionID uuid.UUID `json:"session_id" gorm:"type:uuid"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *RateLimit) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.UpdatedAt = time.Now()
	return nil
}

func (r *RateLimit) TableName() string {
	return "rate_limits"
}

// ResetSeconds is the wire representation used by rate_limits.updated.
func (r *RateLimit) ResetSeconds(now time.Time) float64 {
	d := r.ResetAt.Sub(now).Seconds()
	if d < 0 {
		return 0
	}
	return d
}
