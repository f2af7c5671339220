package audiobuffer

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AudioBuffer is the durable form of a committed input turn.
type AudioBuffer struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID     uuid.UUID  `json:"session_id" gorm:"type:uuid;not null;index"`
	MessageID     *uuid.UUID `json:"message_id,omitempty" gorm:"type:uuid"`
	FileRef       string     `json:"file_ref" gorm:"type:text"`
	DurationMs    int        `json:"duration_ms"`
	Format        string     `json:"format" gorm:"type:text;not null"`
	Transcription string     `json:"transcription" gorm:"type:text"`
	ProcessedAt   time.Time  `json:"processed_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (a *AudioBuffer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	return nil
}

func (a *AudioBuffer) TableName() string {
	return "audio_buffers"
}
