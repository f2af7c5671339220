package session

import (
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
	StatusError     Status = "error"
)

const (
	ModalityText  = "text"
	ModalityAudio = "audio"

	TurnDetectionServerVAD = "server_vad"
	TurnDetectionNone      = "none"
)

// Session is one client connection's conversation.
type Session struct {
	ID             uuid.UUID           `json:"id" gorm:"type:uuid;primaryKey"`
	ClientID       string              `json:"client_id" gorm:"type:text;not null;index"`
	Status         Status              `json:"status" gorm:"type:text;not null"`
	Model          string              `json:"model" gorm:"type:text;not null"`
	Modalities     pq.StringArray      `json:"modalities" gorm:"type:text[]"`
	Voice          string              `json:"voice" gorm:"type:text"`
	Temperature    float64             `json:"temperature"`
	Instructions   string              `json:"instructions" gorm:"type:text"`
	TurnDetection  string              `json:"turn_detection" gorm:"type:text"`
	Tools          domain.ToolsJSON    `json:"tools,omitempty" gorm:"type:jsonb"`
	Metadata       domain.MetadataJSON `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	LastActivityAt time.Time           `json:"last_activity_at"`
}

func New(clientID string, cfg Config) *Session {
	now := time.Now()
	s := &Session{
		ID:             uuid.New(),
		ClientID:       clientID,
		Status:         StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastActivityAt: now,
		Metadata:       domain.MetadataJSON{},
	}
	s.Apply(cfg)
	return s
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.LastActivityAt.IsZero() {
		s.LastActivityAt = now
	}
	return nil
}

func (s *Session) BeforeUpdate(tx *gorm.DB) error {
	s.UpdatedAt = time.Now()
	return nil
}

func (s *Session) TableName() string {
	return "sessions"
}

// Apply copies the non-zero fields of cfg onto the session.
func (s *Session) Apply(cfg Config) {
	if cfg.Model != "" {
		s.Model = cfg.Model
	}
	if len(cfg.Modalities) > 0 {
		s.Modalities = pq.StringArray(append([]string(nil), cfg.Modalities...))
	}
	if cfg.Voice != "" {
		s.Voice = cfg.Voice
	}
	if cfg.Temperature != nil {
		s.Temperature = *cfg.Temperature
	}
	if cfg.Instructions != nil {
		s.Instructions = *cfg.Instructions
	}
	if cfg.TurnDetection != "" {
		s.TurnDetection = cfg.TurnDetection
	}
	if cfg.Tools != nil {
		s.Tools = cfg.Tools
	}
	for k, v := range cfg.Metadata {
		if s.Metadata == nil {
			s.Metadata = domain.MetadataJSON{}
		}
		s.Metadata[k] = v
	}
}

func (s *Session) HasModality(m string) bool {
	for _, v := range s.Modalities {
		if v == m {
			return true
		}
	}
	return false
}

func (s *Session) AudioOutput() bool {
	return s.HasModality(ModalityAudio)
}

func (s *Session) ServerVAD() bool {
	return s.TurnDetection == TurnDetectionServerVAD
}

func (s *Session) Touch(at time.Time) {
	s.LastActivityAt = at
}

// Clone returns a copy that can be handed to another goroutine.
func (s *Session) Clone() *Session {
	c := *s
	c.Modalities = append(pq.StringArray(nil), s.Modalities...)
	c.Tools = append(domain.ToolsJSON(nil), s.Tools...)
	if s.Metadata != nil {
		c.Metadata = make(domain.MetadataJSON, len(s.Metadata))
		for k, v := range s.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}
