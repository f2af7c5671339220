package functioncall

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// FunctionCall is an invocation requested by the generation backend. It always
// belongs to exactly one assistant message.
type FunctionCall struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	MessageID   uuid.UUID  `json:"message_id" gorm:"type:uuid;not null;index"`
	SessionID   uuid.UUID  `json:"session_id" gorm:"type:uuid;not null;index"`
	CallID      string     `json:"call_id" gorm:"type:text;not null"`
	Name        string     `json:"name" gorm:"type:text;not null"`
	Arguments   string     `json:"arguments" gorm:"type:text"`
	Result      string     `json:"result" gorm:"type:text"`
	Status      Status     `json:"status" gorm:"type:text;not null"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (f *FunctionCall) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	now := time.Now()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	return nil
}

func (f *FunctionCall) BeforeUpdate(tx *gorm.DB) error {
	f.UpdatedAt = time.Now()
	return nil
}

func (f *FunctionCall) TableName() string {
	return "function_calls"
}

func (f *FunctionCall) Complete(result string, at time.Time) {
	f.Result = result
	f.Status = StatusCompleted
	f.CompletedAt = &at
}

func (f *FunctionCall) Fail(reason string, at time.Time) {
	f.Result = reason
	f.Status = StatusFailed
	f.CompletedAt = &at
}

func (f *FunctionCall) Open() bool {
	return f.Status == StatusPending || f.Status == StatusRunning
}
