package message

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
)

type ContentType string

const (
	ContentTypeText         ContentType = "text"
	ContentTypeAudio        ContentType = "audio"
	ContentTypeFunctionCall ContentType = "function_call"
)

type Status string

const (
	StatusCompleted  Status = "completed"
	StatusIncomplete Status = "incomplete"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
)

// FunctionCallPayload is stored on assistant messages that requested a call
// and on function messages that carry its output.
type FunctionCallPayload struct {
	CallID    string `json:"call_id"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Output    string `json:"output,omitempty"`
}

func (p *FunctionCallPayload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

func (p *FunctionCallPayload) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for function_call column: %T", value)
	}
	return json.Unmarshal(bytes, p)
}

// Message is one content unit of a turn. It is immutable once finalized.
type Message struct {
	ID           uuid.UUID            `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID    uuid.UUID            `json:"session_id" gorm:"type:uuid;not null;index"`
	ParentID     *uuid.UUID           `json:"parent_id,omitempty" gorm:"type:uuid"`
	Role         Role                 `json:"role" gorm:"type:text;not null"`
	Content      string               `json:"content" gorm:"type:text"`
	ContentType  ContentType          `json:"content_type" gorm:"type:text;not null"`
	TokenCount   int                  `json:"token_count"`
	Status       Status               `json:"status" gorm:"type:text;not null"`
	FunctionCall *FunctionCallPayload `json:"function_call,omitempty" gorm:"type:jsonb"`
	CreatedAt    time.Time            `json:"created_at"`
}

func New(sessionID uuid.UUID, parentID *uuid.UUID, role Role, contentType ContentType, content string) *Message {
	return &Message{
		ID:          uuid.New(),
		SessionID:   sessionID,
		ParentID:    parentID,
		Role:        role,
		Content:     content,
		ContentType: contentType,
		TokenCount:  EstimateTokens(content),
		Status:      StatusCompleted,
		CreatedAt:   time.Now(),
	}
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return m.Validate()
}

func (m *Message) TableName() string {
	return "messages"
}

func (m *Message) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser, RoleAssistant, RoleFunction:
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidMessageRole, m.Role)
	}
	switch m.ContentType {
	case ContentTypeText, ContentTypeAudio, ContentTypeFunctionCall:
	default:
		return fmt.Errorf("%w: %q", domain.ErrInvalidContentType, m.ContentType)
	}
	return nil
}

// EstimateTokens approximates token usage at four characters per token.
func EstimateTokens(content string) int {
	if content == "" {
		return 0
	}
	return (len(content) + 3) / 4
}
