package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	EventSessionOpened = "session.opened"
	EventSessionClosed = "session.closed"
)

type ExporterConfig struct {
	Name     string                 `json:"name" mapstructure:"name"`
	Settings map[string]interface{} `json:"settings" mapstructure:"settings"`
}

// SessionEvent is a lifecycle record for one realtime session.
type SessionEvent struct {
	Type       string    `json:"type"`
	SessionID  uuid.UUID `json:"session_id"`
	ClientID   string    `json:"client_id"`
	Model      string    `json:"model"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at,omitempty"`
	DurationMs int64     `json:"duration_ms,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

type noopExporter struct{}

// NoopExporter drops every event.
func NoopExporter() Exporter {
	return noopExporter{}
}

func (noopExporter) Name() string {
	return "noop"
}

func (noopExporter) ValidateConfig(map[string]interface{}) error {
	return nil
}

func (noopExporter) Handle(context.Context, *SessionEvent) error {
	return nil
}

func (e noopExporter) WithSettings(map[string]interface{}) (Exporter, error) {
	return e, nil
}

func (noopExporter) Close() {}
