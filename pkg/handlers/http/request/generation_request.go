package request

import (
	"fmt"
	"strings"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
)

type GenerateRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	System      string   `json:"system,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Stream      bool     `json:"stream"`
}

func (r *GenerateRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	return validateTemperature(r.Temperature)
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	System      string        `json:"system,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

func (r *ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return fmt.Errorf("messages cannot be empty")
	}
	for i, m := range r.Messages {
		switch m.Role {
		case "user", "assistant", "system":
		default:
			return fmt.Errorf("messages[%d]: unsupported role %q", i, m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			return fmt.Errorf("messages[%d]: content is required", i)
		}
	}
	return validateTemperature(r.Temperature)
}

func validateTemperature(t *float64) error {
	if t != nil && (*t < session.MinTemperature || *t > session.MaxTemperature) {
		return fmt.Errorf("temperature must be between %.1f and %.1f", session.MinTemperature, session.MaxTemperature)
	}
	return nil
}
