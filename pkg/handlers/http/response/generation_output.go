package response

import "github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"

type GenerateOutput struct {
	Model     string           `json:"model"`
	CreatedAt string           `json:"created_at"`
	Response  string           `json:"response"`
	Done      bool             `json:"done"`
	Usage     *providers.Usage `json:"usage,omitempty"`
}

type ChatMessageOutput struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatOutput struct {
	Model     string            `json:"model"`
	CreatedAt string            `json:"created_at"`
	Message   ChatMessageOutput `json:"message"`
	Done      bool              `json:"done"`
	Usage     *providers.Usage  `json:"usage,omitempty"`
}

type ModelOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Default  bool   `json:"default"`
}

type TranscriptionOutput struct {
	Text       string `json:"text"`
	DurationMs int    `json:"duration_ms"`
	Done       bool   `json:"done"`
}
