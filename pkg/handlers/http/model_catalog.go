package http

import (
	"fmt"

	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	"github.com/NeuralTrust/RealtimeGateway/pkg/handlers/http/response"
)

const defaultProvider = "openai"

// ModelCatalog is the set of generation models the REST endpoints accept.
// It mirrors the realtime session rules: an empty allow list admits any
// model and an empty request falls back to the default model.
type ModelCatalog struct {
	provider     string
	defaultModel string
	allowed      []string
}

func NewModelCatalog(cfg *config.Config) *ModelCatalog {
	provider := cfg.Backends.Generation.Provider
	if provider == "" {
		provider = defaultProvider
	}
	return &ModelCatalog{
		provider:     provider,
		defaultModel: cfg.Realtime.DefaultModel,
		allowed:      cfg.Realtime.AllowedModels,
	}
}

func (m *ModelCatalog) Resolve(model string) (string, error) {
	if model == "" {
		model = m.defaultModel
	}
	if model == "" {
		return "", fmt.Errorf("model is required")
	}
	if len(m.allowed) == 0 {
		return model, nil
	}
	for _, a := range m.allowed {
		if a == model {
			return model, nil
		}
	}
	return "", fmt.Errorf("model %q is not available", model)
}

func (m *ModelCatalog) Models() []response.ModelOutput {
	names := m.allowed
	if len(names) == 0 && m.defaultModel != "" {
		names = []string{m.defaultModel}
	}
	out := make([]response.ModelOutput, 0, len(names))
	for _, name := range names {
		out = append(out, response.ModelOutput{
			ID:       name,
			Name:     name,
			Provider: m.provider,
			Default:  name == m.defaultModel,
		})
	}
	return out
}
