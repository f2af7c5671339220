package session

import (
	"fmt"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
)

const (
	MinTemperature = 0.0
	MaxTemperature = 2.0

	MaxVoiceLength       = 64
	MaxSilenceDurationMs = 10000
	MaxPrefixPaddingMs   = 10000
)

// Config is the client-controlled part of a session, used both at open and
// by session.update. Pointer fields distinguish "unset" from zero values.
type Config struct {
	Model         string
	Modalities    []string
	Voice         string
	Temperature   *float64
	Instructions  *string
	TurnDetection string
	// VAD tuning from turn_detection; nil keeps the current value.
	VADThreshold      *float64
	SilenceDurationMs *int
	PrefixPaddingMs   *int
	Tools         domain.ToolsJSON
	Metadata      map[string]interface{}
}

// Validate checks cfg against the allowed model list. An empty list allows
// any non-empty model name.
func (c Config) Validate(allowedModels []string) error {
	if c.Model != "" && len(allowedModels) > 0 && !contains(allowedModels, c.Model) {
		return &domain.Error{
			Code:    domain.CodeValidation,
			Message: fmt.Sprintf("model %q is not available", c.Model),
			Param:   "session.model",
		}
	}
	if c.Modalities != nil {
		if len(c.Modalities) == 0 {
			return &domain.Error{Code: domain.CodeValidation, Message: "at least one modality is required", Param: "session.modalities"}
		}
		seen := make(map[string]struct{}, len(c.Modalities))
		for _, m := range c.Modalities {
			if m != ModalityText && m != ModalityAudio {
				return &domain.Error{
					Code:    domain.CodeValidation,
					Message: fmt.Sprintf("unsupported modality %q", m),
					Param:   "session.modalities",
				}
			}
			if _, dup := seen[m]; dup {
				return &domain.Error{
					Code:    domain.CodeValidation,
					Message: fmt.Sprintf("duplicate modality %q", m),
					Param:   "session.modalities",
				}
			}
			seen[m] = struct{}{}
		}
	}
	if c.Temperature != nil && (*c.Temperature < MinTemperature || *c.Temperature > MaxTemperature) {
		return &domain.Error{
			Code:    domain.CodeValidation,
			Message: fmt.Sprintf("temperature must be between %.1f and %.1f", MinTemperature, MaxTemperature),
			Param:   "session.temperature",
		}
	}
	if c.TurnDetection != "" && c.TurnDetection != TurnDetectionServerVAD && c.TurnDetection != TurnDetectionNone {
		return &domain.Error{
			Code:    domain.CodeValidation,
			Message: fmt.Sprintf("unsupported turn_detection %q", c.TurnDetection),
			Param:   "session.turn_detection",
		}
	}
	if len(c.Voice) > MaxVoiceLength {
		return &domain.Error{
			Code:    domain.CodeValidation,
			Message: fmt.Sprintf("voice must be at most %d characters", MaxVoiceLength),
			Param:   "session.voice",
		}
	}
	if c.VADThreshold != nil && (*c.VADThreshold < 0 || *c.VADThreshold > 1) {
		return &domain.Error{
			Code:    domain.CodeValidation,
			Message: "threshold must be between 0 and 1",
			Param:   "session.turn_detection.threshold",
		}
	}
	if c.SilenceDurationMs != nil && (*c.SilenceDurationMs < 0 || *c.SilenceDurationMs > MaxSilenceDurationMs) {
		return &domain.Error{
			Code:    domain.CodeValidation,
			Message: fmt.Sprintf("silence_duration_ms must be between 0 and %d", MaxSilenceDurationMs),
			Param:   "session.turn_detection.silence_duration_ms",
		}
	}
	if c.PrefixPaddingMs != nil && (*c.PrefixPaddingMs < 0 || *c.PrefixPaddingMs > MaxPrefixPaddingMs) {
		return &domain.Error{
			Code:    domain.CodeValidation,
			Message: fmt.Sprintf("prefix_padding_ms must be between 0 and %d", MaxPrefixPaddingMs),
			Param:   "session.turn_detection.prefix_padding_ms",
		}
	}
	for _, t := range c.Tools {
		if t.Name == "" {
			return &domain.Error{Code: domain.CodeValidation, Message: "tool name is required", Param: "session.tools"}
		}
	}
	return nil
}

// ExpandModalities maps the "both" shorthand onto text and audio.
func ExpandModalities(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, 0, len(in)+1)
	for _, m := range in {
		if m == "both" {
			out = append(out, ModalityText, ModalityAudio)
			continue
		}
		out = append(out, m)
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
