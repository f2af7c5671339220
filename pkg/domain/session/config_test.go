package session_test

import (
	"strings"
	"testing"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   session.Config
		param string
	}{
		{name: "valid", cfg: session.Config{
			Model:             "llama3.1",
			Voice:             "alloy",
			VADThreshold:      floatPtr(0.3),
			SilenceDurationMs: intPtr(0),
			PrefixPaddingMs:   intPtr(300),
		}},
		{name: "voice too long", cfg: session.Config{Voice: strings.Repeat("v", session.MaxVoiceLength+1)}, param: "session.voice"},
		{name: "negative threshold", cfg: session.Config{VADThreshold: floatPtr(-0.1)}, param: "session.turn_detection.threshold"},
		{name: "threshold above one", cfg: session.Config{VADThreshold: floatPtr(1.01)}, param: "session.turn_detection.threshold"},
		{name: "negative silence", cfg: session.Config{SilenceDurationMs: intPtr(-1)}, param: "session.turn_detection.silence_duration_ms"},
		{name: "silence too long", cfg: session.Config{SilenceDurationMs: intPtr(session.MaxSilenceDurationMs + 1)}, param: "session.turn_detection.silence_duration_ms"},
		{name: "negative prefix", cfg: session.Config{PrefixPaddingMs: intPtr(-20)}, param: "session.turn_detection.prefix_padding_ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate([]string{"llama3.1"})
			if tt.param == "" {
				assert.NoError(t, err)
				return
			}
			var rtErr *domain.Error
			require.ErrorAs(t, err, &rtErr)
			assert.Equal(t, domain.CodeValidation, rtErr.Code)
			assert.Equal(t, tt.param, rtErr.Param)
		})
	}
}
