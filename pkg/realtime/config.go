package realtime

import "time"

// Config is the engine configuration passed explicitly to every realtime
// component at construction.
type Config struct {
	VADThreshold          float64
	VADDebounceMs         int
	MaxTurnDurationMs     int
	IdleTimeoutMs         int
	MaxConcurrentSessions int

	FunctionCallTimeoutMs int
	PrefixPaddingMs       int
	MinSpeechMs           int
	SampleRate            int
	InboundQueueSize      int
	OutboundQueueSize     int

	DefaultModel       string
	AllowedModels      []string
	DefaultVoice       string
	DefaultTemperature float64
}

func DefaultConfig() Config {
	return Config{
		VADThreshold:          0.02,
		VADDebounceMs:         500,
		MaxTurnDurationMs:     30000,
		IdleTimeoutMs:         300000,
		MaxConcurrentSessions: 100,
		FunctionCallTimeoutMs: 30000,
		PrefixPaddingMs:       300,
		MinSpeechMs:           60,
		SampleRate:            24000,
		InboundQueueSize:      512,
		OutboundQueueSize:     256,
		DefaultModel:          "llama3.1",
		DefaultVoice:          "alloy",
		DefaultTemperature:    0.7,
	}
}

func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutMs) * time.Millisecond
}

func (c Config) FunctionCallTimeout() time.Duration {
	return time.Duration(c.FunctionCallTimeoutMs) * time.Millisecond
}
