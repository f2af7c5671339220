package vad

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/audio"
)

type Result int

const (
	NoChange Result = iota
	Ongoing
	SpeechStarted
	SpeechEnded
)

func (r Result) String() string {
	switch r {
	case NoChange:
		return "no_change"
	case Ongoing:
		return "ongoing"
	case SpeechStarted:
		return "speech_started"
	case SpeechEnded:
		return "speech_ended"
	default:
		return "unknown"
	}
}

type Config struct {
	// Threshold is the normalised RMS energy (0..1) at or above which a
	// window counts as speech.
	Threshold float64
	// DebounceMs is how long energy must stay below Threshold before
	// speech is considered ended.
	DebounceMs int
	// MinSpeechMs is how long energy must stay at or above Threshold
	// before speech is considered started.
	MinSpeechMs int
}

// Detector is an energy based voice activity detector. Its only state is the
// speaking flag and the accumulated above/below threshold durations, so the
// result of Evaluate depends only on the window and prior calls.
type Detector struct {
	cfg      Config
	speaking bool
	aboveMs  int
	belowMs  int
}

func New(cfg Config) *Detector {
	return &Detector{cfg: cfg.clamped()}
}

func (c Config) clamped() Config {
	if c.MinSpeechMs < 0 {
		c.MinSpeechMs = 0
	}
	if c.DebounceMs < 0 {
		c.DebounceMs = 0
	}
	return c
}

// Evaluate scores a window covering windowMs of audio.
func (d *Detector) Evaluate(window []byte, windowMs int) Result {
	speech := len(window) > 0 && audio.RMSEnergy(window) >= d.cfg.Threshold

	if !d.speaking {
		if !speech {
			d.aboveMs = 0
			return NoChange
		}
		d.aboveMs += windowMs
		if d.aboveMs < d.cfg.MinSpeechMs {
			return NoChange
		}
		d.speaking = true
		d.belowMs = 0
		return SpeechStarted
	}

	if speech {
		d.belowMs = 0
		return Ongoing
	}
	d.belowMs += windowMs
	if d.belowMs < d.cfg.DebounceMs {
		return Ongoing
	}
	d.speaking = false
	d.aboveMs = 0
	d.belowMs = 0
	return SpeechEnded
}

func (d *Detector) Speaking() bool {
	return d.speaking
}

func (d *Detector) Reset() {
	d.speaking = false
	d.aboveMs = 0
	d.belowMs = 0
}

// Reconfigure replaces thresholds without dropping the current speech state.
func (d *Detector) Reconfigure(cfg Config) {
	d.cfg = cfg.clamped()
}
