package audio

import (
	"encoding/binary"
	"math"
)

const (
	FormatPCM16       = "pcm16"
	bytesPerSample    = 2
	DefaultSampleRate = 24000
	NominalChunkMs    = 20
)

// Format describes mono little-endian PCM16 audio at a given sample rate.
type Format struct {
	Name       string
	SampleRate int
}

func NewFormat(sampleRate int) Format {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return Format{Name: FormatPCM16, SampleRate: sampleRate}
}

func (f Format) bytesPerMs() float64 {
	return float64(f.SampleRate*bytesPerSample) / 1000.0
}

// BytesForDuration returns the sample-aligned byte length of ms of audio.
func (f Format) BytesForDuration(ms int) int {
	if ms <= 0 {
		return 0
	}
	n := int(float64(ms) * f.bytesPerMs())
	return n - n%bytesPerSample
}

// DurationOf returns the duration in milliseconds of n bytes of audio.
func (f Format) DurationOf(n int) int {
	if n <= 0 || f.SampleRate <= 0 {
		return 0
	}
	return int(float64(n) / f.bytesPerMs())
}

// RMSEnergy returns the root-mean-square energy of 16-bit little-endian PCM,
// normalised to 0..1.
func RMSEnergy(pcm []byte) float64 {
	samples := len(pcm) / bytesPerSample
	if samples == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < samples; i++ {
		s := float64(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / 32768.0
		sum += s * s
	}
	return math.Sqrt(sum / float64(samples))
}
