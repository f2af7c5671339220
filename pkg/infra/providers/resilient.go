package providers

import (
	"context"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/httpx"
)

const (
	BackendTranscription = "transcription"
	BackendGeneration    = "generation"
	BackendSynthesis     = "synthesis"
)

// LatencyObserver receives the duration of every backend call.
type LatencyObserver func(backend string, elapsed time.Duration, err error)

type resilientTranscriber struct {
	next    Transcriber
	breaker httpx.CircuitBreaker
	observe LatencyObserver
}

// NewResilientTranscriber guards next with a circuit breaker and reports latency.
func NewResilientTranscriber(next Transcriber, breaker httpx.CircuitBreaker, observe LatencyObserver) Transcriber {
	return &resilientTranscriber{next: next, breaker: breaker, observe: observe}
}

func (r *resilientTranscriber) Transcribe(ctx context.Context, req TranscriptionRequest, onDelta func(string) error) (string, error) {
	var text string
	start := time.Now()
	err := r.breaker.Execute(func() error {
		var err error
		text, err = r.next.Transcribe(ctx, req, onDelta)
		return err
	})
	if r.observe != nil {
		r.observe(BackendTranscription, time.Since(start), err)
	}
	return text, err
}

type resilientGenerator struct {
	next    Generator
	breaker httpx.CircuitBreaker
	observe LatencyObserver
}

func NewResilientGenerator(next Generator, breaker httpx.CircuitBreaker, observe LatencyObserver) Generator {
	return &resilientGenerator{next: next, breaker: breaker, observe: observe}
}

func (r *resilientGenerator) Generate(ctx context.Context, req GenerationRequest, onChunk func(GenerationChunk) error) (*GenerationResult, error) {
	var res *GenerationResult
	start := time.Now()
	err := r.breaker.Execute(func() error {
		var err error
		res, err = r.next.Generate(ctx, req, onChunk)
		return err
	})
	if r.observe != nil {
		r.observe(BackendGeneration, time.Since(start), err)
	}
	return res, err
}

type resilientSynthesizer struct {
	next    Synthesizer
	breaker httpx.CircuitBreaker
	observe LatencyObserver
}

func NewResilientSynthesizer(next Synthesizer, breaker httpx.CircuitBreaker, observe LatencyObserver) Synthesizer {
	return &resilientSynthesizer{next: next, breaker: breaker, observe: observe}
}

func (r *resilientSynthesizer) Synthesize(ctx context.Context, req SynthesisRequest, onAudio func([]byte) error) error {
	start := time.Now()
	err := r.breaker.Execute(func() error {
		return r.next.Synthesize(ctx, req, onAudio)
	})
	if r.observe != nil {
		r.observe(BackendSynthesis, time.Since(start), err)
	}
	return err
}
