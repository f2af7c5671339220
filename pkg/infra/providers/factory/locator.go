package factory

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	infraBedrock "github.com/NeuralTrust/RealtimeGateway/pkg/infra/bedrock"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/cache"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/httpx"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers/anthropic"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers/bedrock"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers/gemini"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers/openai"
	"github.com/sirupsen/logrus"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAzure     = "azure"
	ProviderGoogle    = "google"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
)

//go:generate mockery --name=ProviderLocator --dir=. --output=./mocks --filename=provider_locator_mock.go --case=underscore --with-expecter

// ProviderLocator builds the three realtime backends from configuration,
// each wrapped in its own circuit breaker.
type ProviderLocator interface {
	Transcriber() (providers.Transcriber, error)
	Generator(ctx context.Context) (providers.Generator, error)
	Synthesizer() (providers.Synthesizer, error)
}

type providerLocator struct {
	cfg     config.BackendsConfig
	cache   cache.Client
	logger  *logrus.Logger
	observe providers.LatencyObserver
	bedrock infraBedrock.Client
}

func NewProviderLocator(
	cfg config.BackendsConfig,
	cacheClient cache.Client,
	logger *logrus.Logger,
	observe providers.LatencyObserver,
) ProviderLocator {
	return &providerLocator{
		cfg:     cfg,
		cache:   cacheClient,
		logger:  logger,
		observe: observe,
		bedrock: infraBedrock.NewClient(logger),
	}
}

func (f *providerLocator) Transcriber() (providers.Transcriber, error) {
	bc := f.cfg.Transcription
	switch providerOrDefault(bc.Provider) {
	case ProviderOpenAI, ProviderAzure:
		return providers.NewResilientTranscriber(
			openai.NewOpenaiClient(toProviderConfig(bc)),
			f.breaker(providers.BackendTranscription),
			f.observe,
		), nil
	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", bc.Provider)
	}
}

func (f *providerLocator) Generator(ctx context.Context) (providers.Generator, error) {
	bc := f.cfg.Generation
	var gen providers.Generator
	switch providerOrDefault(bc.Provider) {
	case ProviderOpenAI, ProviderAzure:
		gen = openai.NewOpenaiClient(toProviderConfig(bc))
	case ProviderAnthropic:
		gen = anthropic.NewAnthropicClient(toProviderConfig(bc))
	case ProviderBedrock:
		gen = bedrock.NewBedrockClient(toProviderConfig(bc), f.bedrock)
	case ProviderGoogle, ProviderGemini:
		g, err := gemini.NewGeminiClient(ctx, toProviderConfig(bc), f.logger)
		if err != nil {
			return nil, err
		}
		gen = g
	default:
		return nil, fmt.Errorf("unsupported generation provider: %s", bc.Provider)
	}
	return providers.NewResilientGenerator(gen, f.breaker(providers.BackendGeneration), f.observe), nil
}

func (f *providerLocator) Synthesizer() (providers.Synthesizer, error) {
	bc := f.cfg.Synthesis
	switch providerOrDefault(bc.Provider) {
	case ProviderOpenAI, ProviderAzure:
		var synth providers.Synthesizer = openai.NewOpenaiClient(toProviderConfig(bc))
		if f.cache != nil && f.cfg.SynthesisCacheTTL > 0 {
			synth = providers.NewCachedSynthesizer(synth, f.cache.CreateTTLMap(cache.SynthesisTTLName, f.cfg.SynthesisCacheTTL))
		}
		return providers.NewResilientSynthesizer(synth, f.breaker(providers.BackendSynthesis), f.observe), nil
	default:
		return nil, fmt.Errorf("unsupported synthesis provider: %s", bc.Provider)
	}
}

func (f *providerLocator) breaker(name string) httpx.CircuitBreaker {
	return httpx.NewCircuitBreaker(name, f.cfg.BreakerTimeout, f.cfg.BreakerMaxFailures)
}

func providerOrDefault(p string) string {
	if p == "" {
		return ProviderOpenAI
	}
	return p
}

func toProviderConfig(bc config.BackendConfig) providers.Config {
	creds := providers.Credentials{ApiKey: bc.APIKey}
	switch bc.Provider {
	case ProviderAzure:
		creds.Azure = &providers.AzureCredentials{
			Endpoint:   bc.Azure.Endpoint,
			APIVersion: bc.Azure.APIVersion,
		}
	case ProviderBedrock:
		creds.AwsBedrock = &providers.AwsBedrockCredentials{
			Region:       bc.AWS.Region,
			AccessKey:    bc.AWS.AccessKey,
			SecretKey:    bc.AWS.SecretKey,
			SessionToken: bc.AWS.SessionToken,
			RoleARN:      bc.AWS.RoleARN,
		}
	}
	return providers.Config{
		Credentials: creds,
		BaseURL:     bc.BaseURL,
		Model:       bc.Model,
		MaxTokens:   bc.MaxTokens,
		Format:      bc.Format,
	}
}
