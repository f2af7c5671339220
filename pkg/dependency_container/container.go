package dependency_container

import (
	"context"
	"fmt"
	"time"

	appTelemetry "github.com/NeuralTrust/RealtimeGateway/pkg/app/telemetry"
	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	domainRateLimit "github.com/NeuralTrust/RealtimeGateway/pkg/domain/ratelimit"
	domainSession "github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	domainTelemetry "github.com/NeuralTrust/RealtimeGateway/pkg/domain/telemetry"
	handlers "github.com/NeuralTrust/RealtimeGateway/pkg/handlers/http"
	wsHandlers "github.com/NeuralTrust/RealtimeGateway/pkg/handlers/websocket"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/archive"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/auth/jwt"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/cache"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/database"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/metrics"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/prometheus"
	providersFactory "github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers/factory"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/ratelimit"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/repository"
	infraTelemetry "github.com/NeuralTrust/RealtimeGateway/pkg/infra/telemetry"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/telemetry/kafka"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/websocket"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/conversation"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/orchestrator"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/registry"
	"github.com/NeuralTrust/RealtimeGateway/pkg/server/middleware"
	"github.com/sirupsen/logrus"
)

type Container struct {
	Cache                  cache.Client
	Registry               *registry.Registry
	Recorder               *prometheus.Recorder
	TelemetryExporter      domainTelemetry.Exporter
	HandlerTransport       handlers.HandlerTransport
	WSHandlerTransport     wsHandlers.HandlerTransport
	PanicRecoverMiddleware middleware.Middleware
	AuthMiddleware         middleware.Middleware
	UserAgentMiddleware    middleware.Middleware
	WebSocketMiddleware    middleware.Middleware
	SessionRepository      domainSession.Repository
	SessionStateRepository domainSession.StateRepository
	JWTManager             jwt.Manager
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	DB     *database.DB
}

func NewContainer(ctx context.Context, di ContainerDI) (*Container, error) {
	cacheConfig := cache.Config{
		Host:     di.Cfg.Redis.Host,
		Port:     di.Cfg.Redis.Port,
		Password: di.Cfg.Redis.Password,
		DB:       di.Cfg.Redis.DB,
		TLS:      di.Cfg.Redis.TLS,
	}
	cacheInstance, err := cache.NewClient(cacheConfig, di.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %v", err)
	}
	cacheInstance.StartJanitor(time.Minute)

	recorder := prometheus.NewRecorder(prometheus.MetricsConfig{
		EnableLatency:     di.Cfg.Metrics.EnableLatency,
		EnableConnections: di.Cfg.Metrics.EnableConnections,
	})

	// repository
	sessionRepository := repository.NewSessionRepository(di.DB.DB)
	sessionStateRepository := repository.NewSessionStateRepository(cacheInstance)
	messageRepository := repository.NewMessageRepository(di.DB.DB)
	functionCallRepository := repository.NewFunctionCallRepository(di.DB.DB)
	audioBufferRepository := repository.NewAudioBufferRepository(di.DB.DB)
	rateLimitRepository := repository.NewRateLimitRepository(di.DB.DB)

	// backends
	providerLocator := providersFactory.NewProviderLocator(di.Cfg.Backends, cacheInstance, di.Logger, recorder.ObserveBackend)
	transcriber, err := providerLocator.Transcriber()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize transcription backend: %w", err)
	}
	generator, err := providerLocator.Generator(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize generation backend: %w", err)
	}
	synthesizer, err := providerLocator.Synthesizer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize synthesis backend: %w", err)
	}

	var audioArchive archive.Archive
	if di.Cfg.Archive.Enabled {
		audioArchive, err = archive.NewFileArchive(di.Cfg.Archive.Dir, di.Cfg.Archive.Codec)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize audio archive: %w", err)
		}
	}

	turnOrchestrator := orchestrator.New(orchestrator.Dependencies{
		Transcriber:   transcriber,
		Generator:     generator,
		Synthesizer:   synthesizer,
		Messages:      messageRepository,
		FunctionCalls: functionCallRepository,
		AudioBuffers:  audioBufferRepository,
		Archive:       audioArchive,
		Logger:        di.Logger,
		MaxTokens:     di.Cfg.Backends.Generation.MaxTokens,
	})

	// rate limits
	rt := di.Cfg.Realtime
	limiter := ratelimit.NewLimiter(
		cacheInstance.RedisClient(),
		map[string]ratelimit.Limit{
			domainRateLimit.NameRequests: {Limit: rt.RateLimitRequests, Window: rt.RateLimitWindow},
			domainRateLimit.NameTokens:   {Limit: rt.RateLimitTokens, Window: rt.RateLimitWindow},
		},
		&ratelimit.Options{
			Repository: rateLimitRepository,
			Logger:     di.Logger,
		},
	)

	// telemetry
	exporterLocator := infraTelemetry.NewProviderLocator(
		infraTelemetry.WithExporter(kafka.ExporterName, kafka.NewKafkaExporter()),
	)
	exporters, err := appTelemetry.NewTelemetryExportersBuilder(exporterLocator).Build(di.Cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry exporters: %w", err)
	}
	telemetryWorker := metrics.NewWorker(di.Logger, exporters, 1000)
	telemetryWorker.StartWorkers(4)

	engineCfg := rt.Engine()
	sessionRegistry := registry.New(registry.Dependencies{
		Config:        engineCfg,
		Sessions:      sessionRepository,
		States:        sessionStateRepository,
		Messages:      messageRepository,
		FunctionCalls: functionCallRepository,
		Orchestrator:  turnOrchestrator,
		Index:         conversation.NewIndex(),
		RateLimiter:   limiter,
		Exporter:      telemetryWorker,
		Admission:     websocket.NewSemaphore(engineCfg.MaxConcurrentSessions),
		Metrics:       recorder,
		Logger:        di.Logger,
	})

	jwtManager := jwt.NewJwtManager(&di.Cfg.Auth)

	// WebSocket handler transport
	wsHandlerTransport := &wsHandlers.HandlerTransportDTO{
		RealtimeHandler: wsHandlers.NewRealtimeHandler(di.Cfg, sessionRegistry, di.Logger),
	}

	// Handler Transport
	baseHandler := handlers.NewBaseHandler(di.Logger, di.Cfg, sessionRepository)
	modelCatalog := handlers.NewModelCatalog(di.Cfg)
	handlerTransport := &handlers.HandlerTransportDTO{
		// Version
		GetVersionHandler: handlers.NewGetVersionHandler(di.Logger),
		// Sessions
		GetSessionHandler:       handlers.NewGetSessionHandler(baseHandler, di.Logger, sessionRegistry, sessionStateRepository),
		ListMessagesHandler:     handlers.NewListMessagesHandler(baseHandler, di.Logger, messageRepository),
		ListAudioBuffersHandler: handlers.NewListAudioBuffersHandler(baseHandler, di.Logger, audioBufferRepository),
		// Clients
		ListRateLimitsHandler: handlers.NewListRateLimitsHandler(baseHandler, di.Logger, rateLimitRepository),
		// Generation and voice
		GenerateHandler:   handlers.NewGenerateHandler(di.Logger, generator, modelCatalog, engineCfg.DefaultTemperature),
		ChatHandler:       handlers.NewChatHandler(di.Logger, generator, modelCatalog, engineCfg.DefaultTemperature),
		ListModelsHandler: handlers.NewListModelsHandler(modelCatalog),
		TranscribeHandler: handlers.NewTranscribeHandler(di.Logger, transcriber, engineCfg.SampleRate),
		SpeechHandler:     handlers.NewSpeechHandler(di.Logger, synthesizer, engineCfg.DefaultVoice, engineCfg.SampleRate),
	}

	return &Container{
		Cache:                  cacheInstance,
		Registry:               sessionRegistry,
		Recorder:               recorder,
		TelemetryExporter:      telemetryWorker,
		HandlerTransport:       handlerTransport,
		WSHandlerTransport:     wsHandlerTransport,
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(di.Logger),
		AuthMiddleware:         middleware.NewAuthMiddleware(di.Cfg, jwtManager, di.Logger),
		UserAgentMiddleware:    middleware.NewUserAgentMiddleware(),
		WebSocketMiddleware:    middleware.NewWebsocketMiddleware(di.Cfg, di.Logger),
		SessionRepository:      sessionRepository,
		SessionStateRepository: sessionStateRepository,
		JWTManager:             jwtManager,
	}, nil
}
