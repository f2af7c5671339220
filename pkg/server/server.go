package server

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/prometheus"
	"github.com/NeuralTrust/RealtimeGateway/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	AdminHealthPath = "/__/health"

	// Transcription uploads are the largest requests; realtime frames
	// arrive after the upgrade and are not bound by it.
	maxRequestBody = 25 * 1024 * 1024
	// Upgrade requests carry bearer tokens and browser headers.
	readBufferSize = 16 * 1024
)

type Server interface {
	Run() error
	Shutdown() error
}

// HealthReporter adds fields to the health payload.
type HealthReporter func() fiber.Map

type BaseServer struct {
	Config     *config.Config
	Logger     *logrus.Logger
	Router     *fiber.App
	metricsApp *fiber.App
}

func NewBaseServer(config *config.Config, logger *logrus.Logger) *BaseServer {
	r := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Network:               fiber.NetworkTCP,
		BodyLimit:             maxRequestBody,
		ReadBufferSize:        readBufferSize,
		ReadTimeout:           config.Server.ReadTimeout,
		WriteTimeout:          config.Server.WriteTimeout,
		// Idle applies to keep-alive HTTP only; upgraded sockets are governed
		// by the ping/pong deadlines of the realtime handler.
		IdleTimeout: 120 * time.Second,
	})

	r.Server().NoDefaultServerHeader = true
	r.Server().NoDefaultDate = true

	return &BaseServer{
		Config: config,
		Logger: logger,
		Router: r,
	}
}

func (s *BaseServer) setupHealthCheck(report HealthReporter) {
	payload := func(status string) fiber.Map {
		out := fiber.Map{
			"status": status,
			"time":   time.Now().UTC().Format(time.RFC3339),
		}
		if report != nil {
			for k, v := range report() {
				out[k] = v
			}
		}
		return out
	}
	s.Router.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(payload("healthy"))
	})
	s.Router.Get(AdminHealthPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(payload("ok"))
	})
}

func (s *BaseServer) WithRouters(routers ...router.ServerRouter) *BaseServer {
	for _, r := range routers {
		if err := r.BuildRoutes(s.Router); err != nil {
			s.Logger.WithError(err).Error("failed to build routes")
		}
	}
	return s
}

// setupMetricsEndpoint serves /metrics on its own port so scrapes never
// share the listener with realtime clients.
func (s *BaseServer) setupMetricsEndpoint() {
	if !s.Config.Metrics.Enabled {
		s.Logger.Info("prometheus metrics are disabled by configuration")
		return
	}
	if s.metricsApp != nil {
		return
	}

	s.metricsApp = fiber.New(fiber.Config{DisableStartupMessage: true})
	s.metricsApp.Use(recover.New())

	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(prometheus.Gatherer(), promhttp.HandlerOpts{}))
	s.metricsApp.Get("/metrics", func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	})

	app := s.metricsApp
	go func() {
		addr := fmt.Sprintf(":%d", s.Config.Server.MetricsPort)
		s.Logger.WithField("addr", addr).Info("starting metrics server")
		if err := app.Listen(addr); err != nil && !errors.Is(err, syscall.EADDRINUSE) && !errors.Is(err, net.ErrClosed) {
			s.Logger.WithError(err).Error("failed to start metrics server")
		}
	}()
}

func (s *BaseServer) shutdownMetrics() {
	if s.metricsApp == nil {
		return
	}
	if err := s.metricsApp.Shutdown(); err != nil {
		s.Logger.WithError(err).Warn("failed to stop metrics server")
	}
}
