package server

import (
	"context"
	"fmt"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/prometheus"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/registry"
	"github.com/NeuralTrust/RealtimeGateway/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

type (
	GatewayServerDI struct {
		Config   *config.Config
		Logger   *logrus.Logger
		Registry *registry.Registry
		Routers  []router.ServerRouter
	}
	GatewayServer struct {
		*BaseServer
		registry *registry.Registry
	}
)

func NewGatewayServer(di GatewayServerDI) *GatewayServer {
	if di.Config.Metrics.Enabled {
		prometheus.Initialize(prometheus.MetricsConfig{
			EnableLatency:     di.Config.Metrics.EnableLatency,
			EnableConnections: di.Config.Metrics.EnableConnections,
		})
	}

	s := &GatewayServer{
		BaseServer: NewBaseServer(di.Config, di.Logger),
		registry:   di.Registry,
	}
	s.setupHealthCheck(s.health)
	s.WithRouters(di.Routers...)
	s.setupMetricsEndpoint()
	return s
}

func (s *GatewayServer) Run() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting realtime gateway server")
	return s.Router.Listen(addr)
}

// Shutdown closes every live session before stopping the listener so that
// clients receive a going-away close frame.
func (s *GatewayServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if s.registry != nil {
		if err := s.registry.CloseAll(ctx); err != nil {
			s.Logger.WithError(err).Error("failed to close live sessions")
		}
	}
	s.shutdownMetrics()
	return s.Router.ShutdownWithContext(ctx)
}

func (s *GatewayServer) health() fiber.Map {
	if s.registry == nil {
		return nil
	}
	return fiber.Map{"live_sessions": s.registry.Count()}
}
