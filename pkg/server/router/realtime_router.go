package router

import (
	"net/http"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	wsHandlers "github.com/NeuralTrust/RealtimeGateway/pkg/handlers/websocket"
	"github.com/NeuralTrust/RealtimeGateway/pkg/server/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const (
	PingPath = "/__/ping"
)

type realtimeRouter struct {
	middlewareTransport *middleware.Transport
	wsHandlerTransport  wsHandlers.HandlerTransport
	config              *config.Config
}

func NewRealtimeRouter(
	middlewareTransport *middleware.Transport,
	wsHandlerTransport wsHandlers.HandlerTransport,
	cfg *config.Config,
) ServerRouter {
	return &realtimeRouter{
		middlewareTransport: middlewareTransport,
		wsHandlerTransport:  wsHandlerTransport,
		config:              cfg,
	}
}

func (r *realtimeRouter) BuildRoutes(router *fiber.App) error {
	wsHandlerTransport, ok := r.wsHandlerTransport.GetTransport().(*wsHandlers.HandlerTransportDTO)
	if !ok {
		return ErrInvalidHandlerTransport
	}

	router.Get(PingPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusOK).JSON(fiber.Map{
			"message": "pong",
		})
	})

	handlers := append(r.middlewareTransport.Handlers(), websocket.New(
		wsHandlerTransport.RealtimeHandler.Handle,
		websocket.Config{
			HandshakeTimeout: 15 * time.Second,
			ReadBufferSize:   16 * 1024,
			WriteBufferSize:  16 * 1024,
		},
	))
	router.Get(r.config.WebSocket.Path, handlers...)
	return nil
}
