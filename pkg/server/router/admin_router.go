package router

import (
	"fmt"

	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	handlers "github.com/NeuralTrust/RealtimeGateway/pkg/handlers/http"
	"github.com/NeuralTrust/RealtimeGateway/pkg/server/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

type adminRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
	config              *config.Config
}

// NewAdminRouter exposes the read-only session inspection API.
func NewAdminRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
	cfg *config.Config,
) ServerRouter {
	return &adminRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
		config:              cfg,
	}
}

func (r *adminRouter) BuildRoutes(router *fiber.App) error {
	handlerTransport, ok := r.handlerTransport.GetTransport().(*handlers.HandlerTransportDTO)
	if !ok {
		return ErrInvalidHandlerTransport
	}

	router.Static("/swagger.json", "./docs/swagger.json")

	router.Get("/docs/*", swagger.New(swagger.Config{
		URL: fmt.Sprintf("http://localhost:%d/swagger.json", r.config.Server.Port),
	}))

	router.Get("/version", handlerTransport.GetVersionHandler.Handle)

	sessions := router.Group("/v1/realtime/sessions", r.middlewareTransport.Handlers()...)
	{
		sessions.Get("/:session_id", handlerTransport.GetSessionHandler.Handle)
		sessions.Get("/:session_id/messages", handlerTransport.ListMessagesHandler.Handle)
		sessions.Get("/:session_id/audio", handlerTransport.ListAudioBuffersHandler.Handle)
	}

	clients := router.Group("/v1/realtime/clients", r.middlewareTransport.Handlers()...)
	{
		clients.Get("/:client_id/rate_limits", handlerTransport.ListRateLimitsHandler.Handle)
	}
	return nil
}
