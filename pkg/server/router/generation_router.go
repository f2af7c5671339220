package router

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	handlers "github.com/NeuralTrust/RealtimeGateway/pkg/handlers/http"
	"github.com/NeuralTrust/RealtimeGateway/pkg/server/middleware"
	"github.com/gofiber/fiber/v2"
)

type generationRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
	config              *config.Config
}

// NewGenerationRouter exposes the stateless generation and voice endpoints
// served by the same backends as realtime sessions.
func NewGenerationRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
	cfg *config.Config,
) ServerRouter {
	return &generationRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
		config:              cfg,
	}
}

func (r *generationRouter) BuildRoutes(router *fiber.App) error {
	handlerTransport, ok := r.handlerTransport.GetTransport().(*handlers.HandlerTransportDTO)
	if !ok {
		return ErrInvalidHandlerTransport
	}

	// Routes are registered one by one so the chain does not leak onto
	// the other /v1 prefixes.
	chain := func(h handlers.Handler) []fiber.Handler {
		return append(r.middlewareTransport.Handlers(), h.Handle)
	}
	router.Post("/v1/generate", chain(handlerTransport.GenerateHandler)...)
	router.Post("/v1/chat", chain(handlerTransport.ChatHandler)...)
	router.Get("/v1/models", chain(handlerTransport.ListModelsHandler)...)
	router.Post("/v1/transcribe", chain(handlerTransport.TranscribeHandler)...)
	router.Get("/v1/speech", chain(handlerTransport.SpeechHandler)...)
	return nil
}
