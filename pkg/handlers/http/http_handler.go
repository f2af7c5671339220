package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport interface {
	GetTransport() HandlerTransport
}

type HandlerTransportDTO struct {
	// Version
	GetVersionHandler Handler

	// Sessions
	GetSessionHandler       Handler
	ListMessagesHandler     Handler
	ListAudioBuffersHandler Handler

	// Clients
	ListRateLimitsHandler Handler

	// Generation and voice
	GenerateHandler   Handler
	ChatHandler       Handler
	ListModelsHandler Handler
	TranscribeHandler Handler
	SpeechHandler     Handler
}

func (t *HandlerTransportDTO) GetTransport() HandlerTransport {
	return t
}
