package http

import (
	"context"

	"github.com/NeuralTrust/RealtimeGateway/pkg/handlers/http/request"
	"github.com/NeuralTrust/RealtimeGateway/pkg/handlers/http/response"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type chatHandler struct {
	logger             *logrus.Logger
	generator          providers.Generator
	catalog            *ModelCatalog
	defaultTemperature float64
}

func NewChatHandler(
	logger *logrus.Logger,
	generator providers.Generator,
	catalog *ModelCatalog,
	defaultTemperature float64,
) Handler {
	return &chatHandler{
		logger:             logger,
		generator:          generator,
		catalog:            catalog,
		defaultTemperature: defaultTemperature,
	}
}

// Handle @Summary Chat with a model
// @Description Answers the next assistant message of a stateless conversation, optionally streamed as server-sent events
// @Tags Generation
// @Accept json
// @Produce json
// @Param request body request.ChatRequest true "Chat request"
// @Success 200 {object} response.ChatOutput "Assistant message"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 502 {object} map[string]interface{} "Generation backend failed"
// @Router /v1/chat [post]
func (h *chatHandler) Handle(c *fiber.Ctx) error {
	var req request.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Error("failed to bind chat request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	model, err := h.catalog.Resolve(req.Model)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	genReq := providers.GenerationRequest{
		Model:        model,
		Instructions: req.System,
		Temperature:  h.defaultTemperature,
		Messages:     make([]providers.ChatMessage, 0, len(req.Messages)),
	}
	if req.Temperature != nil {
		genReq.Temperature = *req.Temperature
	}
	for _, m := range req.Messages {
		genReq.Messages = append(genReq.Messages, providers.ChatMessage{Role: providers.Role(m.Role), Content: m.Content})
	}

	if req.Stream {
		return streamEvents(c, h.logger, func(ctx context.Context, send func(v interface{}) error) error {
			res, err := h.generator.Generate(ctx, genReq, func(chunk providers.GenerationChunk) error {
				if chunk.Text == "" {
					return nil
				}
				return send(response.ChatOutput{
					Model:     model,
					CreatedAt: timestamp(),
					Message:   response.ChatMessageOutput{Role: string(providers.RoleAssistant), Content: chunk.Text},
				})
			})
			if err != nil {
				return err
			}
			if res == nil {
				res = &providers.GenerationResult{}
			}
			return send(response.ChatOutput{
				Model:     model,
				CreatedAt: timestamp(),
				Message:   response.ChatMessageOutput{Role: string(providers.RoleAssistant)},
				Done:      true,
				Usage:     usageOf(res.Usage),
			})
		})
	}

	res, err := h.generator.Generate(c.Context(), genReq, func(providers.GenerationChunk) error { return nil })
	if err != nil {
		h.logger.WithError(err).WithField("model", model).Error("chat generation failed")
		return c.Status(backendStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	if res == nil {
		res = &providers.GenerationResult{}
	}
	return c.Status(fiber.StatusOK).JSON(response.ChatOutput{
		Model:     model,
		CreatedAt: timestamp(),
		Message:   response.ChatMessageOutput{Role: string(providers.RoleAssistant), Content: res.Text},
		Done:      true,
		Usage:     usageOf(res.Usage),
	})
}
