package http

import (
	"context"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/handlers/http/request"
	"github.com/NeuralTrust/RealtimeGateway/pkg/handlers/http/response"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type generateHandler struct {
	logger             *logrus.Logger
	generator          providers.Generator
	catalog            *ModelCatalog
	defaultTemperature float64
}

func NewGenerateHandler(
	logger *logrus.Logger,
	generator providers.Generator,
	catalog *ModelCatalog,
	defaultTemperature float64,
) Handler {
	return &generateHandler{
		logger:             logger,
		generator:          generator,
		catalog:            catalog,
		defaultTemperature: defaultTemperature,
	}
}

// Handle @Summary Generate a completion
// @Description Generates a single answer for a prompt, optionally streamed as server-sent events
// @Tags Generation
// @Accept json
// @Produce json
// @Param request body request.GenerateRequest true "Generation request"
// @Success 200 {object} response.GenerateOutput "Generated answer"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 502 {object} map[string]interface{} "Generation backend failed"
// @Router /v1/generate [post]
func (h *generateHandler) Handle(c *fiber.Ctx) error {
	var req request.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Error("failed to bind generate request")
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
		Messages:     []providers.ChatMessage{{Role: providers.RoleUser, Content: req.Prompt}},
	}
	if req.Temperature != nil {
		genReq.Temperature = *req.Temperature
	}

	if req.Stream {
		return streamEvents(c, h.logger, func(ctx context.Context, send func(v interface{}) error) error {
			res, err := h.generator.Generate(ctx, genReq, func(chunk providers.GenerationChunk) error {
				if chunk.Text == "" {
					return nil
				}
				return send(response.GenerateOutput{
					Model:     model,
					CreatedAt: timestamp(),
					Response:  chunk.Text,
				})
			})
			if err != nil {
				return err
			}
			if res == nil {
				res = &providers.GenerationResult{}
			}
			return send(response.GenerateOutput{Model: model, CreatedAt: timestamp(), Done: true, Usage: usageOf(res.Usage)})
		})
	}

	res, err := h.generator.Generate(c.Context(), genReq, func(providers.GenerationChunk) error { return nil })
	if err != nil {
		h.logger.WithError(err).WithField("model", model).Error("generation failed")
		return c.Status(backendStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	if res == nil {
		res = &providers.GenerationResult{}
	}
	return c.Status(fiber.StatusOK).JSON(response.GenerateOutput{
		Model:     model,
		CreatedAt: timestamp(),
		Response:  res.Text,
		Done:      true,
		Usage:     usageOf(res.Usage),
	})
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
