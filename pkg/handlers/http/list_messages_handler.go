package http

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/message"
	"github.com/NeuralTrust/RealtimeGateway/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type listMessagesHandler struct {
	*BaseHandler
	logger *logrus.Logger
	repo   message.Repository
}

func NewListMessagesHandler(base *BaseHandler, logger *logrus.Logger, repo message.Repository) Handler {
	return &listMessagesHandler{
		BaseHandler: base,
		logger:      logger,
		repo:        repo,
	}
}

// Handle @Summary List session messages
// @Description Returns the conversation messages of a session in creation order
// @Tags Sessions
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} response.ListOutput[message.Message] "Messages"
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Router /v1/realtime/sessions/{session_id}/messages [get]
func (h *listMessagesHandler) Handle(c *fiber.Ctx) error {
	entity, err := h.LoadSession(c)
	if entity == nil {
		return err
	}

	messages, err := h.repo.ListBySession(c.Context(), entity.ID)
	if err != nil {
		h.logger.WithError(err).WithField("session_id", entity.ID.String()).Error("failed to list messages")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list messages"})
	}
	return c.Status(fiber.StatusOK).JSON(response.NewListOutput(messages))
}
