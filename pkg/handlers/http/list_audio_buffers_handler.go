package http

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/audiobuffer"
	"github.com/NeuralTrust/RealtimeGateway/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type listAudioBuffersHandler struct {
	*BaseHandler
	logger *logrus.Logger
	repo   audiobuffer.Repository
}

func NewListAudioBuffersHandler(base *BaseHandler, logger *logrus.Logger, repo audiobuffer.Repository) Handler {
	return &listAudioBuffersHandler{
		BaseHandler: base,
		logger:      logger,
		repo:        repo,
	}
}

// Handle @Summary List archived audio of a session
// @Tags Sessions
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} response.ListOutput[audiobuffer.AudioBuffer] "Audio buffers"
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Router /v1/realtime/sessions/{session_id}/audio [get]
func (h *listAudioBuffersHandler) Handle(c *fiber.Ctx) error {
	entity, err := h.LoadSession(c)
	if entity == nil {
		return err
	}

	buffers, err := h.repo.ListBySession(c.Context(), entity.ID)
	if err != nil {
		h.logger.WithError(err).WithField("session_id", entity.ID.String()).Error("failed to list audio buffers")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list audio buffers"})
	}
	return c.Status(fiber.StatusOK).JSON(response.NewListOutput(buffers))
}
