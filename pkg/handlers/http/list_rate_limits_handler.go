package http

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/ratelimit"
	"github.com/NeuralTrust/RealtimeGateway/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type listRateLimitsHandler struct {
	*BaseHandler
	logger *logrus.Logger
	repo   ratelimit.Repository
}

func NewListRateLimitsHandler(base *BaseHandler, logger *logrus.Logger, repo ratelimit.Repository) Handler {
	return &listRateLimitsHandler{
		BaseHandler: base,
		logger:      logger,
		repo:        repo,
	}
}

// Handle @Summary List rate limit snapshots of a client
// @Tags Clients
// @Produce json
// @Param client_id path string true "Client ID"
// @Success 200 {object} response.ListOutput[ratelimit.RateLimit] "Rate limits"
// @Failure 404 {object} map[string]interface{} "Client not found"
// @Router /v1/realtime/clients/{client_id}/rate_limits [get]
func (h *listRateLimitsHandler) Handle(c *fiber.Ctx) error {
	clientID := c.Params("client_id")
	if clientID == "" || !h.ClientAllowed(c, clientID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "client not found"})
	}

	limits, err := h.repo.ListByClient(c.Context(), clientID)
	if err != nil {
		h.logger.WithError(err).WithField("client_id", clientID).Error("failed to list rate limits")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list rate limits"})
	}
	return c.Status(fiber.StatusOK).JSON(response.NewListOutput(limits))
}
