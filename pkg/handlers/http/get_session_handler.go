package http

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	"github.com/NeuralTrust/RealtimeGateway/pkg/handlers/http/response"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/registry"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getSessionHandler struct {
	*BaseHandler
	logger   *logrus.Logger
	registry *registry.Registry
	states   session.StateRepository
}

func NewGetSessionHandler(
	base *BaseHandler,
	logger *logrus.Logger,
	reg *registry.Registry,
	states session.StateRepository,
) Handler {
	return &getSessionHandler{
		BaseHandler: base,
		logger:      logger,
		registry:    reg,
		states:      states,
	}
}

// Handle @Summary Retrieve a realtime session
// @Description Returns the stored session, whether it is live on this node and its shared state
// @Tags Sessions
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} response.SessionOutput "Session details"
// @Failure 400 {object} map[string]interface{} "Invalid session ID"
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Router /v1/realtime/sessions/{session_id} [get]
func (h *getSessionHandler) Handle(c *fiber.Ctx) error {
	entity, err := h.LoadSession(c)
	if entity == nil {
		return err
	}

	out := response.SessionOutput{Session: entity}
	if handle, ok := h.registry.Get(entity.ID); ok {
		out.Live = true
		out.TurnState = handle.Controller.State().String()
		out.Busy = handle.Controller.Busy()
	}
	if h.states != nil {
		state, err := h.states.GetState(c.Context(), entity.ID)
		switch {
		case err == nil:
			out.State = state
		case !domain.IsNotFoundError(err):
			h.logger.WithError(err).WithField("session_id", entity.ID.String()).Warn("failed to get session state")
		}
	}
	return c.Status(fiber.StatusOK).JSON(out)
}
