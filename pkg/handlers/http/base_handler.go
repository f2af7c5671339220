package http

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/common"
	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BaseHandler resolves the session addressed by the :session_id path
// parameter. With auth enabled a client only sees its own sessions.
type BaseHandler struct {
	logger   *logrus.Logger
	cfg      *config.Config
	sessions session.Repository
}

func NewBaseHandler(logger *logrus.Logger, cfg *config.Config, sessions session.Repository) *BaseHandler {
	return &BaseHandler{
		logger:   logger,
		cfg:      cfg,
		sessions: sessions,
	}
}

// LoadSession returns the session or writes the error response. A nil
// session means the response has been written.
func (h *BaseHandler) LoadSession(c *fiber.Ctx) (*session.Session, error) {
	id, err := uuid.Parse(c.Params("session_id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid session id"})
	}

	entity, err := h.sessions.GetByID(c.Context(), id)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return nil, h.notFound(c)
		}
		h.logger.WithError(err).WithField("session_id", id.String()).Error("failed to get session")
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to get session"})
	}

	if h.cfg.Auth.Enabled {
		clientID, _ := c.Locals(common.ClientIDLocal).(string)
		if clientID != entity.ClientID {
			return nil, h.notFound(c)
		}
	}
	return entity, nil
}

// ClientAllowed reports whether the caller may read data of clientID.
func (h *BaseHandler) ClientAllowed(c *fiber.Ctx, clientID string) bool {
	if !h.cfg.Auth.Enabled {
		return true
	}
	caller, _ := c.Locals(common.ClientIDLocal).(string)
	return caller == clientID
}

func (h *BaseHandler) notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "session not found"})
}
