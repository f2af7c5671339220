package middleware

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type websocketMiddleware struct {
	path   string
	logger *logrus.Logger
}

// NewWebsocketMiddleware rejects plain HTTP requests to the realtime path
// with 426 Upgrade Required.
func NewWebsocketMiddleware(cfg *config.Config, logger *logrus.Logger) Middleware {
	return &websocketMiddleware{
		path:   cfg.WebSocket.Path,
		logger: logger,
	}
}

func (m *websocketMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() != m.path {
			return c.Next()
		}
		if !websocket.IsWebSocketUpgrade(c) {
			m.logger.WithField("path", c.Path()).Debug("rejecting non-upgrade request")
			return c.Status(fiber.StatusUpgradeRequired).JSON(fiber.Map{
				"error": "websocket upgrade required",
			})
		}
		return c.Next()
	}
}
