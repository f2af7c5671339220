package middleware

import (
	"strings"

	"github.com/NeuralTrust/RealtimeGateway/pkg/common"
	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/auth/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type authMiddleware struct {
	enabled bool
	manager jwt.Manager
	logger  *logrus.Logger
}

// NewAuthMiddleware resolves the client identity of a request. With auth
// enabled a valid bearer token is required; otherwise the identity comes from
// the client id header or query parameter, or a generated anonymous id.
func NewAuthMiddleware(cfg *config.Config, manager jwt.Manager, logger *logrus.Logger) Middleware {
	return &authMiddleware{
		enabled: cfg.Auth.Enabled,
		manager: manager,
		logger:  logger,
	}
}

func (m *authMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.enabled {
			token := bearerToken(c.Get(common.AuthorizationHeader))
			if token == "" {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "bearer token required"})
			}
			clientID, err := m.manager.ClientID(token)
			if err != nil {
				m.logger.WithError(err).Debug("rejecting request with invalid token")
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
			}
			c.Locals(common.ClientIDLocal, clientID)
			return c.Next()
		}

		clientID := c.Get(common.ClientIDHeader)
		if clientID == "" {
			clientID = c.Query(common.ClientIDQuery)
		}
		if clientID == "" {
			clientID = common.AnonymousClientPrefix + uuid.NewString()
		}
		c.Locals(common.ClientIDLocal, clientID)
		return c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) <= len(common.BearerPrefix) || !strings.EqualFold(header[:len(common.BearerPrefix)], common.BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(common.BearerPrefix):])
}
