package middleware

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/common"
	"github.com/NeuralTrust/RealtimeGateway/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type userAgentMiddleware struct{}

// NewUserAgentMiddleware stores session metadata derived from the client's
// User-Agent and Accept-Language headers.
func NewUserAgentMiddleware() Middleware {
	return &userAgentMiddleware{}
}

func (m *userAgentMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(fiber.HeaderUserAgent)
		metadata := map[string]interface{}{}
		if raw != "" {
			metadata["user_agent"] = raw
		}
		for k, v := range utils.ParseUserAgent(raw, c.Get(fiber.HeaderAcceptLanguage)).Metadata() {
			metadata[k] = v
		}
		c.Locals(common.UserAgentLocal, raw)
		c.Locals(common.MetadataLocal, metadata)
		return c.Next()
	}
}
