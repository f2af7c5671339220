package http

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// streamTimeout bounds a streamed backend call once the handler has returned.
const streamTimeout = 5 * time.Minute

// streamEvents answers with a text/event-stream body produced by run. run
// writes through send and stops when send fails.
func streamEvents(c *fiber.Ctx, logger *logrus.Logger, run func(ctx context.Context, send func(v interface{}) error) error) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), streamTimeout)
		defer cancel()
		send := func(v interface{}) error {
			return writeEvent(w, v)
		}
		if err := run(ctx, send); err != nil {
			logger.WithError(err).Error("event stream failed")
			_ = send(fiber.Map{"error": err.Error(), "done": true})
		}
	})
	return nil
}

func writeEvent(w *bufio.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return w.Flush()
}

// backendStatus maps a backend failure onto the HTTP status returned to
// the caller.
func backendStatus(err error) int {
	if providers.IsTransient(err) {
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusBadGateway
}

func usageOf(u providers.Usage) *providers.Usage {
	if u.TotalTokens == 0 && u.PromptTokens == 0 && u.CompletionTokens == 0 {
		return nil
	}
	return &u
}
