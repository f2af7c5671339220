package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/common"
	"github.com/NeuralTrust/RealtimeGateway/pkg/config"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/protocol"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/registry"
	"github.com/gofiber/contrib/websocket"
	"github.com/sirupsen/logrus"
)

const (
	defaultPingPeriod   = 30 * time.Second
	defaultPongWait     = 60 * time.Second
	defaultWriteTimeout = 10 * time.Second
	closeTimeout        = 5 * time.Second
)

type realtimeHandler struct {
	registry     *registry.Registry
	logger       *logrus.Logger
	pingPeriod   time.Duration
	pongWait     time.Duration
	writeTimeout time.Duration
	outBuffer    int
}

func NewRealtimeHandler(cfg *config.Config, reg *registry.Registry, logger *logrus.Logger) Handler {
	h := &realtimeHandler{
		registry:     reg,
		logger:       logger,
		pingPeriod:   cfg.WebSocket.PingPeriod,
		pongWait:     cfg.WebSocket.PongWait,
		writeTimeout: cfg.WebSocket.WriteTimeout,
		outBuffer:    cfg.WebSocket.OutboundBuffer,
	}
	if h.pingPeriod <= 0 {
		h.pingPeriod = defaultPingPeriod
	}
	if h.pongWait <= 0 {
		h.pongWait = defaultPongWait
	}
	if h.pongWait <= h.pingPeriod {
		h.pongWait = h.pingPeriod * 2
	}
	if h.writeTimeout <= 0 {
		h.writeTimeout = defaultWriteTimeout
	}
	return h
}

func (h *realtimeHandler) Handle(c *websocket.Conn) {
	clientID, _ := c.Locals(common.ClientIDLocal).(string)
	cfg := session.Config{
		Model:    c.Query(common.ModelQuery),
		Metadata: map[string]interface{}{},
	}
	if md, ok := c.Locals(common.MetadataLocal).(map[string]interface{}); ok {
		for k, v := range md {
			cfg.Metadata[k] = v
		}
	}

	writerDone := make(chan struct{})
	emitter := newConnEmitter(h.outBuffer, writerDone)

	ctx := context.Background()
	handle, err := h.registry.Open(ctx, clientID, cfg, emitter)
	if err != nil {
		h.logger.WithError(err).WithField("client_id", clientID).Warn("failed to open realtime session")
		h.reject(c, err)
		return
	}
	log := h.logger.WithFields(logrus.Fields{
		"session_id": handle.Session.ID.String(),
		"client_id":  clientID,
	})

	stop := make(chan registry.CloseReason, 1)
	go h.write(c, emitter, stop, writerDone, log)

	readErr := make(chan registry.CloseReason, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		readErr <- h.read(ctx, c, handle, log)
	}()

	var reason registry.CloseReason
	select {
	case reason = <-readErr:
	case <-handle.Closed():
		reason = handle.Reason()
	case <-writerDone:
		reason = registry.ReasonError
	}

	closeCtx, cancel := context.WithTimeout(ctx, closeTimeout)
	defer cancel()
	if err := h.registry.Close(closeCtx, handle, reason); err != nil {
		log.WithError(err).Error("failed to close realtime session")
	}
	if r := handle.Reason(); r != "" {
		reason = r
	}

	stop <- reason
	<-writerDone
	_ = c.SetReadDeadline(time.Now())
	wg.Wait()
	log.WithField("reason", string(reason)).Debug("realtime connection finished")
}

// read forwards client frames to the session until the connection fails.
func (h *realtimeHandler) read(ctx context.Context, c *websocket.Conn, handle *registry.Handle, log *logrus.Entry) registry.CloseReason {
	_ = c.SetReadDeadline(time.Now().Add(h.pongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(h.pongWait))
	})

	for {
		msgType, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				select {
				case <-handle.Closed():
				default:
					log.WithError(err).Warn("realtime connection read failed")
				}
				return registry.ReasonError
			}
			return registry.ReasonClientClosed
		}
		_ = c.SetReadDeadline(time.Now().Add(h.pongWait))
		if msgType != websocket.TextMessage {
			h.emitError(ctx, handle, domain.NewError(domain.CodeProtocol, "only text frames are supported"), "")
			continue
		}

		cmd, err := protocol.Decode(raw)
		if err != nil {
			h.emitError(ctx, handle, err, "")
			continue
		}
		if err := handle.Controller.Submit(cmd); err != nil {
			if domain.IsCode(err, domain.CodeSessionClosed) {
				return registry.ReasonClientClosed
			}
			h.emitError(ctx, handle, err, cmd.EventID())
		}
	}
}

func (h *realtimeHandler) emitError(ctx context.Context, handle *registry.Handle, err error, eventID string) {
	if emitErr := handle.Controller.Emit(ctx, protocol.NewErrorEvent(err, eventID)); emitErr != nil {
		h.logger.WithError(emitErr).Debug("failed to emit error event")
	}
}

// write is the only goroutine writing to c. It drains the queue and sends
// a close frame once a reason arrives on stop.
func (h *realtimeHandler) write(
	c *websocket.Conn,
	emitter *connEmitter,
	stop <-chan registry.CloseReason,
	done chan<- struct{},
	log *logrus.Entry,
) {
	defer close(done)
	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case b := <-emitter.out:
			if err := h.writeText(c, b); err != nil {
				log.WithError(err).Debug("realtime connection write failed")
				return
			}
		case <-ticker.C:
			if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.writeTimeout)); err != nil {
				log.WithError(err).Debug("realtime connection ping failed")
				return
			}
		case reason := <-stop:
		drain:
			for {
				select {
				case b := <-emitter.out:
					if err := h.writeText(c, b); err != nil {
						return
					}
				default:
					break drain
				}
			}
			code, text := closeFrame(reason)
			_ = c.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), time.Now().Add(h.writeTimeout))
			return
		}
	}
}

func (h *realtimeHandler) writeText(c *websocket.Conn, b []byte) error {
	if err := c.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, b)
}

// reject reports a failed session open on a connection that has no session.
func (h *realtimeHandler) reject(c *websocket.Conn, err error) {
	deadline := time.Now().Add(h.writeTimeout)
	if b, encErr := protocol.NewEncoder("").Encode(protocol.NewErrorEvent(err, "")); encErr == nil {
		_ = c.SetWriteDeadline(deadline)
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
	code := websocket.CloseInternalServerErr
	switch domain.CodeOf(err) {
	case domain.CodeCapacityExceeded, domain.CodeValidation:
		code = websocket.ClosePolicyViolation
	}
	_ = c.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, string(domain.CodeOf(err))), deadline)
}

func closeFrame(reason registry.CloseReason) (int, string) {
	switch reason {
	case registry.ReasonShutdown:
		return websocket.CloseGoingAway, string(reason)
	case registry.ReasonError:
		return websocket.CloseInternalServerErr, string(reason)
	default:
		return websocket.CloseNormalClosure, string(reason)
	}
}
