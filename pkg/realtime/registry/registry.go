package registry

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/functioncall"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/message"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/telemetry"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/websocket"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/conversation"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/protocol"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/turn"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const storeTimeout = 5 * time.Second

type CloseReason string

const (
	ReasonClientClosed CloseReason = "client_closed"
	ReasonIdleTimeout  CloseReason = "idle_timeout"
	ReasonShutdown     CloseReason = "shutdown"
	ReasonError        CloseReason = "error"
)

var ErrCapacityExceeded = domain.NewError(domain.CodeCapacityExceeded, "maximum number of concurrent sessions reached")

// Admission bounds the number of live sessions. Acquire must not block.
type Admission interface {
	Acquire() bool
	Release()
}

type Metrics interface {
	turn.Metrics
	SessionOpened()
	SessionClosed(status string)
}

type Dependencies struct {
	Config        realtime.Config
	Sessions      session.Repository
	States        session.StateRepository
	Messages      message.Repository
	FunctionCalls functioncall.Repository
	Orchestrator  turn.Orchestrator
	Index         *conversation.Index
	RateLimiter   turn.RateLimiter
	Exporter      telemetry.Exporter
	Admission     Admission
	Metrics       Metrics
	Logger        *logrus.Logger
	Clock         func() time.Time
	// WatchdogInterval is how often idle sessions are looked for.
	WatchdogInterval time.Duration
}

// Handle is a live session owned by the registry.
type Handle struct {
	Session    *session.Session
	Controller *turn.Controller
	// Done is closed once the session worker has stopped.
	Done <-chan struct{}

	cancel    context.CancelFunc
	stopped   chan struct{}
	closed    chan struct{}
	closing   atomic.Bool
	runErr    error
	reason    CloseReason
	userAgent string
}

// Reason reports why the session was closed. It is empty while the session
// is live.
func (h *Handle) Reason() CloseReason {
	select {
	case <-h.closed:
		return h.reason
	default:
		return ""
	}
}

// Closed is closed once Close has finished for the session.
func (h *Handle) Closed() <-chan struct{} {
	return h.closed
}

// Registry owns every live session on this node.
type Registry struct {
	deps     Dependencies
	cfg      realtime.Config
	log      *logrus.Logger
	now      func() time.Time
	interval time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Handle
}

func New(deps Dependencies) *Registry {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Index == nil {
		deps.Index = conversation.NewIndex()
	}
	if deps.Exporter == nil {
		deps.Exporter = telemetry.NoopExporter()
	}
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	if deps.Admission == nil {
		deps.Admission = websocket.NewSemaphore(deps.Config.MaxConcurrentSessions)
	}
	interval := deps.WatchdogInterval
	if interval <= 0 {
		interval = watchdogInterval(deps.Config.IdleTimeout())
	}
	return &Registry{
		deps:     deps,
		cfg:      deps.Config,
		log:      deps.Logger,
		now:      deps.Clock,
		interval: interval,
		sessions: make(map[uuid.UUID]*Handle),
	}
}

func watchdogInterval(idle time.Duration) time.Duration {
	d := idle / 10
	switch {
	case d < 10*time.Millisecond:
		return 10 * time.Millisecond
	case d > 5*time.Second:
		return 5 * time.Second
	default:
		return d
	}
}

// Open validates cfg, admits the session and starts its worker. Events of
// the new session are delivered through emitter.
func (r *Registry) Open(ctx context.Context, clientID string, cfg session.Config, emitter turn.Emitter) (*Handle, error) {
	cfg = r.withDefaults(cfg)
	if err := r.validate(cfg); err != nil {
		return nil, err
	}
	if !r.deps.Admission.Acquire() {
		return nil, ErrCapacityExceeded
	}

	sess := session.New(clientID, cfg)
	if err := r.deps.Sessions.Save(ctx, sess); err != nil {
		r.deps.Admission.Release()
		return nil, domain.WrapError(domain.CodeInternal, "failed to create session", err)
	}
	if r.deps.States != nil {
		if err := r.deps.States.MarkValid(ctx, sess.ID); err != nil {
			r.log.WithError(err).WithField("session_id", sess.ID.String()).Warn("failed to mark session valid")
		}
	}

	ctrl := turn.NewController(turn.Dependencies{
		Session:       sess,
		Config:        r.cfg,
		Orchestrator:  r.deps.Orchestrator,
		Emitter:       emitter,
		Sessions:      r.deps.Sessions,
		Messages:      r.deps.Messages,
		FunctionCalls: r.deps.FunctionCalls,
		Index:         r.deps.Index,
		RateLimiter:   r.deps.RateLimiter,
		StateStore:    r.deps.States,
		Metrics:       r.deps.Metrics,
		Logger:        r.log,
		Clock:         r.now,
	})
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	h := &Handle{
		Session:    sess,
		Controller: ctrl,
		Done:       ctrl.Done(),
		cancel:     cancel,
		stopped:    make(chan struct{}),
		closed:     make(chan struct{}),
	}
	if ua, ok := cfg.Metadata["user_agent"].(string); ok {
		h.userAgent = ua
	}

	r.mu.Lock()
	r.sessions[sess.ID] = h
	r.mu.Unlock()
	r.deps.Metrics.SessionOpened()
	r.export(ctx, h, telemetry.EventSessionOpened)

	go r.run(runCtx, h)
	go r.watch(h)

	r.log.WithFields(logrus.Fields{
		"session_id": sess.ID.String(),
		"client_id":  clientID,
		"model":      sess.Model,
	}).Info("realtime session opened")
	return h, nil
}

func (r *Registry) run(ctx context.Context, h *Handle) {
	err := h.Controller.Run(ctx)
	h.runErr = err
	close(h.stopped)
	if err != nil {
		r.log.WithError(err).WithField("session_id", h.Session.ID.String()).Error("session worker failed")
		if cerr := r.Close(context.Background(), h, ReasonError); cerr != nil {
			r.log.WithError(cerr).Warn("failed to close failed session")
		}
	}
}

// watch closes the session once it has been idle for longer than the idle
// timeout. Sessions with a turn in flight are never considered idle.
func (r *Registry) watch(h *Handle) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	idle := r.cfg.IdleTimeout()
	for {
		select {
		case <-h.stopped:
			return
		case <-ticker.C:
			if h.Controller.Busy() || r.now().Sub(h.Controller.LastActivity()) < idle {
				continue
			}
			err := domain.NewError(domain.CodeIdleTimeout,
				fmt.Sprintf("session closed after %s without activity", idle))
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			if emitErr := h.Controller.Emit(ctx, protocol.NewErrorEvent(err, "")); emitErr != nil {
				r.log.WithError(emitErr).Debug("failed to send idle timeout")
			}
			if closeErr := r.Close(ctx, h, ReasonIdleTimeout); closeErr != nil {
				r.log.WithError(closeErr).Warn("failed to close idle session")
			}
			cancel()
			return
		}
	}
}

// Close stops the session and records its final status. It is safe to call
// more than once; later calls wait for the first to finish.
func (r *Registry) Close(ctx context.Context, h *Handle, reason CloseReason) error {
	if !h.closing.CompareAndSwap(false, true) {
		select {
		case <-h.closed:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	defer close(h.closed)

	h.cancel()
	<-h.stopped
	h.reason = reason

	status := statusFor(reason, h.runErr)
	h.Session.Status = status
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()

	var storeErr error
	if err := r.deps.Sessions.UpdateStatus(storeCtx, h.Session.ID, status); err != nil {
		storeErr = fmt.Errorf("failed to store final session status: %w", err)
	}
	if r.deps.States != nil {
		if err := r.deps.States.DeleteState(storeCtx, h.Session.ID); err != nil {
			r.log.WithError(err).WithField("session_id", h.Session.ID.String()).Warn("failed to delete session state")
		}
	}

	r.mu.Lock()
	delete(r.sessions, h.Session.ID)
	r.mu.Unlock()
	r.deps.Admission.Release()
	r.deps.Index.Forget(h.Session.ID)
	r.deps.Metrics.SessionClosed(string(status))
	r.export(storeCtx, h, telemetry.EventSessionClosed)

	r.log.WithFields(logrus.Fields{
		"session_id": h.Session.ID.String(),
		"status":     string(status),
		"reason":     string(reason),
	}).Info("realtime session closed")
	return storeErr
}

func statusFor(reason CloseReason, runErr error) session.Status {
	switch {
	case runErr != nil || reason == ReasonError:
		return session.StatusError
	case reason == ReasonIdleTimeout:
		return session.StatusExpired
	default:
		return session.StatusCompleted
	}
}

func (r *Registry) Get(id uuid.UUID) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.sessions[id]
	return h, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll closes every live session concurrently.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.RLock()
	handles := make([]*Handle, 0, len(r.sessions))
	for _, h := range r.sessions {
		handles = append(handles, h)
	}
	r.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, h := range handles {
		h := h
		g.Go(func() error {
			return r.Close(gctx, h, ReasonShutdown)
		})
	}
	return g.Wait()
}

func (r *Registry) withDefaults(cfg session.Config) session.Config {
	if cfg.Model == "" {
		cfg.Model = r.cfg.DefaultModel
	}
	if cfg.Modalities == nil {
		cfg.Modalities = []string{session.ModalityText, session.ModalityAudio}
	}
	if cfg.Voice == "" {
		cfg.Voice = r.cfg.DefaultVoice
	}
	if cfg.Temperature == nil {
		t := r.cfg.DefaultTemperature
		cfg.Temperature = &t
	}
	if cfg.TurnDetection == "" {
		cfg.TurnDetection = session.TurnDetectionServerVAD
	}
	return cfg
}

func (r *Registry) validate(cfg session.Config) error {
	if cfg.Model == "" {
		return &domain.Error{Code: domain.CodeValidation, Message: "model is required", Param: "session.model"}
	}
	return cfg.Validate(r.cfg.AllowedModels)
}

func (r *Registry) export(ctx context.Context, h *Handle, typ string) {
	evt := &telemetry.SessionEvent{
		Type:      typ,
		SessionID: h.Session.ID,
		ClientID:  h.Session.ClientID,
		Model:     h.Session.Model,
		Status:    string(h.Session.Status),
		StartedAt: h.Session.CreatedAt,
		UserAgent: h.userAgent,
	}
	if typ == telemetry.EventSessionClosed {
		evt.Reason = string(h.reason)
		evt.EndedAt = r.now()
		evt.DurationMs = evt.EndedAt.Sub(evt.StartedAt).Milliseconds()
	}
	if err := r.deps.Exporter.Handle(ctx, evt); err != nil {
		r.log.WithError(err).WithField("session_id", h.Session.ID.String()).Warn("failed to export session event")
	}
}

type noopMetrics struct{}

func (noopMetrics) EventSent(string) {}
func (noopMetrics) EventReceived(string) {}
func (noopMetrics) ErrorEmitted(domain.Code) {}
func (noopMetrics) TurnFinished(string) {}
func (noopMetrics) SessionOpened() {}
func (noopMetrics) SessionClosed(string) {}
