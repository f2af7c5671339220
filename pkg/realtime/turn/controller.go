package turn

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/functioncall"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/message"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/ratelimit"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/audio"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/conversation"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/orchestrator"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/protocol"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/vad"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const stateWriteTimeout = 2 * time.Second

type Dependencies struct {
	Session       *session.Session
	Config        realtime.Config
	Orchestrator  Orchestrator
	Emitter       Emitter
	Sessions      session.Repository
	Messages      message.Repository
	FunctionCalls functioncall.Repository
	Index         *conversation.Index
	RateLimiter   RateLimiter
	StateStore    session.StateRepository
	Metrics       Metrics
	Logger        *logrus.Logger
	Clock         func() time.Time
}

// Controller is the per-session state machine. All session state is owned by
// the goroutine running Run; other goroutines talk to it through Submit and
// the atomic accessors.
type Controller struct {
	deps    Dependencies
	cfg     realtime.Config
	sess    *session.Session
	log     *logrus.Entry
	encoder *protocol.Encoder
	now     func() time.Time
	metrics Metrics

	inbound   chan protocol.Command
	results   chan orchestrator.Result
	closed    chan struct{}
	closeOnce sync.Once

	state        atomic.Int32
	lastActivity atomic.Int64

	format   audio.Format
	buffer   *audio.FrameBuffer
	detector *vad.Detector
	vadCfg   vad.Config
	prefixMs int
	seq      uint64
	audioMs  int

	active           *activeTurn
	fnTimer          *time.Timer
	pendingVADCommit bool
	limits           map[string]*ratelimit.RateLimit
	fatal            error
}

type activeTurn struct {
	id              string
	cancel          context.CancelFunc
	done            chan struct{}
	userItemID      uuid.UUID
	assistantItemID uuid.UUID
	audioOutput     bool
	model           string
	voice           string
	instructions    string
	temperature     float64
	output          []protocol.ItemResource
	pending         map[string]*functioncall.FunctionCall
	usage           providers.Usage
	text            strings.Builder
}

func NewController(deps Dependencies) *Controller {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Metrics == nil {
		deps.Metrics = noopMetrics{}
	}
	if deps.Index == nil {
		deps.Index = conversation.NewIndex()
	}
	cfg := deps.Config
	if cfg.InboundQueueSize <= 0 {
		cfg.InboundQueueSize = realtime.DefaultConfig().InboundQueueSize
	}
	format := audio.NewFormat(cfg.SampleRate)
	vadCfg := vad.Config{
		Threshold:   cfg.VADThreshold,
		DebounceMs:  cfg.VADDebounceMs,
		MinSpeechMs: cfg.MinSpeechMs,
	}
	c := &Controller{
		deps:    deps,
		cfg:     cfg,
		sess:    deps.Session,
		encoder: protocol.NewEncoder(deps.Session.ID.String()),
		now:     deps.Clock,
		metrics: deps.Metrics,
		log: deps.Logger.WithFields(logrus.Fields{
			"session_id": deps.Session.ID.String(),
			"client_id":  deps.Session.ClientID,
		}),
		inbound:  make(chan protocol.Command, cfg.InboundQueueSize),
		results:  make(chan orchestrator.Result, cfg.InboundQueueSize),
		closed:   make(chan struct{}),
		format:   format,
		buffer:   audio.NewFrameBuffer(format, cfg.MaxTurnDurationMs),
		detector: vad.New(vadCfg),
		vadCfg:   vadCfg,
		prefixMs: cfg.PrefixPaddingMs,
		limits:   make(map[string]*ratelimit.RateLimit),
	}
	c.state.Store(int32(StateIdle))
	c.lastActivity.Store(c.now().UnixNano())
	return c
}

// Submit queues an inbound command for the worker without blocking.
func (c *Controller) Submit(cmd protocol.Command) error {
	select {
	case <-c.closed:
		return ErrControllerClosed
	default:
	}
	select {
	case c.inbound <- cmd:
		return nil
	case <-c.closed:
		return ErrControllerClosed
	default:
		return ErrBackpressure
	}
}

func (c *Controller) State() State {
	return State(c.state.Load())
}

func (c *Controller) LastActivity() time.Time {
	return time.Unix(0, c.lastActivity.Load())
}

// Busy reports whether a turn is being committed or answered.
func (c *Controller) Busy() bool {
	s := c.State()
	return s == StateCommitting || s == StateResponding
}

func (c *Controller) Done() <-chan struct{} {
	return c.closed
}

// Emit stamps ev with the session's encoder and hands it to the emitter.
func (c *Controller) Emit(ctx context.Context, ev protocol.Event) error {
	h := c.encoder.Stamp(ev)
	c.metrics.EventSent(h.Type)
	return c.deps.Emitter.Emit(ctx, ev)
}

// Run is the session worker. It returns when ctx is cancelled or the session
// hits an unrecoverable error.
func (c *Controller) Run(ctx context.Context) error {
	defer c.shutdown()

	c.emit(ctx, &protocol.SessionCreated{Session: c.sessionResource()})
	c.setState(ctx, StateIdle)

	for {
		var timeout <-chan time.Time
		if c.fnTimer != nil {
			timeout = c.fnTimer.C
		}
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-c.inbound:
			c.touch()
			c.handle(ctx, cmd)
			c.resolveVADCommit(ctx)
		case res := <-c.results:
			c.handleResult(ctx, res)
		case <-timeout:
			c.fnTimer = nil
			c.functionCallTimeout(ctx)
		}
		if c.fatal != nil {
			c.setState(ctx, StateError)
			return c.fatal
		}
	}
}

// resolveVADCommit performs a commit requested by VAD unless the next queued
// command is an explicit commit, which then takes precedence.
func (c *Controller) resolveVADCommit(ctx context.Context) {
	for c.pendingVADCommit && c.fatal == nil {
		c.pendingVADCommit = false
		select {
		case next := <-c.inbound:
			if next.CommandType() == protocol.TypeAudioCommit {
				c.handle(ctx, next)
				continue
			}
			c.commitBuffer(ctx, "", false)
			c.handle(ctx, next)
		default:
			c.commitBuffer(ctx, "", false)
		}
	}
}

func (c *Controller) shutdown() {
	if at := c.active; at != nil {
		c.active = nil
		at.cancel()
		<-at.done
		c.failPending(context.Background(), at, "session closed")
	}
	c.stopFunctionTimer()
	c.state.Store(int32(StateClosed))
	c.closeOnce.Do(func() { close(c.closed) })
}

func (c *Controller) touch() {
	c.lastActivity.Store(c.now().UnixNano())
}

func (c *Controller) setState(ctx context.Context, s State) {
	prev := State(c.state.Swap(int32(s)))
	if prev != s {
		c.log.WithFields(logrus.Fields{"from": prev.String(), "to": s.String()}).Debug("turn state changed")
	}
	if c.deps.StateStore == nil {
		return
	}
	st := &session.State{
		SessionID:    c.sess.ID,
		ClientID:     c.sess.ClientID,
		Status:       c.sess.Status,
		TurnState:    s.String(),
		LastActivity: c.LastActivity(),
	}
	if c.active != nil {
		st.TurnID = c.active.id
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stateWriteTimeout)
	defer cancel()
	if err := c.deps.StateStore.SaveState(writeCtx, st, c.cfg.IdleTimeout()); err != nil {
		c.log.WithError(err).Warn("failed to store session state")
	}
}

func (c *Controller) emit(ctx context.Context, ev protocol.Event) {
	if err := c.Emit(ctx, ev); err != nil {
		c.log.WithError(err).Debug("failed to emit event")
	}
}

func (c *Controller) emitError(ctx context.Context, err error, eventID string) {
	ev := protocol.NewErrorEvent(err, eventID)
	c.metrics.ErrorEmitted(domain.Code(ev.Error.Code))
	c.log.WithError(err).WithField("code", ev.Error.Code).Warn("realtime error")
	c.emit(ctx, ev)
}

func (c *Controller) sessionResource() protocol.SessionResource {
	return SessionResource(c.sess, c.vadCfg, c.prefixMs)
}

func (c *Controller) leaf() *uuid.UUID {
	id, ok := c.deps.Index.Leaf(c.sess.ID)
	if !ok {
		return nil
	}
	return &id
}

func (c *Controller) stopFunctionTimer() {
	if c.fnTimer != nil {
		c.fnTimer.Stop()
		c.fnTimer = nil
	}
}

func idString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
