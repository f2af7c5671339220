package registry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	sessionmocks "github.com/NeuralTrust/RealtimeGateway/pkg/domain/session/mocks"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/telemetry"
	telemetrymocks "github.com/NeuralTrust/RealtimeGateway/pkg/domain/telemetry/mocks"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/orchestrator"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/protocol"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/registry"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

type channelEmitter struct {
	events chan protocol.Event
}

func newChannelEmitter() *channelEmitter {
	return &channelEmitter{events: make(chan protocol.Event, 64)}
}

func (e *channelEmitter) Emit(_ context.Context, ev protocol.Event) error {
	e.events <- ev
	return nil
}

func (e *channelEmitter) next(t *testing.T) protocol.Event {
	t.Helper()
	select {
	case ev := <-e.events:
		return ev
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

type idleOrchestrator struct{}

func (idleOrchestrator) Run(ctx context.Context, _ orchestrator.Turn, _ chan<- orchestrator.Result) {
	<-ctx.Done()
}

type fixture struct {
	sessions *sessionmocks.Repository
	states   *sessionmocks.StateRepository
	exporter *telemetrymocks.Exporter
	deps     registry.Dependencies
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sessions: sessionmocks.NewRepository(t),
		states:   sessionmocks.NewStateRepository(t),
		exporter: telemetrymocks.NewExporter(t),
	}
	f.sessions.EXPECT().Update(mock.Anything, mock.Anything).Return(nil).Maybe()
	f.sessions.EXPECT().Touch(mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.states.EXPECT().SaveState(mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.states.EXPECT().MarkValid(mock.Anything, mock.Anything).Return(nil).Maybe()
	f.states.EXPECT().DeleteState(mock.Anything, mock.Anything).Return(nil).Maybe()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	f.deps = registry.Dependencies{
		Config:       realtime.DefaultConfig(),
		Sessions:     f.sessions,
		States:       f.states,
		Orchestrator: idleOrchestrator{},
		Exporter:     f.exporter,
		Logger:       logger,
	}
	return f
}

func (f *fixture) expectSave() {
	f.sessions.EXPECT().Save(mock.Anything, mock.Anything).Return(nil).Maybe()
}

func (f *fixture) expectExport() {
	f.exporter.EXPECT().Handle(mock.Anything, mock.Anything).Return(nil).Maybe()
}

func waitClosed(t *testing.T, h *registry.Handle) {
	t.Helper()
	select {
	case <-h.Closed():
	case <-time.After(waitTimeout):
		t.Fatal("session was not closed")
	}
}

func TestOpen_AppliesDefaultsAndCloses(t *testing.T) {
	f := newFixture(t)
	f.sessions.EXPECT().Save(mock.Anything, mock.MatchedBy(func(s *session.Session) bool {
		return s.ClientID == "client-1" &&
			s.Model == "llama3.1" &&
			s.Voice == "alloy" &&
			s.Temperature == 0.7 &&
			s.TurnDetection == session.TurnDetectionServerVAD &&
			len(s.Modalities) == 2 &&
			s.Status == session.StatusActive
	})).Return(nil).Once()
	f.sessions.EXPECT().UpdateStatus(mock.Anything, mock.Anything, session.StatusCompleted).Return(nil).Once()
	f.exporter.EXPECT().Handle(mock.Anything, mock.MatchedBy(func(e *telemetry.SessionEvent) bool {
		return e.Type == telemetry.EventSessionOpened
	})).Return(nil).Once()
	f.exporter.EXPECT().Handle(mock.Anything, mock.MatchedBy(func(e *telemetry.SessionEvent) bool {
		return e.Type == telemetry.EventSessionClosed &&
			e.Status == string(session.StatusCompleted) &&
			e.Reason == string(registry.ReasonClientClosed)
	})).Return(nil).Once()

	reg := registry.New(f.deps)
	emitter := newChannelEmitter()
	h, err := reg.Open(context.Background(), "client-1", session.Config{}, emitter)
	require.NoError(t, err)

	created, ok := emitter.next(t).(*protocol.SessionCreated)
	require.True(t, ok)
	assert.Equal(t, h.Session.ID.String(), created.Session.ID)
	assert.Equal(t, 1, reg.Count())
	got, ok := reg.Get(h.Session.ID)
	require.True(t, ok)
	assert.Same(t, h, got)
	assert.Empty(t, h.Reason())

	require.NoError(t, reg.Close(context.Background(), h, registry.ReasonClientClosed))

	assert.Equal(t, 0, reg.Count())
	_, ok = reg.Get(h.Session.ID)
	assert.False(t, ok)
	assert.Equal(t, registry.ReasonClientClosed, h.Reason())
	assert.Equal(t, session.StatusCompleted, h.Session.Status)
	select {
	case <-h.Done:
	default:
		t.Fatal("worker still running after close")
	}
}

func TestOpen_RejectsInvalidConfig(t *testing.T) {
	temperature := 3.0
	silence := -1
	tests := []struct {
		name  string
		cfg   session.Config
		param string
	}{
		{name: "unknown model", cfg: session.Config{Model: "gpt-9"}, param: "session.model"},
		{name: "bad modality", cfg: session.Config{Modalities: []string{"video"}}, param: "session.modalities"},
		{name: "no modality", cfg: session.Config{Modalities: []string{}}, param: "session.modalities"},
		{name: "temperature", cfg: session.Config{Temperature: &temperature}, param: "session.temperature"},
		{name: "voice", cfg: session.Config{Voice: string(make([]byte, 65))}, param: "session.voice"},
		{name: "silence", cfg: session.Config{SilenceDurationMs: &silence}, param: "session.turn_detection.silence_duration_ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.deps.Config.AllowedModels = []string{"llama3.1"}
			reg := registry.New(f.deps)

			h, err := reg.Open(context.Background(), "client-1", tt.cfg, newChannelEmitter())

			assert.Nil(t, h)
			require.Error(t, err)
			assert.True(t, domain.IsCode(err, domain.CodeValidation))
			var rtErr *domain.Error
			require.ErrorAs(t, err, &rtErr)
			assert.Equal(t, tt.param, rtErr.Param)
			assert.Equal(t, 0, reg.Count())
		})
	}
}

func TestOpen_CapacityExceeded(t *testing.T) {
	f := newFixture(t)
	f.deps.Config.MaxConcurrentSessions = 1
	f.expectSave()
	f.expectExport()
	f.sessions.EXPECT().UpdateStatus(mock.Anything, mock.Anything, session.StatusCompleted).Return(nil).Times(2)
	reg := registry.New(f.deps)

	first, err := reg.Open(context.Background(), "client-1", session.Config{}, newChannelEmitter())
	require.NoError(t, err)

	_, err = reg.Open(context.Background(), "client-2", session.Config{}, newChannelEmitter())
	require.ErrorIs(t, err, registry.ErrCapacityExceeded)
	assert.True(t, domain.IsCode(err, domain.CodeCapacityExceeded))

	require.NoError(t, reg.Close(context.Background(), first, registry.ReasonClientClosed))

	second, err := reg.Open(context.Background(), "client-2", session.Config{}, newChannelEmitter())
	require.NoError(t, err)
	require.NoError(t, reg.Close(context.Background(), second, registry.ReasonShutdown))
}

func TestOpen_SaveFailureReleasesSlot(t *testing.T) {
	f := newFixture(t)
	f.deps.Config.MaxConcurrentSessions = 1
	f.sessions.EXPECT().Save(mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()
	f.sessions.EXPECT().Save(mock.Anything, mock.Anything).Return(nil).Once()
	f.sessions.EXPECT().UpdateStatus(mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.expectExport()
	reg := registry.New(f.deps)

	_, err := reg.Open(context.Background(), "client-1", session.Config{}, newChannelEmitter())
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeInternal))

	h, err := reg.Open(context.Background(), "client-1", session.Config{}, newChannelEmitter())
	require.NoError(t, err)
	require.NoError(t, reg.Close(context.Background(), h, registry.ReasonClientClosed))
}

func TestClose_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.expectSave()
	f.expectExport()
	f.sessions.EXPECT().UpdateStatus(mock.Anything, mock.Anything, session.StatusError).Return(nil).Once()
	reg := registry.New(f.deps)

	h, err := reg.Open(context.Background(), "client-1", session.Config{}, newChannelEmitter())
	require.NoError(t, err)

	require.NoError(t, reg.Close(context.Background(), h, registry.ReasonError))
	require.NoError(t, reg.Close(context.Background(), h, registry.ReasonClientClosed))
	assert.Equal(t, registry.ReasonError, h.Reason())
}

func TestClose_ReportsStatusStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.expectSave()
	f.expectExport()
	f.sessions.EXPECT().UpdateStatus(mock.Anything, mock.Anything, session.StatusCompleted).Return(errors.New("db down")).Once()
	reg := registry.New(f.deps)

	h, err := reg.Open(context.Background(), "client-1", session.Config{}, newChannelEmitter())
	require.NoError(t, err)

	err = reg.Close(context.Background(), h, registry.ReasonClientClosed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.Equal(t, 0, reg.Count())
}

func TestIdleTimeout_ExpiresSession(t *testing.T) {
	f := newFixture(t)
	f.deps.Config.IdleTimeoutMs = 50
	f.deps.WatchdogInterval = 10 * time.Millisecond
	f.expectSave()
	f.sessions.EXPECT().UpdateStatus(mock.Anything, mock.Anything, session.StatusExpired).Return(nil).Once()
	f.exporter.EXPECT().Handle(mock.Anything, mock.MatchedBy(func(e *telemetry.SessionEvent) bool {
		return e.Type == telemetry.EventSessionOpened
	})).Return(nil).Once()
	f.exporter.EXPECT().Handle(mock.Anything, mock.MatchedBy(func(e *telemetry.SessionEvent) bool {
		return e.Type == telemetry.EventSessionClosed && e.Status == string(session.StatusExpired)
	})).Return(nil).Once()
	reg := registry.New(f.deps)
	emitter := newChannelEmitter()

	h, err := reg.Open(context.Background(), "client-1", session.Config{}, emitter)
	require.NoError(t, err)
	require.IsType(t, &protocol.SessionCreated{}, emitter.next(t))

	errEv, ok := emitter.next(t).(*protocol.ErrorEvent)
	require.True(t, ok)
	assert.Equal(t, string(domain.CodeIdleTimeout), errEv.Error.Code)

	waitClosed(t, h)
	assert.Equal(t, registry.ReasonIdleTimeout, h.Reason())
	assert.Equal(t, session.StatusExpired, h.Session.Status)
	assert.Equal(t, 0, reg.Count())
}

func TestIdleTimeout_ActivityKeepsSessionOpen(t *testing.T) {
	f := newFixture(t)
	f.deps.Config.IdleTimeoutMs = 200
	f.deps.WatchdogInterval = 10 * time.Millisecond
	f.expectSave()
	f.expectExport()
	f.sessions.EXPECT().UpdateStatus(mock.Anything, mock.Anything, session.StatusCompleted).Return(nil).Once()
	reg := registry.New(f.deps)

	h, err := reg.Open(context.Background(), "client-1", session.Config{}, newChannelEmitter())
	require.NoError(t, err)

	clearCmd, err := protocol.Decode([]byte(`{"type":"input_audio_buffer.clear"}`))
	require.NoError(t, err)
	deadline := time.Now().Add(400 * time.Millisecond)
	for time.Now().Before(deadline) {
		require.NoError(t, h.Controller.Submit(clearCmd))
		time.Sleep(20 * time.Millisecond)
	}
	assert.Empty(t, h.Reason())
	require.NoError(t, reg.Close(context.Background(), h, registry.ReasonClientClosed))
}

func TestCloseAll(t *testing.T) {
	f := newFixture(t)
	f.expectSave()
	f.expectExport()
	f.sessions.EXPECT().UpdateStatus(mock.Anything, mock.Anything, session.StatusCompleted).Return(nil).Times(3)
	reg := registry.New(f.deps)

	handles := make([]*registry.Handle, 0, 3)
	for i := 0; i < 3; i++ {
		h, err := reg.Open(context.Background(), "client-1", session.Config{}, newChannelEmitter())
		require.NoError(t, err)
		handles = append(handles, h)
	}
	require.Equal(t, 3, reg.Count())

	require.NoError(t, reg.CloseAll(context.Background()))

	assert.Equal(t, 0, reg.Count())
	for _, h := range handles {
		assert.Equal(t, registry.ReasonShutdown, h.Reason())
	}
}
