package turn_test

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/functioncall"
	fcmocks "github.com/NeuralTrust/RealtimeGateway/pkg/domain/functioncall/mocks"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/message"
	msgmocks "github.com/NeuralTrust/RealtimeGateway/pkg/domain/message/mocks"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/ratelimit"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	sessionmocks "github.com/NeuralTrust/RealtimeGateway/pkg/domain/session/mocks"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/conversation"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/orchestrator"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/protocol"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/turn"
	turnmocks "github.com/NeuralTrust/RealtimeGateway/pkg/realtime/turn/mocks"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

type recordingEmitter struct {
	events chan protocol.Event
}

func (e *recordingEmitter) Emit(_ context.Context, ev protocol.Event) error {
	e.events <- ev
	return nil
}

type orchestratorFunc func(ctx context.Context, t orchestrator.Turn, out chan<- orchestrator.Result)

func (f orchestratorFunc) Run(ctx context.Context, t orchestrator.Turn, out chan<- orchestrator.Result) {
	f(ctx, t, out)
}

type harness struct {
	t          *testing.T
	controller *turn.Controller
	emitter    *recordingEmitter
	session    *session.Session
	calls      *fcmocks.Repository
	index      *conversation.Index
	cancel     context.CancelFunc
	done       chan error
}

type option func(*turn.Dependencies)

func withRateLimiter(rl turn.RateLimiter) option {
	return func(d *turn.Dependencies) { d.RateLimiter = rl }
}

func withConfig(fn func(*realtime.Config)) option {
	return func(d *turn.Dependencies) { fn(&d.Config) }
}

func newHarness(t *testing.T, orch turn.Orchestrator, opts ...option) *harness {
	t.Helper()
	sess := session.New("client-1", session.Config{
		Model:         "llama3.1",
		Modalities:    []string{session.ModalityText, session.ModalityAudio},
		Voice:         "alloy",
		TurnDetection: session.TurnDetectionServerVAD,
	})

	sessions := sessionmocks.NewRepository(t)
	sessions.EXPECT().Update(mock.Anything, mock.Anything).Return(nil).Maybe()
	sessions.EXPECT().Touch(mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	messages := msgmocks.NewRepository(t)
	messages.EXPECT().Save(mock.Anything, mock.Anything).Return(nil).Maybe()
	messages.EXPECT().Delete(mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	calls := fcmocks.NewRepository(t)
	states := sessionmocks.NewStateRepository(t)
	states.EXPECT().SaveState(mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	h := &harness{
		t:       t,
		emitter: &recordingEmitter{events: make(chan protocol.Event, 1024)},
		session: sess,
		calls:   calls,
		index:   conversation.NewIndex(),
		done:    make(chan error, 1),
	}
	cfg := realtime.DefaultConfig()
	deps := turn.Dependencies{
		Session:       sess,
		Config:        cfg,
		Orchestrator:  orch,
		Emitter:       h.emitter,
		Sessions:      sessions,
		Messages:      messages,
		FunctionCalls: calls,
		Index:         h.index,
		StateStore:    states,
		Logger:        logger,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	h.controller = turn.NewController(deps)
	return h
}

func (h *harness) start() {
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.controller.Run(ctx) }()
	h.t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(waitTimeout):
			h.t.Error("controller did not stop")
		}
	})
	h.expect(protocol.TypeSessionCreated)
}

func (h *harness) submit(cmd protocol.Command) {
	h.t.Helper()
	require.NoError(h.t, h.controller.Submit(cmd))
}

func (h *harness) next() protocol.Event {
	h.t.Helper()
	select {
	case ev := <-h.emitter.events:
		return ev
	case <-time.After(waitTimeout):
		h.t.Fatal("timed out waiting for event")
		return nil
	}
}

// expect asserts the next events have exactly the given types, in order.
func (h *harness) expect(types ...string) []protocol.Event {
	h.t.Helper()
	out := make([]protocol.Event, 0, len(types))
	for _, want := range types {
		ev := h.next()
		require.Equal(h.t, want, protocol.TypeOf(ev))
		out = append(out, ev)
	}
	return out
}

func (h *harness) quiet() {
	h.t.Helper()
	select {
	case ev := <-h.emitter.events:
		h.t.Fatalf("unexpected event %s", protocol.TypeOf(ev))
	case <-time.After(50 * time.Millisecond):
	}
}

func (h *harness) waitState(want turn.State) {
	h.t.Helper()
	require.Eventually(h.t, func() bool { return h.controller.State() == want }, waitTimeout, 5*time.Millisecond)
}

func pcm(amplitude int16, ms int) []byte {
	samples := 24 * ms
	out := make([]byte, samples*2)
	for i := 0; i < samples; i++ {
		v := amplitude
		if i%2 == 1 {
			v = -amplitude
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

func appendCmd(data []byte) *protocol.AudioAppend {
	cmd := &protocol.AudioAppend{PCM: data}
	cmd.Type = protocol.TypeAudioAppend
	return cmd
}

func decode(t *testing.T, raw string) protocol.Command {
	t.Helper()
	cmd, err := protocol.Decode([]byte(raw))
	require.NoError(t, err)
	return cmd
}

func send(ctx context.Context, out chan<- orchestrator.Result, res orchestrator.Result) bool {
	select {
	case out <- res:
		return true
	case <-ctx.Done():
		return false
	}
}

func assistantMessage(t orchestrator.Turn, parent *uuid.UUID, text string) *message.Message {
	m := message.New(t.SessionID, parent, message.RoleAssistant, message.ContentTypeText, text)
	m.ID = t.AssistantItemID
	return m
}

// answer replies with a single text delta and completes.
func answer(text string) orchestratorFunc {
	return func(ctx context.Context, t orchestrator.Turn, out chan<- orchestrator.Result) {
		if !send(ctx, out, orchestrator.Result{TurnID: t.ID, Kind: orchestrator.KindTextDelta, Delta: text}) {
			return
		}
		send(ctx, out, orchestrator.Result{
			TurnID:  t.ID,
			Kind:    orchestrator.KindDone,
			Message: assistantMessage(t, t.ParentID, text),
			Usage:   providers.Usage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
		})
	}
}

func TestState_String(t *testing.T) {
	tests := map[turn.State]string{
		turn.StateIdle:       "idle",
		turn.StateListening:  "listening",
		turn.StateCommitting: "committing",
		turn.StateResponding: "responding",
		turn.StateError:      "error",
		turn.StateClosed:     "closed",
		turn.State(42):       "unknown",
	}
	for state, want := range tests {
		assert.Equal(t, want, state.String())
	}
}

func TestController_SessionCreatedFirst(t *testing.T) {
	h := newHarness(t, answer("hi"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { h.done <- h.controller.Run(ctx) }()

	ev := h.next()
	created, ok := ev.(*protocol.SessionCreated)
	require.True(t, ok)
	assert.Equal(t, h.session.ID.String(), created.SessionID)
	assert.Equal(t, h.session.ID.String(), created.Session.ID)
	assert.Equal(t, "llama3.1", created.Session.Model)
	require.NotNil(t, created.Session.TurnDetection)
	assert.Equal(t, protocol.TurnDetectionServerVAD, created.Session.TurnDetection.Type)
	assert.Equal(t, uint64(1), created.Seq)

	cancel()
	require.NoError(t, <-h.done)
	assert.Equal(t, turn.StateClosed, h.controller.State())
	assert.ErrorIs(t, h.controller.Submit(appendCmd(pcm(0, 20))), turn.ErrControllerClosed)
}

func TestController_FullAudioTurn(t *testing.T) {
	h := newHarness(t, orchestratorFunc(func(ctx context.Context, tr orchestrator.Turn, out chan<- orchestrator.Result) {
		assert.NotNil(t, tr.Audio)
		assert.True(t, tr.AudioOutput)
		user := message.New(tr.SessionID, tr.ParentID, message.RoleUser, message.ContentTypeAudio, "hello")
		user.ID = tr.UserItemID
		for _, res := range []orchestrator.Result{
			{Kind: orchestrator.KindTranscriptDelta, Delta: "hello"},
			{Kind: orchestrator.KindTranscriptDone, Delta: "hello"},
			{Kind: orchestrator.KindUserMessage, Message: user},
			{Kind: orchestrator.KindTextDelta, Delta: "Hi there."},
			{Kind: orchestrator.KindAudioDelta, Audio: []byte{1, 2, 3, 4}},
			{Kind: orchestrator.KindDone, Message: assistantMessage(tr, &user.ID, "Hi there.")},
		} {
			res.TurnID = tr.ID
			if !send(ctx, out, res) {
				return
			}
		}
	}))
	h.start()

	for i := 0; i < 5; i++ {
		h.submit(appendCmd(pcm(8000, 20)))
	}
	h.expect(protocol.TypeSpeechStarted)
	for i := 0; i < 25; i++ {
		h.submit(appendCmd(pcm(0, 20)))
	}

	events := h.expect(
		protocol.TypeSpeechStopped,
		protocol.TypeAudioCommitted,
		protocol.TypeItemCreated,
		protocol.TypeResponseCreated,
		protocol.TypeTranscriptDelta,
		protocol.TypeTextDelta,
		protocol.TypeAudioDelta,
		protocol.TypeResponseDone,
	)
	committed := events[1].(*protocol.AudioCommitted)
	assert.Greater(t, committed.DurationMs, 0)

	audioDelta := events[6].(*protocol.AudioDelta)
	assert.Equal(t, "AQIDBA==", audioDelta.Delta)
	assert.Equal(t, uint64(1), audioDelta.Seq)

	done := events[7].(*protocol.ResponseDone)
	assert.Equal(t, protocol.ResponseStatusCompleted, done.Response.Status)
	assert.Equal(t, events[3].(*protocol.ResponseCreated).Response.ID, done.Response.ID)
	require.Len(t, done.Response.Output, 1)
	assert.Equal(t, protocol.ContentTypeAudio, done.Response.Output[0].Content[0].Type)

	h.waitState(turn.StateIdle)
	assert.Equal(t, 2, h.index.Len(h.session.ID))
	h.quiet()
}

func TestController_ExplicitCommitWinsOverVAD(t *testing.T) {
	runs := make(chan orchestrator.Turn, 4)
	h := newHarness(t, orchestratorFunc(func(ctx context.Context, tr orchestrator.Turn, out chan<- orchestrator.Result) {
		runs <- tr
		answer("ok")(ctx, tr, out)
	}), withConfig(func(c *realtime.Config) { c.VADDebounceMs = 40 }))

	for i := 0; i < 4; i++ {
		h.submit(appendCmd(pcm(8000, 20)))
	}
	h.submit(appendCmd(pcm(0, 20)))
	h.submit(appendCmd(pcm(0, 20)))
	h.submit(decode(t, `{"type":"input_audio_buffer.commit","event_id":"evt_commit"}`))
	h.start()

	h.expect(
		protocol.TypeSpeechStarted,
		protocol.TypeSpeechStopped,
		protocol.TypeAudioCommitted,
		protocol.TypeItemCreated,
		protocol.TypeResponseCreated,
		protocol.TypeTextDelta,
		protocol.TypeResponseDone,
	)
	h.quiet()
	assert.Len(t, runs, 1)
}

func TestController_CommitEmptyBuffer(t *testing.T) {
	h := newHarness(t, answer("unused"))
	h.start()

	h.submit(decode(t, `{"type":"input_audio_buffer.commit","event_id":"evt_1"}`))

	ev := h.expect(protocol.TypeError)[0].(*protocol.ErrorEvent)
	assert.Equal(t, string(domain.CodeEmptyBuffer), ev.Error.Code)
	assert.Equal(t, "evt_1", ev.Error.EventID)
	h.quiet()
	assert.Equal(t, turn.StateIdle, h.controller.State())
}

func TestController_ResponseCancelMidStream(t *testing.T) {
	cancelled := make(chan struct{})
	h := newHarness(t, orchestratorFunc(func(ctx context.Context, tr orchestrator.Turn, out chan<- orchestrator.Result) {
		send(ctx, out, orchestrator.Result{TurnID: tr.ID, Kind: orchestrator.KindTextDelta, Delta: "a long"})
		<-ctx.Done()
		close(cancelled)
		// late results of a cancelled turn must never surface
		out <- orchestrator.Result{TurnID: tr.ID, Kind: orchestrator.KindTextDelta, Delta: " answer"}
	}))
	h.start()

	h.submit(decode(t, `{"type":"response.create"}`))
	h.expect(protocol.TypeResponseCreated, protocol.TypeTextDelta)
	h.waitState(turn.StateResponding)

	h.submit(decode(t, `{"type":"response.cancel"}`))
	done := h.expect(protocol.TypeResponseDone)[0].(*protocol.ResponseDone)
	assert.Equal(t, protocol.ResponseStatusCancelled, done.Response.Status)
	require.NotNil(t, done.Response.StatusDetails)
	assert.Equal(t, "client_cancelled", done.Response.StatusDetails.Reason)

	select {
	case <-cancelled:
	case <-time.After(waitTimeout):
		t.Fatal("orchestrator context was not cancelled")
	}
	h.waitState(turn.StateIdle)
	h.quiet()

	h.submit(decode(t, `{"type":"response.cancel","event_id":"evt_again"}`))
	ev := h.expect(protocol.TypeError)[0].(*protocol.ErrorEvent)
	assert.Equal(t, string(domain.CodeProtocol), ev.Error.Code)
}

func TestController_BackendFailure(t *testing.T) {
	h := newHarness(t, orchestratorFunc(func(ctx context.Context, tr orchestrator.Turn, out chan<- orchestrator.Result) {
		send(ctx, out, orchestrator.Result{
			TurnID: tr.ID,
			Kind:   orchestrator.KindFailed,
			Err:    domain.WrapError(domain.CodeBackendFatal, "generation backend failed", errors.New("503")),
		})
	}))
	h.start()

	h.submit(decode(t, `{"type":"response.create"}`))
	events := h.expect(protocol.TypeResponseCreated, protocol.TypeError, protocol.TypeResponseDone)

	errEv := events[1].(*protocol.ErrorEvent)
	assert.Equal(t, string(domain.CodeBackendFatal), errEv.Error.Code)
	assert.Equal(t, "server_error", errEv.Error.Type)
	done := events[2].(*protocol.ResponseDone)
	assert.Equal(t, protocol.ResponseStatusFailed, done.Response.Status)
	assert.Equal(t, string(domain.CodeBackendFatal), done.Response.StatusDetails.Code)

	h.waitState(turn.StateIdle)
	assert.Equal(t, 0, h.index.Len(h.session.ID))
	h.quiet()
}

func TestController_OneResponseAtATime(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(t, orchestratorFunc(func(ctx context.Context, tr orchestrator.Turn, out chan<- orchestrator.Result) {
		select {
		case <-release:
		case <-ctx.Done():
			return
		}
		answer("done")(ctx, tr, out)
	}))
	h.start()

	h.submit(decode(t, `{"type":"response.create"}`))
	h.expect(protocol.TypeResponseCreated)
	h.submit(decode(t, `{"type":"response.create","event_id":"evt_2"}`))
	ev := h.expect(protocol.TypeError)[0].(*protocol.ErrorEvent)
	assert.Equal(t, "evt_2", ev.Error.EventID)

	h.submit(decode(t, `{"type":"conversation.item.delete","item_id":"`+uuid.NewString()+`"}`))
	h.expect(protocol.TypeError)

	close(release)
	h.expect(protocol.TypeTextDelta, protocol.TypeResponseDone)
	h.quiet()
}

func TestController_ItemCreateBargesIn(t *testing.T) {
	h := newHarness(t, orchestratorFunc(func(ctx context.Context, tr orchestrator.Turn, out chan<- orchestrator.Result) {
		<-ctx.Done()
	}))
	h.start()

	h.submit(decode(t, `{"type":"response.create"}`))
	h.expect(protocol.TypeResponseCreated)
	h.submit(decode(t, `{"type":"conversation.item.create","item":{"type":"message","role":"user","content":[{"type":"input_text","text":"wait"}]}}`))

	events := h.expect(protocol.TypeResponseDone, protocol.TypeItemCreated)
	assert.Equal(t, protocol.ResponseStatusCancelled, events[0].(*protocol.ResponseDone).Response.Status)
	item := events[1].(*protocol.ItemCreated).Item
	assert.Equal(t, "user", item.Role)
	assert.Equal(t, "wait", item.Content[0].Text)
	h.waitState(turn.StateListening)
	assert.Equal(t, 1, h.index.Len(h.session.ID))
}

func TestController_TruncateAndDelete(t *testing.T) {
	h := newHarness(t, answer("unused"))
	h.start()

	h.submit(decode(t, `{"type":"conversation.item.create","item":{"type":"message","content":[{"type":"input_text","text":"one"}]}}`))
	first := h.expect(protocol.TypeItemCreated)[0].(*protocol.ItemCreated).Item.ID
	h.submit(decode(t, `{"type":"conversation.item.create","item":{"type":"message","content":[{"type":"input_text","text":"two"}]}}`))
	second := h.expect(protocol.TypeItemCreated)[0].(*protocol.ItemCreated)
	assert.Equal(t, first, second.PreviousItemID)

	h.submit(decode(t, `{"type":"conversation.item.truncate","item_id":"`+first+`"}`))
	truncated := h.expect(protocol.TypeItemTruncated)[0].(*protocol.ItemTruncated)
	assert.Equal(t, []string{second.Item.ID}, truncated.Removed)

	h.submit(decode(t, `{"type":"conversation.item.delete","item_id":"`+first+`"}`))
	deleted := h.expect(protocol.TypeItemDeleted)[0].(*protocol.ItemDeleted)
	assert.Equal(t, []string{first}, deleted.Removed)
	assert.Equal(t, 0, h.index.Len(h.session.ID))

	h.submit(decode(t, `{"type":"conversation.item.delete","item_id":"`+first+`"}`))
	ev := h.expect(protocol.TypeError)[0].(*protocol.ErrorEvent)
	assert.Equal(t, string(domain.CodeValidation), ev.Error.Code)
	assert.Equal(t, "item_id", ev.Error.Param)
}

func functionCallingOrchestrator(runs chan<- orchestrator.Turn) orchestratorFunc {
	return func(ctx context.Context, tr orchestrator.Turn, out chan<- orchestrator.Result) {
		runs <- tr
		if len(tr.History) > 0 && tr.History[len(tr.History)-1].Role == message.RoleFunction {
			answer("It is sunny.")(ctx, tr, out)
			return
		}
		msg := message.New(tr.SessionID, tr.ParentID, message.RoleAssistant, message.ContentTypeFunctionCall, "")
		msg.ID = tr.AssistantItemID
		msg.FunctionCall = &message.FunctionCallPayload{CallID: "call_1", Name: "weather", Arguments: `{"city":"Paris"}`}
		call := &functioncall.FunctionCall{
			ID:        uuid.New(),
			MessageID: msg.ID,
			SessionID: tr.SessionID,
			CallID:    "call_1",
			Name:      "weather",
			Arguments: `{"city":"Paris"}`,
			Status:    functioncall.StatusPending,
		}
		send(ctx, out, orchestrator.Result{
			TurnID:   tr.ID,
			Kind:     orchestrator.KindFunctionCall,
			Messages: []*message.Message{msg},
			Calls:    []*functioncall.FunctionCall{call},
		})
	}
}

func TestController_FunctionCallRoundTrip(t *testing.T) {
	runs := make(chan orchestrator.Turn, 4)
	h := newHarness(t, functionCallingOrchestrator(runs))
	h.calls.EXPECT().Update(mock.Anything, mock.MatchedBy(func(c *functioncall.FunctionCall) bool {
		return c.Status == functioncall.StatusCompleted && c.Result == `{"sky":"clear"}`
	})).Return(nil).Once()
	h.start()

	h.submit(decode(t, `{"type":"response.create"}`))
	done := h.expect(protocol.TypeResponseCreated, protocol.TypeFunctionCallArgumentsDone)[1].(*protocol.FunctionCallArgumentsDone)
	assert.Equal(t, "call_1", done.CallID)
	assert.Equal(t, "weather", done.Name)

	h.submit(decode(t, `{"type":"conversation.item.create","item":{"type":"function_call_output","call_id":"call_1","output":"{\"sky\":\"clear\"}"}}`))
	events := h.expect(protocol.TypeItemCreated, protocol.TypeTextDelta, protocol.TypeResponseDone)
	assert.Equal(t, protocol.ItemTypeFunctionOutput, events[0].(*protocol.ItemCreated).Item.Type)

	resp := events[2].(*protocol.ResponseDone).Response
	assert.Equal(t, protocol.ResponseStatusCompleted, resp.Status)
	require.Len(t, resp.Output, 2)
	assert.Equal(t, protocol.ItemTypeFunctionCall, resp.Output[0].Type)
	assert.Equal(t, protocol.ItemTypeMessage, resp.Output[1].Type)

	first, second := <-runs, <-runs
	assert.Equal(t, first.ID, second.ID)
	assert.NotEqual(t, first.AssistantItemID, second.AssistantItemID)
	h.waitState(turn.StateIdle)
}

func TestController_FunctionCallTimeout(t *testing.T) {
	runs := make(chan orchestrator.Turn, 4)
	h := newHarness(t, functionCallingOrchestrator(runs), withConfig(func(c *realtime.Config) {
		c.FunctionCallTimeoutMs = 30
	}))
	h.calls.EXPECT().Update(mock.Anything, mock.MatchedBy(func(c *functioncall.FunctionCall) bool {
		return c.Status == functioncall.StatusFailed && c.CompletedAt != nil
	})).Return(nil).Once()
	h.start()

	h.submit(decode(t, `{"type":"response.create"}`))
	events := h.expect(
		protocol.TypeResponseCreated,
		protocol.TypeFunctionCallArgumentsDone,
		protocol.TypeError,
		protocol.TypeResponseDone,
	)
	assert.Equal(t, string(domain.CodeFunctionCallTimeout), events[2].(*protocol.ErrorEvent).Error.Code)
	assert.Equal(t, protocol.ResponseStatusFailed, events[3].(*protocol.ResponseDone).Response.Status)
	h.waitState(turn.StateIdle)

	h.submit(decode(t, `{"type":"conversation.item.create","item":{"type":"function_call_output","call_id":"call_1","output":"late"}}`))
	ev := h.expect(protocol.TypeError)[0].(*protocol.ErrorEvent)
	assert.Equal(t, "item.call_id", ev.Error.Param)
}

func TestController_RateLimits(t *testing.T) {
	limiter := turnmocks.NewRateLimiter(t)
	reset := time.Now().Add(time.Minute)
	limiter.EXPECT().Allow(mock.Anything, "client-1", mock.Anything, ratelimit.NameRequests, 1).
		Return(&ratelimit.RateLimit{Name: ratelimit.NameRequests, Limit: 2, Remaining: 1, ResetAt: reset}, true, nil).Once()
	limiter.EXPECT().Allow(mock.Anything, "client-1", mock.Anything, ratelimit.NameTokens, 0).
		Return(&ratelimit.RateLimit{Name: ratelimit.NameTokens, Limit: 100, Remaining: 100, ResetAt: reset}, true, nil).Once()
	limiter.EXPECT().Allow(mock.Anything, "client-1", mock.Anything, ratelimit.NameTokens, 5).
		Return(&ratelimit.RateLimit{Name: ratelimit.NameTokens, Limit: 100, Remaining: 95, ResetAt: reset}, true, nil).Once()
	limiter.EXPECT().Allow(mock.Anything, "client-1", mock.Anything, ratelimit.NameRequests, 1).
		Return(&ratelimit.RateLimit{Name: ratelimit.NameRequests, Limit: 2, Remaining: 0, ResetAt: reset}, false, nil).Once()

	h := newHarness(t, answer("hi"), withRateLimiter(limiter))
	h.start()

	h.submit(decode(t, `{"type":"response.create"}`))
	events := h.expect(protocol.TypeResponseCreated, protocol.TypeRateLimitsUpdated, protocol.TypeTextDelta, protocol.TypeResponseDone)
	limits := events[1].(*protocol.RateLimitsUpdated).RateLimits
	require.Len(t, limits, 2)
	assert.Equal(t, ratelimit.NameRequests, limits[0].Name)
	assert.Equal(t, 1, limits[0].Remaining)
	assert.InDelta(t, 60, limits[1].ResetSeconds, 2)

	h.submit(decode(t, `{"type":"response.create","event_id":"evt_limited"}`))
	ev := h.expect(protocol.TypeError)[0].(*protocol.ErrorEvent)
	assert.Equal(t, string(domain.CodeRateLimitExceeded), ev.Error.Code)
	assert.Equal(t, "rate_limit_error", ev.Error.Type)
	h.quiet()
}

func TestController_SessionUpdate(t *testing.T) {
	h := newHarness(t, answer("unused"), withConfig(func(c *realtime.Config) {
		c.AllowedModels = []string{"llama3.1", "qwen2.5"}
	}))
	h.start()

	h.submit(decode(t, `{"type":"session.update","session":{"model":"qwen2.5","temperature":0.2,"turn_detection":{"type":"server_vad","silence_duration_ms":800}}}`))
	updated := h.expect(protocol.TypeSessionUpdated)[0].(*protocol.SessionUpdated)
	assert.Equal(t, "qwen2.5", updated.Session.Model)
	assert.Equal(t, 0.2, updated.Session.Temperature)
	assert.Equal(t, 800, updated.Session.TurnDetection.SilenceDurationMs)
	h.waitState(turn.StateListening)

	h.submit(decode(t, `{"type":"session.update","session":{"model":"gpt-9"}}`))
	ev := h.expect(protocol.TypeError)[0].(*protocol.ErrorEvent)
	assert.Equal(t, string(domain.CodeValidation), ev.Error.Code)
	assert.Equal(t, "session.model", ev.Error.Param)
	assert.Equal(t, "qwen2.5", h.session.Model)
}

func TestController_Backpressure(t *testing.T) {
	h := newHarness(t, answer("unused"), withConfig(func(c *realtime.Config) { c.InboundQueueSize = 2 }))

	require.NoError(t, h.controller.Submit(appendCmd(pcm(0, 20))))
	require.NoError(t, h.controller.Submit(appendCmd(pcm(0, 20))))
	err := h.controller.Submit(appendCmd(pcm(0, 20)))
	require.ErrorIs(t, err, turn.ErrBackpressure)
	assert.True(t, domain.IsCode(err, domain.CodeProtocol))
}

// blockingOrchestrator records each run and then waits for cancellation.
func blockingOrchestrator(runs chan<- orchestrator.Turn, cancelled chan<- string) orchestratorFunc {
	return func(ctx context.Context, tr orchestrator.Turn, out chan<- orchestrator.Result) {
		runs <- tr
		<-ctx.Done()
		if cancelled != nil {
			cancelled <- tr.ID
		}
	}
}

func TestController_BufferOverflowCommitsOngoingSpeech(t *testing.T) {
	runs := make(chan orchestrator.Turn, 4)
	cancelled := make(chan string, 4)
	h := newHarness(t, blockingOrchestrator(runs, cancelled), withConfig(func(c *realtime.Config) {
		c.MaxTurnDurationMs = 200
	}))
	h.start()

	for i := 0; i < 16; i++ {
		h.submit(appendCmd(pcm(8000, 20)))
	}

	events := h.expect(
		protocol.TypeSpeechStarted,
		protocol.TypeError,
		protocol.TypeAudioCommitted,
		protocol.TypeItemCreated,
		protocol.TypeResponseCreated,
	)
	assert.Equal(t, string(domain.CodeBufferOverflow), events[1].(*protocol.ErrorEvent).Error.Code)
	assert.Equal(t, 200, events[2].(*protocol.AudioCommitted).DurationMs)

	// the rest of the same utterance must not cancel the turn it started
	h.quiet()
	h.waitState(turn.StateResponding)
	assert.Len(t, cancelled, 0)

	tr := <-runs
	require.NotNil(t, tr.Audio)
	assert.Equal(t, 200, tr.Audio.DurationMs)
}

func TestController_SpeechBargesInOnResponse(t *testing.T) {
	runs := make(chan orchestrator.Turn, 4)
	cancelled := make(chan string, 4)
	h := newHarness(t, blockingOrchestrator(runs, cancelled))
	h.start()

	h.submit(decode(t, `{"type":"response.create"}`))
	created := h.expect(protocol.TypeResponseCreated)[0].(*protocol.ResponseCreated)
	h.waitState(turn.StateResponding)

	for i := 0; i < 3; i++ {
		h.submit(appendCmd(pcm(8000, 20)))
	}
	events := h.expect(protocol.TypeSpeechStarted, protocol.TypeResponseDone)
	done := events[1].(*protocol.ResponseDone)
	assert.Equal(t, created.Response.ID, done.Response.ID)
	assert.Equal(t, protocol.ResponseStatusCancelled, done.Response.Status)
	require.NotNil(t, done.Response.StatusDetails)
	assert.Equal(t, "turn_detected", done.Response.StatusDetails.Reason)

	select {
	case id := <-cancelled:
		assert.Equal(t, created.Response.ID, id)
	case <-time.After(waitTimeout):
		t.Fatal("orchestrator context was not cancelled")
	}
	h.waitState(turn.StateListening)
	h.quiet()
}

func TestController_CommitDuringResponseTakesFloor(t *testing.T) {
	runs := make(chan orchestrator.Turn, 4)
	h := newHarness(t, blockingOrchestrator(runs, nil))
	h.start()

	h.submit(decode(t, `{"type":"session.update","session":{"turn_detection":null}}`))
	h.expect(protocol.TypeSessionUpdated)
	h.submit(decode(t, `{"type":"response.create"}`))
	first := h.expect(protocol.TypeResponseCreated)[0].(*protocol.ResponseCreated)

	h.submit(decode(t, `{"type":"input_audio_buffer.commit","event_id":"evt_empty"}`))
	ev := h.expect(protocol.TypeError)[0].(*protocol.ErrorEvent)
	assert.Equal(t, string(domain.CodeEmptyBuffer), ev.Error.Code)
	assert.Equal(t, "evt_empty", ev.Error.EventID)

	for i := 0; i < 10; i++ {
		h.submit(appendCmd(pcm(8000, 20)))
	}
	h.submit(decode(t, `{"type":"input_audio_buffer.commit","event_id":"evt_commit"}`))

	events := h.expect(
		protocol.TypeResponseDone,
		protocol.TypeAudioCommitted,
		protocol.TypeItemCreated,
		protocol.TypeResponseCreated,
	)
	done := events[0].(*protocol.ResponseDone)
	assert.Equal(t, first.Response.ID, done.Response.ID)
	assert.Equal(t, protocol.ResponseStatusCancelled, done.Response.Status)
	assert.Equal(t, "client_commit", done.Response.StatusDetails.Reason)
	assert.NotEqual(t, first.Response.ID, events[3].(*protocol.ResponseCreated).Response.ID)
	h.waitState(turn.StateResponding)

	<-runs
	second := <-runs
	require.NotNil(t, second.Audio)
	assert.Equal(t, 200, second.Audio.DurationMs)
	h.quiet()
}

func TestController_SessionUpdateRejectsVADOutOfRange(t *testing.T) {
	h := newHarness(t, answer("unused"))
	h.start()

	h.submit(decode(t, `{"type":"session.update","event_id":"evt_vad","session":{"turn_detection":{"type":"server_vad","silence_duration_ms":-5}}}`))
	ev := h.expect(protocol.TypeError)[0].(*protocol.ErrorEvent)
	assert.Equal(t, string(domain.CodeValidation), ev.Error.Code)
	assert.Equal(t, "session.turn_detection.silence_duration_ms", ev.Error.Param)
	assert.Equal(t, "evt_vad", ev.Error.EventID)

	h.submit(decode(t, `{"type":"session.update","session":{"turn_detection":{"type":"server_vad","threshold":1.5}}}`))
	ev = h.expect(protocol.TypeError)[0].(*protocol.ErrorEvent)
	assert.Equal(t, "session.turn_detection.threshold", ev.Error.Param)

	h.submit(decode(t, `{"type":"session.update","session":{"voice":"`+strings.Repeat("v", 65)+`"}}`))
	ev = h.expect(protocol.TypeError)[0].(*protocol.ErrorEvent)
	assert.Equal(t, "session.voice", ev.Error.Param)
	h.quiet()
}
