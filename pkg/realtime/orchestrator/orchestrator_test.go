package orchestrator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	abmocks "github.com/NeuralTrust/RealtimeGateway/pkg/domain/audiobuffer/mocks"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/functioncall"
	fcmocks "github.com/NeuralTrust/RealtimeGateway/pkg/domain/functioncall/mocks"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/message"
	msgmocks "github.com/NeuralTrust/RealtimeGateway/pkg/domain/message/mocks"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	providermocks "github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers/mocks"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/audio"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/orchestrator"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	transcriber *providermocks.Transcriber
	generator   *providermocks.Generator
	synthesizer *providermocks.Synthesizer
	messages    *msgmocks.Repository
	calls       *fcmocks.Repository
	buffers     *abmocks.Repository

	mu         sync.Mutex
	saved      []*message.Message
	savedCalls []*functioncall.FunctionCall
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		transcriber: providermocks.NewTranscriber(t),
		generator:   providermocks.NewGenerator(t),
		synthesizer: providermocks.NewSynthesizer(t),
		messages:    msgmocks.NewRepository(t),
		calls:       fcmocks.NewRepository(t),
		buffers:     abmocks.NewRepository(t),
	}
	f.messages.EXPECT().Save(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, m *message.Message) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.saved = append(f.saved, m)
			return nil
		}).Maybe()
	f.calls.EXPECT().Save(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, c *functioncall.FunctionCall) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.savedCalls = append(f.savedCalls, c)
			return nil
		}).Maybe()
	f.messages.EXPECT().Delete(mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.buffers.EXPECT().Save(mock.Anything, mock.Anything).Return(nil).Maybe()
	return f
}

func (f *fixture) orchestrator() *orchestrator.Orchestrator {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return orchestrator.New(orchestrator.Dependencies{
		Transcriber:   f.transcriber,
		Generator:     f.generator,
		Synthesizer:   f.synthesizer,
		Messages:      f.messages,
		FunctionCalls: f.calls,
		AudioBuffers:  f.buffers,
		Logger:        logger,
	})
}

func (f *fixture) savedMessages() []*message.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*message.Message(nil), f.saved...)
}

func run(t *testing.T, ctx context.Context, o *orchestrator.Orchestrator, turn orchestrator.Turn) []orchestrator.Result {
	t.Helper()
	out := make(chan orchestrator.Result, 128)
	done := make(chan struct{})
	go func() {
		defer close(done)
		o.Run(ctx, turn, out)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}
	close(out)
	var results []orchestrator.Result
	for r := range out {
		results = append(results, r)
	}
	return results
}

func kinds(results []orchestrator.Result) []orchestrator.Kind {
	out := make([]orchestrator.Kind, 0, len(results))
	for _, r := range results {
		out = append(out, r.Kind)
	}
	return out
}

func streamText(parts ...string) func(context.Context, providers.GenerationRequest, func(providers.GenerationChunk) error) (*providers.GenerationResult, error) {
	return func(_ context.Context, _ providers.GenerationRequest, onChunk func(providers.GenerationChunk) error) (*providers.GenerationResult, error) {
		text := ""
		for _, p := range parts {
			if err := onChunk(providers.GenerationChunk{Text: p}); err != nil {
				return nil, err
			}
			text += p
		}
		return &providers.GenerationResult{Text: text, FinishReason: "stop", Usage: providers.Usage{CompletionTokens: 7}}, nil
	}
}

func snapshot() *audio.Snapshot {
	return &audio.Snapshot{
		Data:       make([]byte, 960),
		DurationMs: 20,
		Format:     audio.NewFormat(24000),
	}
}

func TestRun_AudioTurn(t *testing.T) {
	f := newFixture(t)
	f.transcriber.EXPECT().Transcribe(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, req providers.TranscriptionRequest, onDelta func(string) error) (string, error) {
			assert.Equal(t, 24000, req.SampleRate)
			assert.Len(t, req.Audio, 960)
			require.NoError(t, onDelta("what time"))
			require.NoError(t, onDelta(" is it"))
			return "what time is it", nil
		}).Once()
	f.generator.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(streamText("It is noon. ", "Enjoy lunch")).Once()
	f.synthesizer.EXPECT().Synthesize(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, req providers.SynthesisRequest, onAudio func([]byte) error) error {
			assert.Equal(t, "alloy", req.Voice)
			return onAudio([]byte(req.Text))
		}).Times(2)

	turn := orchestrator.Turn{
		ID:              "turn_1",
		SessionID:       uuid.New(),
		Model:           "llama3.1",
		Voice:           "alloy",
		AudioOutput:     true,
		Audio:           snapshot(),
		UserItemID:      uuid.New(),
		AssistantItemID: uuid.New(),
	}
	results := run(t, context.Background(), f.orchestrator(), turn)

	require.GreaterOrEqual(t, len(results), 7)
	assert.Equal(t, []orchestrator.Kind{
		orchestrator.KindTranscriptDelta,
		orchestrator.KindTranscriptDelta,
		orchestrator.KindTranscriptDone,
		orchestrator.KindUserMessage,
	}, kinds(results[:4]))
	last := results[len(results)-1]
	assert.Equal(t, orchestrator.KindDone, last.Kind)
	assert.Equal(t, 7, last.Usage.CompletionTokens)

	var audioOut []string
	var text string
	for _, r := range results {
		assert.Equal(t, "turn_1", r.TurnID)
		switch r.Kind {
		case orchestrator.KindAudioDelta:
			audioOut = append(audioOut, string(r.Audio))
		case orchestrator.KindTextDelta:
			text += r.Delta
		}
	}
	assert.Equal(t, []string{"It is noon.", "Enjoy lunch"}, audioOut)
	assert.Equal(t, "It is noon. Enjoy lunch", text)

	user := results[3].Message
	require.NotNil(t, user)
	assert.Equal(t, turn.UserItemID, user.ID)
	assert.Equal(t, message.ContentTypeAudio, user.ContentType)
	assert.Equal(t, "what time is it", user.Content)
	require.NotNil(t, results[3].AudioBuffer)
	assert.Equal(t, user.ID, *results[3].AudioBuffer.MessageID)

	saved := f.savedMessages()
	require.Len(t, saved, 2)
	assert.Equal(t, turn.AssistantItemID, saved[1].ID)
	require.NotNil(t, saved[1].ParentID)
	assert.Equal(t, user.ID, *saved[1].ParentID)
	assert.Equal(t, message.StatusCompleted, saved[1].Status)
}

func TestRun_TextTurnWithoutAudioOutput(t *testing.T) {
	f := newFixture(t)
	parent := uuid.New()
	history := []*message.Message{
		message.New(uuid.New(), nil, message.RoleUser, message.ContentTypeText, "hello"),
	}
	f.generator.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, req providers.GenerationRequest, onChunk func(providers.GenerationChunk) error) (*providers.GenerationResult, error) {
			require.Len(t, req.Messages, 1)
			assert.Equal(t, providers.RoleUser, req.Messages[0].Role)
			assert.Equal(t, "be brief", req.Instructions)
			return streamText("Hi!")(ctx, req, onChunk)
		}).Once()

	results := run(t, context.Background(), f.orchestrator(), orchestrator.Turn{
		ID:           "turn_2",
		SessionID:    uuid.New(),
		Instructions: "be brief",
		ParentID:     &parent,
		History:      history,
	})

	assert.Equal(t, []orchestrator.Kind{orchestrator.KindTextDelta, orchestrator.KindDone}, kinds(results))
	saved := f.savedMessages()
	require.Len(t, saved, 1)
	assert.Equal(t, parent, *saved[0].ParentID)
	assert.Equal(t, "Hi!", saved[0].Content)
}

func TestRun_GenerationFailsTwice(t *testing.T) {
	f := newFixture(t)
	unavailable := &providers.StatusError{Backend: "openai", StatusCode: 503, Err: errors.New("unavailable")}
	f.generator.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).
		Return(nil, unavailable).Times(2)

	results := run(t, context.Background(), f.orchestrator(), orchestrator.Turn{ID: "turn_3", SessionID: uuid.New()})

	require.Len(t, results, 1)
	assert.Equal(t, orchestrator.KindFailed, results[0].Kind)
	assert.True(t, domain.IsCode(results[0].Err, domain.CodeBackendFatal))
	assert.Empty(t, f.savedMessages())
}

func TestRun_TransientFailureRetriedOnce(t *testing.T) {
	f := newFixture(t)
	f.generator.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &providers.StatusError{Backend: "openai", StatusCode: 429, Err: errors.New("slow down")}).Once()
	f.generator.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(streamText("ok")).Once()

	results := run(t, context.Background(), f.orchestrator(), orchestrator.Turn{ID: "turn_4", SessionID: uuid.New()})

	assert.Equal(t, []orchestrator.Kind{orchestrator.KindTextDelta, orchestrator.KindDone}, kinds(results))
}

func TestRun_NoRetryAfterOutputWasForwarded(t *testing.T) {
	f := newFixture(t)
	f.generator.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, _ providers.GenerationRequest, onChunk func(providers.GenerationChunk) error) (*providers.GenerationResult, error) {
			_ = onChunk(providers.GenerationChunk{Text: "partial"})
			return nil, &providers.StatusError{Backend: "openai", StatusCode: 502, Err: errors.New("bad gateway")}
		}).Once()

	results := run(t, context.Background(), f.orchestrator(), orchestrator.Turn{ID: "turn_5", SessionID: uuid.New()})

	assert.Equal(t, []orchestrator.Kind{orchestrator.KindTextDelta, orchestrator.KindFailed}, kinds(results))
	assert.Empty(t, f.savedMessages())
}

func TestRun_NonTransientFailureIsNotRetried(t *testing.T) {
	f := newFixture(t)
	f.transcriber.EXPECT().Transcribe(mock.Anything, mock.Anything, mock.Anything).
		Return("", &providers.StatusError{Backend: "openai", StatusCode: 400, Err: errors.New("bad audio")}).Once()

	results := run(t, context.Background(), f.orchestrator(), orchestrator.Turn{
		ID:        "turn_6",
		SessionID: uuid.New(),
		Audio:     snapshot(),
	})

	require.Len(t, results, 1)
	assert.Equal(t, orchestrator.KindFailed, results[0].Kind)
	assert.Empty(t, f.savedMessages())
}

func TestRun_FunctionCalls(t *testing.T) {
	f := newFixture(t)
	f.generator.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, req providers.GenerationRequest, onChunk func(providers.GenerationChunk) error) (*providers.GenerationResult, error) {
			require.Len(t, req.Tools, 1)
			require.NoError(t, onChunk(providers.GenerationChunk{ToolCall: &providers.ToolCallDelta{ID: "call_a", Name: "weather", ArgumentsDelta: `{"city":`}}))
			require.NoError(t, onChunk(providers.GenerationChunk{ToolCall: &providers.ToolCallDelta{ID: "call_a", ArgumentsDelta: `"Paris"}`}}))
			return &providers.GenerationResult{
				FinishReason: "tool_calls",
				ToolCalls: []providers.ToolCall{
					{ID: "call_a", Name: "weather", Arguments: `{"city":"Paris"}`},
					{ID: "call_b", Name: "weather", Arguments: `{"city":"Rome"}`},
				},
			}, nil
		}).Once()

	turn := orchestrator.Turn{
		ID:              "turn_7",
		SessionID:       uuid.New(),
		AssistantItemID: uuid.New(),
		AudioOutput:     true,
		Tools:           []providers.Tool{{Name: "weather"}},
	}
	results := run(t, context.Background(), f.orchestrator(), turn)

	assert.Equal(t, []orchestrator.Kind{
		orchestrator.KindFunctionCallArgsDelta,
		orchestrator.KindFunctionCallArgsDelta,
		orchestrator.KindFunctionCall,
	}, kinds(results))

	last := results[2]
	require.Len(t, last.Calls, 2)
	require.Len(t, last.Messages, 2)
	assert.Equal(t, turn.AssistantItemID, last.Messages[0].ID)
	assert.Equal(t, last.Messages[0].ID, *last.Messages[1].ParentID)
	for i, call := range last.Calls {
		assert.Equal(t, functioncall.StatusPending, call.Status)
		assert.Equal(t, last.Messages[i].ID, call.MessageID)
		assert.Equal(t, message.ContentTypeFunctionCall, last.Messages[i].ContentType)
	}
	assert.Equal(t, "call_b", last.Calls[1].CallID)
}

func TestRun_SynthesisFailureFailsTurn(t *testing.T) {
	f := newFixture(t)
	f.generator.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(streamText("One. ", "Two.")).Once()
	f.synthesizer.EXPECT().Synthesize(mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("voice not found")).Once()

	results := run(t, context.Background(), f.orchestrator(), orchestrator.Turn{
		ID:          "turn_8",
		SessionID:   uuid.New(),
		AudioOutput: true,
	})

	last := results[len(results)-1]
	assert.Equal(t, orchestrator.KindFailed, last.Kind)
	assert.Contains(t, last.Err.Error(), "synthesis backend failed")
	assert.Empty(t, f.savedMessages())
}

func TestRun_CancelledRunEndsSilently(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.generator.EXPECT().Generate(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ providers.GenerationRequest, onChunk func(providers.GenerationChunk) error) (*providers.GenerationResult, error) {
			require.NoError(t, onChunk(providers.GenerationChunk{Text: "long answer"}))
			cancel()
			<-ctx.Done()
			return nil, ctx.Err()
		}).Once()

	results := run(t, ctx, f.orchestrator(), orchestrator.Turn{ID: "turn_9", SessionID: uuid.New()})

	for _, r := range results {
		assert.NotEqual(t, orchestrator.KindFailed, r.Kind)
		assert.NotEqual(t, orchestrator.KindDone, r.Kind)
	}
	assert.Empty(t, f.savedMessages())
}

func TestRun_CancelledDuringTranscriptionStoresNothing(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	f.transcriber.EXPECT().Transcribe(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, _ providers.TranscriptionRequest, _ func(string) error) (string, error) {
			cancel()
			return "never mind", nil
		}).Once()

	results := run(t, ctx, f.orchestrator(), orchestrator.Turn{
		ID:         "turn_barged",
		SessionID:  uuid.New(),
		Audio:      snapshot(),
		UserItemID: uuid.New(),
	})

	for _, r := range results {
		assert.NotEqual(t, orchestrator.KindUserMessage, r.Kind)
		assert.NotEqual(t, orchestrator.KindFailed, r.Kind)
	}
	assert.Empty(t, f.savedMessages())
	f.generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}
