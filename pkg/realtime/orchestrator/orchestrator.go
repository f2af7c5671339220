package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/audiobuffer"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/functioncall"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/message"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/archive"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	synthesisQueueSize = 32
	discardTimeout     = 5 * time.Second
)

type Dependencies struct {
	Transcriber   providers.Transcriber
	Generator     providers.Generator
	Synthesizer   providers.Synthesizer
	Messages      message.Repository
	FunctionCalls functioncall.Repository
	AudioBuffers  audiobuffer.Repository
	// Archive is optional. Without it committed audio is not kept.
	Archive   archive.Archive
	Logger    *logrus.Logger
	MaxTokens int
}

// Orchestrator drives one turn through transcription, generation and
// synthesis. Results are delivered on the caller's channel in order; a run
// ends with exactly one of KindDone, KindFunctionCall or KindFailed unless
// its context is cancelled first.
type Orchestrator struct {
	deps Dependencies
}

func New(deps Dependencies) *Orchestrator {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	return &Orchestrator{deps: deps}
}

func (o *Orchestrator) Run(ctx context.Context, turn Turn, out chan<- Result) {
	r := &run{
		deps: o.deps,
		ctx:  ctx,
		turn: turn,
		out:  out,
		log: o.deps.Logger.WithFields(logrus.Fields{
			"session_id": turn.SessionID.String(),
			"turn_id":    turn.ID,
		}),
	}
	r.execute()
}

type run struct {
	deps Dependencies
	ctx  context.Context
	turn Turn
	out  chan<- Result
	log  *logrus.Entry
}

func (r *run) execute() {
	history := r.turn.History
	parent := r.turn.ParentID
	if r.turn.Audio != nil {
		userMsg, ok := r.transcribe()
		if !ok {
			return
		}
		history = append(append([]*message.Message(nil), history...), userMsg)
		parent = &userMsg.ID
	}
	r.generate(history, parent)
}

func (r *run) send(res Result) bool {
	res.TurnID = r.turn.ID
	select {
	case r.out <- res:
		return true
	case <-r.ctx.Done():
		return false
	}
}

// fail reports err as the terminal result. Cancelled runs end silently.
func (r *run) fail(code domain.Code, msg string, err error) {
	if r.ctx.Err() != nil {
		return
	}
	r.log.WithError(err).Error(msg)
	r.send(Result{Kind: KindFailed, Err: domain.WrapError(code, msg, err)})
}

// withRetry retries call once when it failed transiently before anything was
// forwarded to the client.
func (r *run) withRetry(backend string, call func(forwarded *bool) error) error {
	var forwarded bool
	err := call(&forwarded)
	if err == nil || r.ctx.Err() != nil || forwarded || !providers.IsTransient(err) {
		return err
	}
	r.log.WithError(err).WithField("backend", backend).Warn("transient backend failure, retrying once")
	return call(&forwarded)
}

func (r *run) transcribe() (*message.Message, bool) {
	snap := r.turn.Audio
	var transcript string
	err := r.withRetry(providers.BackendTranscription, func(forwarded *bool) error {
		text, err := r.deps.Transcriber.Transcribe(r.ctx, providers.TranscriptionRequest{
			Audio:      snap.Data,
			SampleRate: snap.Format.SampleRate,
		}, func(delta string) error {
			*forwarded = true
			if !r.send(Result{Kind: KindTranscriptDelta, Delta: delta}) {
				return r.ctx.Err()
			}
			return nil
		})
		transcript = text
		return err
	})
	if err != nil {
		r.fail(domain.CodeBackendFatal, "transcription backend failed", err)
		return nil, false
	}
	transcript = strings.TrimSpace(transcript)
	if !r.send(Result{Kind: KindTranscriptDone, Delta: transcript}) {
		return nil, false
	}

	// a barged-in run must not leave a user row the conversation never sees
	if r.ctx.Err() != nil {
		return nil, false
	}

	bufferID := uuid.New()
	var fileRef string
	if r.deps.Archive != nil {
		ref, err := r.deps.Archive.Store(r.ctx, r.turn.SessionID, bufferID, snap.Data)
		if err != nil {
			r.log.WithError(err).Warn("failed to archive committed audio")
		} else {
			fileRef = ref
		}
	}

	msg := message.New(r.turn.SessionID, r.turn.ParentID, message.RoleUser, message.ContentTypeAudio, transcript)
	if r.turn.UserItemID != uuid.Nil {
		msg.ID = r.turn.UserItemID
	}
	if err := r.deps.Messages.Save(r.ctx, msg); err != nil {
		r.fail(domain.CodeInternal, "failed to persist user message", err)
		return nil, false
	}

	buffer := &audiobuffer.AudioBuffer{
		ID:            bufferID,
		SessionID:     r.turn.SessionID,
		MessageID:     &msg.ID,
		FileRef:       fileRef,
		DurationMs:    snap.DurationMs,
		Format:        snap.Format.Name,
		Transcription: transcript,
		ProcessedAt:   time.Now(),
	}
	if r.deps.AudioBuffers != nil {
		if err := r.deps.AudioBuffers.Save(r.ctx, buffer); err != nil {
			r.log.WithError(err).Warn("failed to persist audio buffer")
		}
	}
	if !r.send(Result{Kind: KindUserMessage, Message: msg, AudioBuffer: buffer}) {
		r.discard(msg.ID)
		return nil, false
	}
	return msg, true
}

func (r *run) generate(history []*message.Message, parent *uuid.UUID) {
	req := providers.GenerationRequest{
		Model:        r.turn.Model,
		Instructions: r.turn.Instructions,
		Temperature:  r.turn.Temperature,
		MaxTokens:    r.deps.MaxTokens,
		Messages:     chatHistory(history),
		Tools:        r.turn.Tools,
	}

	genCtx, cancelGen := context.WithCancel(r.ctx)
	defer cancelGen()

	var synth *synthesisWorker
	if r.turn.AudioOutput && r.deps.Synthesizer != nil {
		synth = r.startSynthesis(genCtx, cancelGen)
	}
	splitter := &sentenceSplitter{}

	var result *providers.GenerationResult
	err := r.withRetry(providers.BackendGeneration, func(forwarded *bool) error {
		res, err := r.deps.Generator.Generate(genCtx, req, func(chunk providers.GenerationChunk) error {
			if chunk.Text != "" {
				*forwarded = true
				if !r.send(Result{Kind: KindTextDelta, Delta: chunk.Text}) {
					return r.ctx.Err()
				}
				if synth != nil {
					for _, sentence := range splitter.Push(chunk.Text) {
						synth.enqueue(sentence)
					}
				}
			}
			if tc := chunk.ToolCall; tc != nil {
				*forwarded = true
				if !r.send(Result{
					Kind:   KindFunctionCallArgsDelta,
					CallID: tc.ID,
					Name:   tc.Name,
					Delta:  tc.ArgumentsDelta,
				}) {
					return r.ctx.Err()
				}
			}
			return nil
		})
		result = res
		return err
	})

	if synth != nil {
		if err != nil {
			cancelGen()
		} else if rest := splitter.Flush(); rest != "" && (result == nil || len(result.ToolCalls) == 0) {
			synth.enqueue(rest)
		}
		if synthErr := synth.finish(); synthErr != nil {
			r.fail(domain.CodeBackendFatal, "synthesis backend failed", synthErr)
			return
		}
	}
	if err != nil {
		r.fail(domain.CodeBackendFatal, "generation backend failed", err)
		return
	}
	if result == nil {
		result = &providers.GenerationResult{}
	}

	if len(result.ToolCalls) > 0 {
		r.requestFunctions(result, parent)
		return
	}

	msg := message.New(r.turn.SessionID, parent, message.RoleAssistant, message.ContentTypeText, result.Text)
	if r.turn.AssistantItemID != uuid.Nil {
		msg.ID = r.turn.AssistantItemID
	}
	if result.Usage.CompletionTokens > 0 {
		msg.TokenCount = result.Usage.CompletionTokens
	}
	if r.ctx.Err() != nil {
		return
	}
	if err := r.deps.Messages.Save(r.ctx, msg); err != nil {
		r.fail(domain.CodeInternal, "failed to persist assistant message", err)
		return
	}
	if !r.send(Result{Kind: KindDone, Message: msg, Usage: result.Usage}) {
		r.discard(msg.ID)
	}
}

// discard removes a message stored by a run that was cancelled before the
// controller could index it.
func (r *run) discard(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.ctx), discardTimeout)
	defer cancel()
	if err := r.deps.Messages.Delete(ctx, r.turn.SessionID, []uuid.UUID{id}); err != nil {
		r.log.WithError(err).WithField("message_id", id.String()).Warn("failed to discard message of cancelled turn")
	}
}

// requestFunctions stores one assistant message per requested call, chained
// in request order, and hands the pending calls to the controller.
func (r *run) requestFunctions(result *providers.GenerationResult, parent *uuid.UUID) {
	msgs := make([]*message.Message, 0, len(result.ToolCalls))
	calls := make([]*functioncall.FunctionCall, 0, len(result.ToolCalls))
	prev := parent
	if r.ctx.Err() != nil {
		return
	}
	for i, tc := range result.ToolCalls {
		content := ""
		if i == 0 {
			content = result.Text
		}
		callID := tc.ID
		if callID == "" {
			callID = "call_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
		}
		msg := message.New(r.turn.SessionID, prev, message.RoleAssistant, message.ContentTypeFunctionCall, content)
		if i == 0 && r.turn.AssistantItemID != uuid.Nil {
			msg.ID = r.turn.AssistantItemID
		}
		msg.FunctionCall = &message.FunctionCallPayload{
			CallID:    callID,
			Name:      tc.Name,
			Arguments: tc.Arguments,
		}
		if err := r.deps.Messages.Save(r.ctx, msg); err != nil {
			r.fail(domain.CodeInternal, "failed to persist function call message", err)
			return
		}
		call := &functioncall.FunctionCall{
			ID:        uuid.New(),
			MessageID: msg.ID,
			SessionID: r.turn.SessionID,
			CallID:    callID,
			Name:      tc.Name,
			Arguments: tc.Arguments,
			Status:    functioncall.StatusPending,
			CreatedAt: time.Now(),
		}
		if err := r.deps.FunctionCalls.Save(r.ctx, call); err != nil {
			r.fail(domain.CodeInternal, "failed to persist function call", err)
			return
		}
		msgs = append(msgs, msg)
		calls = append(calls, call)
		prev = &msg.ID
	}
	r.send(Result{Kind: KindFunctionCall, Messages: msgs, Calls: calls, Usage: result.Usage})
}

type synthesisWorker struct {
	queue chan string
	done  chan struct{}
	err   error
}

// startSynthesis runs sentences through the synthesizer one at a time so
// audio deltas keep text order. A failure cancels generation.
func (r *run) startSynthesis(ctx context.Context, cancel context.CancelFunc) *synthesisWorker {
	w := &synthesisWorker{
		queue: make(chan string, synthesisQueueSize),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(w.done)
		for sentence := range w.queue {
			if ctx.Err() != nil {
				continue
			}
			err := r.withRetry(providers.BackendSynthesis, func(forwarded *bool) error {
				return r.deps.Synthesizer.Synthesize(ctx, providers.SynthesisRequest{
					Text:  sentence,
					Voice: r.turn.Voice,
				}, func(pcm []byte) error {
					*forwarded = true
					if !r.send(Result{Kind: KindAudioDelta, Audio: pcm}) {
						return r.ctx.Err()
					}
					return nil
				})
			})
			if err != nil && ctx.Err() == nil && !errors.Is(err, context.Canceled) {
				w.err = err
				cancel()
			}
		}
	}()
	return w
}

func (w *synthesisWorker) enqueue(sentence string) {
	w.queue <- sentence
}

// finish waits for queued sentences and returns the first failure.
func (w *synthesisWorker) finish() error {
	close(w.queue)
	<-w.done
	return w.err
}
