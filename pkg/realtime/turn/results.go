package turn

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/functioncall"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/message"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/ratelimit"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/audio"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/orchestrator"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/protocol"
	"github.com/google/uuid"
)

// startTurn moves to Responding and launches the orchestrator. snap is nil
// for text-only responses.
func (c *Controller) startTurn(ctx context.Context, snap *audio.Snapshot, userItemID uuid.UUID, params *protocol.ResponseParams, eventID string) {
	if !c.tokensAvailable(ctx, eventID) {
		c.setState(ctx, StateIdle)
		return
	}

	at := &activeTurn{
		id:           "resp_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24],
		userItemID:   userItemID,
		audioOutput:  c.sess.AudioOutput(),
		model:        c.sess.Model,
		voice:        c.sess.Voice,
		instructions: c.sess.Instructions,
		temperature:  c.sess.Temperature,
		pending:      make(map[string]*functioncall.FunctionCall),
	}
	if params != nil {
		if params.Modalities != nil {
			at.audioOutput = false
			for _, m := range params.Modalities {
				if m == session.ModalityAudio || m == "both" {
					at.audioOutput = true
				}
			}
		}
		if params.Instructions != nil {
			at.instructions = *params.Instructions
		}
		if params.Temperature != nil {
			at.temperature = *params.Temperature
		}
	}

	c.encoder.StartTurn()
	c.active = at
	c.setState(ctx, StateResponding)
	c.emit(ctx, &protocol.ResponseCreated{Response: protocol.ResponseResource{
		ID:     at.id,
		Object: objectResponse,
		Status: protocol.ResponseStatusInProgress,
		Output: []protocol.ItemResource{},
	}})
	c.emitRateLimits(ctx)
	c.launch(ctx, at, snap)
}

// continueTurn resumes generation once every requested function has output.
func (c *Controller) continueTurn(ctx context.Context, at *activeTurn) {
	at.text.Reset()
	c.launch(ctx, at, nil)
}

func (c *Controller) launch(ctx context.Context, at *activeTurn, snap *audio.Snapshot) {
	at.assistantItemID = uuid.New()
	t := orchestrator.Turn{
		ID:              at.id,
		SessionID:       c.sess.ID,
		Model:           at.model,
		Voice:           at.voice,
		Instructions:    at.instructions,
		Temperature:     at.temperature,
		AudioOutput:     at.audioOutput,
		Tools:           orchestrator.ToolsFrom(c.sess.Tools),
		Audio:           snap,
		UserItemID:      at.userItemID,
		AssistantItemID: at.assistantItemID,
		ParentID:        c.leaf(),
		History:         c.deps.Index.Context(c.sess.ID),
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	prevDone := at.done
	at.cancel = cancel
	at.done = done
	go func() {
		defer close(done)
		if prevDone != nil {
			<-prevDone
		}
		c.deps.Orchestrator.Run(runCtx, t, c.results)
	}()
}

func (c *Controller) handleResult(ctx context.Context, res orchestrator.Result) {
	at := c.active
	if at == nil || res.TurnID != at.id {
		return
	}
	switch res.Kind {
	case orchestrator.KindTranscriptDelta:
		c.emit(ctx, &protocol.TranscriptDelta{ResponseID: at.id, ItemID: at.userItemID.String(), Delta: res.Delta})
	case orchestrator.KindTranscriptDone:
	case orchestrator.KindUserMessage:
		c.index(ctx, res.Message)
	case orchestrator.KindTextDelta:
		at.text.WriteString(res.Delta)
		c.emit(ctx, &protocol.TextDelta{ResponseID: at.id, ItemID: at.assistantItemID.String(), Delta: res.Delta})
	case orchestrator.KindAudioDelta:
		c.emit(ctx, &protocol.AudioDelta{
			ResponseID: at.id,
			ItemID:     at.assistantItemID.String(),
			Delta:      base64.StdEncoding.EncodeToString(res.Audio),
		})
	case orchestrator.KindFunctionCallArgsDelta:
		c.emit(ctx, &protocol.FunctionCallArgumentsDelta{
			ResponseID: at.id,
			ItemID:     at.assistantItemID.String(),
			CallID:     res.CallID,
			Delta:      res.Delta,
		})
	case orchestrator.KindFunctionCall:
		for _, m := range res.Messages {
			c.index(ctx, m)
		}
		addUsage(at, res)
		for _, call := range res.Calls {
			at.pending[call.CallID] = call
			at.output = append(at.output, functionCallItem(call))
			c.emit(ctx, &protocol.FunctionCallArgumentsDone{
				ResponseID: at.id,
				ItemID:     call.MessageID.String(),
				CallID:     call.CallID,
				Name:       call.Name,
				Arguments:  call.Arguments,
			})
		}
		c.stopFunctionTimer()
		c.fnTimer = time.NewTimer(c.cfg.FunctionCallTimeout())
	case orchestrator.KindDone:
		c.index(ctx, res.Message)
		addUsage(at, res)
		if res.Message != nil {
			at.output = append(at.output, messageItem(res.Message, at.audioOutput))
		}
		c.finishTurn(ctx, protocol.ResponseStatusCompleted, nil, StateIdle)
	case orchestrator.KindFailed:
		c.emitError(ctx, res.Err, "")
		c.finishTurn(ctx, protocol.ResponseStatusFailed, &protocol.StatusDetails{
			Type: protocol.ResponseStatusFailed,
			Code: string(domain.CodeOf(res.Err)),
		}, StateIdle)
	}
}

// index records a message produced by the orchestrator. A message that does
// not fit the conversation tree means the session state is corrupt.
func (c *Controller) index(ctx context.Context, m *message.Message) {
	if m == nil {
		return
	}
	if err := c.deps.Index.Add(m); err != nil {
		err = domain.WrapError(domain.CodeInternal, "conversation state is inconsistent", err)
		c.emitError(ctx, err, "")
		c.fatal = err
	}
}

func addUsage(at *activeTurn, res orchestrator.Result) {
	at.usage.PromptTokens += res.Usage.PromptTokens
	at.usage.CompletionTokens += res.Usage.CompletionTokens
	at.usage.TotalTokens += res.Usage.TotalTokens
}

// finishTurn ends the active turn with its single response.done.
func (c *Controller) finishTurn(ctx context.Context, status string, details *protocol.StatusDetails, next State) {
	at := c.active
	if at == nil {
		return
	}
	c.active = nil
	at.cancel()
	c.stopFunctionTimer()
	if status != protocol.ResponseStatusCompleted {
		c.failPending(ctx, at, status)
	}

	output := at.output
	if output == nil {
		output = []protocol.ItemResource{}
	}
	c.emit(ctx, &protocol.ResponseDone{Response: protocol.ResponseResource{
		ID:            at.id,
		Object:        objectResponse,
		Status:        status,
		StatusDetails: details,
		Output:        output,
		Usage:         usageOf(at.usage),
	}})
	c.metrics.TurnFinished(status)
	c.consumeTokens(ctx, at.usage.TotalTokens)
	if err := c.deps.Sessions.Touch(ctx, c.sess.ID, c.LastActivity()); err != nil {
		c.log.WithError(err).Warn("failed to record session activity")
	}

	if status == protocol.ResponseStatusFailed {
		c.setState(ctx, StateError)
	}
	c.setState(ctx, next)
}

func (c *Controller) functionCallTimeout(ctx context.Context) {
	at := c.active
	if at == nil || len(at.pending) == 0 {
		return
	}
	names := make([]string, 0, len(at.pending))
	for _, call := range at.pending {
		names = append(names, call.CallID)
	}
	c.emitError(ctx, domain.NewError(domain.CodeFunctionCallTimeout,
		fmt.Sprintf("no output received for function call %s", strings.Join(names, ", "))), "")
	c.finishTurn(ctx, protocol.ResponseStatusFailed, &protocol.StatusDetails{
		Type: protocol.ResponseStatusFailed,
		Code: string(domain.CodeFunctionCallTimeout),
	}, StateIdle)
}

// failPending marks calls still waiting for output as failed.
func (c *Controller) failPending(ctx context.Context, at *activeTurn, reason string) {
	for id, call := range at.pending {
		if !call.Open() {
			continue
		}
		call.Fail(reason, c.now())
		if err := c.deps.FunctionCalls.Update(ctx, call); err != nil {
			c.log.WithError(err).WithField("call_id", id).Warn("failed to mark function call failed")
		}
		delete(at.pending, id)
	}
}

func (c *Controller) tokensAvailable(ctx context.Context, eventID string) bool {
	if c.deps.RateLimiter == nil {
		return true
	}
	rl, ok, err := c.deps.RateLimiter.Allow(ctx, c.sess.ClientID, c.sess.ID, ratelimit.NameTokens, 0)
	if err != nil {
		c.log.WithError(err).Warn("rate limiter unavailable")
		return true
	}
	if rl != nil {
		c.limits[ratelimit.NameTokens] = rl
	}
	if !ok {
		c.emitError(ctx, c.limitError(ratelimit.NameTokens, rl), eventID)
		return false
	}
	return true
}

func (c *Controller) consumeTokens(ctx context.Context, n int) {
	if c.deps.RateLimiter == nil || n <= 0 {
		return
	}
	rl, _, err := c.deps.RateLimiter.Allow(ctx, c.sess.ClientID, c.sess.ID, ratelimit.NameTokens, n)
	if err != nil {
		c.log.WithError(err).Warn("failed to record token usage")
		return
	}
	if rl != nil {
		c.limits[ratelimit.NameTokens] = rl
	}
}

func (c *Controller) emitRateLimits(ctx context.Context) {
	if len(c.limits) == 0 {
		return
	}
	now := c.now()
	ev := &protocol.RateLimitsUpdated{}
	for _, name := range []string{ratelimit.NameRequests, ratelimit.NameTokens} {
		rl, ok := c.limits[name]
		if !ok {
			continue
		}
		ev.RateLimits = append(ev.RateLimits, protocol.RateLimitResource{
			Name:         name,
			Limit:        rl.Limit,
			Remaining:    rl.Remaining,
			ResetSeconds: rl.ResetSeconds(now),
		})
	}
	c.emit(ctx, ev)
}
