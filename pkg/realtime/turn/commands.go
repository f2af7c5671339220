package turn

import (
	"context"
	"errors"
	"fmt"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/functioncall"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/message"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/ratelimit"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/audio"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/protocol"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/vad"
	"github.com/google/uuid"
)

var (
	errResponseInProgress = domain.NewError(domain.CodeProtocol, "a response is already in progress")
	errNoActiveResponse   = domain.NewError(domain.CodeProtocol, "no response in progress")
	errConversationBusy   = domain.NewError(domain.CodeProtocol, "conversation cannot be edited while a response is in progress")
)

func (c *Controller) handle(ctx context.Context, cmd protocol.Command) {
	c.metrics.EventReceived(cmd.CommandType())
	// Audio frames are bounded by the buffer duration and the token limit,
	// not the request limit.
	if cmd.CommandType() != protocol.TypeAudioAppend && !c.allow(ctx, cmd.EventID()) {
		return
	}
	switch v := cmd.(type) {
	case *protocol.SessionUpdate:
		c.updateSession(ctx, v)
	case *protocol.AudioAppend:
		c.appendAudio(ctx, v)
	case *protocol.AudioCommit:
		c.commit(ctx, v.EventID())
	case *protocol.AudioClear:
		c.clearAudio(ctx)
	case *protocol.ItemCreate:
		c.createItem(ctx, v)
	case *protocol.ItemTruncate:
		c.truncateItem(ctx, v)
	case *protocol.ItemDelete:
		c.deleteItem(ctx, v)
	case *protocol.ResponseCreate:
		c.createResponse(ctx, v)
	case *protocol.ResponseCancel:
		c.cancelResponse(ctx, v)
	default:
		c.emitError(ctx, domain.NewError(domain.CodeProtocol, fmt.Sprintf("unsupported event type %q", cmd.CommandType())), cmd.EventID())
	}
}

// allow charges one request against the client's request limit. Limiter
// failures are logged and the command goes through.
func (c *Controller) allow(ctx context.Context, eventID string) bool {
	if c.deps.RateLimiter == nil {
		return true
	}
	rl, ok, err := c.deps.RateLimiter.Allow(ctx, c.sess.ClientID, c.sess.ID, ratelimit.NameRequests, 1)
	if err != nil {
		c.log.WithError(err).Warn("rate limiter unavailable")
		return true
	}
	if rl != nil {
		c.limits[ratelimit.NameRequests] = rl
	}
	if !ok {
		c.emitError(ctx, c.limitError(ratelimit.NameRequests, rl), eventID)
		return false
	}
	return true
}

func (c *Controller) limitError(name string, rl *ratelimit.RateLimit) error {
	msg := fmt.Sprintf("%s rate limit exceeded", name)
	if rl != nil {
		msg = fmt.Sprintf("%s rate limit of %d exceeded, retry in %.0fs", name, rl.Limit, rl.ResetSeconds(c.now()))
	}
	return &domain.Error{Code: domain.CodeRateLimitExceeded, Message: msg, Param: name}
}

func (c *Controller) updateSession(ctx context.Context, cmd *protocol.SessionUpdate) {
	cfg := sessionConfig(cmd.Session)
	if err := cfg.Validate(c.cfg.AllowedModels); err != nil {
		c.emitError(ctx, err, cmd.EventID())
		return
	}

	if td := cmd.Session.TurnDetection; td != nil {
		if td.Threshold != nil {
			c.vadCfg.Threshold = *td.Threshold
		}
		if td.SilenceDurationMs != nil {
			c.vadCfg.DebounceMs = *td.SilenceDurationMs
		}
		if td.PrefixPaddingMs != nil {
			c.prefixMs = *td.PrefixPaddingMs
		}
		c.detector.Reconfigure(c.vadCfg)
		if td.Type == session.TurnDetectionNone {
			c.detector.Reset()
		}
	}

	c.sess.Apply(cfg)
	if err := c.deps.Sessions.Update(ctx, c.sess); err != nil {
		c.log.WithError(err).Error("failed to persist session update")
	}
	c.emit(ctx, &protocol.SessionUpdated{Session: c.sessionResource()})
	if c.State() == StateIdle {
		c.setState(ctx, StateListening)
	}
}

func (c *Controller) appendAudio(ctx context.Context, cmd *protocol.AudioAppend) {
	c.seq++
	chunk := audio.Chunk{Seq: c.seq, Data: cmd.PCM}
	err := c.buffer.Append(chunk)
	if errors.Is(err, audio.ErrBufferOverflow) {
		c.emitError(ctx, err, cmd.EventID())
		if c.active == nil {
			c.commitBuffer(ctx, "", c.detector.Speaking())
		} else {
			c.buffer.Clear()
		}
		if c.fatal != nil {
			return
		}
		err = c.buffer.Append(chunk)
	}
	if err != nil {
		c.emitError(ctx, err, cmd.EventID())
		return
	}

	chunkMs := c.format.DurationOf(len(cmd.PCM))
	c.audioMs += chunkMs
	if c.State() == StateIdle {
		c.setState(ctx, StateListening)
	}
	if c.sess.ServerVAD() {
		c.detectSpeech(ctx, chunkMs)
	}
}

func (c *Controller) detectSpeech(ctx context.Context, chunkMs int) {
	switch c.detector.Evaluate(c.buffer.PeekWindow(chunkMs), chunkMs) {
	case vad.SpeechStarted:
		start := c.audioMs - chunkMs - c.vadCfg.MinSpeechMs
		if start < 0 {
			start = 0
		}
		c.emit(ctx, &protocol.SpeechStarted{AudioStartMs: start})
		if c.active != nil {
			c.bargeIn(ctx, "turn_detected")
		}
	case vad.SpeechEnded:
		c.emit(ctx, &protocol.SpeechStopped{AudioEndMs: c.audioMs})
		if c.active == nil {
			c.pendingVADCommit = true
		}
	case vad.NoChange:
		c.buffer.KeepLast(c.prefixMs + c.vadCfg.MinSpeechMs)
	}
}

// commit closes the open input turn and starts a response for it. A commit
// while a response is running takes the floor from it.
func (c *Controller) commit(ctx context.Context, eventID string) {
	if c.active != nil {
		if c.buffer.Empty() {
			c.emitError(ctx, audio.ErrEmptyBuffer, eventID)
			return
		}
		c.bargeIn(ctx, "client_commit")
	}
	c.commitBuffer(ctx, eventID, false)
}

// commitBuffer turns the buffered audio into a user item. With keepSpeech the
// detector stays in the speech segment that is still being received, so that
// segment cannot barge in on the turn it started.
func (c *Controller) commitBuffer(ctx context.Context, eventID string, keepSpeech bool) {
	if c.active != nil {
		c.emitError(ctx, errResponseInProgress, eventID)
		return
	}
	prevState := c.State()
	c.setState(ctx, StateCommitting)
	snap, err := c.buffer.Commit()
	if err != nil {
		c.emitError(ctx, err, eventID)
		if prevState == StateCommitting {
			prevState = StateListening
		}
		c.setState(ctx, prevState)
		return
	}
	if !keepSpeech {
		c.detector.Reset()
	}

	userItemID := uuid.New()
	prev := idString(c.leaf())
	c.emit(ctx, &protocol.AudioCommitted{
		PreviousItemID: prev,
		ItemID:         userItemID.String(),
		DurationMs:     snap.DurationMs,
	})
	c.emit(ctx, &protocol.ItemCreated{
		PreviousItemID: prev,
		Item: protocol.ItemResource{
			ID:      userItemID.String(),
			Object:  objectItem,
			Type:    protocol.ItemTypeMessage,
			Status:  string(message.StatusIncomplete),
			Role:    string(message.RoleUser),
			Content: []protocol.ContentPart{{Type: protocol.ContentTypeInputAudio}},
		},
	})
	c.startTurn(ctx, snap, userItemID, nil, eventID)
}

func (c *Controller) clearAudio(ctx context.Context) {
	c.buffer.Clear()
	c.detector.Reset()
	c.pendingVADCommit = false
	c.emit(ctx, &protocol.AudioCleared{})
}

func (c *Controller) createItem(ctx context.Context, cmd *protocol.ItemCreate) {
	if cmd.Item.Type == protocol.ItemTypeFunctionOutput {
		c.functionOutput(ctx, cmd)
		return
	}
	if c.active != nil {
		c.bargeIn(ctx, "client_item")
	}

	parent := c.leaf()
	if cmd.PreviousItemID != "" {
		id, err := uuid.Parse(cmd.PreviousItemID)
		if err != nil {
			c.emitError(ctx, &domain.Error{Code: domain.CodeValidation, Message: "previous_item_id is not a known item", Param: "previous_item_id"}, cmd.EventID())
			return
		}
		if _, ok := c.deps.Index.Get(c.sess.ID, id); !ok {
			c.emitError(ctx, &domain.Error{Code: domain.CodeValidation, Message: "previous_item_id is not a known item", Param: "previous_item_id"}, cmd.EventID())
			return
		}
		parent = &id
	}

	msg := message.New(c.sess.ID, parent, roleOf(cmd.Item.Role), message.ContentTypeText, cmd.Item.Text())
	if id, err := uuid.Parse(cmd.Item.ID); err == nil {
		if _, exists := c.deps.Index.Get(c.sess.ID, id); exists {
			c.emitError(ctx, &domain.Error{Code: domain.CodeValidation, Message: "item id already exists", Param: "item.id"}, cmd.EventID())
			return
		}
		msg.ID = id
	}
	if !c.persistMessage(ctx, msg, cmd.EventID()) {
		return
	}
	c.emit(ctx, &protocol.ItemCreated{PreviousItemID: idString(parent), Item: messageItem(msg, false)})
	if c.State() == StateIdle {
		c.setState(ctx, StateListening)
	}
}

func (c *Controller) functionOutput(ctx context.Context, cmd *protocol.ItemCreate) {
	at := c.active
	var call *functioncall.FunctionCall
	if at != nil {
		call = at.pending[cmd.Item.CallID]
	}
	if call == nil {
		c.emitError(ctx, &domain.Error{
			Code:    domain.CodeValidation,
			Message: fmt.Sprintf("no pending function call with call_id %q", cmd.Item.CallID),
			Param:   "item.call_id",
		}, cmd.EventID())
		return
	}

	call.Complete(cmd.Item.Output, c.now())
	if err := c.deps.FunctionCalls.Update(ctx, call); err != nil {
		c.log.WithError(err).Error("failed to persist function call result")
	}
	msg := message.New(c.sess.ID, c.leaf(), message.RoleFunction, message.ContentTypeText, cmd.Item.Output)
	msg.FunctionCall = &message.FunctionCallPayload{
		CallID: call.CallID,
		Name:   call.Name,
		Output: cmd.Item.Output,
	}
	if !c.persistMessage(ctx, msg, cmd.EventID()) {
		return
	}
	c.emit(ctx, &protocol.ItemCreated{PreviousItemID: idString(msg.ParentID), Item: functionOutputItem(msg)})

	delete(at.pending, call.CallID)
	if len(at.pending) == 0 {
		c.stopFunctionTimer()
		c.continueTurn(ctx, at)
	}
}

func (c *Controller) persistMessage(ctx context.Context, msg *message.Message, eventID string) bool {
	if err := c.deps.Messages.Save(ctx, msg); err != nil {
		c.emitError(ctx, domain.WrapError(domain.CodeInternal, "failed to store conversation item", err), eventID)
		return false
	}
	if err := c.deps.Index.Add(msg); err != nil {
		c.emitError(ctx, &domain.Error{Code: domain.CodeValidation, Message: err.Error(), Param: "previous_item_id"}, eventID)
		return false
	}
	return true
}

func (c *Controller) truncateItem(ctx context.Context, cmd *protocol.ItemTruncate) {
	c.editConversation(ctx, cmd.EventID(), cmd.ItemID, c.deps.Index.TruncateAfter, func(removed []string) protocol.Event {
		return &protocol.ItemTruncated{ItemID: cmd.ItemID, Removed: removed}
	})
}

func (c *Controller) deleteItem(ctx context.Context, cmd *protocol.ItemDelete) {
	c.editConversation(ctx, cmd.EventID(), cmd.ItemID, c.deps.Index.Delete, func(removed []string) protocol.Event {
		return &protocol.ItemDeleted{ItemID: cmd.ItemID, Removed: removed}
	})
}

func (c *Controller) editConversation(
	ctx context.Context,
	eventID, itemID string,
	edit func(sessionID, id uuid.UUID) ([]uuid.UUID, error),
	ack func(removed []string) protocol.Event,
) {
	if c.active != nil {
		c.emitError(ctx, errConversationBusy, eventID)
		return
	}
	id, err := uuid.Parse(itemID)
	if err != nil {
		c.emitError(ctx, &domain.Error{Code: domain.CodeValidation, Message: fmt.Sprintf("unknown item %q", itemID), Param: "item_id"}, eventID)
		return
	}
	removed, err := edit(c.sess.ID, id)
	if err != nil {
		c.emitError(ctx, &domain.Error{Code: domain.CodeValidation, Message: fmt.Sprintf("unknown item %q", itemID), Param: "item_id"}, eventID)
		return
	}
	if len(removed) > 0 {
		if err := c.deps.Messages.Delete(ctx, c.sess.ID, removed); err != nil {
			c.log.WithError(err).Error("failed to delete conversation items")
		}
	}
	ids := make([]string, 0, len(removed))
	for _, r := range removed {
		ids = append(ids, r.String())
	}
	c.emit(ctx, ack(ids))
}

func (c *Controller) createResponse(ctx context.Context, cmd *protocol.ResponseCreate) {
	if c.active != nil {
		c.emitError(ctx, errResponseInProgress, cmd.EventID())
		return
	}
	c.startTurn(ctx, nil, uuid.Nil, cmd.Response, cmd.EventID())
}

func (c *Controller) cancelResponse(ctx context.Context, cmd *protocol.ResponseCancel) {
	if c.active == nil {
		c.emitError(ctx, errNoActiveResponse, cmd.EventID())
		return
	}
	c.finishTurn(ctx, protocol.ResponseStatusCancelled, &protocol.StatusDetails{
		Type:   protocol.ResponseStatusCancelled,
		Reason: "client_cancelled",
	}, StateIdle)
}

// bargeIn cancels the running response because the user took the floor.
func (c *Controller) bargeIn(ctx context.Context, reason string) {
	c.finishTurn(ctx, protocol.ResponseStatusCancelled, &protocol.StatusDetails{
		Type:   protocol.ResponseStatusCancelled,
		Reason: reason,
	}, StateListening)
}

func roleOf(role string) message.Role {
	switch role {
	case string(message.RoleAssistant):
		return message.RoleAssistant
	case string(message.RoleSystem):
		return message.RoleSystem
	default:
		return message.RoleUser
	}
}
