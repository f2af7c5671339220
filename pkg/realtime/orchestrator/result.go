package orchestrator

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/audiobuffer"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/functioncall"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/message"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/audio"
	"github.com/google/uuid"
)

type Kind int

const (
	KindTranscriptDelta Kind = iota
	KindTranscriptDone
	KindUserMessage
	KindTextDelta
	KindAudioDelta
	KindFunctionCallArgsDelta
	KindFunctionCall
	KindDone
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindTranscriptDelta:
		return "transcript_delta"
	case KindTranscriptDone:
		return "transcript_done"
	case KindUserMessage:
		return "user_message"
	case KindTextDelta:
		return "text_delta"
	case KindAudioDelta:
		return "audio_delta"
	case KindFunctionCallArgsDelta:
		return "function_call_args_delta"
	case KindFunctionCall:
		return "function_call"
	case KindDone:
		return "done"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Turn is everything one orchestrator run needs. It is a private copy; the
// controller keeps ownership of the live session.
type Turn struct {
	ID              string
	SessionID       uuid.UUID
	Model           string
	Voice           string
	Instructions    string
	Temperature     float64
	AudioOutput     bool
	Tools           []providers.Tool
	Audio           *audio.Snapshot
	UserItemID      uuid.UUID
	AssistantItemID uuid.UUID
	ParentID        *uuid.UUID
	History         []*message.Message
}

// Result is one step of a run, delivered to the session worker in order.
type Result struct {
	TurnID      string
	Kind        Kind
	Delta       string
	Audio       []byte
	CallID      string
	Name        string
	Message     *message.Message
	Messages    []*message.Message
	AudioBuffer *audiobuffer.AudioBuffer
	Calls       []*functioncall.FunctionCall
	Usage       providers.Usage
	Err         error
}
