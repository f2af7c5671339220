package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/google/uuid"
)

// Encoder stamps and serialises server events for one session. The control
// stream is sequenced for the whole session, modality streams per turn.
type Encoder struct {
	sessionID string
	mu        sync.Mutex
	seq       map[Stream]uint64
}

func NewEncoder(sessionID string) *Encoder {
	return &Encoder{
		sessionID: sessionID,
		seq:       make(map[Stream]uint64),
	}
}

// StartTurn restarts the modality stream sequences.
func (e *Encoder) StartTurn() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for s := range e.seq {
		if s != StreamControl {
			delete(e.seq, s)
		}
	}
}

// Stamp fills the header of ev and returns it.
func (e *Encoder) Stamp(ev Event) *Header {
	h := ev.header()
	e.mu.Lock()
	stream := ev.stream()
	e.seq[stream]++
	h.Seq = e.seq[stream]
	e.mu.Unlock()

	h.EventID = "event_" + uuid.NewString()
	h.SessionID = e.sessionID
	h.Type = TypeOf(ev)
	return h
}

func (e *Encoder) Encode(ev Event) ([]byte, error) {
	e.Stamp(ev)
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", TypeOf(ev), err)
	}
	return b, nil
}

// TypeOf returns the wire type of a server event.
func TypeOf(ev Event) string {
	switch ev.(type) {
	case *SessionCreated:
		return TypeSessionCreated
	case *SessionUpdated:
		return TypeSessionUpdated
	case *ItemCreated:
		return TypeItemCreated
	case *ItemTruncated:
		return TypeItemTruncated
	case *ItemDeleted:
		return TypeItemDeleted
	case *AudioCommitted:
		return TypeAudioCommitted
	case *AudioCleared:
		return TypeAudioCleared
	case *SpeechStarted:
		return TypeSpeechStarted
	case *SpeechStopped:
		return TypeSpeechStopped
	case *ResponseCreated:
		return TypeResponseCreated
	case *TranscriptDelta:
		return TypeTranscriptDelta
	case *TextDelta:
		return TypeTextDelta
	case *AudioDelta:
		return TypeAudioDelta
	case *FunctionCallArgumentsDelta:
		return TypeFunctionCallArgumentsDelta
	case *FunctionCallArgumentsDone:
		return TypeFunctionCallArgumentsDone
	case *ResponseDone:
		return TypeResponseDone
	case *RateLimitsUpdated:
		return TypeRateLimitsUpdated
	case *ErrorEvent:
		return TypeError
	default:
		return ev.header().Type
	}
}

// NewErrorEvent maps err onto a wire error event. eventID is the client event
// that caused it, if known.
func NewErrorEvent(err error, eventID string) *ErrorEvent {
	detail := ErrorDetail{EventID: eventID}
	var decodeErr *DecodeError
	var rtErr *domain.Error
	switch {
	case errors.As(err, &decodeErr):
		detail.Code = string(decodeErr.Code)
		detail.Message = decodeErr.Message
		detail.Param = decodeErr.Param
		if detail.EventID == "" {
			detail.EventID = decodeErr.EventID
		}
	case errors.As(err, &rtErr):
		detail.Code = string(rtErr.Code)
		detail.Message = rtErr.Message
		detail.Param = rtErr.Param
	default:
		detail.Code = string(domain.CodeInternal)
		detail.Message = "internal error"
	}
	detail.Type = errorType(domain.Code(detail.Code))
	return &ErrorEvent{Error: detail}
}

func errorType(code domain.Code) string {
	switch code {
	case domain.CodeBackendTransient, domain.CodeBackendFatal, domain.CodeInternal:
		return "server_error"
	case domain.CodeRateLimitExceeded:
		return "rate_limit_error"
	case domain.CodeCapacityExceeded, domain.CodeIdleTimeout, domain.CodeSessionClosed:
		return "session_error"
	default:
		return "invalid_request_error"
	}
}
