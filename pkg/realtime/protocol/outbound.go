package protocol

// Outbound event types.
const (
	TypeSessionCreated             = "session.created"
	TypeSessionUpdated             = "session.updated"
	TypeItemCreated                = "conversation.item.created"
	TypeItemTruncated              = "conversation.item.truncated"
	TypeItemDeleted                = "conversation.item.deleted"
	TypeAudioCommitted             = "input_audio_buffer.committed"
	TypeAudioCleared               = "input_audio_buffer.cleared"
	TypeSpeechStarted              = "input_audio_buffer.speech_started"
	TypeSpeechStopped              = "input_audio_buffer.speech_stopped"
	TypeResponseCreated            = "response.created"
	TypeTranscriptDelta            = "response.audio_transcript.delta"
	TypeTextDelta                  = "response.text.delta"
	TypeAudioDelta                 = "response.audio.delta"
	TypeFunctionCallArgumentsDelta = "response.function_call_arguments.delta"
	TypeFunctionCallArgumentsDone  = "response.function_call_arguments.done"
	TypeResponseDone               = "response.done"
	TypeRateLimitsUpdated          = "rate_limits.updated"
	TypeError                      = "error"
)

// Response statuses carried by response.done.
const (
	ResponseStatusInProgress = "in_progress"
	ResponseStatusCompleted  = "completed"
	ResponseStatusCancelled  = "cancelled"
	ResponseStatusFailed     = "failed"
	ResponseStatusIncomplete = "incomplete"
)

// Stream names an independently sequenced outbound stream.
type Stream string

const (
	StreamControl      Stream = "control"
	StreamTranscript   Stream = "transcript"
	StreamText         Stream = "text"
	StreamAudio        Stream = "audio"
	StreamFunctionCall Stream = "function_call"
)

// Event is a server event ready to be stamped by an Encoder.
type Event interface {
	header() *Header
	stream() Stream
}

type Header struct {
	EventID   string `json:"event_id"`
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	Seq       uint64 `json:"seq"`
}

func (h *Header) header() *Header { return h }

func (h *Header) stream() Stream { return StreamControl }

type TurnDetectionResource struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms"`
	SilenceDurationMs int     `json:"silence_duration_ms"`
}

type SessionResource struct {
	ID                string                 `json:"id"`
	Object            string                 `json:"object"`
	Model             string                 `json:"model"`
	Modalities        []string               `json:"modalities"`
	Voice             string                 `json:"voice,omitempty"`
	Instructions      string                 `json:"instructions,omitempty"`
	Temperature       float64                `json:"temperature"`
	InputAudioFormat  string                 `json:"input_audio_format"`
	OutputAudioFormat string                 `json:"output_audio_format"`
	TurnDetection     *TurnDetectionResource `json:"turn_detection"`
	Tools             []Tool                 `json:"tools"`
}

type ItemResource struct {
	ID        string        `json:"id"`
	Object    string        `json:"object"`
	Type      string        `json:"type"`
	Status    string        `json:"status,omitempty"`
	Role      string        `json:"role,omitempty"`
	Content   []ContentPart `json:"content,omitempty"`
	CallID    string        `json:"call_id,omitempty"`
	Name      string        `json:"name,omitempty"`
	Arguments string        `json:"arguments,omitempty"`
	Output    string        `json:"output,omitempty"`
}

type StatusDetails struct {
	Type   string `json:"type"`
	Reason string `json:"reason,omitempty"`
	Code   string `json:"code,omitempty"`
}

type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

type ResponseResource struct {
	ID            string         `json:"id"`
	Object        string         `json:"object"`
	Status        string         `json:"status"`
	StatusDetails *StatusDetails `json:"status_details,omitempty"`
	Output        []ItemResource `json:"output"`
	Usage         *Usage         `json:"usage,omitempty"`
}

type SessionCreated struct {
	Header
	Session SessionResource `json:"session"`
}

type SessionUpdated struct {
	Header
	Session SessionResource `json:"session"`
}

type ItemCreated struct {
	Header
	PreviousItemID string       `json:"previous_item_id,omitempty"`
	Item           ItemResource `json:"item"`
}

type ItemTruncated struct {
	Header
	ItemID  string   `json:"item_id"`
	Removed []string `json:"removed_item_ids"`
}

type ItemDeleted struct {
	Header
	ItemID  string   `json:"item_id"`
	Removed []string `json:"removed_item_ids"`
}

type AudioCommitted struct {
	Header
	PreviousItemID string `json:"previous_item_id,omitempty"`
	ItemID         string `json:"item_id"`
	DurationMs     int    `json:"duration_ms"`
}

type AudioCleared struct {
	Header
}

type SpeechStarted struct {
	Header
	AudioStartMs int `json:"audio_start_ms"`
}

type SpeechStopped struct {
	Header
	AudioEndMs int `json:"audio_end_ms"`
}

type ResponseCreated struct {
	Header
	Response ResponseResource `json:"response"`
}

type TranscriptDelta struct {
	Header
	ResponseID string `json:"response_id"`
	ItemID     string `json:"item_id"`
	Delta      string `json:"delta"`
}

func (*TranscriptDelta) stream() Stream { return StreamTranscript }

type TextDelta struct {
	Header
	ResponseID string `json:"response_id"`
	ItemID     string `json:"item_id"`
	Delta      string `json:"delta"`
}

func (*TextDelta) stream() Stream { return StreamText }

// AudioDelta carries base64 PCM16 audio.
type AudioDelta struct {
	Header
	ResponseID string `json:"response_id"`
	ItemID     string `json:"item_id"`
	Delta      string `json:"delta"`
}

func (*AudioDelta) stream() Stream { return StreamAudio }

type FunctionCallArgumentsDelta struct {
	Header
	ResponseID string `json:"response_id"`
	ItemID     string `json:"item_id"`
	CallID     string `json:"call_id"`
	Delta      string `json:"delta"`
}

func (*FunctionCallArgumentsDelta) stream() Stream { return StreamFunctionCall }

type FunctionCallArgumentsDone struct {
	Header
	ResponseID string `json:"response_id"`
	ItemID     string `json:"item_id"`
	CallID     string `json:"call_id"`
	Name       string `json:"name"`
	Arguments  string `json:"arguments"`
}

func (*FunctionCallArgumentsDone) stream() Stream { return StreamFunctionCall }

type ResponseDone struct {
	Header
	Response ResponseResource `json:"response"`
}

type RateLimitResource struct {
	Name         string  `json:"name"`
	Limit        int     `json:"limit"`
	Remaining    int     `json:"remaining"`
	ResetSeconds float64 `json:"reset_seconds"`
}

type RateLimitsUpdated struct {
	Header
	RateLimits []RateLimitResource `json:"rate_limits"`
}

type ErrorDetail struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
	EventID string `json:"event_id,omitempty"`
}

type ErrorEvent struct {
	Header
	Error ErrorDetail `json:"error"`
}
