package protocol

// Inbound event types.
const (
	TypeSessionUpdate       = "session.update"
	TypeAudioAppend         = "input_audio_buffer.append"
	TypeAudioCommit         = "input_audio_buffer.commit"
	TypeAudioClear          = "input_audio_buffer.clear"
	TypeItemCreate          = "conversation.item.create"
	TypeItemTruncate        = "conversation.item.truncate"
	TypeItemDelete          = "conversation.item.delete"
	TypeResponseCreate      = "response.create"
	TypeResponseCancel      = "response.cancel"
	ItemTypeMessage         = "message"
	ItemTypeFunctionCall    = "function_call"
	ItemTypeFunctionOutput  = "function_call_output"
	ContentTypeInputText    = "input_text"
	ContentTypeText         = "text"
	ContentTypeInputAudio   = "input_audio"
	ContentTypeAudio        = "audio"
	TurnDetectionServerVAD  = "server_vad"
	TurnDetectionDisabled   = "none"
	AudioFormatPCM16        = "pcm16"
	defaultItemRole         = "user"
	maxInstructionsLength   = 32 * 1024
	maxTextContentLength    = 64 * 1024
	maxDecodedAudioPerEvent = 15 * 1024 * 1024
)

// Command is a decoded inbound event.
type Command interface {
	CommandType() string
	EventID() string
}

type base struct {
	Type string `json:"type"`
	ID   string `json:"event_id,omitempty"`
}

func (b base) CommandType() string { return b.Type }
func (b base) EventID() string     { return b.ID }

type TurnDetection struct {
	Type              string   `json:"type"`
	Threshold         *float64 `json:"threshold,omitempty"`
	PrefixPaddingMs   *int     `json:"prefix_padding_ms,omitempty"`
	SilenceDurationMs *int     `json:"silence_duration_ms,omitempty"`
}

type Tool struct {
	Type        string                 `json:"type"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type SessionParams struct {
	Model             string         `json:"model,omitempty"`
	Modalities        []string       `json:"modalities,omitempty"`
	Voice             string         `json:"voice,omitempty"`
	Temperature       *float64       `json:"temperature,omitempty"`
	Instructions      *string        `json:"instructions,omitempty"`
	InputAudioFormat  string         `json:"input_audio_format,omitempty"`
	OutputAudioFormat string         `json:"output_audio_format,omitempty"`
	TurnDetection     *TurnDetection `json:"turn_detection,omitempty"`
	Tools             []Tool         `json:"tools,omitempty"`
}

type SessionUpdate struct {
	base
	Session SessionParams `json:"session"`
}

type AudioAppend struct {
	base
	Audio string `json:"audio"`
	// PCM holds the decoded audio payload.
	PCM []byte `json:"-"`
}

type AudioCommit struct {
	base
}

type AudioClear struct {
	base
}

type ContentPart struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	Audio      string `json:"audio,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

type Item struct {
	ID      string        `json:"id,omitempty"`
	Type    string        `json:"type"`
	Role    string        `json:"role,omitempty"`
	Content []ContentPart `json:"content,omitempty"`
	CallID  string        `json:"call_id,omitempty"`
	Output  string        `json:"output,omitempty"`
}

// Text joins the textual parts of a message item.
func (i Item) Text() string {
	var out string
	for _, p := range i.Content {
		switch p.Type {
		case ContentTypeInputText, ContentTypeText:
			out += p.Text
		case ContentTypeInputAudio, ContentTypeAudio:
			out += p.Transcript
		}
	}
	return out
}

type ItemCreate struct {
	base
	PreviousItemID string `json:"previous_item_id,omitempty"`
	Item           Item   `json:"item"`
}

type ItemTruncate struct {
	base
	ItemID string `json:"item_id"`
}

type ItemDelete struct {
	base
	ItemID string `json:"item_id"`
}

type ResponseParams struct {
	Modalities   []string `json:"modalities,omitempty"`
	Instructions *string  `json:"instructions,omitempty"`
	Temperature  *float64 `json:"temperature,omitempty"`
}

type ResponseCreate struct {
	base
	Response *ResponseParams `json:"response,omitempty"`
}

type ResponseCancel struct {
	base
}
