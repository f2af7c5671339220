package protocol

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/valyala/fastjson"
)

var parserPool fastjson.ParserPool

// DecodeError rejects one inbound frame. It never implies a session state change.
type DecodeError struct {
	Code    domain.Code
	Message string
	Param   string
	EventID string
}

func (e *DecodeError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("%s: %s (param=%s)", e.Code, e.Message, e.Param)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the realtime error so domain.CodeOf sees the code.
func (e *DecodeError) Unwrap() error {
	return &domain.Error{Code: e.Code, Message: e.Message, Param: e.Param}
}

func protocolError(eventID, message, param string) *DecodeError {
	return &DecodeError{Code: domain.CodeProtocol, Message: message, Param: param, EventID: eventID}
}

// Decode parses one client frame into its typed command.
func Decode(raw []byte) (Command, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.ParseBytes(raw)
	if err != nil {
		return nil, protocolError("", "invalid json frame", "")
	}
	if v.Type() != fastjson.TypeObject {
		return nil, protocolError("", "event must be a json object", "")
	}
	eventID := string(v.GetStringBytes("event_id"))
	typ := strings.TrimSpace(string(v.GetStringBytes("type")))
	if typ == "" {
		return nil, protocolError(eventID, "missing type", "type")
	}

	switch typ {
	case TypeSessionUpdate:
		var cmd SessionUpdate
		if err := unmarshal(raw, &cmd, eventID, typ); err != nil {
			return nil, err
		}
		if td := v.Get("session", "turn_detection"); td != nil && td.Type() == fastjson.TypeNull {
			cmd.Session.TurnDetection = &TurnDetection{Type: TurnDetectionDisabled}
		}
		if err := validateSessionParams(cmd.Session, eventID); err != nil {
			return nil, err
		}
		return &cmd, nil
	case TypeAudioAppend:
		var cmd AudioAppend
		if err := unmarshal(raw, &cmd, eventID, typ); err != nil {
			return nil, err
		}
		if cmd.Audio == "" {
			return nil, protocolError(eventID, "input_audio_buffer.append.audio is required", "audio")
		}
		pcm, err := base64.StdEncoding.DecodeString(cmd.Audio)
		if err != nil {
			return nil, protocolError(eventID, "audio must be base64 encoded", "audio")
		}
		if len(pcm) > maxDecodedAudioPerEvent {
			return nil, protocolError(eventID, "audio chunk too large", "audio")
		}
		cmd.PCM = pcm
		cmd.Audio = ""
		return &cmd, nil
	case TypeAudioCommit:
		var cmd AudioCommit
		if err := unmarshal(raw, &cmd, eventID, typ); err != nil {
			return nil, err
		}
		return &cmd, nil
	case TypeAudioClear:
		var cmd AudioClear
		if err := unmarshal(raw, &cmd, eventID, typ); err != nil {
			return nil, err
		}
		return &cmd, nil
	case TypeItemCreate:
		var cmd ItemCreate
		if err := unmarshal(raw, &cmd, eventID, typ); err != nil {
			return nil, err
		}
		if err := validateItem(&cmd.Item, eventID); err != nil {
			return nil, err
		}
		return &cmd, nil
	case TypeItemTruncate:
		var cmd ItemTruncate
		if err := unmarshal(raw, &cmd, eventID, typ); err != nil {
			return nil, err
		}
		if strings.TrimSpace(cmd.ItemID) == "" {
			return nil, protocolError(eventID, "conversation.item.truncate.item_id is required", "item_id")
		}
		return &cmd, nil
	case TypeItemDelete:
		var cmd ItemDelete
		if err := unmarshal(raw, &cmd, eventID, typ); err != nil {
			return nil, err
		}
		if strings.TrimSpace(cmd.ItemID) == "" {
			return nil, protocolError(eventID, "conversation.item.delete.item_id is required", "item_id")
		}
		return &cmd, nil
	case TypeResponseCreate:
		var cmd ResponseCreate
		if err := unmarshal(raw, &cmd, eventID, typ); err != nil {
			return nil, err
		}
		return &cmd, nil
	case TypeResponseCancel:
		var cmd ResponseCancel
		if err := unmarshal(raw, &cmd, eventID, typ); err != nil {
			return nil, err
		}
		return &cmd, nil
	default:
		return nil, protocolError(eventID, fmt.Sprintf("unsupported event type %q", typ), "type")
	}
}

func unmarshal(raw []byte, out interface{}, eventID, typ string) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return protocolError(eventID, fmt.Sprintf("invalid %s event", typ), fieldOf(err))
	}
	return nil
}

// fieldOf extracts the offending field from a json type error, if any.
func fieldOf(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Field
	}
	return ""
}

func validateSessionParams(p SessionParams, eventID string) error {
	if p.Instructions != nil && len(*p.Instructions) > maxInstructionsLength {
		return protocolError(eventID, "session.instructions too long", "session.instructions")
	}
	if p.InputAudioFormat != "" && p.InputAudioFormat != AudioFormatPCM16 {
		return protocolError(eventID, "only pcm16 input audio is supported", "session.input_audio_format")
	}
	if p.OutputAudioFormat != "" && p.OutputAudioFormat != AudioFormatPCM16 {
		return protocolError(eventID, "only pcm16 output audio is supported", "session.output_audio_format")
	}
	for i, t := range p.Tools {
		if t.Type != "" && t.Type != "function" {
			return protocolError(eventID, "only function tools are supported", fmt.Sprintf("session.tools[%d].type", i))
		}
	}
	return nil
}

func validateItem(item *Item, eventID string) error {
	switch item.Type {
	case "", ItemTypeMessage:
		item.Type = ItemTypeMessage
		if item.Role == "" {
			item.Role = defaultItemRole
		}
		switch item.Role {
		case "user", "assistant", "system":
		default:
			return protocolError(eventID, fmt.Sprintf("unsupported item role %q", item.Role), "item.role")
		}
		if len(item.Content) == 0 {
			return protocolError(eventID, "item.content is required", "item.content")
		}
		for i, part := range item.Content {
			switch part.Type {
			case ContentTypeInputText, ContentTypeText:
				if len(part.Text) > maxTextContentLength {
					return protocolError(eventID, "text content too long", fmt.Sprintf("item.content[%d].text", i))
				}
			case ContentTypeInputAudio, ContentTypeAudio:
			default:
				return protocolError(eventID, fmt.Sprintf("unsupported content type %q", part.Type), fmt.Sprintf("item.content[%d].type", i))
			}
		}
		if strings.TrimSpace(item.Text()) == "" {
			return protocolError(eventID, "item has no text content", "item.content")
		}
	case ItemTypeFunctionOutput:
		if strings.TrimSpace(item.CallID) == "" {
			return protocolError(eventID, "function_call_output.call_id is required", "item.call_id")
		}
	default:
		return protocolError(eventID, fmt.Sprintf("unsupported item type %q", item.Type), "item.type")
	}
	return nil
}
