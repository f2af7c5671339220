package turn

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/functioncall"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/message"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/session"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/protocol"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/vad"
)

const (
	objectSession  = "realtime.session"
	objectItem     = "realtime.item"
	objectResponse = "realtime.response"
)

// SessionResource renders the client view of a session.
func SessionResource(s *session.Session, detector vad.Config, prefixPaddingMs int) protocol.SessionResource {
	res := protocol.SessionResource{
		ID:                s.ID.String(),
		Object:            objectSession,
		Model:             s.Model,
		Modalities:        append([]string{}, s.Modalities...),
		Voice:             s.Voice,
		Instructions:      s.Instructions,
		Temperature:       s.Temperature,
		InputAudioFormat:  protocol.AudioFormatPCM16,
		OutputAudioFormat: protocol.AudioFormatPCM16,
		Tools:             make([]protocol.Tool, 0, len(s.Tools)),
	}
	if s.ServerVAD() {
		res.TurnDetection = &protocol.TurnDetectionResource{
			Type:              protocol.TurnDetectionServerVAD,
			Threshold:         detector.Threshold,
			PrefixPaddingMs:   prefixPaddingMs,
			SilenceDurationMs: detector.DebounceMs,
		}
	}
	for _, t := range s.Tools {
		res.Tools = append(res.Tools, protocol.Tool{
			Type:        t.Type,
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}
	return res
}

// sessionConfig maps session.update parameters onto a session change.
func sessionConfig(p protocol.SessionParams) session.Config {
	cfg := session.Config{
		Model:        p.Model,
		Modalities:   session.ExpandModalities(p.Modalities),
		Voice:        p.Voice,
		Temperature:  p.Temperature,
		Instructions: p.Instructions,
	}
	if p.TurnDetection != nil {
		cfg.TurnDetection = p.TurnDetection.Type
		cfg.VADThreshold = p.TurnDetection.Threshold
		cfg.SilenceDurationMs = p.TurnDetection.SilenceDurationMs
		cfg.PrefixPaddingMs = p.TurnDetection.PrefixPaddingMs
	}
	if p.Tools != nil {
		cfg.Tools = make(domain.ToolsJSON, 0, len(p.Tools))
		for _, t := range p.Tools {
			typ := t.Type
			if typ == "" {
				typ = "function"
			}
			cfg.Tools = append(cfg.Tools, domain.ToolDefinition{
				Type:        typ,
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			})
		}
	}
	return cfg
}

func messageItem(m *message.Message, audioOutput bool) protocol.ItemResource {
	item := protocol.ItemResource{
		ID:     m.ID.String(),
		Object: objectItem,
		Type:   protocol.ItemTypeMessage,
		Status: string(m.Status),
		Role:   string(m.Role),
	}
	switch {
	case m.Role == message.RoleUser && m.ContentType == message.ContentTypeAudio:
		item.Content = []protocol.ContentPart{{Type: protocol.ContentTypeInputAudio, Transcript: m.Content}}
	case m.Role == message.RoleUser || m.Role == message.RoleSystem:
		item.Content = []protocol.ContentPart{{Type: protocol.ContentTypeInputText, Text: m.Content}}
	case audioOutput:
		item.Content = []protocol.ContentPart{{Type: protocol.ContentTypeAudio, Transcript: m.Content}}
	default:
		item.Content = []protocol.ContentPart{{Type: protocol.ContentTypeText, Text: m.Content}}
	}
	return item
}

func functionCallItem(call *functioncall.FunctionCall) protocol.ItemResource {
	return protocol.ItemResource{
		ID:        call.MessageID.String(),
		Object:    objectItem,
		Type:      protocol.ItemTypeFunctionCall,
		Status:    string(message.StatusCompleted),
		CallID:    call.CallID,
		Name:      call.Name,
		Arguments: call.Arguments,
	}
}

func functionOutputItem(m *message.Message) protocol.ItemResource {
	item := protocol.ItemResource{
		ID:     m.ID.String(),
		Object: objectItem,
		Type:   protocol.ItemTypeFunctionOutput,
		Status: string(m.Status),
		Output: m.Content,
	}
	if m.FunctionCall != nil {
		item.CallID = m.FunctionCall.CallID
	}
	return item
}

func usageOf(u providers.Usage) *protocol.Usage {
	return &protocol.Usage{
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
		TotalTokens:  u.TotalTokens,
	}
}
