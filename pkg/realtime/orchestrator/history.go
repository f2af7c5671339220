package orchestrator

import (
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain"
	"github.com/NeuralTrust/RealtimeGateway/pkg/domain/message"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
)

// chatHistory maps a conversation path onto backend chat messages. Failed
// messages never reach the backend.
func chatHistory(path []*message.Message) []providers.ChatMessage {
	out := make([]providers.ChatMessage, 0, len(path))
	for _, m := range path {
		if m.Status == message.StatusFailed {
			continue
		}
		switch m.Role {
		case message.RoleSystem:
			out = append(out, providers.ChatMessage{Role: providers.RoleSystem, Content: m.Content})
		case message.RoleUser:
			out = append(out, providers.ChatMessage{Role: providers.RoleUser, Content: m.Content})
		case message.RoleAssistant:
			if m.ContentType == message.ContentTypeFunctionCall && m.FunctionCall != nil {
				call := providers.ToolCall{
					ID:        m.FunctionCall.CallID,
					Name:      m.FunctionCall.Name,
					Arguments: m.FunctionCall.Arguments,
				}
				// parallel calls are stored one per message but sent as one turn
				if n := len(out); n > 0 && out[n-1].Role == providers.RoleAssistant && len(out[n-1].ToolCalls) > 0 {
					out[n-1].ToolCalls = append(out[n-1].ToolCalls, call)
					continue
				}
				out = append(out, providers.ChatMessage{Role: providers.RoleAssistant, Content: m.Content, ToolCalls: []providers.ToolCall{call}})
				continue
			}
			out = append(out, providers.ChatMessage{Role: providers.RoleAssistant, Content: m.Content})
		case message.RoleFunction:
			cm := providers.ChatMessage{Role: providers.RoleTool, Content: m.Content}
			if m.FunctionCall != nil {
				cm.ToolCallID = m.FunctionCall.CallID
				if m.FunctionCall.Output != "" {
					cm.Content = m.FunctionCall.Output
				}
			}
			out = append(out, cm)
		}
	}
	return out
}

// ToolsFrom converts session tool definitions for the generation backend.
func ToolsFrom(defs domain.ToolsJSON) []providers.Tool {
	if len(defs) == 0 {
		return nil
	}
	out := make([]providers.Tool, 0, len(defs))
	for _, d := range defs {
		out = append(out, providers.Tool{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
		})
	}
	return out
}
