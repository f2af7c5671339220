package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	backendName      = "anthropic"
	defaultMaxTokens = 1024
)

type client struct {
	config     providers.Config
	clientPool *sync.Map
}

func NewAnthropicClient(config providers.Config) providers.Generator {
	return &client{
		config:     config,
		clientPool: &sync.Map{},
	}
}

func (c *client) Generate(
	ctx context.Context,
	req providers.GenerationRequest,
	onChunk func(providers.GenerationChunk) error,
) (*providers.GenerationResult, error) {
	if c.config.Credentials.ApiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	params := c.getParams(req)

	anthropicClient := c.getOrCreateClient()
	stream := anthropicClient.Messages.NewStreaming(ctx, params)
	defer stream.Close()

	result := &providers.GenerationResult{}
	var text strings.Builder
	calls := map[int]*providers.ToolCall{}
	var order []int

	for stream.Next() {
		event := stream.Current()
		switch event.Type {
		case "content_block_start":
			if event.ContentBlock.Type == "tool_use" {
				idx := int(event.Index)
				calls[idx] = &providers.ToolCall{ID: event.ContentBlock.ID, Name: event.ContentBlock.Name}
				order = append(order, idx)
			}
		case "content_block_delta":
			switch event.Delta.Type {
			case "text_delta":
				if event.Delta.Text == "" {
					continue
				}
				text.WriteString(event.Delta.Text)
				if err := onChunk(providers.GenerationChunk{Text: event.Delta.Text}); err != nil {
					return nil, err
				}
			case "input_json_delta":
				idx := int(event.Index)
				call, ok := calls[idx]
				if !ok {
					continue
				}
				call.Arguments += event.Delta.PartialJSON
				delta := &providers.ToolCallDelta{
					Index:          idx,
					ID:             call.ID,
					Name:           call.Name,
					ArgumentsDelta: event.Delta.PartialJSON,
				}
				if err := onChunk(providers.GenerationChunk{ToolCall: delta}); err != nil {
					return nil, err
				}
			}
		case "message_start":
			result.Usage.PromptTokens = int(event.Message.Usage.InputTokens)
		case "message_delta":
			result.FinishReason = string(event.Delta.StopReason)
			result.Usage.CompletionTokens = int(event.Usage.OutputTokens)
		}
	}
	if err := stream.Err(); err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &providers.StatusError{Backend: backendName, StatusCode: apiErr.StatusCode, Err: err}
		}
		return nil, fmt.Errorf("anthropic streaming error: %w", err)
	}

	result.Text = text.String()
	result.Usage.TotalTokens = result.Usage.PromptTokens + result.Usage.CompletionTokens
	for _, idx := range order {
		result.ToolCalls = append(result.ToolCalls, *calls[idx])
	}
	return result, nil
}

func (c *client) getParams(req providers.GenerationRequest) anthropic.MessageNewParams {
	model := anthropic.ModelClaudeHaiku4_5
	if req.Model != "" {
		model = anthropic.Model(req.Model)
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.config.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	system := req.Instructions
	var messages []anthropic.MessageParam
	for _, m := range req.Messages {
		switch m.Role {
		case providers.RoleSystem:
			if system == "" {
				system = m.Content
			} else {
				system += "\n" + m.Content
			}
		case providers.RoleUser:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case providers.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if m.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, json.RawMessage(argumentsOrEmpty(tc.Arguments)), tc.Name))
			}
			if len(blocks) > 0 {
				messages = append(messages, anthropic.NewAssistantMessage(blocks...))
			}
		case providers.RoleTool:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		Messages:  messages,
		MaxTokens: int64(maxTokens),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: system, Type: "text"},
		}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	for _, t := range req.Tools {
		tool := anthropic.ToolParam{
			Name:        t.Name,
			InputSchema: anthropic.ToolInputSchemaParam{Properties: t.Parameters["properties"]},
		}
		if t.Description != "" {
			tool.Description = anthropic.String(t.Description)
		}
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return params
}

func argumentsOrEmpty(args string) string {
	if strings.TrimSpace(args) == "" {
		return "{}"
	}
	return args
}

func (c *client) getOrCreateClient() anthropic.Client {
	apiKey := c.config.Credentials.ApiKey
	if clientVal, ok := c.clientPool.Load(apiKey); ok {
		if client, ok := clientVal.(anthropic.Client); ok {
			return client
		}
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if c.config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.config.BaseURL))
	}
	newClient := anthropic.NewClient(opts...)
	c.clientPool.Store(apiKey, newClient)
	return newClient
}
