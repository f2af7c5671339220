package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	infraBedrock "github.com/NeuralTrust/RealtimeGateway/pkg/infra/bedrock"
	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

const (
	backendName      = "bedrock"
	defaultMaxTokens = 1024
)

type client struct {
	config  providers.Config
	builder infraBedrock.Client
}

// NewBedrockClient streams generations through the Bedrock Converse API,
// which serves every hosted model family with one message shape.
func NewBedrockClient(config providers.Config, builder infraBedrock.Client) providers.Generator {
	return &client{
		config:  config,
		builder: builder,
	}
}

func (c *client) Generate(
	ctx context.Context,
	req providers.GenerationRequest,
	onChunk func(providers.GenerationChunk) error,
) (*providers.GenerationResult, error) {
	model := req.Model
	if model == "" {
		model = c.config.Model
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	runtime, err := c.builder.BuildClient(ctx, c.credentials())
	if err != nil {
		return nil, fmt.Errorf("failed to create Bedrock client: %w", err)
	}
	out, err := runtime.ConverseStream(ctx, c.buildInput(model, req))
	if err != nil {
		return nil, wrapError(err)
	}
	stream := out.GetStream()
	defer stream.Close()

	result := &providers.GenerationResult{}
	var text strings.Builder
	calls := map[int]*providers.ToolCall{}
	var order []int

	for event := range stream.Events() {
		switch v := event.(type) {
		case *types.ConverseStreamOutputMemberContentBlockStart:
			start, ok := v.Value.Start.(*types.ContentBlockStartMemberToolUse)
			if !ok {
				continue
			}
			idx := int(aws.ToInt32(v.Value.ContentBlockIndex))
			calls[idx] = &providers.ToolCall{
				ID:   aws.ToString(start.Value.ToolUseId),
				Name: aws.ToString(start.Value.Name),
			}
			order = append(order, idx)
		case *types.ConverseStreamOutputMemberContentBlockDelta:
			idx := int(aws.ToInt32(v.Value.ContentBlockIndex))
			switch d := v.Value.Delta.(type) {
			case *types.ContentBlockDeltaMemberText:
				if d.Value == "" {
					continue
				}
				text.WriteString(d.Value)
				if err := onChunk(providers.GenerationChunk{Text: d.Value}); err != nil {
					return nil, err
				}
			case *types.ContentBlockDeltaMemberToolUse:
				call, ok := calls[idx]
				if !ok {
					continue
				}
				fragment := aws.ToString(d.Value.Input)
				call.Arguments += fragment
				delta := &providers.ToolCallDelta{
					Index:          idx,
					ID:             call.ID,
					Name:           call.Name,
					ArgumentsDelta: fragment,
				}
				if err := onChunk(providers.GenerationChunk{ToolCall: delta}); err != nil {
					return nil, err
				}
			}
		case *types.ConverseStreamOutputMemberMessageStop:
			result.FinishReason = string(v.Value.StopReason)
		case *types.ConverseStreamOutputMemberMetadata:
			if u := v.Value.Usage; u != nil {
				result.Usage.PromptTokens = int(aws.ToInt32(u.InputTokens))
				result.Usage.CompletionTokens = int(aws.ToInt32(u.OutputTokens))
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, wrapError(err)
	}

	result.Text = text.String()
	result.Usage.TotalTokens = result.Usage.PromptTokens + result.Usage.CompletionTokens
	for _, idx := range order {
		result.ToolCalls = append(result.ToolCalls, *calls[idx])
	}
	return result, nil
}

func (c *client) credentials() infraBedrock.Credentials {
	creds := c.config.Credentials.AwsBedrock
	if creds == nil {
		return infraBedrock.Credentials{}
	}
	return infraBedrock.Credentials{
		AccessKey:    creds.AccessKey,
		SecretKey:    creds.SecretKey,
		SessionToken: creds.SessionToken,
		Region:       creds.Region,
		RoleARN:      creds.RoleARN,
	}
}

func (c *client) buildInput(model string, req providers.GenerationRequest) *bedrockruntime.ConverseStreamInput {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.config.MaxTokens
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	system := req.Instructions
	var messages []types.Message
	appendBlock := func(role types.ConversationRole, block types.ContentBlock) {
		// Converse requires alternating roles; consecutive turns are merged.
		if n := len(messages); n > 0 && messages[n-1].Role == role {
			messages[n-1].Content = append(messages[n-1].Content, block)
			return
		}
		messages = append(messages, types.Message{Role: role, Content: []types.ContentBlock{block}})
	}

	for _, m := range req.Messages {
		switch m.Role {
		case providers.RoleSystem:
			if system == "" {
				system = m.Content
			} else {
				system += "\n" + m.Content
			}
		case providers.RoleUser:
			appendBlock(types.ConversationRoleUser, &types.ContentBlockMemberText{Value: m.Content})
		case providers.RoleAssistant:
			if m.Content != "" {
				appendBlock(types.ConversationRoleAssistant, &types.ContentBlockMemberText{Value: m.Content})
			}
			for _, tc := range m.ToolCalls {
				appendBlock(types.ConversationRoleAssistant, &types.ContentBlockMemberToolUse{Value: types.ToolUseBlock{
					ToolUseId: aws.String(tc.ID),
					Name:      aws.String(tc.Name),
					Input:     document.NewLazyDocument(decodeArguments(tc.Arguments)),
				}})
			}
		case providers.RoleTool:
			appendBlock(types.ConversationRoleUser, &types.ContentBlockMemberToolResult{Value: types.ToolResultBlock{
				ToolUseId: aws.String(m.ToolCallID),
				Content: []types.ToolResultContentBlock{
					&types.ToolResultContentBlockMemberText{Value: m.Content},
				},
			}})
		}
	}

	input := &bedrockruntime.ConverseStreamInput{
		ModelId:  aws.String(model),
		Messages: messages,
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens: aws.Int32(int32(maxTokens)),
		},
	}
	if req.Temperature > 0 {
		input.InferenceConfig.Temperature = aws.Float32(float32(req.Temperature))
	}
	if system != "" {
		input.System = []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: system}}
	}
	if len(req.Tools) > 0 {
		toolConfig := &types.ToolConfiguration{}
		for _, t := range req.Tools {
			spec := types.ToolSpecification{
				Name:        aws.String(t.Name),
				InputSchema: &types.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(schemaOrEmpty(t.Parameters))},
			}
			if t.Description != "" {
				spec.Description = aws.String(t.Description)
			}
			toolConfig.Tools = append(toolConfig.Tools, &types.ToolMemberToolSpec{Value: spec})
		}
		input.ToolConfig = toolConfig
	}
	return input
}

func decodeArguments(args string) map[string]interface{} {
	out := map[string]interface{}{}
	if strings.TrimSpace(args) == "" {
		return out
	}
	if err := json.Unmarshal([]byte(args), &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}

func schemaOrEmpty(params map[string]interface{}) map[string]interface{} {
	if len(params) == 0 {
		return map[string]interface{}{"type": "object", "properties": map[string]interface{}{}}
	}
	return params
}

func wrapError(err error) error {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return &providers.StatusError{Backend: backendName, StatusCode: respErr.HTTPStatusCode(), Err: err}
	}
	return fmt.Errorf("bedrock streaming error: %w", err)
}
