package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime/audio"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"golang.org/x/sync/singleflight"
)

const (
	backendName       = "openai"
	speechChunkBytes  = 4800
	defaultSampleRate = 24000
)

// Client speaks the OpenAI-compatible API for all three realtime backends.
// Any server exposing /v1/chat/completions (Ollama, vLLM) works for generation.
type Client struct {
	config      providers.Config
	clientPool  *sync.Map
	sf          singleflight.Group
	azureTokens azureTokenSource
}

func NewOpenaiClient(config providers.Config) *Client {
	return &Client{
		config:     config,
		clientPool: &sync.Map{},
	}
}

func (c *Client) Transcribe(
	ctx context.Context,
	req providers.TranscriptionRequest,
	onDelta func(string) error,
) (string, error) {
	if len(req.Audio) == 0 {
		return "", fmt.Errorf("audio is required")
	}
	sampleRate := req.SampleRate
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	model := req.Model
	if model == "" {
		model = c.config.Model
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio.WAV(req.Audio, sampleRate)), "audio.wav", "audio/wav"),
		Model: openai.AudioModel(model),
	}
	if req.Language != "" {
		params.Language = openai.String(req.Language)
	}

	resp, err := c.getOrCreateClient().Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", wrapError("transcription", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text != "" && onDelta != nil {
		if err := onDelta(text); err != nil {
			return "", err
		}
	}
	return text, nil
}

func (c *Client) Generate(
	ctx context.Context,
	req providers.GenerationRequest,
	onChunk func(providers.GenerationChunk) error,
) (*providers.GenerationResult, error) {
	if req.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: buildMessages(req),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	} else if c.config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.config.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	for _, t := range req.Tools {
		fn := openai.FunctionDefinitionParam{
			Name:       t.Name,
			Parameters: openai.FunctionParameters(t.Parameters),
		}
		if t.Description != "" {
			fn.Description = openai.String(t.Description)
		}
		params.Tools = append(params.Tools, openai.ChatCompletionFunctionTool(fn))
	}

	stream := c.getOrCreateClient().Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	result := &providers.GenerationResult{}
	var text strings.Builder
	calls := map[int]*providers.ToolCall{}
	var order []int

	for stream.Next() {
		chunk := stream.Current()
		if chunk.Usage.TotalTokens > 0 {
			result.Usage = providers.Usage{
				PromptTokens:     int(chunk.Usage.PromptTokens),
				CompletionTokens: int(chunk.Usage.CompletionTokens),
				TotalTokens:      int(chunk.Usage.TotalTokens),
			}
		}
		for _, choice := range chunk.Choices {
			if choice.FinishReason != "" {
				result.FinishReason = choice.FinishReason
			}
			if content := choice.Delta.Content; content != "" {
				text.WriteString(content)
				if err := onChunk(providers.GenerationChunk{Text: content}); err != nil {
					return nil, err
				}
			}
			for _, tc := range choice.Delta.ToolCalls {
				idx := int(tc.Index)
				call, ok := calls[idx]
				if !ok {
					call = &providers.ToolCall{}
					calls[idx] = call
					order = append(order, idx)
				}
				if tc.ID != "" {
					call.ID = tc.ID
				}
				if tc.Function.Name != "" {
					call.Name = tc.Function.Name
				}
				call.Arguments += tc.Function.Arguments
				delta := &providers.ToolCallDelta{
					Index:          idx,
					ID:             call.ID,
					Name:           call.Name,
					ArgumentsDelta: tc.Function.Arguments,
				}
				if err := onChunk(providers.GenerationChunk{ToolCall: delta}); err != nil {
					return nil, err
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, wrapError("generation", err)
	}

	result.Text = text.String()
	for _, idx := range order {
		result.ToolCalls = append(result.ToolCalls, *calls[idx])
	}
	return result, nil
}

func (c *Client) Synthesize(
	ctx context.Context,
	req providers.SynthesisRequest,
	onAudio func([]byte) error,
) error {
	if strings.TrimSpace(req.Text) == "" {
		return nil
	}
	model := req.Model
	if model == "" {
		model = c.config.Model
	}
	params := openai.AudioSpeechNewParams{
		Input:          req.Text,
		Model:          openai.SpeechModel(model),
		Voice:          openai.AudioSpeechNewParamsVoice(req.Voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	}

	resp, err := c.getOrCreateClient().Audio.Speech.New(ctx, params)
	if err != nil {
		return wrapError("synthesis", err)
	}
	defer resp.Body.Close()

	buf := make([]byte, speechChunkBytes)
	for {
		n, err := io.ReadFull(resp.Body, buf)
		if n > 0 {
			chunk := make([]byte, n-n%2)
			copy(chunk, buf[:len(chunk)])
			if len(chunk) > 0 {
				if cbErr := onAudio(chunk); cbErr != nil {
					return cbErr
				}
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return wrapError("synthesis", err)
		}
	}
}

func buildMessages(req providers.GenerationRequest) []openai.ChatCompletionMessageParamUnion {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.Instructions != "" {
		messages = append(messages, openai.SystemMessage(req.Instructions))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case providers.RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case providers.RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		case providers.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				messages = append(messages, openai.AssistantMessage(m.Content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content.OfString = openai.String(m.Content)
			}
			for _, tc := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: tc.Arguments,
						},
					},
				})
			}
			messages = append(messages, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case providers.RoleTool:
			messages = append(messages, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}
	return messages
}

func wrapError(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &providers.StatusError{Backend: backendName, StatusCode: apiErr.StatusCode, Err: err}
	}
	return fmt.Errorf("openai %s request failed: %w", op, err)
}

func (c *Client) getOrCreateClient() *openai.Client {
	key := c.config.BaseURL + "|" + c.config.Credentials.ApiKey
	if az := c.config.Credentials.Azure; az != nil {
		key = az.Endpoint + "|" + c.config.Model + "|" + c.config.Credentials.ApiKey
	}
	if v, ok := c.clientPool.Load(key); ok {
		if client, ok := v.(*openai.Client); ok {
			return client
		}
	}
	v, _, _ := c.sf.Do(key, func() (any, error) {
		if v2, ok := c.clientPool.Load(key); ok {
			return v2, nil
		}
		cli := openai.NewClient(c.options()...)
		c.clientPool.Store(key, &cli)
		return &cli, nil
	})
	if client, ok := v.(*openai.Client); ok {
		return client
	}
	cli := openai.NewClient(c.options()...)
	return &cli
}

func (c *Client) options() []option.RequestOption {
	// retries are owned by the orchestrator
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if az := c.config.Credentials.Azure; az != nil {
		return append(opts, c.azureOptions(az)...)
	}
	opts = append(opts, option.WithAPIKey(c.config.Credentials.ApiKey))
	if c.config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.config.BaseURL))
	}
	return opts
}
