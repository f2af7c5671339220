package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/NeuralTrust/RealtimeGateway/pkg/infra/providers"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const backendName = "gemini"

type client struct {
	config      providers.Config
	genaiClient *genai.Client
	logger      *logrus.Logger
}

func NewGeminiClient(ctx context.Context, config providers.Config, logger *logrus.Logger) (providers.Generator, error) {
	if config.Credentials.ApiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.Credentials.ApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &client{
		config:      config,
		genaiClient: genaiClient,
		logger:      logger,
	}, nil
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
	if len(req.Tools) > 0 {
		c.logger.WithField("model", model).Warn("gemini backend ignores session tools")
	}

	system, contents := buildContents(req)
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
			Role:  "system",
		}
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		cfg.Temperature = &t
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.config.MaxTokens
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}

	result := &providers.GenerationResult{}
	var text strings.Builder
	for resp, err := range c.genaiClient.Models.GenerateContentStream(ctx, model, contents, cfg) {
		if err != nil {
			return nil, wrapError(err)
		}
		if piece := resp.Text(); piece != "" {
			text.WriteString(piece)
			if err := onChunk(providers.GenerationChunk{Text: piece}); err != nil {
				return nil, err
			}
		}
		for i, fc := range resp.FunctionCalls() {
			args, _ := json.Marshal(fc.Args)
			call := providers.ToolCall{ID: fc.ID, Name: fc.Name, Arguments: string(args)}
			result.ToolCalls = append(result.ToolCalls, call)
			delta := &providers.ToolCallDelta{Index: i, ID: call.ID, Name: call.Name, ArgumentsDelta: call.Arguments}
			if err := onChunk(providers.GenerationChunk{ToolCall: delta}); err != nil {
				return nil, err
			}
		}
		if resp.UsageMetadata != nil {
			result.Usage = providers.Usage{
				PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
				CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
				TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
			}
		}
	}
	result.Text = text.String()
	return result, nil
}

func buildContents(req providers.GenerationRequest) (string, []*genai.Content) {
	system := req.Instructions
	var contents []*genai.Content
	for _, m := range req.Messages {
		switch m.Role {
		case providers.RoleSystem:
			if system == "" {
				system = m.Content
			} else {
				system += "\n" + m.Content
			}
		case providers.RoleUser:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		case providers.RoleAssistant:
			if m.Content != "" {
				contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
			}
		case providers.RoleTool:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: "Function result: " + m.Content}}})
		}
	}
	return system, contents
}

func wrapError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		return &providers.StatusError{Backend: backendName, StatusCode: apiErr.Code, Err: err}
	}
	return fmt.Errorf("gemini streaming error: %w", err)
}
