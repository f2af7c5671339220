package providers

import (
	"context"
)

type Config struct {
	Credentials Credentials `json:"credentials"`
	BaseURL     string      `json:"base_url,omitempty"`
	Model       string      `json:"model"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
	Format      string      `json:"format,omitempty"`
}

type Credentials struct {
	ApiKey     string                 `json:"api_key"`
	Azure      *AzureCredentials      `json:"azure,omitempty"`
	AwsBedrock *AwsBedrockCredentials `json:"aws_bedrock,omitempty"`
}

type AzureCredentials struct {
	Endpoint   string `json:"endpoint"`
	APIVersion string `json:"api_version"`
}

type AwsBedrockCredentials struct {
	Region       string `json:"region"`
	AccessKey    string `json:"access_key"`
	SecretKey    string `json:"secret_key"`
	SessionToken string `json:"session_token,omitempty"`
	RoleARN      string `json:"role_arn,omitempty"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type ChatMessage struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type GenerationRequest struct {
	Model        string        `json:"model"`
	Instructions string        `json:"instructions,omitempty"`
	Temperature  float64       `json:"temperature"`
	MaxTokens    int           `json:"max_tokens,omitempty"`
	Messages     []ChatMessage `json:"messages"`
	Tools        []Tool        `json:"tools,omitempty"`
}

// ToolCallDelta is one streamed fragment of a function-call intent. Index
// groups fragments of the same call.
type ToolCallDelta struct {
	Index          int
	ID             string
	Name           string
	ArgumentsDelta string
}

type GenerationChunk struct {
	Text     string
	ToolCall *ToolCallDelta
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type GenerationResult struct {
	Text         string     `json:"text"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        Usage      `json:"usage"`
}

type TranscriptionRequest struct {
	Audio      []byte
	SampleRate int
	Model      string
	Language   string
}

type SynthesisRequest struct {
	Text   string
	Voice  string
	Model  string
	Format string
}

//go:generate mockery --name=Transcriber --dir=. --output=./mocks --filename=transcriber_mock.go --case=underscore --with-expecter

// Transcriber turns committed PCM16 audio into text. Partial fragments are
// passed to onDelta in arrival order; the final transcript is returned.
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscriptionRequest, onDelta func(string) error) (string, error)
}

//go:generate mockery --name=Generator --dir=. --output=./mocks --filename=generator_mock.go --case=underscore --with-expecter

type Generator interface {
	Generate(ctx context.Context, req GenerationRequest, onChunk func(GenerationChunk) error) (*GenerationResult, error)
}

//go:generate mockery --name=Synthesizer --dir=. --output=./mocks --filename=synthesizer_mock.go --case=underscore --with-expecter

type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest, onAudio func([]byte) error) error
}
