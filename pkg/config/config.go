package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/RealtimeGateway/pkg/realtime"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type MetricsConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	EnableLatency     bool `mapstructure:"enable_latency"`
	EnableConnections bool `mapstructure:"enable_connections"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Realtime  RealtimeConfig  `mapstructure:"realtime"`
	Backends  BackendsConfig  `mapstructure:"backends"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	MetricsPort  int           `mapstructure:"metrics_port"`
	Host         string        `mapstructure:"host"`
	Type         string        `mapstructure:"type"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	SlowQuery        time.Duration `mapstructure:"slow_query"`
	MigrationTimeout time.Duration `mapstructure:"migration_timeout"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
}

type WebSocketConfig struct {
	Path           string        `mapstructure:"path"`
	MaxConnections int           `mapstructure:"max_connections"`
	PingPeriod     time.Duration `mapstructure:"ping_period"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	OutboundBuffer int           `mapstructure:"outbound_buffer"`
}

type RealtimeConfig struct {
	VADThreshold          float64       `mapstructure:"vad_threshold"`
	VADDebounceMs         int           `mapstructure:"vad_debounce_ms"`
	VADPrefixPaddingMs    int           `mapstructure:"vad_prefix_padding_ms"`
	MaxTurnDurationMs     int           `mapstructure:"max_turn_duration_ms"`
	IdleTimeoutMs         int           `mapstructure:"idle_timeout_ms"`
	MaxConcurrentSessions int           `mapstructure:"max_concurrent_sessions"`
	FunctionCallTimeoutMs int           `mapstructure:"function_call_timeout_ms"`
	SampleRate            int           `mapstructure:"sample_rate"`
	DefaultModel          string        `mapstructure:"default_model"`
	AllowedModels         []string      `mapstructure:"allowed_models"`
	DefaultVoice          string        `mapstructure:"default_voice"`
	DefaultTemperature    float64       `mapstructure:"default_temperature"`
	RateLimitRequests     int           `mapstructure:"rate_limit_requests"`
	RateLimitTokens       int           `mapstructure:"rate_limit_tokens"`
	RateLimitWindow       time.Duration `mapstructure:"rate_limit_window"`
}

type BackendConfig struct {
	Provider  string      `mapstructure:"provider"`
	BaseURL   string      `mapstructure:"base_url"`
	APIKey    string      `mapstructure:"api_key"`
	Model     string      `mapstructure:"model"`
	MaxTokens int         `mapstructure:"max_tokens"`
	Format    string      `mapstructure:"format"`
	Azure     AzureConfig `mapstructure:"azure"`
	AWS       AWSConfig   `mapstructure:"aws"`
}

// AzureConfig points a backend at an Azure OpenAI deployment. Model is the
// deployment name. Without api_key the default Azure credential chain is used.
type AzureConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIVersion string `mapstructure:"api_version"`
}

type AWSConfig struct {
	Region       string `mapstructure:"region"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	SessionToken string `mapstructure:"session_token"`
	RoleARN      string `mapstructure:"role_arn"`
}

type BackendsConfig struct {
	Generation         BackendConfig `mapstructure:"generation"`
	Transcription      BackendConfig `mapstructure:"transcription"`
	Synthesis          BackendConfig `mapstructure:"synthesis"`
	SynthesisCacheTTL  time.Duration `mapstructure:"synthesis_cache_ttl"`
	Timeout            time.Duration `mapstructure:"timeout"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout"`
}

type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	SecretKey string `mapstructure:"secret_key"`
}

type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
	Codec   string `mapstructure:"codec"`
}

type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	Topic   string `mapstructure:"topic"`
}

type TelemetryConfig struct {
	Kafka KafkaConfig `mapstructure:"kafka"`
}

var globalConfig Config

func Load(configPath string) error {
	if err := loadConfigFile(configPath, "config", &globalConfig); err != nil {
		return fmt.Errorf("could not load main config file: %w", err)
	}
	setDefaultValues(&globalConfig)
	return nil
}

func loadConfigFile(configPath, fileName string, out interface{}) error {
	viper.SetConfigName(fileName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file %s.yaml not found, using only environment variables", fileName)
		}
		return fmt.Errorf("error reading config file %s.yaml: %w", fileName, err)
	}

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := viper.Unmarshal(out, decodeHook); err != nil {
		return fmt.Errorf("failed to unmarshal %s config: %w", fileName, err)
	}

	return nil
}

func setDefaultValues(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.WebSocket.Path == "" {
		cfg.WebSocket.Path = "/v1/realtime"
	}
	if cfg.WebSocket.PingPeriod == 0 {
		cfg.WebSocket.PingPeriod = 30 * time.Second
	}
	if cfg.WebSocket.PongWait == 0 {
		cfg.WebSocket.PongWait = 45 * time.Second
	}
	if cfg.WebSocket.WriteTimeout == 0 {
		cfg.WebSocket.WriteTimeout = 5 * time.Second
	}
	if cfg.WebSocket.OutboundBuffer == 0 {
		cfg.WebSocket.OutboundBuffer = 256
	}

	rt := &cfg.Realtime
	defaults := realtime.DefaultConfig()
	if rt.VADThreshold == 0 {
		rt.VADThreshold = defaults.VADThreshold
	}
	if rt.VADDebounceMs == 0 {
		rt.VADDebounceMs = defaults.VADDebounceMs
	}
	if rt.VADPrefixPaddingMs == 0 {
		rt.VADPrefixPaddingMs = defaults.PrefixPaddingMs
	}
	if rt.MaxTurnDurationMs == 0 {
		rt.MaxTurnDurationMs = defaults.MaxTurnDurationMs
	}
	if rt.IdleTimeoutMs == 0 {
		rt.IdleTimeoutMs = defaults.IdleTimeoutMs
	}
	if rt.MaxConcurrentSessions == 0 {
		rt.MaxConcurrentSessions = defaults.MaxConcurrentSessions
	}
	if rt.FunctionCallTimeoutMs == 0 {
		rt.FunctionCallTimeoutMs = defaults.FunctionCallTimeoutMs
	}
	if rt.SampleRate == 0 {
		rt.SampleRate = defaults.SampleRate
	}
	if rt.DefaultModel == "" {
		rt.DefaultModel = defaults.DefaultModel
	}
	if rt.DefaultVoice == "" {
		rt.DefaultVoice = defaults.DefaultVoice
	}
	if rt.DefaultTemperature == 0 {
		rt.DefaultTemperature = defaults.DefaultTemperature
	}
	if rt.RateLimitRequests == 0 {
		rt.RateLimitRequests = 1000
	}
	if rt.RateLimitTokens == 0 {
		rt.RateLimitTokens = 50000
	}
	if rt.RateLimitWindow == 0 {
		rt.RateLimitWindow = time.Minute
	}
	if cfg.WebSocket.MaxConnections == 0 {
		cfg.WebSocket.MaxConnections = rt.MaxConcurrentSessions
	}

	if cfg.Backends.Generation.Provider == "" {
		cfg.Backends.Generation.Provider = "openai"
	}
	if cfg.Backends.Generation.Provider == "openai" && cfg.Backends.Generation.BaseURL == "" {
		cfg.Backends.Generation.BaseURL = "http://localhost:11434/v1"
	}
	if cfg.Backends.Transcription.Model == "" {
		cfg.Backends.Transcription.Model = "whisper-1"
	}
	if cfg.Backends.Synthesis.Model == "" {
		cfg.Backends.Synthesis.Model = "tts-1"
	}
	if cfg.Backends.Synthesis.Format == "" {
		cfg.Backends.Synthesis.Format = "pcm"
	}
	if cfg.Backends.SynthesisCacheTTL == 0 {
		cfg.Backends.SynthesisCacheTTL = 10 * time.Minute
	}
	if cfg.Backends.Timeout == 0 {
		cfg.Backends.Timeout = 60 * time.Second
	}
	if cfg.Backends.BreakerMaxFailures == 0 {
		cfg.Backends.BreakerMaxFailures = 5
	}
	if cfg.Backends.BreakerTimeout == 0 {
		cfg.Backends.BreakerTimeout = 30 * time.Second
	}
	if cfg.Archive.Dir == "" {
		cfg.Archive.Dir = "data/audio"
	}
	if cfg.Archive.Codec == "" {
		cfg.Archive.Codec = "zstd"
	}
}

// Engine converts the realtime section into the engine configuration handed
// to every realtime component at construction.
func (c RealtimeConfig) Engine() realtime.Config {
	cfg := realtime.DefaultConfig()
	cfg.VADThreshold = c.VADThreshold
	cfg.VADDebounceMs = c.VADDebounceMs
	cfg.PrefixPaddingMs = c.VADPrefixPaddingMs
	cfg.MaxTurnDurationMs = c.MaxTurnDurationMs
	cfg.IdleTimeoutMs = c.IdleTimeoutMs
	cfg.MaxConcurrentSessions = c.MaxConcurrentSessions
	cfg.FunctionCallTimeoutMs = c.FunctionCallTimeoutMs
	cfg.SampleRate = c.SampleRate
	cfg.DefaultModel = c.DefaultModel
	cfg.AllowedModels = c.AllowedModels
	cfg.DefaultVoice = c.DefaultVoice
	cfg.DefaultTemperature = c.DefaultTemperature
	return cfg
}

func GetConfig() *Config {
	return &globalConfig
}
