// Package config loads service and CLI configuration from defaults, an
// optional YAML file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Format        FormatConfig        `yaml:"format"`
	Diarization   DiarizationConfig   `yaml:"diarization"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	STT           STTConfig           `yaml:"stt"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServiceConfig holds listener and identity settings.
type ServiceConfig struct {
	Principal       string        `yaml:"principal"`
	GRPCPort        string        `yaml:"grpc_port"`
	HTTPPort        string        `yaml:"http_port"`
	MetricsPort     string        `yaml:"metrics_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// FormatConfig holds document title and paragraph break thresholds.
type FormatConfig struct {
	Title            string  `yaml:"title"`
	Policy           string  `yaml:"policy"` // sentences, words, auto
	PauseSeconds     float64 `yaml:"pause_seconds"`
	MaxSentences     int     `yaml:"max_sentences"`
	WordPauseSeconds float64 `yaml:"word_pause_seconds"`
	MinWords         int     `yaml:"min_words"`
}

// DiarizationConfig tunes speaker resolution.
type DiarizationConfig struct {
	// MaxMidpointDistance bounds the nearest-turn fallback in seconds. 0 disables the bound.
	MaxMidpointDistance float64 `yaml:"max_midpoint_distance"`
	Workers             int     `yaml:"workers"`
}

// KafkaConfig configures the rendered-document event stream.
type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	Principal    string        `yaml:"principal"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// STTConfig configures the speech-to-text collaborator.
type STTConfig struct {
	Provider          string `yaml:"provider"` // google, file, mock
	LanguageCode      string `yaml:"language_code"`
	SampleRateHz      int    `yaml:"sample_rate_hz"`
	AudioEncoding     string `yaml:"audio_encoding"`
	EnableDiarization bool   `yaml:"enable_diarization"`
	MinSpeakers       int    `yaml:"min_speakers"`
	MaxSpeakers       int    `yaml:"max_speakers"`
	Model             string `yaml:"model"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Principal:       "svc-transcript-formatter",
			GRPCPort:        "50051",
			HTTPPort:        "8080",
			MetricsPort:     "9090",
			ShutdownTimeout: 10 * time.Second,
		},
		Format: FormatConfig{
			Title:            "Transcript",
			Policy:           "sentences",
			PauseSeconds:     2.0,
			MaxSentences:     5,
			WordPauseSeconds: 1.0,
			MinWords:         10,
		},
		Diarization: DiarizationConfig{
			MaxMidpointDistance: 0,
			Workers:             1,
		},
		Kafka: KafkaConfig{
			Enabled:      false,
			Brokers:      []string{"localhost:9092"},
			Topic:        "transcript.document.rendered",
			WriteTimeout: 10 * time.Second,
		},
		STT: STTConfig{
			Provider:          "mock",
			LanguageCode:      "en-US",
			SampleRateHz:      16000,
			AudioEncoding:     "LINEAR16",
			EnableDiarization: true,
			MinSpeakers:       1,
			MaxSpeakers:       6,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "json",
		},
	}
}

// Load returns the defaults overridden by environment variables.
func Load() *Config {
	cfg := Default()
	applyEnv(cfg)
	return cfg
}

// LoadFile returns the defaults overridden by the YAML file at path and then
// by environment variables. An empty path behaves like Load.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Service.Principal = envOrDefault("SERVICE_PRINCIPAL", cfg.Service.Principal)
	cfg.Service.GRPCPort = envOrDefault("GRPC_PORT", cfg.Service.GRPCPort)
	cfg.Service.HTTPPort = envOrDefault("HTTP_PORT", cfg.Service.HTTPPort)
	cfg.Service.MetricsPort = envOrDefault("METRICS_PORT", cfg.Service.MetricsPort)
	cfg.Service.ShutdownTimeout = envOrDefaultDuration("SHUTDOWN_TIMEOUT", cfg.Service.ShutdownTimeout)

	cfg.Format.Title = envOrDefault("FORMAT_TITLE", cfg.Format.Title)
	cfg.Format.Policy = envOrDefault("FORMAT_POLICY", cfg.Format.Policy)
	cfg.Format.PauseSeconds = envOrDefaultFloat("FORMAT_PAUSE_SECONDS", cfg.Format.PauseSeconds)
	cfg.Format.MaxSentences = envOrDefaultInt("FORMAT_MAX_SENTENCES", cfg.Format.MaxSentences)
	cfg.Format.WordPauseSeconds = envOrDefaultFloat("FORMAT_WORD_PAUSE_SECONDS", cfg.Format.WordPauseSeconds)
	cfg.Format.MinWords = envOrDefaultInt("FORMAT_MIN_WORDS", cfg.Format.MinWords)

	cfg.Diarization.MaxMidpointDistance = envOrDefaultFloat("DIARIZATION_MAX_MIDPOINT_DISTANCE", cfg.Diarization.MaxMidpointDistance)
	cfg.Diarization.Workers = envOrDefaultInt("RESOLVE_WORKERS", cfg.Diarization.Workers)

	cfg.Kafka.Enabled = envOrDefaultBool("KAFKA_ENABLED", cfg.Kafka.Enabled)
	cfg.Kafka.Brokers = envOrDefaultList("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.Topic = envOrDefault("KAFKA_TOPIC", cfg.Kafka.Topic)
	cfg.Kafka.WriteTimeout = envOrDefaultDuration("KAFKA_WRITE_TIMEOUT", cfg.Kafka.WriteTimeout)
	// Kafka principal falls back to the service principal.
	cfg.Kafka.Principal = envOrDefault("KAFKA_PRINCIPAL", cfg.Kafka.Principal)
	if cfg.Kafka.Principal == "" {
		cfg.Kafka.Principal = cfg.Service.Principal
	}

	cfg.STT.Provider = envOrDefault("STT_PROVIDER", cfg.STT.Provider)
	cfg.STT.LanguageCode = envOrDefault("STT_LANGUAGE_CODE", cfg.STT.LanguageCode)
	cfg.STT.SampleRateHz = envOrDefaultInt("STT_SAMPLE_RATE_HZ", cfg.STT.SampleRateHz)
	cfg.STT.AudioEncoding = envOrDefault("STT_AUDIO_ENCODING", cfg.STT.AudioEncoding)
	cfg.STT.EnableDiarization = envOrDefaultBool("STT_ENABLE_DIARIZATION", cfg.STT.EnableDiarization)
	cfg.STT.MinSpeakers = envOrDefaultInt("STT_MIN_SPEAKERS", cfg.STT.MinSpeakers)
	cfg.STT.MaxSpeakers = envOrDefaultInt("STT_MAX_SPEAKERS", cfg.STT.MaxSpeakers)
	cfg.STT.Model = envOrDefault("STT_MODEL", cfg.STT.Model)

	cfg.Observability.LogLevel = envOrDefault("LOG_LEVEL", cfg.Observability.LogLevel)
	cfg.Observability.LogFormat = envOrDefault("LOG_FORMAT", cfg.Observability.LogFormat)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// envOrDefaultList splits a comma-separated value, dropping empty items.
func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
