// Package config handles application configuration using Viper.
// Viper supports YAML files, environment variables, and defaults — merged in priority order.
// Go convention: configuration is loaded into structs, not accessed as raw key-value pairs.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration struct. Nested structs organize related settings.
// `mapstructure` tags tell Viper how to map YAML/env keys to struct fields.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Enhancer  EnhancerConfig  `mapstructure:"enhancer"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Session   SessionConfig   `mapstructure:"session"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// MaxBodyMB bounds request bodies on the generate and upload routes.
	// Oversized requests are rejected with 413 before any handler runs.
	MaxBodyMB int `mapstructure:"max_body_mb"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// GeminiConfig configures the generative-image backend.
// The API key is deliberately not defaulted: its absence is surfaced per-request
// as a server error, without ever contacting the remote model.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// EnhancerConfig configures the optional LLM prompt-refinement step.
// ProviderOrder controls which LLM providers are used and in what order.
// First provider is primary, rest are fallbacks. Example: ["anthropic", "openai"]
type EnhancerConfig struct {
	Enabled       bool            `mapstructure:"enabled"`
	ProviderOrder []string        `mapstructure:"provider_order"`
	Anthropic     AnthropicConfig `mapstructure:"anthropic"`
	OpenAI        OpenAIConfig    `mapstructure:"openai"`
	RatePerMinute int             `mapstructure:"rate_per_minute"`
}

type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// IngestConfig bounds uploaded photos. Images are downsampled so neither
// dimension exceeds MaxDimension, then re-encoded as JPEG at JPEGQuality.
type IngestConfig struct {
	MaxDimension int `mapstructure:"max_dimension"`
	JPEGQuality  int `mapstructure:"jpeg_quality"`
}

type SessionConfig struct {
	// TTLMinutes is how long an idle session (and its in-memory images) is
	// kept before the sweeper releases it.
	TTLMinutes int `mapstructure:"ttl_minutes"`
}

// AdminConfig guards the operational endpoints. With no keys configured the
// admin routes are not registered at all.
type AdminConfig struct {
	APIKeys []string `mapstructure:"api_keys"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from a YAML file and environment variables.
// In Go, functions return errors as the last return value — callers must check them.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults — these apply when neither file nor env provides a value
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_body_mb", 10)
	v.SetDefault("storage.database_path", "./storage/collage.db")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("gemini.model", "gemini-2.5-flash-image")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("enhancer.enabled", false)
	v.SetDefault("enhancer.provider_order", []string{"anthropic", "openai"})
	v.SetDefault("enhancer.anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("enhancer.openai.model", "gpt-4o")
	v.SetDefault("enhancer.rate_per_minute", 10)
	v.SetDefault("ingest.max_dimension", 1200)
	v.SetDefault("ingest.jpeg_quality", 85)
	v.SetDefault("session.ttl_minutes", 60)
	v.SetDefault("log.level", "info")

	// Read from YAML config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Read config file (ignore "not found" — defaults + env are enough)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables override everything.
	// COLLAGE_ prefix + nested keys: COLLAGE_SERVER_PORT=9090 → server.port=9090
	v.SetEnvPrefix("COLLAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The Gemini credential also binds the plain GEMINI_API_KEY variable, which
	// is how deployments conventionally provide it.
	_ = v.BindEnv("gemini.api_key", "COLLAGE_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("enhancer.anthropic.api_key", "COLLAGE_ENHANCER_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("enhancer.openai.api_key", "COLLAGE_ENHANCER_OPENAI_API_KEY", "OPENAI_API_KEY")

	// Unmarshal into our Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MaxBodyBytes returns the request body limit in bytes.
func (s ServerConfig) MaxBodyBytes() int64 {
	return int64(s.MaxBodyMB) << 20
}
