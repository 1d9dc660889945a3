// Package config handles application configuration using Viper.
// Viper supports YAML files, environment variables, and defaults, merged in priority order.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration struct. Nested structs organize related settings.
// `mapstructure` tags tell Viper how to map YAML/env keys to struct fields.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	CORS      CORSConfig      `mapstructure:"cors"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type StorageConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

type AuthConfig struct {
	APIKeys   []string `mapstructure:"api_keys"`
	AdminKeys []string `mapstructure:"admin_keys"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LLMConfig struct {
	// ProviderOrder controls which generation providers are used and in what order.
	// First provider is primary, rest are fallbacks. Example: ["gemini", "anthropic"]
	ProviderOrder []string       `mapstructure:"provider_order"`
	Gemini        ProviderConfig `mapstructure:"gemini"`
	Anthropic     ProviderConfig `mapstructure:"anthropic"`
	OpenAI        ProviderConfig `mapstructure:"openai"`
	RatePerMinute int            `mapstructure:"rate_per_minute"`
	// Grounded asks providers that support it to search the web before answering.
	Grounded bool `mapstructure:"grounded"`
	// Timeout bounds a single analysis, network call included.
	Timeout time.Duration `mapstructure:"timeout"`
}

type ProviderConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type AnalysisConfig struct {
	// InitialSegment is analyzed once at server start. Empty disables it.
	InitialSegment string `mapstructure:"initial_segment"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Defaults apply when neither file nor env provides a value.
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("storage.database_path", "./storage/market-radar.db")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	v.SetDefault("llm.provider_order", []string{"gemini"})
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.openai.model", "gpt-4o")
	v.SetDefault("llm.rate_per_minute", 10)
	v.SetDefault("llm.grounded", true)
	v.SetDefault("llm.timeout", 90*time.Second)
	v.SetDefault("analysis.initial_segment", "Global Computer Workstation Market")
	v.SetDefault("rate_limit.requests_per_second", 2)
	v.SetDefault("rate_limit.burst", 5)
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

	// Read config file (a missing file is fine when no path was given)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Environment variables override everything.
	// MARKET_ prefix + nested keys: MARKET_LLM_GEMINI_API_KEY=xxx → llm.gemini.api_key=xxx
	v.SetEnvPrefix("MARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys Viper already knows about, so keys
	// without a default have to be bound explicitly.
	for _, key := range []string{
		"llm.gemini.api_key",
		"llm.anthropic.api_key",
		"llm.openai.api_key",
		"auth.api_keys",
		"auth.admin_keys",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.LLM.RatePerMinute <= 0 {
		return fmt.Errorf("llm.rate_per_minute must be positive, got %d", c.LLM.RatePerMinute)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm.timeout must be positive, got %s", c.LLM.Timeout)
	}
	for _, name := range c.LLM.ProviderOrder {
		if _, ok := c.LLM.Provider(name); !ok {
			return fmt.Errorf("llm.provider_order: unknown provider %q", name)
		}
	}
	return nil
}

// Provider returns the settings for a named provider.
func (l LLMConfig) Provider(name string) (ProviderConfig, bool) {
	switch name {
	case "gemini":
		return l.Gemini, true
	case "anthropic":
		return l.Anthropic, true
	case "openai":
		return l.OpenAI, true
	default:
		return ProviderConfig{}, false
	}
}

// Address returns the listen address string like "0.0.0.0:8080".
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
