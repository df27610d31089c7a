package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/newthinker/sigma/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backtest BacktestConfig `mapstructure:"backtest"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	JobTTLHours int    `mapstructure:"job_ttl_hours"`
	MaxJobs     int    `mapstructure:"max_jobs"`
}

// BacktestConfig holds defaults for backtest runs.
type BacktestConfig struct {
	Interval string  `mapstructure:"interval"`
	Cost     float64 `mapstructure:"cost"` // fractional cost per unit of position change
}

type StorageConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LLMConfig holds settings for the optional report narrative.
type LLMConfig struct {
	Provider string       `mapstructure:"provider"` // "claude", "openai", "ollama" or "" (disabled)
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Ollama   OllamaConfig `mapstructure:"ollama"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			JobTTLHours: 1,
			MaxJobs:     100,
		},
		Backtest: BacktestConfig{
			Interval: "1d",
			Cost:     0,
		},
		Storage: StorageConfig{
			Type: "localfs",
			Path: "reports",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return core.WrapErrorf(core.ErrConfigInvalid, "server port %d out of range", c.Server.Port)
	}
	if c.Backtest.Cost < 0 || c.Backtest.Cost >= 1 {
		return core.WrapErrorf(core.ErrConfigInvalid, "backtest cost %g outside [0, 1)", c.Backtest.Cost)
	}

	switch c.Storage.Type {
	case "", "localfs":
		// Path defaults at construction time
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return core.WrapErrorf(core.ErrConfigMissing, "storage.s3.bucket required for s3 storage")
		}
	default:
		return core.WrapErrorf(core.ErrConfigInvalid, "unknown storage type %q", c.Storage.Type)
	}

	switch c.LLM.Provider {
	case "", "ollama":
	case "claude":
		if c.LLM.Claude.APIKey == "" {
			return core.WrapErrorf(core.ErrConfigMissing, "llm.claude.api_key required")
		}
	case "openai":
		if c.LLM.OpenAI.APIKey == "" {
			return core.WrapErrorf(core.ErrConfigMissing, "llm.openai.api_key required")
		}
	default:
		return core.WrapErrorf(core.ErrConfigInvalid, "unknown llm provider %q", c.LLM.Provider)
	}

	return nil
}
