package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/sigma/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9090
backtest:
  interval: 4h
  cost: 0.001
storage:
  type: localfs
  path: /tmp/reports
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9090 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Backtest.Interval != "4h" {
		t.Errorf("interval = %s, want 4h", cfg.Backtest.Interval)
	}
	if cfg.Backtest.Cost != 0.001 {
		t.Errorf("cost = %v, want 0.001", cfg.Backtest.Cost)
	}
	if cfg.Storage.Path != "/tmp/reports" {
		t.Errorf("storage path = %s", cfg.Storage.Path)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("SIGMA_TEST_SECRET", "s3cret")
	path := writeConfig(t, `
llm:
  provider: claude
  claude:
    api_key: ${SIGMA_TEST_SECRET}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LLM.Claude.APIKey != "s3cret" {
		t.Errorf("api_key = %q, want expanded env value", cfg.LLM.Claude.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
	if cfg.Backtest.Interval != "1d" {
		t.Errorf("default interval = %s, want 1d", cfg.Backtest.Interval)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr *core.Error
	}{
		{"bad port", func(c *Config) { c.Server.Port = -1 }, core.ErrConfigInvalid},
		{"bad cost", func(c *Config) { c.Backtest.Cost = 1.5 }, core.ErrConfigInvalid},
		{"unknown storage", func(c *Config) { c.Storage.Type = "ftp" }, core.ErrConfigInvalid},
		{"s3 without bucket", func(c *Config) { c.Storage.Type = "s3" }, core.ErrConfigMissing},
		{"claude without key", func(c *Config) { c.LLM.Provider = "claude" }, core.ErrConfigMissing},
		{"unknown llm", func(c *Config) { c.LLM.Provider = "bard" }, core.ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
