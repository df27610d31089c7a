package factory

import (
	"errors"
	"testing"

	"github.com/newthinker/sigma/internal/config"
	"github.com/newthinker/sigma/internal/core"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LLMConfig
		wantName string
		wantErr  bool
	}{
		{
			name: "claude",
			cfg: config.LLMConfig{
				Provider: "claude",
				Claude:   config.ClaudeConfig{APIKey: "key"},
			},
			wantName: "claude",
		},
		{
			name: "openai",
			cfg: config.LLMConfig{
				Provider: "openai",
				OpenAI:   config.OpenAIConfig{APIKey: "key"},
			},
			wantName: "openai",
		},
		{
			name:     "ollama",
			cfg:      config.LLMConfig{Provider: "ollama"},
			wantName: "ollama",
		},
		{
			name:    "claude without key",
			cfg:     config.LLMConfig{Provider: "claude"},
			wantErr: true,
		},
		{
			name:    "unknown",
			cfg:     config.LLMConfig{Provider: "gemini"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("New() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %s, want %s", p.Name(), tt.wantName)
			}
		})
	}
}

func TestNew_UnknownProviderCode(t *testing.T) {
	_, err := New(config.LLMConfig{Provider: "gemini"})
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("New() error = %v, want ErrConfigInvalid", err)
	}
}
