// internal/llm/factory/factory.go
package factory

import (
	"github.com/newthinker/sigma/internal/config"
	"github.com/newthinker/sigma/internal/core"
	"github.com/newthinker/sigma/internal/llm"
	"github.com/newthinker/sigma/internal/llm/claude"
	"github.com/newthinker/sigma/internal/llm/ollama"
	"github.com/newthinker/sigma/internal/llm/openai"
)

// New creates an LLM provider based on configuration.
func New(cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "claude":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "ollama":
		return ollama.New(cfg.Ollama.Endpoint, cfg.Ollama.Model)
	default:
		return nil, core.WrapErrorf(core.ErrConfigInvalid, "unknown LLM provider %q", cfg.Provider)
	}
}
