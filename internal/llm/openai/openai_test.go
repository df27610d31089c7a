package openai

import (
	"errors"
	"testing"

	"github.com/newthinker/sigma/internal/core"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New("", "")
	if !errors.Is(err, core.ErrConfigMissing) {
		t.Errorf("New() error = %v, want ErrConfigMissing", err)
	}
}

func TestNew_DefaultModel(t *testing.T) {
	p, err := New("test-key", "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Name() = %s", p.Name())
	}
	if p.model != "gpt-4o" {
		t.Errorf("model = %s, want gpt-4o", p.model)
	}
}
