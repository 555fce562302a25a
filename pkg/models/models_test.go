package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/frankx-ai/frankx/pkg/apierr"
	"github.com/frankx-ai/frankx/pkg/config"
)

func TestLoadRegistry_Defaults(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}

	if len(reg.ListModels()) == 0 {
		t.Fatal("default catalog should not be empty")
	}

	d, err := reg.GetModel("openai/gpt-4o-mini")
	if err != nil {
		t.Fatalf("GetModel() error = %v", err)
	}
	if d.ContextWindow <= 0 {
		t.Error("context window must be positive")
	}
}

func TestGetModel_NotFound(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}

	_, err = reg.GetModel("nope/none")
	if err == nil {
		t.Fatal("expected error for unknown model")
	}
	if !apierr.Is(err, apierr.CodeNotFound) {
		t.Errorf("error code = %v, want NotFound", apierr.CodeOf(err))
	}
}

func TestBestModelFor(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}

	coding := reg.BestModelFor("coding")
	if !coding.HasTag("coding") {
		t.Errorf("BestModelFor(coding) = %q, expected a coding-tagged model", coding.ID)
	}

	// Unknown tag falls back to the default, never fails.
	fallback := reg.BestModelFor("underwater-basket-weaving")
	if fallback.ID != reg.Default().ID {
		t.Errorf("BestModelFor(unknown) = %q, want default %q", fallback.ID, reg.Default().ID)
	}

	empty := reg.BestModelFor("")
	if empty.ID != reg.Default().ID {
		t.Errorf("BestModelFor(\"\") = %q, want default %q", empty.ID, reg.Default().ID)
	}
}

func TestLoadRegistry_FromFile(t *testing.T) {
	catalog := `
default: test/one
models:
  - id: test/one
    name: Test One
    provider: openai
    context_window: 1000
    tags: [chat]
  - id: test/two
    name: Test Two
    provider: anthropic
    context_window: 2000
    tags: [reasoning]
`
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte(catalog), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}

	if got := len(reg.ListModels()); got != 2 {
		t.Errorf("ListModels() length = %d, want 2", got)
	}
	if reg.Default().ID != "test/one" {
		t.Errorf("Default() = %q, want test/one", reg.Default().ID)
	}
}

func TestNewRegistry_Invalid(t *testing.T) {
	if _, err := NewRegistry(nil, ""); err == nil {
		t.Error("expected error for empty catalog")
	}

	bad := []Descriptor{{ID: "x/y", ContextWindow: 0}}
	if _, err := NewRegistry(bad, ""); err == nil {
		t.Error("expected error for non-positive context window")
	}

	dup := []Descriptor{
		{ID: "x/y", ContextWindow: 10},
		{ID: "x/y", ContextWindow: 10},
	}
	if _, err := NewRegistry(dup, ""); err == nil {
		t.Error("expected error for duplicate ids")
	}
}

func TestDescriptor_APIName(t *testing.T) {
	tests := []struct {
		id       string
		provider string
		want     string
	}{
		{"openai/gpt-4o-mini", "openai", "gpt-4o-mini"},
		{"anthropic/claude-sonnet-4", "anthropic", "claude-sonnet-4"},
		{"openrouter/meta-llama/llama-3.1-70b-instruct", "openrouter", "meta-llama/llama-3.1-70b-instruct"},
		{"bare-name", "openai", "bare-name"},
	}
	for _, tt := range tests {
		d := Descriptor{ID: tt.id, Provider: config.Provider(tt.provider)}
		if got := d.APIName(); got != tt.want {
			t.Errorf("APIName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
