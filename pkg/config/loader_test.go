package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/frankx-ai/frankx/pkg/config/provider"
)

func TestExpandEnvVarsInData(t *testing.T) {
	t.Setenv("FRANKX_TEST_KEY", "secret-123")
	t.Setenv("FRANKX_TEST_PORT", "9090")
	os.Unsetenv("FRANKX_TEST_UNSET")

	data := map[string]interface{}{
		"plain":    "no dollars here",
		"braced":   "${FRANKX_TEST_KEY}",
		"simple":   "$FRANKX_TEST_KEY",
		"fallback": "${FRANKX_TEST_UNSET:-fallback-value}",
		"present":  "${FRANKX_TEST_KEY:-ignored-default}",
		"retyped":  "${FRANKX_TEST_PORT}",
		"nested": map[string]interface{}{
			"inner": "${FRANKX_TEST_KEY}",
		},
		"list": []interface{}{"${FRANKX_TEST_KEY}", "literal"},
	}

	out, ok := ExpandEnvVarsInData(data).(map[string]interface{})
	if !ok {
		t.Fatal("expected a map back")
	}

	if out["plain"] != "no dollars here" {
		t.Errorf("plain = %v, want untouched", out["plain"])
	}
	if out["braced"] != "secret-123" {
		t.Errorf("braced = %v, want secret-123", out["braced"])
	}
	if out["simple"] != "secret-123" {
		t.Errorf("simple = %v, want secret-123", out["simple"])
	}
	if out["fallback"] != "fallback-value" {
		t.Errorf("fallback = %v, want fallback-value", out["fallback"])
	}
	if out["present"] != "secret-123" {
		t.Errorf("present = %v, want env value over default", out["present"])
	}
	if out["retyped"] != 9090 {
		t.Errorf("retyped = %v (%T), want int 9090", out["retyped"], out["retyped"])
	}
	nested := out["nested"].(map[string]interface{})
	if nested["inner"] != "secret-123" {
		t.Errorf("nested inner = %v, want secret-123", nested["inner"])
	}
	list := out["list"].([]interface{})
	if list[0] != "secret-123" || list[1] != "literal" {
		t.Errorf("list = %v, want expanded first element only", list)
	}
}

func TestExpandEnvVarsInData_Retyping(t *testing.T) {
	t.Setenv("FRANKX_TEST_BOOL", "true")
	t.Setenv("FRANKX_TEST_FLOAT", "0.5")

	if got := ExpandEnvVarsInData("${FRANKX_TEST_BOOL}"); got != true {
		t.Errorf("bool = %v (%T), want true", got, got)
	}
	if got := ExpandEnvVarsInData("${FRANKX_TEST_FLOAT}"); got != 0.5 {
		t.Errorf("float = %v (%T), want 0.5", got, got)
	}
}

func TestParse_YAML(t *testing.T) {
	t.Setenv("FRANKX_TEST_DSN", "postgres://frankx@localhost/frankx")

	cfg, err := Parse([]byte(`
server:
  port: 9000
providers:
  anthropic:
    type: anthropic
    max_tokens: 2048
store:
  backend: postgres
  dsn: ${FRANKX_TEST_DSN}
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Store.DSN != "postgres://frankx@localhost/frankx" {
		t.Errorf("dsn = %q, want env-expanded value", cfg.Store.DSN)
	}
	if cfg.Providers["anthropic"].MaxTokens != 2048 {
		t.Errorf("max_tokens = %d, want 2048", cfg.Providers["anthropic"].MaxTokens)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendMemory {
		t.Errorf("default backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
	// every known provider gets an entry with its base URL defaulted
	for _, name := range []string{"openai", "openrouter", "anthropic"} {
		pc, ok := cfg.Providers[name]
		if !ok {
			t.Fatalf("provider %q missing from defaults", name)
		}
		if pc.BaseURL == "" {
			t.Errorf("provider %q has no default base URL", name)
		}
	}
}

func TestParse_JSONFallback(t *testing.T) {
	cfg, err := Parse([]byte(`{"server": {"port": 9001}}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("port = %d, want 9001", cfg.Server.Port)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"port out of range", "server:\n  port: 99999\n"},
		{"unknown provider type", "providers:\n  custom:\n    type: bogus\n"},
		{"postgres without dsn", "store:\n  backend: postgres\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"temperature out of range", "providers:\n  openai:\n    type: openai\n    temperature: 3.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Errorf("Parse(%q) succeeded, want validation error", tt.yaml)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse([]byte("{not yaml: [nor json")); err == nil {
		t.Fatal("expected parse error for malformed input")
	}
}

func TestLoader_Load(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configYAML := `
server:
  port: 9002
store:
  backend: sqlite
  path: frankx-test.db
`
	if err := os.WriteFile(configFile, []byte(configYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	p, err := provider.NewFileProvider(configFile)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	loader := NewLoader(p)
	defer loader.Close()

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9002 {
		t.Errorf("port = %d, want 9002", cfg.Server.Port)
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.Path != "frankx-test.db" {
		t.Errorf("store = %+v, want sqlite/frankx-test.db", cfg.Store)
	}
}

func TestLoader_Load_NotFound(t *testing.T) {
	p, err := provider.NewFileProvider("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	loader := NewLoader(p)
	defer loader.Close()

	if _, err := loader.Load(context.Background()); err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}
