package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/liamcoop/talky/talkshow"
)

var envKeys = []string{
	"HOST", "PORT", "SHUTDOWN_TIMEOUT", "EXPOSE_ERRORS",
	"LLM_PROVIDER", "LLM_MODEL", "LLM_BASE_URL", "LLM_TEMPERATURE",
	"LLM_MAX_TOKENS", "LLM_TIMEOUT", "LLM_JSON_MODE", "LLM_API_KEY",
	"GROQ_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY",
	"LOG_LEVEL", "ERROR_SAMPLE_RATE",
}

// clearEnv unsets every key Load reads and restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 8081 {
		t.Errorf("expected default port 8081, got %d", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "groq" || cfg.LLM.Temperature != 0.7 {
		t.Errorf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout != 60*time.Second || cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("unexpected timeouts: %v %v", cfg.LLM.Timeout, cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.ExposeErrors {
		t.Error("errors should not be exposed by default")
	}
	if cfg.Addr() != ":8081" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "talky.yaml", `
server:
  port: 9000
  host: 127.0.0.1
  shutdown_timeout: 5s
llm:
  provider: OpenAI
  model: gpt-4.1
  temperature: 0.3
  timeout: 10s
corrector:
  rules:
    - name: theme_not_empty
      expression: size(details.theme) > 0
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.Host != "127.0.0.1" || cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("file server settings not applied: %+v", cfg.Server)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4.1" || cfg.LLM.Timeout != 10*time.Second {
		t.Errorf("file llm settings not applied: %+v", cfg.LLM)
	}
	if len(cfg.Corrector.Rules) != 1 || cfg.Corrector.Rules[0].Name != "theme_not_empty" ||
		cfg.Corrector.Rules[0].Expression != "size(details.theme) > 0" {
		t.Errorf("corrector rules not loaded: %+v", cfg.Corrector.Rules)
	}

	t.Setenv("PORT", "9100")
	t.Setenv("LLM_TEMPERATURE", "1.1")
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("GROQ_API_KEY", "gsk-groq")

	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("env should override file port, got %d", cfg.Server.Port)
	}
	if cfg.LLM.Temperature != 1.1 {
		t.Errorf("env should override file temperature, got %v", cfg.LLM.Temperature)
	}
	if cfg.LLM.APIKey != "sk-openai" {
		t.Errorf("expected the openai key, got %q", cfg.LLM.APIKey)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("file log level should survive, got %q", cfg.Log.Level)
	}
}

func TestLoad_ProviderKeyWinsOverGeneric(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_API_KEY", "generic")
	t.Setenv("GEMINI_API_KEY", "gemini")
	t.Setenv("LLM_PROVIDER", "gemini")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.LLM.APIKey != "gemini" {
		t.Errorf("expected provider key, got %q", cfg.LLM.APIKey)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad port", "PORT", "eighty"},
		{"bad temperature", "LLM_TEMPERATURE", "hot"},
		{"bad timeout", "LLM_TIMEOUT", "60"},
		{"bad bool", "EXPOSE_ERRORS", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)
			if _, err := Load(""); err == nil || !strings.Contains(err.Error(), tt.key) {
				t.Errorf("expected error naming %s, got %v", tt.key, err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error for a missing config file")
		}
	})

	t.Run("bad yaml", func(t *testing.T) {
		clearEnv(t)
		if _, err := Load(writeFile(t, "bad.yaml", "server: [")); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestLoadDotenv_DoesNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_MODEL", "from-env")
	path := writeFile(t, ".env", "LLM_MODEL=from-dotenv\nGROQ_API_KEY=gsk-dotenv\n")

	if err := loadDotenv(path); err != nil {
		t.Fatalf("loadDotenv() failed: %v", err)
	}
	if got := os.Getenv("LLM_MODEL"); got != "from-env" {
		t.Errorf(".env must not override the environment, got %q", got)
	}
	if got := os.Getenv("GROQ_API_KEY"); got != "gsk-dotenv" {
		t.Errorf("expected key from .env, got %q", got)
	}

	if err := loadDotenv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("a missing .env should be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.LLM.APIKey = "k"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("default config with a key should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no key", func(c *Config) { c.LLM.APIKey = "" }},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "mistral" }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"temperature", func(c *Config) { c.LLM.Temperature = 3 }},
		{"llm timeout", func(c *Config) { c.LLM.Timeout = 0 }},
		{"shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = -time.Second }},
		{"unnamed rule", func(c *Config) { c.Corrector.Rules = []talkshow.AcceptanceRule{{Expression: "true"}} }},
		{"empty rule", func(c *Config) { c.Corrector.Rules = []talkshow.AcceptanceRule{{Name: "r", Expression: " "}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestLLMSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.APIKey = "k"
	cfg.LLM.Model = "m"

	s := cfg.LLMSettings()
	if s.Provider != "groq" || s.APIKey != "k" || s.Model != "m" || s.Temperature != 0.7 || s.Timeout != 60*time.Second {
		t.Errorf("unexpected settings: %+v", s)
	}
}
