package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ego5g/turizm/config"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg := config.LoadFile(filepath.Join(t.TempDir(), "missing.env"))

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DBPath != "turizm.db" {
		t.Errorf("DBPath = %q, want turizm.db", cfg.DBPath)
	}
	if cfg.GenerateTimeout != 60*time.Second {
		t.Errorf("GenerateTimeout = %s, want 60s", cfg.GenerateTimeout)
	}
	if cfg.GenerateRateLimit != 10 {
		t.Errorf("GenerateRateLimit = %d, want 10", cfg.GenerateRateLimit)
	}
	if cfg.FontDir != "fonts" || cfg.LogCaller || cfg.TrustProxy {
		t.Errorf("FontDir = %q, LogCaller = %v, TrustProxy = %v", cfg.FontDir, cfg.LogCaller, cfg.TrustProxy)
	}
}

func TestLoadFile_FileValues(t *testing.T) {
	path := writeEnv(t, `PORT=9090
GOOGLE_AI_API_KEY=secret-key
GEMINI_MODEL=gemini-test
GENERATE_TIMEOUT=5s
GENERATE_RATE_LIMIT=0
LOG_CALLER=true
EXPORT_FONT_DIR=/srv/turizm/fonts
TRUST_PROXY=true
`)
	cfg := config.LoadFile(path)

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.GeminiAPIKey != "secret-key" || cfg.GeminiModel != "gemini-test" {
		t.Errorf("gemini config not loaded: %+v", cfg)
	}
	if cfg.GenerateTimeout != 5*time.Second {
		t.Errorf("GenerateTimeout = %s, want 5s", cfg.GenerateTimeout)
	}
	if cfg.GenerateRateLimit != 0 {
		t.Errorf("GenerateRateLimit = %d, want 0", cfg.GenerateRateLimit)
	}
	if !cfg.LogCaller || cfg.FontDir != "/srv/turizm/fonts" || !cfg.TrustProxy {
		t.Errorf("LogCaller = %v, FontDir = %q, TrustProxy = %v", cfg.LogCaller, cfg.FontDir, cfg.TrustProxy)
	}
}

func TestLoadFile_EnvironmentWins(t *testing.T) {
	path := writeEnv(t, "PORT=9090\nLLM_MODEL=from-file\n")
	t.Setenv("PORT", "7070")

	cfg := config.LoadFile(path)
	if cfg.Port != "7070" {
		t.Errorf("Port = %q, want env value 7070", cfg.Port)
	}
	if cfg.LLMModel != "from-file" {
		t.Errorf("LLMModel = %q, want from-file", cfg.LLMModel)
	}
}

func TestLoadFile_InvalidValuesFallBack(t *testing.T) {
	path := writeEnv(t, "GENERATE_TIMEOUT=soon\nGENERATE_RATE_LIMIT=-3\n")
	cfg := config.LoadFile(path)

	if cfg.GenerateTimeout != 60*time.Second {
		t.Errorf("GenerateTimeout = %s, want default", cfg.GenerateTimeout)
	}
	if cfg.GenerateRateLimit != 10 {
		t.Errorf("GenerateRateLimit = %d, want default", cfg.GenerateRateLimit)
	}
}

func TestProvider(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AppConfig
		want string
	}{
		{"explicit mock", config.AppConfig{LLMProvider: "mock", GeminiAPIKey: "k"}, "mock"},
		{"auto gemini", config.AppConfig{LLMProvider: "auto", GeminiAPIKey: "k"}, "gemini"},
		{"auto openai", config.AppConfig{LLMProvider: "auto", LLMEndpoint: "http://x", LLMAPIKey: "k"}, "openai"},
		{"auto openai missing key", config.AppConfig{LLMProvider: "auto", LLMEndpoint: "http://x"}, "mock"},
		{"unknown falls to auto", config.AppConfig{LLMProvider: "llama"}, "mock"},
	}
	for _, tc := range tests {
		if got := tc.cfg.Provider(); got != tc.want {
			t.Errorf("%s: Provider() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestStringRedactsSecrets(t *testing.T) {
	cfg := config.AppConfig{GeminiAPIKey: "gemini-secret", LLMAPIKey: "openai-secret"}
	s := cfg.String()
	if strings.Contains(s, "gemini-secret") || strings.Contains(s, "openai-secret") {
		t.Fatalf("secrets leaked: %s", s)
	}
	if !strings.Contains(s, "***") {
		t.Fatalf("expected redaction marker in %s", s)
	}
}
