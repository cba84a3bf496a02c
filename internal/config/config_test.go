package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCredentialFromFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("CHAT_TEST_KEY_FILE=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("CHAT_TEST_KEY_FILE") })

	if err := LoadEnvFile(envFile); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	key, err := LoadCredential(envFile, "CHAT_TEST_KEY_FILE")
	if err != nil {
		t.Fatalf("LoadCredential: %v", err)
	}
	if key != "from-file" {
		t.Fatalf("expected key from file, got %q", key)
	}
}

func TestLoadCredentialEnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("CHAT_TEST_KEY_ENV=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CHAT_TEST_KEY_ENV", "from-env")

	if err := LoadEnvFile(envFile); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	key, err := LoadCredential(envFile, "CHAT_TEST_KEY_ENV")
	if err != nil {
		t.Fatalf("LoadCredential: %v", err)
	}
	if key != "from-env" {
		t.Fatalf("expected process environment to win, got %q", key)
	}
}

func TestLoadCredentialMissing(t *testing.T) {
	t.Setenv("CHAT_TEST_KEY_MISSING", "   ")

	envFile := filepath.Join(t.TempDir(), "absent.env")
	if err := LoadEnvFile(envFile); err != nil {
		t.Fatalf("missing settings file should be ignored: %v", err)
	}
	_, err := LoadCredential(envFile, "CHAT_TEST_KEY_MISSING")
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"CHAT_BACKEND", "CHAT_MODEL", "CHAT_HTTP_TIMEOUT", "CHAT_LOG_DIR"} {
		unsetenv(t, key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg, err = Normalize(cfg)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Backend != BackendCohere {
		t.Fatalf("expected cohere backend, got %q", cfg.Backend)
	}
	if cfg.Model != DefaultCohereModel {
		t.Fatalf("expected default model, got %q", cfg.Model)
	}
	if cfg.HTTPTimeout != 60*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.HTTPTimeout)
	}
}

func TestNormalizeRejectsUnknownBackend(t *testing.T) {
	if _, err := Normalize(Config{Backend: "grok"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestNormalizeOpenAIDefaults(t *testing.T) {
	cfg, err := Normalize(Config{Backend: " OpenAI "})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if cfg.Model != DefaultOpenAIModel {
		t.Fatalf("expected %s, got %q", DefaultOpenAIModel, cfg.Model)
	}
	if CredentialVar(cfg.Backend) != "OPENAI_API_KEY" {
		t.Fatalf("unexpected credential var: %s", CredentialVar(cfg.Backend))
	}
}

func TestNormalizeLedgerPath(t *testing.T) {
	cases := []struct {
		name   string
		cfg    Config
		ledger string
	}{
		{"follows log dir", Config{Backend: "cohere", LogDir: "/var/log/chat"}, filepath.Join("/var/log/chat", "turns.db")},
		{"default log dir", Config{Backend: "cohere"}, filepath.Join("logs", "turns.db")},
		{"explicit path", Config{Backend: "cohere", LogDir: "/var/log/chat", LedgerPath: " /data/turns.db "}, "/data/turns.db"},
		{"disabled", Config{Backend: "cohere", LogDir: "/var/log/chat", LedgerPath: "OFF"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Normalize(tc.cfg)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if cfg.LedgerPath != tc.ledger {
				t.Fatalf("expected ledger path %q, got %q", tc.ledger, cfg.LedgerPath)
			}
		})
	}
}

func TestLoadProfileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := `system_prompt: Eres un asistente útil.
fallback_models:
  - command-r
  - " "
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}

	p, err := LoadProfile(path, BackendCohere)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.SystemPrompt != "Eres un asistente útil." {
		t.Fatalf("unexpected system prompt: %q", p.SystemPrompt)
	}
	if len(p.FallbackModels) != 1 || p.FallbackModels[0] != "command-r" {
		t.Fatalf("unexpected fallback models: %#v", p.FallbackModels)
	}
}

func TestLoadProfileDefaults(t *testing.T) {
	p, err := LoadProfile("", BackendCohere)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.SystemPrompt == "" {
		t.Fatal("expected default system prompt")
	}
	if len(p.FallbackModels) != 2 || p.FallbackModels[0] != "command-a-03-2025" || p.FallbackModels[1] != "command-a" {
		t.Fatalf("unexpected fallback models: %#v", p.FallbackModels)
	}
}

func unsetenv(t *testing.T, key string) {
	t.Helper()
	prev, ok := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset %s: %v", key, err)
	}
	t.Cleanup(func() {
		if ok {
			_ = os.Setenv(key, prev)
		}
	})
}
