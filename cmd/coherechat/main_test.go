package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

// setupEnv points every setting at t's temp dir and clears the rest
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	envFile := filepath.Join(dir, "empty.env")
	if err := os.WriteFile(envFile, nil, 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CHAT_ENV_FILE", envFile)
	t.Setenv("CHAT_BACKEND", "cohere")
	t.Setenv("CHAT_LOG_DIR", filepath.Join(dir, "logs"))
	t.Setenv("CHAT_HTTP_TIMEOUT", "5s")
	for _, key := range []string{"CHAT_MODEL", "CHAT_DEBUG", "CHAT_LEDGER_PATH", "CHAT_PROFILE", "COHERE_BASE_URL", "OPENAI_BASE_URL"} {
		unsetenv(t, key)
	}
	return dir
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

func TestRunMissingCredentialExitsOne(t *testing.T) {
	setupEnv(t)
	t.Setenv("COHERE_API_KEY", "")

	var stdout, stderr bytes.Buffer
	code := run(nil, strings.NewReader("exit\ny\n"), &stdout, &stderr)

	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "COHERE_API_KEY") {
		t.Fatalf("stderr should name the missing variable: %q", stderr.String())
	}
	if stdout.Len() != 0 {
		t.Fatalf("chat should not start without a credential:\n%s", stdout.String())
	}
}

func TestRunUnknownBackendExitsOne(t *testing.T) {
	setupEnv(t)
	t.Setenv("COHERE_API_KEY", "test-key")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-backend", "grok"}, strings.NewReader(""), &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "unknown backend") {
		t.Fatalf("unexpected stderr: %q", stderr.String())
	}
}

func TestRunBadFlagExitsOne(t *testing.T) {
	setupEnv(t)
	t.Setenv("COHERE_API_KEY", "test-key")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-no-such-flag"}, strings.NewReader(""), &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunConfirmedExitExitsZero(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("COHERE_API_KEY", "test-key")

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/v2/chat" || r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"r1","finish_reason":"COMPLETE","message":{"role":"assistant","content":[{"type":"text","text":"Hi there"}]}}`))
	}))
	defer srv.Close()
	t.Setenv("COHERE_BASE_URL", srv.URL)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-model", "command-a"}, strings.NewReader("Hello\nexit\ny\n"), &stdout, &stderr)

	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (stderr: %s)", code, stderr.String())
	}
	if requests.Load() != 1 {
		t.Fatalf("expected 1 request, got %d", requests.Load())
	}
	if !strings.Contains(stdout.String(), "Hi there") || !strings.Contains(stdout.String(), "Goodbye") {
		t.Fatalf("unexpected output:\n%s", stdout.String())
	}
	for _, name := range []string{"chat.log", "turns.db"} {
		if _, err := os.Stat(filepath.Join(dir, "logs", name)); err != nil {
			t.Fatalf("expected %s in the log dir: %v", name, err)
		}
	}
}
