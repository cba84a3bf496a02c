package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

const (
	BackendCohere = "cohere"
	BackendOpenAI = "openai"
)

const (
	DefaultCohereModel = "command-a-03-2025"
	DefaultOpenAIModel = "gpt-4o-mini"

	// Temperature is the sampling temperature sent on every request
	Temperature = 0.7

	// LedgerDisabled as CHAT_LEDGER_PATH turns the turn ledger off
	LedgerDisabled = "off"
	ledgerFile     = "turns.db"
)

// Config holds application configuration
type Config struct {
	Backend string `env:"CHAT_BACKEND" envDefault:"cohere"`
	Model   string `env:"CHAT_MODEL"`
	Debug   bool   `env:"CHAT_DEBUG"`

	CohereBaseURL string        `env:"COHERE_BASE_URL" envDefault:"https://api.cohere.com"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	HTTPTimeout   time.Duration `env:"CHAT_HTTP_TIMEOUT" envDefault:"60s"`

	// Storage
	LogDir      string `env:"CHAT_LOG_DIR" envDefault:"logs"`
	LedgerPath  string `env:"CHAT_LEDGER_PATH"`
	ProfilePath string `env:"CHAT_PROFILE"`

	// Resolved at startup, never read from the environment directly
	APIKey  string
	Profile Profile
}

// Load parses the process environment into a Config. Call LoadEnvFile
// first so values from the settings file are visible.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Normalize trims values, applies per-backend defaults and rejects
// unknown backends. An empty LedgerPath after Normalize means no ledger.
func Normalize(cfg Config) (Config, error) {
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.CohereBaseURL = strings.TrimRight(strings.TrimSpace(cfg.CohereBaseURL), "/")
	cfg.OpenAIBaseURL = strings.TrimSpace(cfg.OpenAIBaseURL)
	cfg.LogDir = strings.TrimSpace(cfg.LogDir)
	cfg.LedgerPath = strings.TrimSpace(cfg.LedgerPath)
	cfg.ProfilePath = strings.TrimSpace(cfg.ProfilePath)

	switch cfg.Backend {
	case BackendCohere, BackendOpenAI:
	default:
		return Config{}, fmt.Errorf("unknown backend: %q (want %s|%s)", cfg.Backend, BackendCohere, BackendOpenAI)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Backend)
	}
	if cfg.LogDir == "" {
		cfg.LogDir = "logs"
	}
	switch {
	case strings.EqualFold(cfg.LedgerPath, LedgerDisabled):
		cfg.LedgerPath = ""
	case cfg.LedgerPath == "":
		cfg.LedgerPath = filepath.Join(cfg.LogDir, ledgerFile)
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 60 * time.Second
	}
	return cfg, nil
}

// DefaultModel returns the model used when none is given on the command line
func DefaultModel(backend string) string {
	if backend == BackendOpenAI {
		return DefaultOpenAIModel
	}
	return DefaultCohereModel
}

// CredentialVar names the environment variable holding the API key for a backend
func CredentialVar(backend string) string {
	if backend == BackendOpenAI {
		return "OPENAI_API_KEY"
	}
	return "COHERE_API_KEY"
}
