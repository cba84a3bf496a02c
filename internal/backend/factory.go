package backend

import (
	"fmt"
	"log/slog"
	"net/http"

	"CohereChat/internal/config"
)

// New creates the client for cfg.Backend
func New(cfg config.Config, logger *slog.Logger) (Client, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	switch cfg.Backend {
	case config.BackendCohere:
		return NewCohere(cfg.APIKey, cfg.CohereBaseURL, httpClient, logger), nil
	case config.BackendOpenAI:
		return NewOpenAI(cfg.APIKey, cfg.OpenAIBaseURL, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}
}
