package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const defaultSystemPrompt = "You are a helpful assistant. Answer clearly and directly."

// Profile customizes the assistant persona and the models suggested when
// the configured one is not found.
type Profile struct {
	SystemPrompt   string   `yaml:"system_prompt"`
	FallbackModels []string `yaml:"fallback_models"`
}

// DefaultProfile returns the built-in profile for a backend
func DefaultProfile(backend string) Profile {
	p := Profile{SystemPrompt: defaultSystemPrompt}
	switch backend {
	case BackendOpenAI:
		p.FallbackModels = []string{"gpt-4o-mini", "gpt-4o"}
	default:
		p.FallbackModels = []string{"command-a-03-2025", "command-a"}
	}
	return p
}

// LoadProfile reads a YAML profile and fills unset fields from the
// backend defaults. An empty path yields the defaults.
func LoadProfile(path, backend string) (Profile, error) {
	p := DefaultProfile(backend)
	if path == "" {
		return p, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}

	var fromFile Profile
	if err := yaml.Unmarshal(content, &fromFile); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}

	if s := strings.TrimSpace(fromFile.SystemPrompt); s != "" {
		p.SystemPrompt = s
	}
	models := make([]string, 0, len(fromFile.FallbackModels))
	for _, m := range fromFile.FallbackModels {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	if len(models) > 0 {
		p.FallbackModels = models
	}
	return p, nil
}
