package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingCredential is returned when the API key variable is absent or empty
var ErrMissingCredential = errors.New("missing API credential")

// EnvFile returns the settings file to merge into the environment
func EnvFile() string {
	if p := strings.TrimSpace(os.Getenv("CHAT_ENV_FILE")); p != "" {
		return p
	}
	return ".env"
}

// LoadEnvFile merges KEY=value lines from path into the process environment.
// Variables that are already set keep their value. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// LoadCredential reads the API key named by envVar. Call LoadEnvFile first;
// envFile is only named in the error.
func LoadCredential(envFile, envVar string) (string, error) {
	key := strings.TrimSpace(os.Getenv(envVar))
	if key == "" {
		return "", fmt.Errorf("%w: %s is not set (add it to your environment or %s)", ErrMissingCredential, envVar, envFile)
	}
	return key, nil
}
