package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds application configuration.
type Config struct {
	// Owner is the opaque id of the local user; every store operation is
	// scoped by it. Empty means unauthenticated.
	Owner string `json:"owner"`

	// DatabasePath overrides the default SQLite location when set.
	DatabasePath string `json:"databasePath,omitempty"`

	// ImportChunkSize bounds concurrent bookmark creation during import.
	ImportChunkSize int `json:"importChunkSize"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ImportChunkSize: 20,
	}
}

// LoadConfig reads config from the JSON file.
// Creates the file with defaults if it doesn't exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			if saveErr := SaveConfig(path, &config); saveErr != nil {
				// Non-fatal: return defaults even if save fails
				return &config, nil
			}
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Apply defaults for missing fields
	if config.ImportChunkSize <= 0 {
		config.ImportChunkSize = DefaultConfig().ImportChunkSize
	}

	return &config, nil
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfigFilePath returns the default config path: ~/.config/marks/config.json
func DefaultConfigFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "marks", "config.json"), nil
}
