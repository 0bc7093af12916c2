package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

// Settings holds the host application's client configuration.
type Settings struct {
	ServerURL        string
	APIToken         string
	TickInterval     time.Duration
	AutosaveInterval time.Duration
	SnapshotTTL      time.Duration
}

type yamlSettings struct {
	ServerURL          string `yaml:"server_url"`
	APIToken           string `yaml:"api_token"`
	TickSeconds        int    `yaml:"tick_seconds"`
	AutosaveSeconds    int    `yaml:"autosave_seconds"`
	SnapshotTTLSeconds int    `yaml:"snapshot_ttl_seconds"`
}

// Default returns the settings used when no file exists yet.
func Default() Settings {
	return Settings{
		TickInterval:     time.Second,
		AutosaveInterval: 30 * time.Second,
		SnapshotTTL:      30 * time.Second,
	}
}

// DefaultPath resolves the per-user settings file location for appName.
func DefaultPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// Load reads settings from YAML.
// If the file does not exist, default settings are returned.
func Load(path string) (Settings, error) {
	loaded := Default()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return loaded, nil
		}
		return loaded, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return loaded, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&loaded, fileData)
	return loaded, nil
}

// Save writes settings to YAML, creating the parent directory if needed.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		ServerURL:          s.ServerURL,
		APIToken:           s.APIToken,
		TickSeconds:        int(s.TickInterval / time.Second),
		AutosaveSeconds:    int(s.AutosaveInterval / time.Second),
		SnapshotTTLSeconds: int(s.SnapshotTTL / time.Second),
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	return nil
}

func applyYamlSettings(s *Settings, fileData yamlSettings) {
	s.ServerURL = fileData.ServerURL
	s.APIToken = fileData.APIToken
	if fileData.TickSeconds > 0 {
		s.TickInterval = time.Duration(fileData.TickSeconds) * time.Second
	}
	if fileData.AutosaveSeconds > 0 {
		s.AutosaveInterval = time.Duration(fileData.AutosaveSeconds) * time.Second
	}
	if fileData.SnapshotTTLSeconds > 0 {
		s.SnapshotTTL = time.Duration(fileData.SnapshotTTLSeconds) * time.Second
	}
}
