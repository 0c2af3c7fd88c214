package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// ConfigEnvVar overrides the config file location.
const ConfigEnvVar = "BARS_CONFIG"

// Config holds application configuration.
type Config struct {
	Backend           string `json:"backend"`
	StorePath         string `json:"storePath"`
	StatePath         string `json:"statePath"`
	DebounceMs        int    `json:"debounceMs"`
	IdlePollMs        int    `json:"idlePollMs"`
	IdleThresholdSec  int    `json:"idleThresholdSec"`
	WorkspaceTracking *bool  `json:"workspaceTracking"`
	ToolbarName       string `json:"toolbarName"`
	DirectoryName     string `json:"directoryName"`
	DefaultBarName    string `json:"defaultBarName"`
	LogLevel          string `json:"logLevel"`
	LogFile           string `json:"logFile"`

	CheckExcludeDomains []string `json:"checkExcludeDomains"`
}

// DefaultConfig returns the default configuration rooted at dataDir.
func DefaultConfig(dataDir string) Config {
	tracking := true
	return Config{
		Backend:           BackendSQLite,
		StorePath:         filepath.Join(dataDir, "bars.db"),
		StatePath:         filepath.Join(dataDir, "state.json"),
		DebounceMs:        100,
		IdlePollMs:        1000,
		IdleThresholdSec:  60,
		WorkspaceTracking: &tracking,
		ToolbarName:       "Bookmarks Bar",
		DirectoryName:     "Bookmark Bars",
		DefaultBarName:    "Default",
		LogLevel:          "info",

		CheckExcludeDomains: []string{"github.com", "gitlab.com"},
	}
}

// Debounce returns the shortcut debounce delay.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// IdlePoll returns the idle gate poll interval.
func (c *Config) IdlePoll() time.Duration {
	return time.Duration(c.IdlePollMs) * time.Millisecond
}

// IdleThreshold returns the inactivity after which the monitor reports idle.
func (c *Config) IdleThreshold() time.Duration {
	return time.Duration(c.IdleThresholdSec) * time.Second
}

// TracksWorkspaces reports whether tab activations may switch bars.
func (c *Config) TracksWorkspaces() bool {
	return c.WorkspaceTracking == nil || *c.WorkspaceTracking
}

// LoadConfig reads config from the file at path.
// Creates the file with defaults if it doesn't exist. Comments and trailing
// commas are accepted.
func LoadConfig(path string) (*Config, error) {
	defaults := DefaultConfig(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := defaults
			// Non-fatal: return defaults even if save fails
			_ = SaveConfig(path, &config)
			return &config, nil
		}
		return nil, err
	}

	standard, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	var config Config
	if err := json.Unmarshal(standard, &config); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	applyDefaults(&config, defaults)
	return &config, nil
}

// applyDefaults fills zero-valued fields from defaults.
func applyDefaults(config *Config, defaults Config) {
	if config.Backend == "" {
		config.Backend = defaults.Backend
	}
	if config.StorePath == "" {
		if config.Backend == BackendJSON {
			config.StorePath = filepath.Join(filepath.Dir(defaults.StorePath), "bars.json")
		} else {
			config.StorePath = defaults.StorePath
		}
	}
	if config.StatePath == "" {
		config.StatePath = defaults.StatePath
	}
	if config.DebounceMs <= 0 {
		config.DebounceMs = defaults.DebounceMs
	}
	if config.IdlePollMs <= 0 {
		config.IdlePollMs = defaults.IdlePollMs
	}
	if config.IdleThresholdSec <= 0 {
		config.IdleThresholdSec = defaults.IdleThresholdSec
	}
	if config.WorkspaceTracking == nil {
		config.WorkspaceTracking = defaults.WorkspaceTracking
	}
	if config.ToolbarName == "" {
		config.ToolbarName = defaults.ToolbarName
	}
	if config.DirectoryName == "" {
		config.DirectoryName = defaults.DirectoryName
	}
	if config.DefaultBarName == "" {
		config.DefaultBarName = defaults.DefaultBarName
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.CheckExcludeDomains == nil {
		config.CheckExcludeDomains = defaults.CheckExcludeDomains
	}
}

// SaveConfig writes config to the JSON file.
// Creates the directory if it doesn't exist.
func SaveConfig(path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return atomic.WriteFile(path, bytes.NewReader(data))
}

// DefaultConfigFilePath returns $BARS_CONFIG or ~/.config/bars/config.json.
func DefaultConfigFilePath() (string, error) {
	if path := os.Getenv(ConfigEnvVar); path != "" {
		return path, nil
	}

	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}
