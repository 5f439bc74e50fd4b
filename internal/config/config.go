// Package config resolves application paths and loads the optional
// config.yaml with playback tuning.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds tunable playback parameters, loaded from config.yaml
// when present.
type Settings struct {
	TickIntervalMs        int     `yaml:"tick_interval_ms"`
	ToleranceMs           int64   `yaml:"tolerance_ms"`
	DefaultCharsPerSecond float64 `yaml:"default_chars_per_second"`
	CursorEventsPerSecond int     `yaml:"cursor_events_per_second"`
	ServerPort            int     `yaml:"server_port"`
}

// DefaultSettings returns the tuning used when no config.yaml exists.
func DefaultSettings() Settings {
	return Settings{
		TickIntervalMs:        16,
		ToleranceMs:           16,
		DefaultCharsPerSecond: 40,
		CursorEventsPerSecond: 30,
		ServerPort:            0, // pick a free port
	}
}

// Config holds all application configuration paths plus settings.
type Config struct {
	HomeDir      string
	GhostcodeDir string
	LibraryDir   string
	DatabasePath string
	LogDir       string
	Settings     Settings
}

// Load creates a Config instance with resolved paths, ensuring the
// application directories exist, and merges config.yaml over the default
// settings.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	ghostcodeDir := filepath.Join(home, ".ghostcode")
	libraryDir := filepath.Join(ghostcodeDir, "library")
	logDir := filepath.Join(ghostcodeDir, "logs")

	for _, dir := range []string{ghostcodeDir, libraryDir, logDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	settings, err := loadSettings(filepath.Join(ghostcodeDir, "config.yaml"))
	if err != nil {
		return nil, err
	}

	return &Config{
		HomeDir:      home,
		GhostcodeDir: ghostcodeDir,
		LibraryDir:   libraryDir,
		DatabasePath: filepath.Join(ghostcodeDir, "library.db"),
		LogDir:       logDir,
		Settings:     settings,
	}, nil
}

// loadSettings reads path when it exists; missing file means defaults.
func loadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse %s: %w", path, err)
	}
	if s.TickIntervalMs <= 0 {
		s.TickIntervalMs = DefaultSettings().TickIntervalMs
	}
	if s.ToleranceMs <= 0 {
		s.ToleranceMs = DefaultSettings().ToleranceMs
	}
	return s, nil
}
