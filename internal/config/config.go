// Package config handles reading and writing .speakclear/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .speakclear/config.yaml.
type Config struct {
	Version  int           `yaml:"version"`
	Server   ServerConfig  `yaml:"server"`
	Language string        `yaml:"language"` // "en" | "ar" | "" (ask every session)
	Trials   int           `yaml:"trials"`
	Capture  CaptureConfig `yaml:"capture"`
	History  HistoryConfig `yaml:"history"`
}

// ServerConfig points the client at the analysis service.
type ServerConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// CaptureConfig controls the microphone capture format.
type CaptureConfig struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
	FrameMs    int `yaml:"frame_ms"` // samples per device read = sample_rate * frame_ms / 1000
}

// HistoryConfig controls the local results database.
type HistoryConfig struct {
	Path string `yaml:"path"` // relative paths resolve under .speakclear/
}

const configDir = ".speakclear"
const configFile = "config.yaml"

// Dir returns the .speakclear directory inside dir.
func Dir(dir string) string {
	return filepath.Join(dir, configDir)
}

// ReadConfig reads .speakclear/config.yaml from the given directory.
// dir is the parent (not .speakclear/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// WriteConfig writes cfg to .speakclear/config.yaml in the given directory.
// Creates the .speakclear/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// LoadOrDefault reads the config if present and falls back to defaults when
// the file does not exist yet. A present-but-malformed file is an error.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := ReadConfig(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults fills zero-valued fields so hand-edited partial configs keep
// working.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = def.Server.BaseURL
	}
	if cfg.Server.TimeoutSeconds == 0 {
		cfg.Server.TimeoutSeconds = def.Server.TimeoutSeconds
	}
	if cfg.Trials == 0 {
		cfg.Trials = def.Trials
	}
	if cfg.Capture.SampleRate == 0 {
		cfg.Capture.SampleRate = def.Capture.SampleRate
	}
	if cfg.Capture.Channels == 0 {
		cfg.Capture.Channels = def.Capture.Channels
	}
	if cfg.Capture.FrameMs == 0 {
		cfg.Capture.FrameMs = def.Capture.FrameMs
	}
	if cfg.History.Path == "" {
		cfg.History.Path = def.History.Path
	}
}

// FrameSize returns the samples-per-read implied by the capture settings.
func (c CaptureConfig) FrameSize() int {
	return c.SampleRate * c.FrameMs / 1000
}

// HistoryPath resolves the history database path under dir.
func (c *Config) HistoryPath(dir string) string {
	if filepath.IsAbs(c.History.Path) {
		return c.History.Path
	}
	return filepath.Join(dir, configDir, c.History.Path)
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			BaseURL:        "http://localhost:5000",
			TimeoutSeconds: 120,
		},
		Trials: 3,
		Capture: CaptureConfig{
			SampleRate: 16000,
			Channels:   1,
			FrameMs:    64,
		},
		History: HistoryConfig{
			Path: "history.db",
		},
	}
}
