package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Server.BaseURL = "http://analysis.example.com:8000"
	cfg.Language = "ar"

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.Server.BaseURL != "http://analysis.example.com:8000" {
		t.Errorf("Server.BaseURL: got %q, want %q", loaded.Server.BaseURL, "http://analysis.example.com:8000")
	}
	if loaded.Language != "ar" {
		t.Errorf("Language: got %q, want %q", loaded.Language, "ar")
	}
	if loaded.Trials != 3 {
		t.Errorf("Trials: got %d, want 3", loaded.Trials)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Trials != 3 {
		t.Errorf("default Trials: got %d, want 3", cfg.Trials)
	}
	// The analysis service listens on 5000 out of the box.
	if cfg.Server.BaseURL != "http://localhost:5000" {
		t.Errorf("default Server.BaseURL: got %q, want %q", cfg.Server.BaseURL, "http://localhost:5000")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := LoadOrDefault(tmpDir)
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}
	if cfg.Server.BaseURL != DefaultConfig().Server.BaseURL {
		t.Errorf("missing config should yield defaults, got base URL %q", cfg.Server.BaseURL)
	}
}

func TestLoadOrDefaultFillsPartialConfig(t *testing.T) {
	// Simulate a hand-edited config missing most fields
	tmpDir := t.TempDir()
	partial := `version: 1
server:
  base_url: "http://10.0.0.5:9000"
`
	configPath := filepath.Join(tmpDir, ".speakclear")
	if err := os.MkdirAll(configPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte(partial), 0644); err != nil {
		t.Fatalf("failed to write partial config: %v", err)
	}

	cfg, err := LoadOrDefault(tmpDir)
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}

	if cfg.Server.BaseURL != "http://10.0.0.5:9000" {
		t.Errorf("Server.BaseURL: got %q, want the hand-edited value", cfg.Server.BaseURL)
	}
	if cfg.Trials != 3 {
		t.Errorf("Trials should fall back to default, got %d", cfg.Trials)
	}
	if cfg.Capture.SampleRate != 16000 {
		t.Errorf("Capture.SampleRate should fall back to default, got %d", cfg.Capture.SampleRate)
	}
}

func TestLoadOrDefaultMalformedFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".speakclear")
	if err := os.MkdirAll(configPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte("{not yaml"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadOrDefault(tmpDir); err == nil {
		t.Error("malformed config should be an error, not silently replaced by defaults")
	}
}

func TestCaptureFrameSize(t *testing.T) {
	c := CaptureConfig{SampleRate: 16000, Channels: 1, FrameMs: 64}
	if got := c.FrameSize(); got != 1024 {
		t.Errorf("FrameSize: got %d, want 1024", got)
	}
}
