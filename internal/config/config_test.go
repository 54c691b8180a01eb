package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Defra.ContainerName != "maquette-defra" {
		t.Errorf("unexpected container name: %s", cfg.Defra.ContainerName)
	}
	if cfg.Defra.Port != "9181" {
		t.Errorf("unexpected port: %s", cfg.Defra.Port)
	}
	if cfg.Export.TruncationMarker != "…" {
		t.Errorf("unexpected marker: %q", cfg.Export.TruncationMarker)
	}
	if cfg.Export.ImageConcurrency != 4 {
		t.Errorf("unexpected image concurrency: %d", cfg.Export.ImageConcurrency)
	}
}

func TestDefraURL(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.DefraURL(); got != "http://localhost:9181" {
		t.Errorf("unexpected URL: %s", got)
	}

	cfg.Defra.URL = "http://defra.internal:9181"
	if got := cfg.DefraURL(); got != "http://defra.internal:9181" {
		t.Errorf("explicit URL must win: %s", got)
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "defra:") || !strings.Contains(content, "export:") {
		t.Errorf("config missing sections:\n%s", content)
	}
	if !strings.Contains(content, "maquette-defra") {
		t.Errorf("config missing defaults:\n%s", content)
	}
}

func TestManagerLoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "defra:\n  port: \"9999\"\nexport:\n  language: en\n  truncation_marker: \"...\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cm, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	cfg := cm.Get()
	if cfg.Defra.Port != "9999" {
		t.Errorf("file value not loaded: %s", cfg.Defra.Port)
	}
	if cfg.Export.Language != "en" || cfg.Export.TruncationMarker != "..." {
		t.Errorf("export section not loaded: %+v", cfg.Export)
	}
	if cfg.Defra.ContainerName != "maquette-defra" {
		t.Errorf("defaults not merged: %s", cfg.Defra.ContainerName)
	}
}
