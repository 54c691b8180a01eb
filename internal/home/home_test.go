package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-maquette")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-maquette" {
			t.Errorf("expected path /tmp/test-maquette, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-maquette")

	t.Run("DefraDataPath", func(t *testing.T) {
		expected := "/tmp/test-maquette/defradb"
		if dir.DefraDataPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.DefraDataPath())
		}
	})

	t.Run("ConfigPath", func(t *testing.T) {
		expected := "/tmp/test-maquette/config.yaml"
		if dir.ConfigPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.ConfigPath())
		}
	})

	t.Run("ExportDocumentPath", func(t *testing.T) {
		expected := "/tmp/test-maquette/exports/g-1/export.json"
		if dir.ExportDocumentPath("g-1") != expected {
			t.Errorf("expected %s, got %s", expected, dir.ExportDocumentPath("g-1"))
		}
	})

	t.Run("ImagesDir", func(t *testing.T) {
		expected := "/tmp/test-maquette/exports/g-1/images"
		if dir.ImagesDir("g-1") != expected {
			t.Errorf("expected %s, got %s", expected, dir.ImagesDir("g-1"))
		}
	})
}

func TestDir_EnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	maquetteDir := filepath.Join(tmpDir, "maquette-test")

	dir, err := New(maquetteDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.Exists() {
		t.Error("directory should not exist before EnsureExists")
	}

	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	if !dir.Exists() {
		t.Error("directory should exist after EnsureExists")
	}

	if _, err := os.Stat(dir.DefraDataPath()); os.IsNotExist(err) {
		t.Error("defradb data directory should exist after EnsureExists")
	}
	if _, err := os.Stat(dir.ExportsDir()); os.IsNotExist(err) {
		t.Error("exports directory should exist after EnsureExists")
	}
}

func TestDir_ConfigExists(t *testing.T) {
	tmpDir := t.TempDir()
	dir, _ := New(tmpDir)

	if dir.ConfigExists() {
		t.Error("config should not exist initially")
	}

	configPath := dir.ConfigPath()
	if err := os.WriteFile(configPath, []byte("test: true\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if !dir.ConfigExists() {
		t.Error("config should exist after creation")
	}
}
