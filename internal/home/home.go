// Package home resolves the maquette home directory layout.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the maquette home directory.
	DefaultDirName = ".maquette"

	// DefraDataDirName is the subdirectory bind-mounted into the DefraDB
	// container.
	DefraDataDirName = "defradb"

	// ExportsDirName is the subdirectory holding export bundles.
	ExportsDirName = "exports"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the maquette home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path. If path is empty, uses the
// default (~/.maquette).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// DefraDataPath returns the DefraDB data directory.
func (d *Dir) DefraDataPath() string {
	return filepath.Join(d.path, DefraDataDirName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// ExportsDir returns the root directory for export bundles.
func (d *Dir) ExportsDir() string {
	return filepath.Join(d.path, ExportsDirName)
}

// GuideExportDir returns the export bundle directory for a guide.
func (d *Dir) GuideExportDir(guideID string) string {
	return filepath.Join(d.ExportsDir(), guideID)
}

// ExportDocumentPath returns the path of a guide's export document.
func (d *Dir) ExportDocumentPath(guideID string) string {
	return filepath.Join(d.GuideExportDir(guideID), "export.json")
}

// ImagesDir returns the local image root of a guide's export bundle.
func (d *Dir) ImagesDir(guideID string) string {
	return filepath.Join(d.GuideExportDir(guideID), "images")
}

// EnsureExists creates the home directory and subdirectories.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.DefraDataPath(), d.ExportsDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// EnsureGuideExportDir creates the export bundle directory for a guide.
func (d *Dir) EnsureGuideExportDir(guideID string) error {
	return os.MkdirAll(d.GuideExportDir(guideID), 0o755)
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
