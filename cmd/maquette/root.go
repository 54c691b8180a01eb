package main

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/atelier-guides/maquette/internal/config"
	"github.com/atelier-guides/maquette/internal/defra"
	"github.com/atelier-guides/maquette/internal/home"
	"github.com/atelier-guides/maquette/internal/store"
	"github.com/atelier-guides/maquette/version"
)

var (
	cfgFile string
	homeDir string
)

var rootCmd = &cobra.Command{
	Use:   "maquette",
	Short: "Guidebook layout pipeline: chemin-de-fer generation and renderer export",
	Long: `Maquette turns editorial guide data into print-ready export bundles.

The pipeline includes:
  - Chemin-de-fer generation from a guide structure and its datasets
  - Page content extraction with InDesign layer mapping
  - Field services for computed pages (table of contents)
  - Normalization, truncation and layout hints
  - Renderer-contract validation and image bundling`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.maquette/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "maquette home directory (default: ~/.maquette)",
	)

	rootCmd.AddCommand(versionCmd)
}

var loggerOnce = sync.OnceValue(func() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
})

// logger returns the process-wide structured logger.
func logger() *slog.Logger {
	return loggerOnce()
}

// getHome returns the home directory manager, creating the layout if needed.
func getHome() (*home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, fmt.Errorf("failed to create home directory: %w", err)
	}
	return h, nil
}

// getConfig loads configuration, preferring --config over the home config.
func getConfig(h *home.Dir) (*config.Manager, error) {
	path := cfgFile
	if path == "" && h.ConfigExists() {
		path = h.ConfigPath()
	}
	return config.NewManager(path)
}

// getStore connects to DefraDB and verifies it answers.
func getStore(cmd *cobra.Command, cfg *config.Config) (*store.Store, error) {
	client := defra.NewClient(cfg.DefraURL())
	if err := client.HealthCheck(cmd.Context()); err != nil {
		return nil, fmt.Errorf("defradb not reachable at %s (try 'maquette defra start'): %w", cfg.DefraURL(), err)
	}
	return store.New(client), nil
}
