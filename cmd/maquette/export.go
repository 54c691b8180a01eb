package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/atelier-guides/maquette/internal/config"
	"github.com/atelier-guides/maquette/internal/fieldsvc"
	"github.com/atelier-guides/maquette/internal/images"
	"github.com/atelier-guides/maquette/internal/pipeline"
)

var (
	exportLanguage       string
	exportOut            string
	exportOverridesFile  string
	exportSkipImages     bool
	exportKeepNullPictos bool
	exportWatch          bool
)

var exportCmd = &cobra.Command{
	Use:   "export <guide-id>",
	Short: "Export a guide for the renderer",
	Long: `Export a guide for the renderer.

Runs the export pipeline against the guide's chemin-de-fer: extraction,
field services, normalization and contract validation. The resulting
bundle (export.json plus downloaded images) lands under
~/.maquette/exports/<guide-id>/.

With --watch the export re-runs whenever the config file changes, which
is useful while tuning truncation overrides.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		guideID := args[0]

		h, err := getHome()
		if err != nil {
			return err
		}
		cm, err := getConfig(h)
		if err != nil {
			return err
		}

		if err := runExport(cmd, cm.Get(), h.Path(), guideID); err != nil {
			return err
		}
		if !exportWatch {
			return nil
		}

		fmt.Println("Watching config for changes (ctrl-c to stop)...")
		rerun := make(chan *config.Config, 1)
		cm.OnChange(func(cfg *config.Config) {
			select {
			case rerun <- cfg:
			default:
			}
		})
		cm.WatchConfig()

		for {
			select {
			case <-cmd.Context().Done():
				return nil
			case cfg := <-rerun:
				if err := runExport(cmd, cfg, h.Path(), guideID); err != nil {
					fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
				}
			}
		}
	},
}

func runExport(cmd *cobra.Command, cfg *config.Config, homePath, guideID string) error {
	ctx := cmd.Context()

	st, err := getStore(cmd, cfg)
	if err != nil {
		return err
	}

	lengths, err := loadOverrides(exportOverridesFile, cfg.Export.MaxLengths)
	if err != nil {
		return err
	}
	language := exportLanguage
	if language == "" {
		language = cfg.Export.Language
	}

	doc, report, err := pipeline.Run(ctx, pipeline.Deps{
		Store:    st,
		Services: fieldsvc.DefaultRegistry(logger()),
		Logger:   logger(),
	}, guideID, pipeline.Options{
		Language:       language,
		MaxLengths:     lengths,
		Marker:         cfg.Export.TruncationMarker,
		KeepNullPictos: exportKeepNullPictos || cfg.Export.KeepNullPictos,
	})
	if err != nil {
		return err
	}

	outDir := exportOut
	if outDir == "" {
		outDir = filepath.Join(homePath, "exports", guideID)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	docPath := filepath.Join(outDir, "export.json")
	if err := os.WriteFile(docPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	fmt.Printf("Exported %d/%d pages to %s\n",
		doc.Meta.Stats.ExportedPages, doc.Meta.Stats.TotalPages, docPath)
	for _, se := range report.ServiceErrors {
		fmt.Fprintf(os.Stderr, "warning: field service %s failed on page %s field %s: %v\n",
			se.ServiceID, se.PageID, se.FieldName, se.Err)
	}

	if exportSkipImages {
		return nil
	}

	resolver := images.NewResolver(images.Config{
		OutputDir:   outDir,
		Concurrency: cfg.Export.ImageConcurrency,
		Logger:      logger(),
	})
	imgReport := resolver.Resolve(ctx, doc)
	fmt.Printf("Images: %d downloaded, %d cached, %d failed\n",
		imgReport.Downloaded, imgReport.Skipped, imgReport.Failed)
	return nil
}

// loadOverrides merges config max_lengths with an optional overrides file.
// File entries win.
func loadOverrides(path string, base map[string]int) (map[string]int, error) {
	merged := make(map[string]int, len(base))
	for k, v := range base {
		merged[k] = v
	}
	if path == "" {
		return merged, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overrides: %w", err)
	}
	var fromFile map[string]int
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("failed to parse overrides: %w", err)
	}
	for k, v := range fromFile {
		merged[k] = v
	}
	return merged, nil
}

func init() {
	exportCmd.Flags().StringVar(&exportLanguage, "language", "", "Override the guide language in export metadata")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory (default: ~/.maquette/exports/<guide-id>)")
	exportCmd.Flags().StringVar(&exportOverridesFile, "overrides", "", "YAML file with per-field max length overrides")
	exportCmd.Flags().BoolVar(&exportSkipImages, "skip-images", false, "Skip image downloading")
	exportCmd.Flags().BoolVar(&exportKeepNullPictos, "keep-null-pictos", false, "Keep inactive pictos in the export")
	exportCmd.Flags().BoolVar(&exportWatch, "watch", false, "Re-run the export when the config changes")

	rootCmd.AddCommand(exportCmd)
}
