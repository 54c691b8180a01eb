package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atelier-guides/maquette/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the maquette home directory",
	Long: `Initialize the maquette home directory.

Creates ~/.maquette with its subdirectories and writes a default
config.yaml. Existing config files are left alone unless --force is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := getHome()
		if err != nil {
			return err
		}

		if h.ConfigExists() && !initForce {
			fmt.Printf("Config already exists at %s (use --force to overwrite)\n", h.ConfigPath())
			return nil
		}

		if err := config.WriteDefault(h.ConfigPath()); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}

		fmt.Printf("Initialized %s\n", h.Path())
		fmt.Printf("Config written to %s\n", h.ConfigPath())
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
