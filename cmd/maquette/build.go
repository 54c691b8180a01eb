package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atelier-guides/maquette/internal/chemindefer"
)

var buildCmd = &cobra.Command{
	Use:   "build <guide-id>",
	Short: "Build the chemin-de-fer of a guide",
	Long: `Build the chemin-de-fer of a guide.

Expands the guide structure against its clusters, POI selections and
inspirations into an ordered page list, then persists the result. Every
page starts in draft status.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		guideID := args[0]

		h, err := getHome()
		if err != nil {
			return err
		}
		cm, err := getConfig(h)
		if err != nil {
			return err
		}
		st, err := getStore(cmd, cm.Get())
		if err != nil {
			return err
		}

		guide, err := st.GuideByID(ctx, guideID)
		if err != nil {
			return err
		}
		structure, err := st.StructureByGuide(ctx, guideID)
		if err != nil {
			return err
		}
		clusters, err := st.ClustersByGuide(ctx, guideID)
		if err != nil {
			return err
		}
		pois, err := st.PoisByGuide(ctx, guideID)
		if err != nil {
			return err
		}
		inspirations, err := st.InspirationsByGuide(ctx, guideID)
		if err != nil {
			return err
		}

		builder := chemindefer.New(st, logger())
		res, err := builder.Build(ctx, chemindefer.Input{
			GuideID:      guide.ID,
			Structure:    structure,
			Clusters:     clusters,
			Pois:         pois,
			Inspirations: inspirations,
		})
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}

		if err := st.SaveCheminDeFer(ctx, &res.CheminDeFer, res.Pages); err != nil {
			return err
		}

		fmt.Printf("Chemin-de-fer %s built for %s: %d pages\n",
			res.CheminDeFer.ID, guide.Name, len(res.Pages))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
