package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var seedFixtures string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a YAML fixture into the database",
	Long: `Load the KPI dataset, pipeline snapshot and user directory from a YAML
fixture. The stored dataset and pipeline are replaced; users are upserted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := seedFixtures
		if path == "" {
			path = cfg.Fixtures.Path
		}

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.seed(cmd.Context(), path)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %d months, %d KPIs, %d pipeline items, %d users\n",
			path, res.Months, res.Definitions, res.PipelineItems, res.Users)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFixtures, "fixtures", "f", "", "fixture file (defaults to fixtures.path)")
}
