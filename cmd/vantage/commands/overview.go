package commands

import (
	"encoding/json"

	"github.com/rpggio/vantage/internal/dashboard"
	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/spf13/cobra"
)

var (
	overviewMonth    string
	overviewCategory string
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Print the KPI dashboard as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.seedIfEmpty(cmd.Context(), cfg.Fixtures.Path); err != nil {
			return err
		}

		ov, err := a.dashboard.Overview(cmd.Context(), dashboard.OverviewRequest{
			Month:    kpi.MonthKey(overviewMonth),
			Category: overviewCategory,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(ov)
	},
}

func init() {
	overviewCmd.Flags().StringVarP(&overviewMonth, "month", "m", "", "month key, e.g. 2024-09 (defaults to the current month)")
	overviewCmd.Flags().StringVar(&overviewCategory, "category", "", "only show KPIs in this category")
}
