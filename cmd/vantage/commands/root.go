package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/rpggio/vantage/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and BuildDate are set at build time via ldflags.
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"

	configPath string
	verbose    bool

	cfg       config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "vantage",
	Short: "Vantage is a management dashboard for KPIs, pipeline and follow-up actions",
	Long: `Vantage compares monthly KPI actuals with budget, rolls up the weighted sales
pipeline and tracks the discussion and corrective actions around them. The
dashboard is served to assistants over MCP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			if err := os.Setenv("VANTAGE_CONFIG_PATH", configPath); err != nil {
				return err
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}

		logger, logCloser, err = newLogger(cfg.Log, cfg.Transport.Mode)
		if err != nil {
			return err
		}

		logger.Debug("vantage starting",
			"version", Version,
			"commit", Commit,
			"build_date", BuildDate,
			"command", cmd.Name(),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (overrides VANTAGE_CONFIG_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, seedCmd, overviewCmd, remindCmd)
}
