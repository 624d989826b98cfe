package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var remindWithin time.Duration

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Notify assignees of open actions due soon",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		sent, err := a.actions.RemindDue(cmd.Context(), remindWithin)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sent %d reminders\n", len(sent))
		return nil
	},
}

func init() {
	remindCmd.Flags().DurationVar(&remindWithin, "within", 72*time.Hour, "remind for actions due within this window")
}
