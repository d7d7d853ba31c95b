package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lifequran/lifequran/internal/daemon"
	"github.com/lifequran/lifequran/internal/domain"
)

func init() {
	rootCmd.AddCommand(readCmd, listenCmd, minutesCmd)
}

var readCmd = &cobra.Command{
	Use:   "read PAGES",
	Short: "Record pages read today",
	Args:  cobra.ExactArgs(1),
	RunE: activityRunner(func(ctx context.Context, d *daemon.Daemon, n int) (domain.ActivityReport, error) {
		return d.Engine.ProcessReadingActivity(ctx, n)
	}),
}

var listenCmd = &cobra.Command{
	Use:   "listen SURAH",
	Short: "Record a fully listened murottal surah (1-114)",
	Args:  cobra.ExactArgs(1),
	RunE: activityRunner(func(ctx context.Context, d *daemon.Daemon, n int) (domain.ActivityReport, error) {
		return d.Engine.ProcessAudioCompletion(ctx, n)
	}),
}

var minutesCmd = &cobra.Command{
	Use:   "minutes N",
	Short: "Record minutes spent reading",
	Args:  cobra.ExactArgs(1),
	RunE: activityRunner(func(ctx context.Context, d *daemon.Daemon, n int) (domain.ActivityReport, error) {
		return d.Engine.RecordReadingMinutes(ctx, n)
	}),
}

type activityFunc func(ctx context.Context, d *daemon.Daemon, n int) (domain.ActivityReport, error)

// activityRunner parses the single integer argument and prints the report.
func activityRunner(fn activityFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%q is not a number", args[0])
		}

		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		rep, err := fn(cmd.Context(), d, n)
		if err != nil {
			return err
		}
		return printReport(cmd.OutOrStdout(), rep)
	}
}
