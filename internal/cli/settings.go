package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lifequran/lifequran/internal/daemon"
)

func init() {
	targetCmd.Flags().BoolVar(&targetSave, "save", false, "Also write the target to config.toml")
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Skip the confirmation prompt")
	notificationsCmd.Flags().Int64Var(&notifMark, "mark", 0, "Mark the notification with this ID as shown")
	notificationsCmd.Flags().BoolVar(&notifMarkAll, "mark-all", false, "Mark every pending notification as shown")
	rootCmd.AddCommand(targetCmd, resetCmd, notificationsCmd)
}

var (
	targetSave   bool
	resetYes     bool
	notifMark    int64
	notifMarkAll bool
)

var targetCmd = &cobra.Command{
	Use:   "target PAGES",
	Short: "Set the daily reading target (1-604 pages)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pages, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%q is not a number", args[0])
		}
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Engine.SetDailyTarget(cmd.Context(), pages); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Target harian: %d halaman\n", pages)
		if targetSave {
			if err := daemon.SaveDailyTarget(pages); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Disimpan ke %s\n", daemon.ConfigPath())
		}
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase all progress (XP, streak, badges, challenges)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			fmt.Fprint(cmd.OutOrStdout(), "Semua progres akan dihapus. Lanjutkan? [y/N] ")
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Fprintln(cmd.OutOrStdout(), "Dibatalkan.")
				return nil
			}
		}

		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Engine.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Progres direset.")
		return nil
	},
}

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notif"},
	Short:   "List pending notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		if notifMark > 0 {
			if err := d.Engine.MarkNotificationShown(ctx, notifMark); err != nil {
				return err
			}
			fmt.Fprintf(out, "Notifikasi %d ditandai.\n", notifMark)
			return nil
		}

		pending, err := d.Engine.PendingNotifications(ctx, 0)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, pending)
		}
		if len(pending) == 0 {
			fmt.Fprintln(out, "Tidak ada notifikasi baru.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTIME\tTITLE\tMESSAGE")
		for _, n := range pending {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", n.ID, n.CreatedAt.Format("2006-01-02 15:04"), n.Title, n.Body)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if notifMarkAll {
			for _, n := range pending {
				if err := d.Engine.MarkNotificationShown(ctx, n.ID); err != nil {
					return err
				}
			}
		}
		return nil
	},
}
