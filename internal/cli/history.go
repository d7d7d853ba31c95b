package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lifequran/lifequran/internal/daemon"
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum rows to show (0 = all)")
	historyCmd.Flags().BoolVar(&historyStreak, "streak", false, "Show the streak log instead of the XP ledger")
	rootCmd.AddCommand(historyCmd)
}

var (
	historyLimit  int
	historyStreak bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the XP ledger (or the streak log with --streak)",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		out := cmd.OutOrStdout()
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

		if historyStreak {
			hist, err := d.Engine.StreakHistory(cmd.Context(), historyLimit)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(out, hist)
			}
			fmt.Fprintln(w, "DATE\tSTREAK\tFREEZE")
			for _, h := range hist {
				freeze := ""
				if h.FreezeUsed {
					freeze = "❄️"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", h.Date, h.StreakCount, freeze)
			}
			return w.Flush()
		}

		txs, err := d.Engine.XPHistory(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, txs)
		}
		if len(txs) == 0 {
			fmt.Fprintln(out, "Belum ada XP. Mulai dengan 'lifequran read 1'.")
			return nil
		}
		fmt.Fprintln(w, "TIME\tXP\tSOURCE\tDESCRIPTION")
		for _, tx := range txs {
			fmt.Fprintf(w, "%s\t+%d\t%s\t%s\n",
				tx.CreatedAt.Format("2006-01-02 15:04"), tx.Amount, tx.Source, tx.Description)
		}
		return w.Flush()
	},
}
