package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lifequran/lifequran/internal/app/gamification"
	"github.com/lifequran/lifequran/internal/daemon"
	"github.com/lifequran/lifequran/internal/domain"
)

func init() {
	rootCmd.AddCommand(statusCmd, levelCmd, streakCmd, badgesCmd, challengeCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show level, streak, today's challenge and recent badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		sum, err := d.Engine.Summary(cmd.Context())
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(w, sum)
		}

		printLevel(w, sum.Level)
		printStreak(w, sum.Streak)
		if sum.DailyChallenge != nil {
			printChallenge(w, *sum.DailyChallenge)
		}
		fmt.Fprintf(w, "📖 %d halaman, %d juz, %d menit (target %d halaman/hari)\n",
			sum.Stats.TotalPagesRead, sum.Stats.JuzCompleted(), sum.Stats.TotalMinutes, sum.Stats.DailyTargetPages)
		if len(sum.RecentBadges) > 0 {
			fmt.Fprint(w, "🏅 Badge terbaru:")
			for _, b := range sum.RecentBadges {
				fmt.Fprintf(w, " %s %s", b.Icon, b.Name)
			}
			fmt.Fprintln(w)
		}
		return nil
	},
}

var levelCmd = &cobra.Command{
	Use:   "level",
	Short: "Show the current level and progress to the next",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		info, err := d.Engine.LevelInfo(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), info)
		}
		printLevel(cmd.OutOrStdout(), info)
		return nil
	},
}

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show the reading streak and freeze state",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		status, err := d.Engine.StreakStatus(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), status)
		}
		printStreak(cmd.OutOrStdout(), status)
		return nil
	},
}

var badgesCmd = &cobra.Command{
	Use:   "badges",
	Short: "List all badges and which are unlocked",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		badges, err := d.Engine.Badges(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), badges)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\tBADGE\tREQUIREMENT\tXP\tUNLOCKED")
		for _, b := range badges {
			unlocked := "-"
			if b.Unlocked {
				unlocked = b.UnlockedAt.Format("2006-01-02 15:04")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", b.Icon, b.Name, b.Description, b.XPReward, unlocked)
		}
		return w.Flush()
	},
}

var challengeCmd = &cobra.Command{
	Use:   "challenge",
	Short: "Show today's challenge",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		c, err := d.Engine.TodayChallenge(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), c)
		}
		printChallenge(cmd.OutOrStdout(), c)
		return nil
	},
}

// ─── Renderers ──────────────────────────────────────────────────────────────

func printLevel(w io.Writer, info domain.LevelInfo) {
	if info.MaxLevel {
		fmt.Fprintf(w, "%s Level %d %s  %s XP  (level tertinggi)\n",
			info.Icon, info.Level, info.Name, gamification.FormatXP(info.CurrentXP))
		return
	}
	fmt.Fprintf(w, "%s Level %d %s  %s / %s XP  %s\n",
		info.Icon, info.Level, info.Name,
		gamification.FormatXP(info.CurrentXP), gamification.FormatXP(info.NextLevelXP),
		renderBar(info.Progress))
}

func printStreak(w io.Writer, s domain.StreakStatus) {
	freeze := "tersedia"
	if !s.FreezeAvailable {
		freeze = "terpakai " + s.FreezeUsedDate
	}
	fmt.Fprintf(w, "🔥 %d hari (terpanjang %d, milestone berikut %d)  ❄️ freeze %s\n",
		s.CurrentStreak, s.LongestStreak, s.NextMilestone, freeze)
	fmt.Fprintf(w, "   %s\n", s.Message)
	if s.AtRisk {
		fmt.Fprintln(w, "   ⚠️  Belum membaca hari ini, streak bisa terputus!")
	}
}

func printChallenge(w io.Writer, c domain.DailyChallenge) {
	status := renderBar(c.ProgressPct() / 100)
	if c.Completed {
		status = "✅ selesai"
	}
	fmt.Fprintf(w, "🎯 %s (+%d XP): %d/%d %s\n", c.Title, c.XPReward, c.CurrentProgress, c.TargetValue, status)
}
