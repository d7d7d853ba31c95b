package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lifequran/lifequran/internal/app/gamification"
	"github.com/lifequran/lifequran/internal/domain"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printReport renders the outcome of one activity.
func printReport(w io.Writer, rep domain.ActivityReport) error {
	if jsonOutput {
		return printJSON(w, rep)
	}

	for _, r := range rep.Rewards {
		fmt.Fprintf(w, "  +%-5d XP  %s\n", r.Amount, rewardLabel(r))
	}
	if rep.Streak != nil && rep.Streak.Changed {
		fmt.Fprintf(w, "🔥 Streak: %d hari", rep.Streak.CurrentStreak)
		if rep.Streak.FreezeConsumed {
			fmt.Fprint(w, " (freeze digunakan)")
		}
		fmt.Fprintln(w)
	}
	if c := rep.Challenge; c != nil {
		status := renderBar(c.ProgressPct() / 100)
		if rep.ChallengeCompleted {
			status = "selesai!"
		}
		fmt.Fprintf(w, "🎯 %s: %s\n", c.Title, status)
	}
	for _, b := range rep.UnlockedBadges {
		fmt.Fprintf(w, "%s Badge baru: %s\n", b.Icon, b.Name)
	}
	info := gamification.GetLevelInfo(rep.TotalXP)
	fmt.Fprintf(w, "%s Level %d %s  %s XP  %s\n",
		info.Icon, info.Level, info.Name, gamification.FormatXP(rep.TotalXP), renderBar(info.Progress))
	if rep.LeveledUp {
		fmt.Fprintln(w, gamification.LevelUpMessage(rep.Level))
	}
	return nil
}

func rewardLabel(r domain.XPReward) string {
	if r.Description != "" {
		return r.Description
	}
	return strings.ReplaceAll(string(r.Source), "_", " ")
}
