// Package cli implements the LifeQuran command-line interface using Cobra.
// Each subcommand maps to one gamification operation.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "lifequran",
	Short: "LifeQuran: Quran reading habits, gamified",
	Long: `LifeQuran tracks Quran reading and turns it into a habit:
daily streaks with a weekly freeze, XP and levels, badges and a daily challenge.

State lives in $LIFEQURAN_HOME (default ~/.lifequran).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
