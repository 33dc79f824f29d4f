package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "daybook",
	Short: "Daybook - daily journaling with weekly AI reflections",
	Long: `Daybook is a journaling server: one entry per day, one AI-generated
reflection per week.

It provides:
  - Daily journal entries with a one-per-UTC-day guarantee
  - Weekly reflections generated by an LLM, cached per ISO week
  - Cooldown and monthly budget guards around the generation call
  - Sliding-window rate limiting on every route`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
