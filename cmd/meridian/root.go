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
	Use:   "meridian",
	Short: "Meridian - temporal contextual-integrity policy evaluator",
	Long: `Meridian evaluates access requests against contextual-integrity policy
rules under temporal context: business hours, active incidents, legal holds,
and time-bounded role elevations.

It provides:
  - First-match-wins rule evaluation with a default BLOCK
  - Legal-hold enforcement ahead of ordinary policy
  - Incident-driven emergency overrides and role elevation
  - Asynchronous, sampled audit of every decision
  - Prometheus metrics for decisions, audit throughput, and org lookups`,
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
