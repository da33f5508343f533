package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

// appVersion is the version stamped into the telemetry service metadata.
var appVersion = "dev"

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	appVersion = version
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pulselog",
		Short: "PulseLog - telemetry pipeline demonstrator",
		Long: `PulseLog wires a structured-logging and user-monitoring pipeline and
drives it with a synthetic event generator.

Features:
  - Structured leveled logging with fixed contextual attributes
  - View-session monitoring over OpenTelemetry spans
  - Periodic heartbeat and randomly spaced synthetic events
  - Live terminal transcript with a start/stop toggle
  - Persistent SQLite event history
  - Optional Prometheus metrics endpoint

Required environment: DATADOG_CLIENT_TOKEN, DATADOG_APPLICATION_ID.
Optional: DATADOG_ENVIRONMENT, DATADOG_SERVICE, DATADOG_SITE.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newUICommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}
