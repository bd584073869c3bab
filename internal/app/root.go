package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	dbPath     string
	configPath string

	// RootCmd is the root command for pollwatch
	RootCmd = &cobra.Command{
		Use:   "pollwatch",
		Short: "Polling file change monitor with an event journal",
		Long: `pollwatch keeps snapshots of watched files and directories and reports
what changed between scans: files created, updated or deleted.

Change hints from editors, build tools or fsnotify make scans cheap: a
notified scan only re-checks the paths it was told about, while a periodic
full scan catches everything else. Every event is journaled to SQLite.

Quick Start:
  1. pollwatch watches add ~/project
  2. pollwatch watch --daemon
  3. pollwatch events

Examples:
  # See what is being monitored right now
  pollwatch scan

  # Find files by Ant-style pattern
  pollwatch find '/etc/**/*.conf'

  # Tell a running watcher that a file changed
  pollwatch hint changed ./config.xml

  # Check daemon status
  pollwatch status`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "pollwatch: polling file change monitor")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Tip: Run 'pollwatch status' to check the watcher.")
			fmt.Fprintln(out, "     Run 'pollwatch --help' for all commands.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/pollwatch/config.yaml)")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.pollwatch/pollwatch.db)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(watchCmd)
	RootCmd.AddCommand(findCmd)
	RootCmd.AddCommand(eventsCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(hintCmd)
	RootCmd.AddCommand(watchesCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
