package app

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pollwatch/internal/config"
	"github.com/blackwell-systems/pollwatch/internal/output"
	"github.com/blackwell-systems/pollwatch/internal/store"
	"github.com/blackwell-systems/pollwatch/internal/watcher"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check daemon status and journal statistics",
	Long: `Display the current status of the pollwatch daemon and its journal.

Shows:
  • Daemon running status and PID
  • Config and database locations
  • Saved and configured watches
  • Journaled events and watcher sessions`,
	Example: `  # Check status
  pollwatch status`,
	RunE: runStatus,
}

const statusLabel = "%-14s"

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	pidFile, err := getDefaultPIDFile()
	if err != nil {
		return fmt.Errorf("failed to get PID file path: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	running, err := watcher.IsDaemonRunning(pidFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	fmt.Fprintln(out)
	if running {
		fmt.Fprintf(out, statusLabel+"running (since %s, PID %d)\n", "Watcher:", daemonSince(pidFile), readPID(pidFile))
	} else {
		fmt.Fprintf(out, statusLabel+"stopped  (run 'pollwatch watch --daemon')\n", "Watcher:")
	}

	cfgFile := configPath
	if cfgFile == "" {
		cfgFile, _ = config.DefaultPath()
	}
	if _, err := os.Stat(cfgFile); err != nil {
		cfgFile += " (not found, using defaults)"
	}
	fmt.Fprintf(out, statusLabel+"%s\n", "Config:", cfgFile)
	fmt.Fprintf(out, statusLabel+"every %s · full scan every %d ticks\n", "Polling:", cfg.Interval, cfg.FullScanEvery)

	fi, err := os.Stat(cfg.Database)
	if err != nil {
		fmt.Fprintf(out, statusLabel+"%s (not created yet)\n", "Database:", cfg.Database)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "pollwatch is not set up: run 'pollwatch watches add <path>' to get started.")
		return nil
	}
	fmt.Fprintf(out, statusLabel+"%s · %s\n", "Database:", cfg.Database, humanize.Bytes(uint64(fi.Size())))

	st, err := openExistingStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	return printJournalStatus(out, cfg, st)
}

func printJournalStatus(out io.Writer, cfg *config.Config, st *store.Store) error {
	events, err := st.CountEvents(store.EventFilter{})
	if err != nil {
		return err
	}
	sessions, err := st.CountSessions()
	if err != nil {
		return err
	}
	saved, err := st.ListWatches()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, statusLabel+"%s total · %s sessions\n", "Events:", output.FormatCount(events), output.FormatCount(sessions))
	fmt.Fprintf(out, statusLabel+"%d saved · %d in config\n", "Watches:", len(saved), len(cfg.Watches))
	fmt.Fprintln(out)
	fmt.Fprint(out, output.RenderWatchTable(saved))
	fmt.Fprintln(out)
	return nil
}

// readPID returns the PID stored in pidFile, or 0.
func readPID(pidFile string) int {
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return 0
	}
	pid, _ := strconv.Atoi(strings.TrimSpace(string(data)))
	return pid
}

// daemonSince reports how long ago the PID file was written.
func daemonSince(pidFile string) string {
	fi, err := os.Stat(pidFile)
	if err != nil {
		return "unknown"
	}
	return humanize.RelTime(fi.ModTime(), time.Now(), "ago", "from now")
}
