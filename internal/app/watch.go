package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackwell-systems/pollwatch/internal/config"
	"github.com/blackwell-systems/pollwatch/internal/metrics"
	"github.com/blackwell-systems/pollwatch/internal/output"
	"github.com/blackwell-systems/pollwatch/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Continuously monitor watched paths and journal changes",
		Long: `Start the polling watcher over every configured and saved watch.

Each tick drains the hint log and re-checks only the hinted paths. Every
Nth tick (full_scan_every) rescans everything instead, so changes nobody
reported are still caught. With native_hints enabled, fsnotify events are
fed in as hints too.

Watch modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run as background process
  • Stop: Stop a running daemon

Events are written to the journal after every tick.`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  pollwatch watch

  # Run as background daemon
  pollwatch watch --daemon

  # Stop running daemon
  pollwatch watch --stop

  # Use custom PID and log files
  pollwatch watch --daemon --pid-file /tmp/watch.pid --log-file /tmp/watch.log`,
		RunE: runWatch,
	}
)

// stopTimeout bounds how long 'watch --stop' waits for the daemon's final
// flush.
const stopTimeout = 10 * time.Second

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.pollwatch/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.pollwatch/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")
}

func runWatch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	// Get default paths if not specified
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		watchPIDFile = defaultPID
	}

	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		watchLogFile = defaultLog
	}

	// Handle stop command
	if watchStop {
		return stopWatchDaemon(out)
	}

	// Handle daemon mode; the child builds its own watcher
	if watchDaemon {
		return startWatchDaemon(out)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := collectWatches(cfg, st)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return errors.New("nothing to watch: add one with 'pollwatch watches add <path>'")
	}
	mon, err := buildMonitor(entries, logger)
	if err != nil {
		return err
	}

	m, err := metrics.New(nil)
	if err != nil {
		return err
	}

	w, err := watcher.New(mon, watcher.Options{
		Store:         st,
		Interval:      cfg.Interval,
		FullScanEvery: cfg.FullScanEvery,
		HintsLog:      cfg.HintsLog,
		Native:        cfg.NativeHints,
		Metrics:       m,
		MetricsAddr:   cfg.MetricsAddr,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Handle daemon child process
	if watchDaemonChild {
		return w.RunDaemon(watchPIDFile)
	}

	// Run in foreground
	return runWatchForeground(out, w, cfg, len(entries))
}

func stopWatchDaemon(out io.Writer) error {
	// Check if daemon is running
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		fmt.Fprintln(out, "Daemon is not running")
		return nil
	}

	spinner := output.NewSpinner("Stopping daemon")
	spinner.SetWriter(out)
	spinner.Start()
	if err := watcher.StopDaemon(watchPIDFile, stopTimeout); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon stopped")

	return nil
}

// daemonArgs forwards the global flags to the daemon child.
func daemonArgs() []string {
	args := []string{"--pid-file", watchPIDFile}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	if dbPath != "" {
		args = append(args, "--db", dbPath)
	}
	return args
}

func startWatchDaemon(out io.Writer) error {
	// Check if already running
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if running {
		return fmt.Errorf("daemon already running (PID file: %s)", watchPIDFile)
	}

	spinner := output.NewSpinner("Starting daemon")
	spinner.SetWriter(out)
	spinner.Start()
	if err := watcher.StartDaemon(watchPIDFile, watchLogFile, daemonArgs()...); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon started")

	fmt.Fprintf(out, "\nWatcher daemon started\n")
	fmt.Fprintf(out, "  PID file: %s\n", watchPIDFile)
	fmt.Fprintf(out, "  Log file: %s\n", watchLogFile)
	fmt.Fprintf(out, "\nTo stop: pollwatch watch --stop\n")

	return nil
}

func runWatchForeground(out io.Writer, w *watcher.Watcher, cfg *config.Config, watches int) error {
	fmt.Fprintln(out, "Starting watcher (press Ctrl+C to stop)...")
	fmt.Fprintln(out)

	spinner := output.NewSpinner(fmt.Sprintf("Scanning %d watches", watches)).ShowElapsed()
	spinner.SetWriter(out)
	spinner.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	err := w.Run(ctx, watcher.RunHooks{
		Started: func(info watcher.RunInfo) {
			spinner.StopWithMessage("✓ Watcher started")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Session %s. Polling every %s, full scan every %d ticks.\n",
				info.Session, cfg.Interval, cfg.FullScanEvery)
			if info.MetricsAddr != "" {
				fmt.Fprintf(out, "Metrics at http://%s/metrics\n", info.MetricsAddr)
			}
			fmt.Fprintln(out, "Press Ctrl+C to stop.")
			fmt.Fprintln(out)
		},
		Stopping: func() {
			fmt.Fprintln(out, "\nShutting down...")
			spinner = output.NewSpinner("Stopping watcher")
			spinner.SetWriter(out)
			spinner.Start()
		},
	})
	spinner.Stop()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "✓ Watcher stopped")
	return nil
}
