package app

import (
	"fmt"

	"github.com/blackwell-systems/pollwatch/internal/monitor"
	"github.com/blackwell-systems/pollwatch/internal/output"
	"github.com/blackwell-systems/pollwatch/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	scanEvents bool
	scanRecord bool
	scanQuiet  bool

	scanCmd = &cobra.Command{
		Use:   "scan",
		Short: "Run one full scan of every watch",
		Long: `Scan every configured and saved watch once and print what is monitored.

A one-off scan starts from an empty snapshot, so every existing file is
reported as MONITORING_START. Use --record to journal those events under a
new session, for example to seed the journal before starting the watcher.`,
		Example: `  # Show every monitored path
  pollwatch scan

  # Show the scan's events instead of the path table
  pollwatch scan --events

  # Journal the scan
  pollwatch scan --record --quiet`,
		RunE: runScan,
	}
)

func init() {
	scanCmd.Flags().BoolVar(&scanEvents, "events", false, "print the scan's events instead of monitored paths")
	scanCmd.Flags().BoolVar(&scanRecord, "record", false, "write the scan's events to the journal")
	scanCmd.Flags().BoolVar(&scanQuiet, "quiet", false, "suppress output")
}

func runScan(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

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
		fmt.Fprintln(out, "No watches configured.")
		fmt.Fprintln(out, "Add one with 'pollwatch watches add <path>'.")
		return nil
	}

	mon, err := buildMonitor(entries, logger)
	if err != nil {
		return err
	}

	var events []monitor.FileEvent
	mon.AddListener(monitor.ListenerFunc(func(e monitor.FileEvent) error {
		events = append(events, e)
		return nil
	}))

	opts := watcher.Options{Logger: logger}
	if scanRecord {
		opts.Store = st
	}
	w, err := watcher.New(mon, opts)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	var spinner *output.Spinner
	if !scanQuiet {
		spinner = output.NewSpinner(fmt.Sprintf("Scanning %d watches", len(entries)))
		spinner.SetWriter(out)
		spinner.Start()
	}
	if err := w.FullScan(); err != nil {
		if spinner != nil {
			spinner.Stop()
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	if scanQuiet {
		return nil
	}

	msg := fmt.Sprintf("✓ Scanned %d watches (%s events)", len(entries), output.FormatCount(len(events)))
	if scanRecord {
		msg += fmt.Sprintf(", recorded as session %s", w.Session())
	}
	spinner.StopWithMessage(msg)
	fmt.Fprintln(out)

	if scanEvents {
		fmt.Fprint(out, output.RenderFileEventTable(events))
	} else {
		fmt.Fprint(out, output.RenderDetailsTable(mon.Monitored()))
	}
	return nil
}
