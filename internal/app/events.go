package app

import (
	"fmt"

	"github.com/blackwell-systems/pollwatch/internal/config"
	"github.com/blackwell-systems/pollwatch/internal/monitor"
	"github.com/blackwell-systems/pollwatch/internal/output"
	"github.com/blackwell-systems/pollwatch/internal/store"
	"github.com/spf13/cobra"
)

var (
	eventsSession string
	eventsPath    string
	eventsLimit   int

	eventsCmd = &cobra.Command{
		Use:   "events",
		Short: "Show journaled change events",
		Long: `Show events recorded by 'pollwatch watch' and 'pollwatch scan --record',
newest first.

--path matches the path itself and everything below it. --session takes the
full session id printed when the watcher starts.`,
		Example: `  # Latest 50 events
  pollwatch events

  # Everything under a directory
  pollwatch events --path ~/project/src --limit 0

  # One watcher session
  pollwatch events --session 1b4e28ba-2fa1-11d2-883f-0016d3cca427`,
		RunE: runEvents,
	}
)

func init() {
	eventsCmd.Flags().StringVar(&eventsSession, "session", "", "only events from this session")
	eventsCmd.Flags().StringVar(&eventsPath, "path", "", "only events at or below this path")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 50, "maximum number of events (0 for all)")
}

func runEvents(cmd *cobra.Command, args []string) error {
	if eventsLimit < 0 {
		return fmt.Errorf("invalid --limit %d: must be 0 or greater", eventsLimit)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openExistingStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	filter := store.EventFilter{Session: eventsSession, Limit: eventsLimit}
	if eventsPath != "" {
		p, err := config.ExpandHome(eventsPath)
		if err != nil {
			return err
		}
		if filter.Path, err = monitor.Canonical(p); err != nil {
			return err
		}
	}

	events, err := st.ListEvents(filter)
	if err != nil {
		return err
	}
	total, err := st.CountEvents(store.EventFilter{Session: filter.Session, Path: filter.Path})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, output.RenderEventTable(events))
	if len(events) > 0 && len(events) < total {
		fmt.Fprintf(out, "\nShowing %s of %s events. Use --limit 0 to show all.\n",
			output.FormatCount(len(events)), output.FormatCount(total))
	}
	return nil
}
