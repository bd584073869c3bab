package app

import (
	"fmt"
	"time"

	"github.com/blackwell-systems/pollwatch/internal/watcher"
	"github.com/spf13/cobra"
)

var hintCmd = &cobra.Command{
	Use:   "hint <changed|created|deleted> <path>",
	Short: "Tell the watcher that a path changed",
	Long: `Append a change hint to the hint log. The running watcher reads it on its
next tick and re-checks only that path, without waiting for a full scan.

Paths outside every watch are accepted and ignored by the watcher.`,
	Example: `  # After saving a file
  pollwatch hint changed ./config.xml

  # From a build step
  pollwatch hint created /srv/app/build/out.jar`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(watcher.HintChanged), string(watcher.HintCreated), string(watcher.HintDeleted)},
	RunE:      runHint,
}

func runHint(cmd *cobra.Command, args []string) error {
	op, err := watcher.ParseHintOp(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := watcher.AppendHint(cfg.HintsLog, op, args[1], time.Now()); err != nil {
		return fmt.Errorf("failed to record hint: %w", err)
	}
	return nil
}
