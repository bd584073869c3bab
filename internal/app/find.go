package app

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/pollwatch/internal/config"
	"github.com/blackwell-systems/pollwatch/internal/monitor"
	"github.com/blackwell-systems/pollwatch/internal/output"
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find <pattern>",
	Short: "Find files and directories by Ant-style pattern",
	Long: `Search the filesystem for paths matching an Ant-style pattern.

The pattern must be absolute. '*' matches within one path segment, '?'
matches one character, and '**' matches any number of directories. The
search starts at the deepest directory before the first wildcard and skips
hidden entries.`,
	Example: `  # Every .conf file below /etc
  pollwatch find '/etc/**/*.conf'

  # Direct children only
  pollwatch find '~/project/*.go'`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func runFind(cmd *cobra.Command, args []string) error {
	pattern, err := config.ExpandHome(args[0])
	if err != nil {
		return err
	}

	// The search does not depend on any registered watch.
	mon := monitor.New()
	matches, err := mon.FindMatchingAntPath(pattern)
	if errors.Is(err, monitor.ErrInvalidPattern) {
		return fmt.Errorf("%w\nExample: pollwatch find '/etc/**/*.conf'", err)
	}
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), output.RenderDetailsTable(matches))
	return nil
}
