package app

import (
	"fmt"

	"github.com/blackwell-systems/pollwatch/internal/config"
	"github.com/blackwell-systems/pollwatch/internal/monitor"
	"github.com/blackwell-systems/pollwatch/internal/output"
	"github.com/spf13/cobra"
)

var (
	watchesMode string

	watchesCmd = &cobra.Command{
		Use:   "watches",
		Short: "Manage saved watch requests",
		Long: `Add, remove and list the watch requests saved in the database.

Saved watches are merged with the 'watches' section of the config file when
the watcher starts. A config entry wins when both name the same path.

Modes:
  file      the path itself
  shallow   direct children of a directory
  subtree   everything below a directory (default)`,
	}

	watchesAddCmd = &cobra.Command{
		Use:     "add <path>",
		Short:   "Save a watch request",
		Example: "  pollwatch watches add ~/project\n  pollwatch watches add /etc/hosts --mode file",
		Args:    cobra.ExactArgs(1),
		RunE:    runWatchesAdd,
	}

	watchesRemoveCmd = &cobra.Command{
		Use:   "remove <path>",
		Short: "Delete a saved watch request",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatchesRemove,
	}

	watchesListCmd = &cobra.Command{
		Use:   "list",
		Short: "List saved watch requests",
		Args:  cobra.NoArgs,
		RunE:  runWatchesList,
	}
)

func init() {
	watchesAddCmd.Flags().StringVar(&watchesMode, "mode", "subtree", "watch mode: file, shallow or subtree")

	watchesCmd.AddCommand(watchesAddCmd)
	watchesCmd.AddCommand(watchesRemoveCmd)
	watchesCmd.AddCommand(watchesListCmd)
}

// watchPath expands and canonicalizes a path argument so that saved watches
// compare equal however they were typed.
func watchPath(arg string) (string, error) {
	p, err := config.ExpandHome(arg)
	if err != nil {
		return "", err
	}
	return monitor.Canonical(p)
}

func runWatchesAdd(cmd *cobra.Command, args []string) error {
	mode, err := monitor.ParseMode(watchesMode)
	if err != nil {
		return err
	}
	path, err := watchPath(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveWatch(path, mode); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Watching %s (%s)\n", path, mode)
	return nil
}

func runWatchesRemove(cmd *cobra.Command, args []string) error {
	path, err := watchPath(args[0])
	if err != nil {
		return err
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

	if err := st.DeleteWatch(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed watch %s\n", path)
	return nil
}

func runWatchesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	watches, err := st.ListWatches()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), output.RenderWatchTable(watches))
	return nil
}
