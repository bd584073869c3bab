package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/pollwatch/internal/config"
	"github.com/blackwell-systems/pollwatch/internal/logging"
	"github.com/blackwell-systems/pollwatch/internal/monitor"
	"github.com/blackwell-systems/pollwatch/internal/store"
)

// loadConfig reads the config file named by --config (or the default one)
// and applies the --db override.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database = dbPath
	}
	return cfg, nil
}

// newLogger builds the stderr logger described by cfg.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
}

// openStore opens the journal named by cfg and makes sure its schema exists.
func openStore(cfg *config.Config) (*store.Store, error) {
	if dir := filepath.Dir(cfg.Database); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	st, err := store.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}
	return st, nil
}

// openExistingStore opens the journal for read-only commands without
// creating it.
func openExistingStore(cfg *config.Config) (*store.Store, error) {
	if _, err := os.Stat(cfg.Database); os.IsNotExist(err) {
		return nil, store.ErrNotInitialized
	}
	st, err := store.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return st, nil
}

// watchEntry is a watch request before it is registered.
type watchEntry struct {
	path string
	mode monitor.Mode
}

// collectWatches merges configured watches with the ones saved through
// 'pollwatch watches add'. Configured entries win for duplicate paths.
func collectWatches(cfg *config.Config, st *store.Store) ([]watchEntry, error) {
	var entries []watchEntry
	seen := make(map[string]bool)

	for _, w := range cfg.Watches {
		mode := monitor.DirectorySubtree
		if w.Mode != "" {
			m, err := monitor.ParseMode(w.Mode)
			if err != nil {
				return nil, fmt.Errorf("watch %s: %w", w.Path, err)
			}
			mode = m
		}
		if seen[w.Path] {
			continue
		}
		seen[w.Path] = true
		entries = append(entries, watchEntry{path: w.Path, mode: mode})
	}

	if st != nil {
		saved, err := st.ListWatches()
		if err != nil {
			return nil, err
		}
		for _, w := range saved {
			if seen[w.Path] {
				continue
			}
			mode, err := monitor.ParseMode(w.Mode)
			if err != nil {
				return nil, fmt.Errorf("saved watch %s: %w", w.Path, err)
			}
			seen[w.Path] = true
			entries = append(entries, watchEntry{path: w.Path, mode: mode})
		}
	}
	return entries, nil
}

// buildMonitor registers every watch with a new monitor. Requests covered by
// a wider subtree are skipped by the monitor itself.
func buildMonitor(entries []watchEntry, logger *slog.Logger) (*monitor.Monitor, error) {
	mon := monitor.NewWithOptions(monitor.Options{Logger: logger})
	for _, entry := range entries {
		added, err := mon.AddRequest(monitor.NewRequest(entry.path, entry.mode))
		if err != nil {
			return nil, fmt.Errorf("failed to watch %s: %w", entry.path, err)
		}
		if !added {
			logger.Debug("watch already covered", "path", entry.path, "mode", entry.mode.String())
		}
	}
	return mon, nil
}

// dataFile returns name inside ~/.pollwatch, creating the directory.
func dataFile(name string) (string, error) {
	dir, err := config.DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create pollwatch directory: %w", err)
	}
	return filepath.Join(dir, name), nil
}

// getDefaultPIDFile returns the default PID file path
func getDefaultPIDFile() (string, error) {
	return dataFile("watch.pid")
}

// getDefaultLogFile returns the default log file path
func getDefaultLogFile() (string, error) {
	return dataFile("watch.log")
}
