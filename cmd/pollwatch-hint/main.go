// Command pollwatch-hint appends one change hint to the pollwatch hint log.
// It is meant to be called from editor save hooks, build steps and git hooks:
//
//	pollwatch-hint changed /srv/app/config.xml
//
// The running watcher picks the hint up on its next tick. The log location
// comes from $POLLWATCH_HINTS_LOG, then the hints_log setting of the default
// config file, then ~/.pollwatch/hints.log.
//
// Unlike 'pollwatch hint' it takes no flags and does not load cobra, so it
// stays cheap to call many times per second.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/blackwell-systems/pollwatch/internal/config"
	"github.com/blackwell-systems/pollwatch/internal/watcher"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: pollwatch-hint <changed|created|deleted> <path>")
		os.Exit(2)
	}

	op, err := watcher.ParseHintOp(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "pollwatch-hint: %v\n", err)
		os.Exit(2)
	}

	logPath, err := hintsLog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pollwatch-hint: %v\n", err)
		os.Exit(1)
	}

	if err := watcher.AppendHint(logPath, op, os.Args[2], time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "pollwatch-hint: %v\n", err)
		os.Exit(1)
	}
}

// hintsLog resolves the hint log location.
func hintsLog() (string, error) {
	if p := os.Getenv("POLLWATCH_HINTS_LOG"); p != "" {
		return config.ExpandHome(p)
	}
	path, err := config.DefaultPath()
	if err != nil {
		return "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", err
	}
	return cfg.HintsLog, nil
}
