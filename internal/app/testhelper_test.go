package app

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/pollwatch/internal/monitor"
)

// setupEnv points HOME and XDG_CONFIG_HOME into a temp dir and resets every
// flag variable, so commands never touch the real user's files.
func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("NO_COLOR", "1")

	resetFlags()
	t.Cleanup(resetFlags)
	return home
}

func resetFlags() {
	dbPath = ""
	configPath = ""

	scanEvents = false
	scanRecord = false
	scanQuiet = false

	eventsSession = ""
	eventsPath = ""
	eventsLimit = 50

	watchesMode = "subtree"

	watchDaemon = false
	watchDaemonChild = false
	watchPIDFile = ""
	watchLogFile = ""
	watchStop = false
}

// runCLI executes the root command with args and returns everything written
// to its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(&buf)
	RootCmd.SetArgs(args)
	defer func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	}()

	err := RootCmd.Execute()
	return buf.String(), err
}

// mustRunCLI is runCLI that fails the test on error.
func mustRunCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("pollwatch %v: %v\noutput:\n%s", args, err, out)
	}
	return out
}

// canonicalDir returns a temp dir with symlinks resolved.
func canonicalDir(t *testing.T) string {
	t.Helper()
	dir, err := monitor.Canonical(t.TempDir())
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
