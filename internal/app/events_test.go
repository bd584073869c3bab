package app

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/pollwatch/internal/store"
)

// recordScan journals one scan of root and returns the output.
func recordScan(t *testing.T, root string) {
	t.Helper()
	mustRunCLI(t, "watches", "add", root)
	mustRunCLI(t, "scan", "--record", "--quiet")
	resetFlags()
}

func TestEvents_NotInitialized(t *testing.T) {
	setupEnv(t)

	_, err := runCLI(t, "events")
	if !errors.Is(err, store.ErrNotInitialized) {
		t.Errorf("error = %v, want ErrNotInitialized", err)
	}
}

func TestEvents_ListsJournal(t *testing.T) {
	setupEnv(t)
	root := canonicalDir(t)
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "b.txt"), "b")
	recordScan(t, root)

	out := mustRunCLI(t, "events")
	if strings.Count(out, "MONITORING_START") != 2 {
		t.Errorf("expected 2 MONITORING_START rows, got:\n%s", out)
	}
	if strings.Contains(out, "Showing") {
		t.Errorf("unexpected truncation note:\n%s", out)
	}
}

func TestEvents_Filters(t *testing.T) {
	root := canonicalDir(t)
	writeFile(t, filepath.Join(root, "src", "main.go"), "m")
	writeFile(t, filepath.Join(root, "src", "util.go"), "u")
	writeFile(t, filepath.Join(root, "docs", "readme.md"), "r")

	tests := []struct {
		name     string
		args     []string
		wantRows int
		wantNote bool
	}{
		// src, src/main.go, src/util.go, docs, docs/readme.md
		{name: "all", args: []string{"events", "--limit", "0"}, wantRows: 5},
		{name: "path prefix", args: []string{"events", "--path", filepath.Join(root, "src")}, wantRows: 3},
		{name: "single path", args: []string{"events", "--path", filepath.Join(root, "docs", "readme.md")}, wantRows: 1},
		{name: "limit", args: []string{"events", "--limit", "2"}, wantRows: 2, wantNote: true},
		{name: "unknown session", args: []string{"events", "--session", "nope"}, wantRows: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t)
			recordScan(t, root)

			out := mustRunCLI(t, tt.args...)
			if got := strings.Count(out, "MONITORING_START"); got != tt.wantRows {
				t.Errorf("rows = %d, want %d\n%s", got, tt.wantRows, out)
			}
			if got := strings.Contains(out, "Showing"); got != tt.wantNote {
				t.Errorf("truncation note = %v, want %v\n%s", got, tt.wantNote, out)
			}
		})
	}
}

func TestEvents_NegativeLimit(t *testing.T) {
	setupEnv(t)

	if _, err := runCLI(t, "events", "--limit", "-1"); err == nil {
		t.Error("expected error for a negative limit")
	}
}
