package app

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/blackwell-systems/pollwatch/internal/store"
)

func TestScan_NoWatches(t *testing.T) {
	setupEnv(t)

	out := mustRunCLI(t, "scan")
	if !strings.Contains(out, "No watches configured.") {
		t.Errorf("scan output = %q", out)
	}
}

func TestScan_PrintsMonitoredPaths(t *testing.T) {
	setupEnv(t)
	root := canonicalDir(t)
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "b")
	writeFile(t, filepath.Join(root, ".hidden"), "h")

	mustRunCLI(t, "watches", "add", root)
	out := mustRunCLI(t, "scan")

	// a.txt, sub and sub/b.txt; the hidden file is skipped.
	if !strings.Contains(out, "3 paths") {
		t.Errorf("expected '3 paths', got:\n%s", out)
	}
	if strings.Contains(out, ".hidden") {
		t.Errorf("hidden file listed:\n%s", out)
	}
	if !strings.Contains(out, "✓ Scanned 1 watches (3 events)") {
		t.Errorf("missing summary line:\n%s", out)
	}
}

func TestScan_EventsFlag(t *testing.T) {
	setupEnv(t)
	root := canonicalDir(t)
	writeFile(t, filepath.Join(root, "a.txt"), "a")

	mustRunCLI(t, "watches", "add", root, "--mode", "shallow")
	out := mustRunCLI(t, "scan", "--events")

	if !strings.Contains(out, "MONITORING_START") {
		t.Errorf("expected MONITORING_START event, got:\n%s", out)
	}
}

func TestScan_RecordJournalsEvents(t *testing.T) {
	home := setupEnv(t)
	root := canonicalDir(t)
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "b.txt"), "b")

	mustRunCLI(t, "watches", "add", root)
	out := mustRunCLI(t, "scan", "--record")
	if !strings.Contains(out, "recorded as session") {
		t.Errorf("expected session in output, got:\n%s", out)
	}
	resetFlags()
	mustRunCLI(t, "scan", "--record", "--quiet")

	st, err := store.New(filepath.Join(home, ".pollwatch", "pollwatch.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer st.Close()

	n, err := st.CountEvents(store.EventFilter{})
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if n != 4 {
		t.Errorf("CountEvents() = %d, want 4", n)
	}
	sessions, err := st.CountSessions()
	if err != nil {
		t.Fatalf("CountSessions: %v", err)
	}
	if sessions != 2 {
		t.Errorf("CountSessions() = %d, want 2", sessions)
	}
}

func TestScan_WithoutRecordLeavesJournalEmpty(t *testing.T) {
	home := setupEnv(t)
	root := canonicalDir(t)
	writeFile(t, filepath.Join(root, "a.txt"), "a")

	mustRunCLI(t, "watches", "add", root)
	mustRunCLI(t, "scan", "--quiet")

	st, err := store.New(filepath.Join(home, ".pollwatch", "pollwatch.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	defer st.Close()

	if n, _ := st.CountEvents(store.EventFilter{}); n != 0 {
		t.Errorf("CountEvents() = %d, want 0", n)
	}
}
