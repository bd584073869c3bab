package monitor

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var baseTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// canonicalTempDir returns a fresh temp dir with symlinks resolved, so that
// expectations match the canonical paths the monitor reports.
func canonicalTempDir(t *testing.T) string {
	t.Helper()
	dir, err := Canonical(t.TempDir())
	if err != nil {
		t.Fatalf("Canonical(TempDir): %v", err)
	}
	return dir
}

// writeFile creates path (and its parents) and pins its modification time.
func writeFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
	touch(t, path, mtime)
}

// mkdir creates a directory and pins its modification time.
func mkdir(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", path, err)
	}
	touch(t, path, mtime)
}

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Chtimes(%s): %v", path, err)
	}
}

// recorder is a Listener that keeps every event it receives. When failOn is
// set, OnEvent returns errListener for events on that path.
type recorder struct {
	mu     sync.Mutex
	events []FileEvent
	failOn string
}

var errListener = errors.New("listener exploded")

func (r *recorder) OnEvent(e FileEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if r.failOn != "" && e.Path == r.failOn {
		return errListener
	}
	return nil
}

// take returns the recorded events and forgets them.
func (r *recorder) take() []FileEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := r.events
	r.events = nil
	return events
}

func newRecordingMonitor(t *testing.T) (*Monitor, *recorder) {
	t.Helper()
	m := New()
	rec := &recorder{}
	m.AddListener(rec)
	return m, rec
}

func mustAdd(t *testing.T, m *Monitor, req *Request) {
	t.Helper()
	added, err := m.AddRequest(req)
	if err != nil {
		t.Fatalf("AddRequest(%s) error = %v", req, err)
	}
	if !added {
		t.Fatalf("AddRequest(%s) = false, want true", req)
	}
}

func mustScanAll(t *testing.T, m *Monitor) int {
	t.Helper()
	n, err := m.ScanAll()
	if err != nil {
		t.Fatalf("ScanAll() error = %v", err)
	}
	return n
}

func mustScanNotified(t *testing.T, m *Monitor) int {
	t.Helper()
	n, err := m.ScanNotified()
	if err != nil {
		t.Fatalf("ScanNotified() error = %v", err)
	}
	return n
}

// assertEvents compares events by op, path and modification time.
func assertEvents(t *testing.T, got []FileEvent, want ...FileEvent) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d events %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i].Op != want[i].Op || got[i].Path != want[i].Path {
			t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
			continue
		}
		if !got[i].ModTime.Equal(want[i].ModTime) {
			t.Errorf("event[%d] %s ModTime = %v, want %v", i, got[i], got[i].ModTime, want[i].ModTime)
		}
	}
}

// failingCanonicalFS is the OS filesystem whose Canonical always fails.
type failingCanonicalFS struct {
	OSFileSystem
}

var errNoCanonical = errors.New("cannot canonicalize")

func (failingCanonicalFS) Canonical(string) (string, error) {
	return "", errNoCanonical
}
