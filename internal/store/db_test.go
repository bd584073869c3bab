package store

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/pollwatch/internal/monitor"
)

// newTestStore creates an in-memory store with the schema applied.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := s.CreateSchema(); err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNoSchema_ReturnsErrNotInitialized(t *testing.T) {
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer s.Close()

	tests := []struct {
		name string
		call func() error
	}{
		{"ListEvents", func() error { _, err := s.ListEvents(EventFilter{}); return err }},
		{"CountEvents", func() error { _, err := s.CountEvents(EventFilter{}); return err }},
		{"ListWatches", func() error { _, err := s.ListWatches(); return err }},
		{"InsertEvents", func() error {
			return s.InsertEvents("s", []monitor.FileEvent{{Path: "/a", Op: monitor.Created}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, ErrNotInitialized) {
				t.Errorf("%s() error = %v; want ErrNotInitialized", tt.name, err)
			}
		})
	}
}

func TestErrNotInitialized_ErrorMessage(t *testing.T) {
	if !strings.Contains(ErrNotInitialized.Error(), "pollwatch scan") {
		t.Errorf("ErrNotInitialized message %q should mention 'pollwatch scan'", ErrNotInitialized.Error())
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateSchema(); err != nil {
		t.Errorf("second CreateSchema() failed: %v", err)
	}
}

func TestInsertAndListEvents(t *testing.T) {
	s := newTestStore(t)
	mod := time.Date(2024, 3, 1, 12, 0, 0, 123456789, time.UTC)

	batch := []monitor.FileEvent{
		{Path: "/srv/app/a.txt", ModTime: mod, Op: monitor.Created},
		{Path: "/srv/app/b.txt", ModTime: mod.Add(time.Second), Op: monitor.Updated},
		{Path: "/srv/other/c.txt", Op: monitor.Deleted},
	}
	if err := s.InsertEvents("session-1", batch); err != nil {
		t.Fatalf("InsertEvents() failed: %v", err)
	}
	if err := s.InsertEvents("session-2", []monitor.FileEvent{{Path: "/srv/app/a.txt", ModTime: mod, Op: monitor.MonitoringFinish}}); err != nil {
		t.Fatalf("InsertEvents() failed: %v", err)
	}

	all, err := s.ListEvents(EventFilter{})
	if err != nil {
		t.Fatalf("ListEvents() failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("ListEvents() returned %d events, want 4", len(all))
	}
	if all[0].Op != "MONITORING_FINISH" || all[0].Session != "session-2" {
		t.Errorf("newest event = %+v, want the session-2 MONITORING_FINISH", all[0])
	}
	if !all[3].ModTime.Equal(mod) {
		t.Errorf("oldest event ModTime = %v, want %v", all[3].ModTime, mod)
	}
	if !all[1].ModTime.IsZero() {
		t.Errorf("event without mod time came back as %v", all[1].ModTime)
	}
	if all[0].RecordedAt.IsZero() {
		t.Error("RecordedAt was not set")
	}
}

func TestListEvents_Filters(t *testing.T) {
	s := newTestStore(t)
	if err := s.InsertEvents("one", []monitor.FileEvent{
		{Path: "/srv/app", Op: monitor.Updated},
		{Path: "/srv/app/a.txt", Op: monitor.Created},
		{Path: "/srv/app2/b.txt", Op: monitor.Created},
	}); err != nil {
		t.Fatalf("InsertEvents() failed: %v", err)
	}
	if err := s.InsertEvents("two", []monitor.FileEvent{
		{Path: "/srv/app/c.txt", Op: monitor.Created},
	}); err != nil {
		t.Fatalf("InsertEvents() failed: %v", err)
	}

	tests := []struct {
		name   string
		filter EventFilter
		want   int
	}{
		{"all", EventFilter{}, 4},
		{"session", EventFilter{Session: "one"}, 3},
		{"path prefix is segment aware", EventFilter{Path: "/srv/app"}, 3},
		{"trailing slash", EventFilter{Path: "/srv/app/"}, 3},
		{"session and path", EventFilter{Session: "two", Path: "/srv/app"}, 1},
		{"limit", EventFilter{Limit: 2}, 2},
		{"no match", EventFilter{Path: "/nowhere"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := s.ListEvents(tt.filter)
			if err != nil {
				t.Fatalf("ListEvents() failed: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("ListEvents(%+v) returned %d events, want %d", tt.filter, len(events), tt.want)
			}
			if tt.filter.Limit == 0 {
				n, err := s.CountEvents(tt.filter)
				if err != nil {
					t.Fatalf("CountEvents() failed: %v", err)
				}
				if n != tt.want {
					t.Errorf("CountEvents(%+v) = %d, want %d", tt.filter, n, tt.want)
				}
			}
		})
	}

	sessions, err := s.CountSessions()
	if err != nil {
		t.Fatalf("CountSessions() failed: %v", err)
	}
	if sessions != 2 {
		t.Errorf("CountSessions() = %d, want 2", sessions)
	}
}

func TestInsertEvents_EmptyBatch(t *testing.T) {
	s := newTestStore(t)
	if err := s.InsertEvents("s", nil); err != nil {
		t.Fatalf("InsertEvents(nil) failed: %v", err)
	}
	n, err := s.CountEvents(EventFilter{})
	if err != nil {
		t.Fatalf("CountEvents() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("CountEvents() = %d, want 0", n)
	}
}

func TestWatches(t *testing.T) {
	s := newTestStore(t)

	if err := s.SaveWatch("/srv/b", monitor.DirectorySubtree); err != nil {
		t.Fatalf("SaveWatch() failed: %v", err)
	}
	if err := s.SaveWatch("/srv/a", monitor.SingleFile); err != nil {
		t.Fatalf("SaveWatch() failed: %v", err)
	}
	// Saving again replaces the mode.
	if err := s.SaveWatch("/srv/b", monitor.DirectoryShallow); err != nil {
		t.Fatalf("SaveWatch() failed: %v", err)
	}

	watches, err := s.ListWatches()
	if err != nil {
		t.Fatalf("ListWatches() failed: %v", err)
	}
	if len(watches) != 2 {
		t.Fatalf("ListWatches() returned %d watches, want 2", len(watches))
	}
	if watches[0].Path != "/srv/a" || watches[0].Mode != "file" {
		t.Errorf("watches[0] = %+v, want /srv/a (file)", watches[0])
	}
	if watches[1].Path != "/srv/b" || watches[1].Mode != "shallow" {
		t.Errorf("watches[1] = %+v, want /srv/b (shallow)", watches[1])
	}

	if err := s.DeleteWatch("/srv/a"); err != nil {
		t.Fatalf("DeleteWatch() failed: %v", err)
	}
	if err := s.DeleteWatch("/srv/a"); err == nil {
		t.Error("DeleteWatch() of a missing watch should fail")
	}
	watches, err = s.ListWatches()
	if err != nil {
		t.Fatalf("ListWatches() failed: %v", err)
	}
	if len(watches) != 1 {
		t.Errorf("ListWatches() after delete returned %d watches, want 1", len(watches))
	}
}
