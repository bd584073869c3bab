package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/pollwatch/internal/monitor"
)

// Event operations

// InsertEvents journals a batch of monitor events under session in a single
// transaction. An empty batch is a no-op.
func (s *Store) InsertEvents(session string, events []monitor.FileEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO events (session, path, op, mod_time, recorded_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return classify(err, "failed to prepare event insert")
	}
	defer stmt.Close()

	recordedAt := time.Now().UTC().Format(time.RFC3339Nano)
	for _, e := range events {
		var modTime any
		if !e.ModTime.IsZero() {
			modTime = e.ModTime.UTC().Format(time.RFC3339Nano)
		}
		if _, err := stmt.Exec(session, e.Path, e.Op.String(), modTime, recordedAt); err != nil {
			tx.Rollback() //nolint:errcheck
			return classify(err, "failed to insert event for %s", e.Path)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	return nil
}

// eventWhere builds the WHERE clause shared by ListEvents and CountEvents.
func eventWhere(f EventFilter) (string, []any) {
	var clauses []string
	var args []any
	if f.Session != "" {
		clauses = append(clauses, "session = ?")
		args = append(args, f.Session)
	}
	if f.Path != "" {
		prefix := strings.TrimRight(f.Path, "/")
		clauses = append(clauses, "(path = ? OR substr(path, 1, ?) = ?)")
		args = append(args, prefix, len(prefix)+1, prefix+"/")
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ListEvents returns journaled events matching f, newest first.
func (s *Store) ListEvents(f EventFilter) ([]*Event, error) {
	where, args := eventWhere(f)
	query := `SELECT id, session, path, op, mod_time, recorded_at FROM events` + where + ` ORDER BY id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, classify(err, "failed to list events")
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		var modTime *string
		var recordedAt string
		if err := rows.Scan(&e.ID, &e.Session, &e.Path, &e.Op, &modTime, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		if modTime != nil {
			e.ModTime, err = time.Parse(time.RFC3339Nano, *modTime)
			if err != nil {
				return nil, fmt.Errorf("failed to parse mod_time for event %d: %w", e.ID, err)
			}
		}
		e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse recorded_at for event %d: %w", e.ID, err)
		}
		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// CountEvents returns the number of journaled events matching f. Limit is
// ignored.
func (s *Store) CountEvents(f EventFilter) (int, error) {
	where, args := eventWhere(f)
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM events`+where, args...).Scan(&n); err != nil {
		return 0, classify(err, "failed to count events")
	}
	return n, nil
}

// CountSessions returns the number of distinct watcher sessions in the journal.
func (s *Store) CountSessions() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT session) FROM events`).Scan(&n); err != nil {
		return 0, classify(err, "failed to count sessions")
	}
	return n, nil
}

// Watch operations

// SaveWatch inserts or replaces a persisted watch request.
func (s *Store) SaveWatch(path string, mode monitor.Mode) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO watches (path, mode, added_at) VALUES (?, ?, ?)`,
		path,
		mode.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return classify(err, "failed to save watch %s", path)
	}
	return nil
}

// ListWatches returns all persisted watch requests ordered by path.
func (s *Store) ListWatches() ([]*Watch, error) {
	rows, err := s.db.Query(`SELECT path, mode, added_at FROM watches ORDER BY path`)
	if err != nil {
		return nil, classify(err, "failed to list watches")
	}
	defer rows.Close()

	var watches []*Watch
	for rows.Next() {
		var w Watch
		var addedAt string
		if err := rows.Scan(&w.Path, &w.Mode, &addedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watch row: %w", err)
		}
		w.AddedAt, err = time.Parse(time.RFC3339, addedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse added_at for %s: %w", w.Path, err)
		}
		watches = append(watches, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watches: %w", err)
	}

	return watches, nil
}

// DeleteWatch removes a persisted watch request.
func (s *Store) DeleteWatch(path string) error {
	result, err := s.db.Exec(`DELETE FROM watches WHERE path = ?`, path)
	if err != nil {
		return classify(err, "failed to delete watch %s", path)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("watch %s not found", path)
	}

	return nil
}
