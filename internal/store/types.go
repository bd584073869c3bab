package store

import "time"

// Event is one journaled monitor event.
type Event struct {
	ID         int64
	Session    string
	Path       string
	Op         string // monitor.Op spelling, e.g. "CREATED"
	ModTime    time.Time
	RecordedAt time.Time
}

// EventFilter narrows ListEvents and CountEvents. Zero fields match everything.
type EventFilter struct {
	Session string
	// Path matches the path itself and everything below it.
	Path  string
	Limit int
}

// Watch is a persisted watch request.
type Watch struct {
	Path    string
	Mode    string
	AddedAt time.Time
}
