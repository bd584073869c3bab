package monitor

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors returned by the engine.
var (
	ErrNilRequest       = errors.New("monitor: request required")
	ErrUnresolvablePath = errors.New("monitor: unable to resolve canonical path")
	ErrInvalidPattern   = errors.New("monitor: invalid ant path")
	ErrNotDirectory     = errors.New("monitor: search root is not a directory")
)

// Mode selects how much of a request's root is monitored.
type Mode int

const (
	// SingleFile monitors exactly the root path.
	SingleFile Mode = iota
	// DirectoryShallow monitors the root directory and the files directly inside it.
	DirectoryShallow
	// DirectorySubtree monitors the root directory and everything below it.
	DirectorySubtree
)

func (m Mode) String() string {
	switch m {
	case SingleFile:
		return "file"
	case DirectoryShallow:
		return "shallow"
	case DirectorySubtree:
		return "subtree"
	}
	return "unknown"
}

// ParseMode converts the config spelling of a mode ("file", "shallow",
// "subtree") into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file":
		return SingleFile, nil
	case "shallow", "dir", "directory":
		return DirectoryShallow, nil
	case "subtree", "tree", "recursive":
		return DirectorySubtree, nil
	}
	return 0, fmt.Errorf("unknown monitoring mode %q", s)
}

// Request is a registered root path plus a recursion mode. Requests are
// compared by identity: two requests built from the same path are distinct.
type Request struct {
	Path string
	Mode Mode
}

// NewRequest creates a watch request for path.
func NewRequest(path string, mode Mode) *Request {
	return &Request{Path: path, Mode: mode}
}

func (r *Request) String() string {
	return fmt.Sprintf("%s (%s)", r.Path, r.Mode)
}

// Op is the kind of change a FileEvent reports.
type Op int

const (
	Created Op = iota + 1
	Updated
	Deleted
	MonitoringStart
	MonitoringFinish
)

func (op Op) String() string {
	switch op {
	case Created:
		return "CREATED"
	case Updated:
		return "UPDATED"
	case Deleted:
		return "DELETED"
	case MonitoringStart:
		return "MONITORING_START"
	case MonitoringFinish:
		return "MONITORING_FINISH"
	}
	return "?"
}

// ParseOp is the inverse of Op.String.
func ParseOp(s string) (Op, bool) {
	for op := Created; op <= MonitoringFinish; op++ {
		if op.String() == s {
			return op, true
		}
	}
	return 0, false
}

// FileEvent reports a single change to a monitored path.
//
// ModTime is the file's modification time when the event was produced. For
// Deleted events it is the last modification time that was observed before the
// file disappeared, never the deletion time. A zero ModTime means unknown.
type FileEvent struct {
	Path    string
	ModTime time.Time
	Op      Op
}

func (e FileEvent) String() string {
	return fmt.Sprintf("%s %s", e.Op, e.Path)
}

// FileDetails pairs a path with its modification time.
type FileDetails struct {
	Path    string
	ModTime time.Time
}

// Less orders details by path, then by modification time.
func (d FileDetails) Less(other FileDetails) bool {
	if d.Path != other.Path {
		return d.Path < other.Path
	}
	return d.ModTime.Before(other.ModTime)
}

// Listener receives published events. OnEvent is called synchronously from
// the goroutine that triggered the publication; returning an error aborts the
// rest of the batch being published.
type Listener interface {
	OnEvent(FileEvent) error
}

type funcListener struct {
	fn func(FileEvent) error
}

func (l *funcListener) OnEvent(e FileEvent) error {
	return l.fn(e)
}

// ListenerFunc wraps fn in a Listener. Each call returns a distinct listener,
// so keep the returned value to remove it later.
func ListenerFunc(fn func(FileEvent) error) Listener {
	return &funcListener{fn: fn}
}
