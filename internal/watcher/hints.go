package watcher

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/pollwatch/internal/monitor"
)

const maxHintLinesPerTick = 10_000

// HintOp is the kind of change a producer reports in the hint log.
type HintOp string

const (
	HintChanged HintOp = "changed"
	HintCreated HintOp = "created"
	HintDeleted HintOp = "deleted"
)

// ParseHintOp validates a hint operation name.
func ParseHintOp(s string) (HintOp, error) {
	switch op := HintOp(strings.ToLower(s)); op {
	case HintChanged, HintCreated, HintDeleted:
		return op, nil
	}
	return "", fmt.Errorf("unknown hint operation %q (want changed, created or deleted)", s)
}

// AppendHint appends one hint for path to the log at logPath. The path is
// canonicalized first so that it matches the monitor's roots.
//
// Log format (one entry per line):
//
//	<unix_nano>,<op>,<path>
//
// Example:
//
//	1709012345678901234,changed,/srv/app/config.xml
func AppendHint(logPath string, op HintOp, path string, now time.Time) error {
	canonical, err := monitor.Canonical(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if strings.ContainsAny(canonical, "\r\n") {
		return fmt.Errorf("path %q contains a line break", canonical)
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("create hint log directory: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open hint log: %w", err)
	}
	defer f.Close()

	// A single write keeps concurrent appenders from interleaving.
	line := strconv.FormatInt(now.UnixNano(), 10) + "," + string(op) + "," + canonical + "\n"
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write hint: %w", err)
	}
	return nil
}

// ProcessHintLog feeds the hints appended to logPath since the last call into
// mon and returns how many were applied. The read position is kept in
// logPath+".offset" and advanced atomically. A missing log is not an error.
// An incomplete last line is left for the next call.
func ProcessHintLog(mon *monitor.Monitor, logPath string) (int, error) {
	offsetPath := logPath + ".offset"

	f, err := os.Open(logPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("hints: open log: %w", err)
	}
	defer f.Close()

	offset, err := readOffset(offsetPath)
	if err != nil {
		return 0, fmt.Errorf("hints: read offset: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("hints: stat log: %w", err)
	}
	// The log was truncated or replaced.
	if offset > info.Size() {
		offset = 0
	}
	if offset == info.Size() {
		return 0, nil
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("hints: seek: %w", err)
	}

	applied := 0
	pos := offset
	r := bufio.NewReader(f)
	for lines := 0; lines < maxHintLinesPerTick; lines++ {
		line, err := r.ReadString('\n')
		if err == io.EOF {
			break
		}
		if err != nil {
			return applied, fmt.Errorf("hints: read log: %w", err)
		}
		pos += int64(len(line))

		op, path, ok := parseHintLine(strings.TrimRight(line, "\r\n"))
		if !ok {
			continue
		}
		switch op {
		case HintChanged:
			mon.NotifyChanged(path)
		case HintCreated:
			mon.NotifyCreated(path)
		case HintDeleted:
			mon.NotifyDeleted(path)
		}
		applied++
	}

	if pos != offset {
		if err := writeOffsetAtomic(offsetPath, pos); err != nil {
			return applied, fmt.Errorf("hints: %w", err)
		}
	}
	return applied, nil
}

// parseHintLine parses a line of the form "<unix_nano>,<op>,<path>". The path
// may itself contain commas.
func parseHintLine(line string) (HintOp, string, bool) {
	parts := strings.SplitN(line, ",", 3)
	if len(parts) != 3 {
		return "", "", false
	}
	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || ts <= 0 {
		return "", "", false
	}
	op, err := ParseHintOp(parts[1])
	if err != nil {
		return "", "", false
	}
	if parts[2] == "" || !filepath.IsAbs(parts[2]) {
		return "", "", false
	}
	return op, parts[2], true
}

// readOffset reads the byte offset from the offset tracking file.
// Returns 0 if the file does not exist.
func readOffset(offsetPath string) (int64, error) {
	data, err := os.ReadFile(offsetPath)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return 0, nil
	}
	offset, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse offset %q: %w", s, err)
	}
	return offset, nil
}

// writeOffsetAtomic writes newOffset to offsetPath via a temp-file rename.
func writeOffsetAtomic(offsetPath string, newOffset int64) error {
	tmpPath := offsetPath + ".tmp"

	if err := os.WriteFile(tmpPath, []byte(strconv.FormatInt(newOffset, 10)), 0600); err != nil {
		return fmt.Errorf("write temp offset file: %w", err)
	}
	if err := os.Rename(tmpPath, offsetPath); err != nil {
		return fmt.Errorf("rename offset file: %w", err)
	}
	return nil
}
