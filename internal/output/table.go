// Package output provides terminal output utilities for pollwatch.
//
// This package includes:
//   - Table rendering for monitored paths, events, watches and search results
//   - Spinners for indeterminate operations
//   - Human-readable formatting for times and counts
//
// Tables use ANSI color codes only when stdout is a terminal and NO_COLOR is
// unset.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/pollwatch/internal/monitor"
	"github.com/blackwell-systems/pollwatch/internal/store"
)

// ANSI color codes for event operations
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

const pathWidth = 60

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// opColor returns the ANSI color for an event operation name.
func opColor(op string) string {
	switch op {
	case monitor.Created.String():
		return colorGreen
	case monitor.Updated.String():
		return colorYellow
	case monitor.Deleted.String():
		return colorRed
	default:
		return colorGray
	}
}

// formatOp pads before coloring so that escape codes do not break alignment.
func formatOp(op string) string {
	return colorize(opColor(op), fmt.Sprintf("%-17s", op))
}

// RenderDetailsTable renders paths with their modification times, in the
// order given. It serves both monitored listings and search results.
func RenderDetailsTable(details []monitor.FileDetails) string {
	if len(details) == 0 {
		return "No paths found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-*s %s\n", pathWidth, "Path", "Modified"))
	sb.WriteString(strings.Repeat("─", pathWidth+16))
	sb.WriteString("\n")

	for _, d := range details {
		sb.WriteString(fmt.Sprintf("%-*s %s\n",
			pathWidth,
			truncatePath(d.Path, pathWidth),
			formatRelativeTime(d.ModTime)))
	}

	sb.WriteString(fmt.Sprintf("\n%s paths\n", humanize.Comma(int64(len(details)))))
	return sb.String()
}

// RenderFileEventTable renders events as published by a scan.
func RenderFileEventTable(events []monitor.FileEvent) string {
	if len(events) == 0 {
		return "No changes.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-17s %-*s %s\n", "Event", pathWidth, "Path", "Modified"))
	sb.WriteString(strings.Repeat("─", pathWidth+34))
	sb.WriteString("\n")

	for _, e := range events {
		sb.WriteString(fmt.Sprintf("%s %-*s %s\n",
			formatOp(e.Op.String()),
			pathWidth,
			truncatePath(e.Path, pathWidth),
			formatRelativeTime(e.ModTime)))
	}
	return sb.String()
}

// RenderEventTable renders journaled events, newest first as stored.
func RenderEventTable(events []*store.Event) string {
	if len(events) == 0 {
		return "No events recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-16s %-17s %-*s %s\n", "Recorded", "Event", pathWidth, "Path", "Session"))
	sb.WriteString(strings.Repeat("─", pathWidth+45))
	sb.WriteString("\n")

	for _, e := range events {
		sb.WriteString(fmt.Sprintf("%-16s %s %-*s %s\n",
			formatRelativeTime(e.RecordedAt),
			formatOp(e.Op),
			pathWidth,
			truncatePath(e.Path, pathWidth),
			shortSession(e.Session)))
	}
	return sb.String()
}

// RenderWatchTable renders persisted watch requests.
func RenderWatchTable(watches []*store.Watch) string {
	if len(watches) == 0 {
		return "No watches configured.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-*s %-8s %s\n", pathWidth, "Path", "Mode", "Added"))
	sb.WriteString(strings.Repeat("─", pathWidth+24))
	sb.WriteString("\n")

	for _, w := range watches {
		sb.WriteString(fmt.Sprintf("%-*s %-8s %s\n",
			pathWidth,
			truncatePath(w.Path, pathWidth),
			w.Mode,
			formatRelativeTime(w.AddedAt)))
	}
	return sb.String()
}

// FormatCount renders n with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	if time.Since(t) < time.Minute && time.Since(t) > -time.Minute {
		return "just now"
	}
	return humanize.Time(t)
}

// shortSession keeps the first uuid group, which is enough to tell sessions apart.
func shortSession(session string) string {
	if i := strings.IndexByte(session, '-'); i > 0 {
		return session[:i]
	}
	return session
}

// truncatePath shortens a path from the left, keeping the file name visible.
func truncatePath(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[len(s)-maxLen:]
	}
	return "..." + s[len(s)-(maxLen-3):]
}
