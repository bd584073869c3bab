package monitor

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FindMatchingAntPath searches the filesystem for entries whose canonical
// path matches an Ant-style pattern ("*" within a segment, "**" across
// segments, "?" for one character).
//
// The search starts at the directory preceding the first "*" in the pattern,
// so the pattern must contain a "*" after at least one path separator. A
// search root that does not exist yields an empty result; one that is not a
// directory is an error. Both files and directories can match. The result is
// sorted by path.
func (m *Monitor) FindMatchingAntPath(pattern string) ([]FileDetails, error) {
	root, err := searchRoot(pattern)
	if err != nil {
		return nil, err
	}
	glob := escapeGlob(pattern)
	if !doublestar.ValidatePathPattern(glob) {
		return nil, fmt.Errorf("%w: %q is malformed", ErrInvalidPattern, pattern)
	}

	info, err := m.fs.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []FileDetails{}, nil
		}
		return nil, fmt.Errorf("stat search root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %q lies under %s", ErrNotDirectory, pattern, root)
	}

	result := []FileDetails{}
	m.antMatch(glob, root, &result)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Less(result[j])
	})
	return result, nil
}

// searchRoot derives the directory a pattern search starts from.
func searchRoot(pattern string) (string, error) {
	idx := strings.IndexByte(pattern, '*')
	if idx <= 0 {
		return "", fmt.Errorf("%w: %q does not contain a '*' after its first character", ErrInvalidPattern, pattern)
	}
	sep := strings.LastIndexByte(pattern[:idx], filepath.Separator)
	if sep < 0 {
		return "", fmt.Errorf("%w: %q has no %q separator before its first '*'", ErrInvalidPattern, pattern, string(filepath.Separator))
	}
	if sep == 0 {
		return string(filepath.Separator), nil
	}
	return pattern[:sep], nil
}

// escapeGlob quotes the characters doublestar treats as syntax but Ant
// patterns treat as literals, leaving "*", "**" and "?" as wildcards.
func escapeGlob(pattern string) string {
	var sb strings.Builder
	for _, r := range pattern {
		switch r {
		case '[', ']', '{', '}', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// antMatch appends every descendant of dir matching pattern to result.
// Directories are always descended into, matching or not; symbolic links to
// directories are reported but not followed.
func (m *Monitor) antMatch(pattern, dir string, result *[]FileDetails) {
	children, err := m.fs.ReadDir(dir)
	if err != nil {
		return
	}
	for _, child := range children {
		childPath := filepath.Join(dir, child.Name())
		info, err := m.fs.Stat(childPath)
		if err != nil {
			continue
		}
		if canonical, err := m.fs.Canonical(childPath); err == nil {
			if ok, _ := doublestar.PathMatch(pattern, canonical); ok {
				*result = append(*result, FileDetails{Path: canonical, ModTime: info.ModTime()})
			}
		}
		if info.IsDir() && child.Type()&fs.ModeSymlink == 0 {
			m.antMatch(pattern, childPath, result)
		}
	}
}
