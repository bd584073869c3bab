package monitor

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem is the set of filesystem calls the engine depends on. Any of
// them may fail; the engine treats failures during scans as the entry having
// vanished.
type FileSystem interface {
	// Stat returns file info for name, following symbolic links.
	Stat(name string) (fs.FileInfo, error)
	// ReadDir lists the entries of a directory.
	ReadDir(name string) ([]fs.DirEntry, error)
	// Canonical returns the absolute, symlink-free form of name.
	Canonical(name string) (string, error)
}

// OSFileSystem is the FileSystem backed by the os package.
type OSFileSystem struct{}

func (OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

func (OSFileSystem) Canonical(name string) (string, error) {
	return Canonical(name)
}

// Canonical resolves path to an absolute path with every symbolic link
// evaluated. The path does not need to exist: the longest existing ancestor
// is resolved and the missing tail is appended to it.
func Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	var tail []string
	current := abs
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			return abs, nil
		}
		tail = append(tail, filepath.Base(current))
		current = parent
	}
}

// isHidden reports whether a file name denotes a hidden entry. Single
// character names such as "." are not hidden.
func isHidden(name string) bool {
	return len(name) > 1 && name[0] == '.'
}

// hiddenBelow reports whether any element of path below root is hidden.
// path must be root or inside it.
func hiddenBelow(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, name := range strings.Split(filepath.ToSlash(rel), "/") {
		if isHidden(name) {
			return true
		}
	}
	return false
}

// isAncestorOrEqual reports whether dir is path itself or one of its parents.
func isAncestorOrEqual(dir, path string) bool {
	return dir == path || isAncestor(dir, path)
}

// isAncestor reports whether dir is a strict parent of path.
func isAncestor(dir, path string) bool {
	if len(path) <= len(dir) || path[:len(dir)] != dir {
		return false
	}
	if dir[len(dir)-1] == filepath.Separator {
		return true
	}
	return path[len(dir)] == filepath.Separator
}
