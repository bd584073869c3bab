package monitor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonical_ResolvesSymlinksAndMissingTail(t *testing.T) {
	root := canonicalTempDir(t)
	real := filepath.Join(root, "real")
	mkdir(t, real, baseTime)
	link := filepath.Join(root, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "existing link", in: link, want: real},
		{name: "missing tail below link", in: filepath.Join(link, "a", "b.txt"), want: filepath.Join(real, "a", "b.txt")},
		{name: "dot segments", in: filepath.Join(root, "real", ".", "x", ".."), want: real},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonical(tt.in)
			if err != nil {
				t.Fatalf("Canonical(%s) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Canonical(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonical_Relative(t *testing.T) {
	got, err := Canonical("some-relative-name")
	if err != nil {
		t.Fatalf("Canonical() error = %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("Canonical() = %s, want an absolute path", got)
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{".git", true},
		{".env", true},
		{".", false},
		{"file.txt", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isHidden(tt.name); got != tt.want {
			t.Errorf("isHidden(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHiddenBelow(t *testing.T) {
	tests := []struct {
		root, path string
		want       bool
	}{
		{"/home/u/.config/app", "/home/u/.config/app/settings.yaml", false},
		{"/srv", "/srv/.git/HEAD", true},
		{"/srv", "/srv/src/.cache/x", true},
		{"/srv", "/srv", false},
		{"/srv", "/srv/src/main.go", false},
	}
	for _, tt := range tests {
		if got := hiddenBelow(tt.root, tt.path); got != tt.want {
			t.Errorf("hiddenBelow(%q, %q) = %v, want %v", tt.root, tt.path, got, tt.want)
		}
	}
}

func TestIsAncestor(t *testing.T) {
	tests := []struct {
		dir, path string
		ancestor  bool
		orEqual   bool
	}{
		{"/a/b", "/a/b/c", true, true},
		{"/a/b", "/a/b", false, true},
		{"/a/b", "/a/bc", false, false},
		{"/", "/etc", true, true},
		{"/a/b/c", "/a/b", false, false},
	}
	for _, tt := range tests {
		if got := isAncestor(tt.dir, tt.path); got != tt.ancestor {
			t.Errorf("isAncestor(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.ancestor)
		}
		if got := isAncestorOrEqual(tt.dir, tt.path); got != tt.orEqual {
			t.Errorf("isAncestorOrEqual(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.orEqual)
		}
	}
}
