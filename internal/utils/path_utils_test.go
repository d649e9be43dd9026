package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDisplayPath(t *testing.T) {
	cases := []struct {
		path, cwd, want string
	}{
		{"/work/src/a.php", "/work", "./src/a.php"},
		{"/elsewhere/a.php", "/work", "/elsewhere/a.php"},
		{"/work/a.php", "", "/work/a.php"},
	}
	for _, c := range cases {
		if got := DisplayPath(c.path, c.cwd); got != c.want {
			t.Errorf("DisplayPath(%q, %q) = %q, want %q", c.path, c.cwd, got, c.want)
		}
	}
}

func TestCanonicalPathResolvesSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.php")
	if err := os.WriteFile(target, []byte("<?php\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.php")
	if err := os.Symlink(target, link); err != nil {
		t.Skip("symlinks unavailable:", err)
	}
	fromLink, err := CanonicalPath(link)
	if err != nil {
		t.Fatal(err)
	}
	fromTarget, err := CanonicalPath(target)
	if err != nil {
		t.Fatal(err)
	}
	if fromLink != fromTarget {
		t.Errorf("canonical forms differ: %q vs %q", fromLink, fromTarget)
	}
}

func TestCanonicalPathMissingFile(t *testing.T) {
	if _, err := CanonicalPath(filepath.Join(t.TempDir(), "nope.php")); err == nil {
		t.Error("missing file must fail canonicalization")
	}
}
