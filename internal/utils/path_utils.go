package utils

import (
	"path/filepath"
	"strings"
)

// CanonicalPath resolves path to an absolute, symlink-free form. Loaded
// files are keyed by this form so the same file is never analyzed twice.
func CanonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// DisplayPath renders path relative to cwd with a leading `./` when the
// file lies inside cwd, and absolute otherwise.
func DisplayPath(path, cwd string) string {
	if cwd == "" {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return "./" + filepath.ToSlash(rel)
}
