// Package security validates file system paths handed to the local stores.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrForbiddenChar is returned for paths containing shell metacharacters.
	ErrForbiddenChar = errors.New("path contains forbidden character")
	// ErrEscapesDir is returned when a path resolves outside its base directory.
	ErrEscapesDir = errors.New("path escapes base directory")
)

var forbiddenChars = []string{";", "&", "|", "$", "`", "<", ">", "\n", "\r", "\x00"}

// CleanPath returns the absolute, symlink-resolved form of path. Paths that
// do not exist yet are returned cleaned.
func CleanPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	for _, char := range forbiddenChars {
		if strings.Contains(path, char) {
			return "", fmt.Errorf("%w %q: %s", ErrForbiddenChar, char, path)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if errors.Is(err, os.ErrNotExist) {
		return abs, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	return resolved, nil
}

// PathInDir joins name onto dir and rejects results outside dir.
func PathInDir(dir, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("base directory cannot be empty")
	}
	base, err := CleanPath(dir)
	if err != nil {
		return "", err
	}
	path, err := CleanPath(filepath.Join(base, name))
	if err != nil {
		return "", err
	}
	if path != base && !strings.HasPrefix(path, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s is not within %s", ErrEscapesDir, name, dir)
	}
	return path, nil
}
