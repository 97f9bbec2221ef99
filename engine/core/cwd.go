package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PathCWD is the agent's base directory, the root relative file paths
// (file_location, script_location, ...) resolve against.
type PathCWD struct {
	path string
}

// CWDFromPath normalizes path into a PathCWD. An empty path falls back to
// os.Getwd(). If path names a file rather than a directory, its parent
// directory is used.
func CWDFromPath(path string) (*PathCWD, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		return &PathCWD{path: cwd}, nil
	}
	absPath := path
	if !filepath.IsAbs(path) {
		var err error
		absPath, err = filepath.Abs(path)
		if err != nil {
			return nil, err
		}
	}
	if info, err := os.Stat(absPath); err == nil && !info.IsDir() {
		absPath = filepath.Dir(absPath)
	}
	return &PathCWD{path: absPath}, nil
}

// PathStr returns the underlying absolute path, or "" if cwd is nil.
func (c *PathCWD) PathStr() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Validate reports whether the cwd is usable.
func (c *PathCWD) Validate() error {
	if c == nil || c.path == "" {
		return errors.New("current working directory not set")
	}
	return nil
}

// Join resolves a path relative to the cwd (no existence check).
func (c *PathCWD) Join(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	if err := c.Validate(); err != nil {
		return "", fmt.Errorf("invalid cwd: %w", err)
	}
	joined := filepath.Join(c.path, path)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	return abs, nil
}

// JoinAndCheck resolves path relative to the cwd and verifies it exists.
func (c *PathCWD) JoinAndCheck(path string) (string, error) {
	filename, err := c.Join(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(filename); err != nil {
		return "", fmt.Errorf("file not found or inaccessible: %w", err)
	}
	return filename, nil
}

// ResolvePath resolves path against cwd, falling back to os.Getwd() when cwd
// is nil and path is relative.
func ResolvePath(cwd *PathCWD, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if filepath.IsAbs(path) {
		return filepath.Abs(path)
	}
	if cwd != nil {
		return cwd.Join(path)
	}
	return filepath.Abs(path)
}
