// Package filesystem implements the body's file_system tool (spec §6):
// read/save/save_from_dict/exists plus the memorized-value side channel
// §4.7's memorized_parameter wrapper type resolves against. Grounded on
// engine/runtime/interface_test.go's Runtime contract shape (context-free
// here, since spec §5 treats filesystem reads/writes as synchronous tool
// I/O) and backed by github.com/spf13/afero so production runs against the
// OS filesystem and tests run against an in-memory one without touching
// disk.
package filesystem

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/GEOGUANSIN/normCode-sub001/engine/core"
)

// FS is the file_system tool: every relative path resolves against a base
// directory (spec §4.7 "relative to the agent's base directory").
type FS struct {
	cwd *core.PathCWD
	afs afero.Fs

	mu        sync.Mutex
	memorized map[string]string
}

// New builds an FS rooted at cwd, backed by the real OS filesystem.
func New(cwd *core.PathCWD) *FS {
	return NewWithFs(cwd, afero.NewOsFs())
}

// NewWithFs builds an FS over an arbitrary afero.Fs, e.g. afero.NewMemMapFs()
// in tests.
func NewWithFs(cwd *core.PathCWD, afs afero.Fs) *FS {
	return &FS{cwd: cwd, afs: afs, memorized: make(map[string]string)}
}

// Read implements file_system.read(path) → content, resolving path against
// cwd. Together with ReadMemorizedValue and Invoke, satisfies
// body.FileSystem; engine/body.Body wraps it to satisfy selector.Resolver.
func (f *FS) Read(path string) (string, error) {
	resolved, err := core.ResolvePath(f.cwd, path)
	if err != nil {
		return "", fmt.Errorf("filesystem: resolving %q: %w", path, err)
	}
	data, err := afero.ReadFile(f.afs, resolved)
	if err != nil {
		return "", fmt.Errorf("filesystem: file not found: %q: %w", path, err)
	}
	return string(data), nil
}

// Save implements file_system.save(content, location) → location, creating
// parent directories as needed.
func (f *FS) Save(content, location string) (string, error) {
	resolved, err := core.ResolvePath(f.cwd, location)
	if err != nil {
		return "", fmt.Errorf("filesystem: resolving %q: %w", location, err)
	}
	if err := f.afs.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return "", fmt.Errorf("filesystem: creating parent dir for %q: %w", location, err)
	}
	if err := afero.WriteFile(f.afs, resolved, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("filesystem: writing %q: %w", location, err)
	}
	return location, nil
}

// SaveFromDict implements file_system.save_from_dict(content_dict, directory)
// → saved_locations, writing one file per dict entry under directory, named
// by the dict key.
func (f *FS) SaveFromDict(contentDict map[string]any, directory string) (map[string]string, error) {
	saved := make(map[string]string, len(contentDict))
	for name, content := range contentDict {
		location := filepath.Join(directory, name)
		if _, err := f.Save(fmt.Sprintf("%v", content), location); err != nil {
			return nil, err
		}
		saved[name] = location
	}
	return saved, nil
}

// Exists implements file_system.exists(path) → bool.
func (f *FS) Exists(path string) bool {
	resolved, err := core.ResolvePath(f.cwd, path)
	if err != nil {
		return false
	}
	ok, err := afero.Exists(f.afs, resolved)
	return err == nil && ok
}

// ReadMemorizedValue implements file_system.read_memorized_value(name), the
// side channel §4.7's memorized_parameter wrapper type resolves through.
func (f *FS) ReadMemorizedValue(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.memorized[name]
	if !ok {
		return "", fmt.Errorf("filesystem: no memorized value %q", name)
	}
	return v, nil
}

// WriteMemorizedValue stores a memorized value. Per DESIGN.md's resolved
// open question, the core inference sequence never calls this itself; it
// exists so an external workflow (or a test) can seed values the core later
// reads.
func (f *FS) WriteMemorizedValue(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memorized[name] = value
}

// Invoke implements composition.Invokable, dispatching the five affordances
// spec §6 names. Results mirror the teacher's {status, ...} response shape
// ("file_system.read(path) → {status, content|message}").
func (f *FS) Invoke(method string, kwargs map[string]any, positional []any) (any, error) {
	switch method {
	case "read":
		path := stringArg(kwargs, positional, 0, "path")
		content, err := f.Read(path)
		if err != nil {
			return map[string]any{"status": "error", "message": err.Error()}, nil
		}
		return map[string]any{"status": "ok", "content": content}, nil
	case "save":
		content := stringArg(kwargs, positional, 0, "content")
		location := stringArg(kwargs, positional, 1, "location")
		loc, err := f.Save(content, location)
		if err != nil {
			return map[string]any{"status": "error", "message": err.Error()}, nil
		}
		return map[string]any{"status": "ok", "location": loc}, nil
	case "save_from_dict":
		contentDict, _ := kwargs["content_dict"].(map[string]any)
		directory := stringArg(kwargs, positional, 1, "directory")
		saved, err := f.SaveFromDict(contentDict, directory)
		if err != nil {
			return map[string]any{"status": "error", "message": err.Error()}, nil
		}
		return map[string]any{"status": "ok", "saved_locations": saved}, nil
	case "exists":
		path := stringArg(kwargs, positional, 0, "path")
		return f.Exists(path), nil
	case "read_memorized_value":
		name := stringArg(kwargs, positional, 0, "name")
		content, err := f.ReadMemorizedValue(name)
		if err != nil {
			return map[string]any{"status": "error", "message": err.Error()}, nil
		}
		return map[string]any{"status": "ok", "content": content}, nil
	default:
		return nil, fmt.Errorf("filesystem: unknown method %q", method)
	}
}

func stringArg(kwargs map[string]any, positional []any, idx int, name string) string {
	if v, ok := kwargs[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if idx < len(positional) {
		if s, ok := positional[idx].(string); ok {
			return s
		}
	}
	return ""
}
