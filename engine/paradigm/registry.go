package paradigm

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Registry discovers and loads paradigms from a pluggable source (spec
// §4.2). FSRegistry is the default filesystem-backed implementation; any
// other source exposing Load/ListManifest may be injected in its place.
type Registry interface {
	Load(name string) (*Paradigm, error)
	ListManifest() (string, error)
}

var loadableExts = []string{".json", ".yaml", ".yml"}

// FSRegistry loads paradigm blueprints from JSON or YAML files in a
// directory, one file per paradigm named "<name><ext>". Loaded blueprints
// are immutable once resolved (spec §5 "caching is safe") and cached for
// the lifetime of the registry.
type FSRegistry struct {
	dir string

	mu    sync.Mutex
	cache map[string]*Paradigm
}

// NewFSRegistry builds a registry rooted at dir.
func NewFSRegistry(dir string) *FSRegistry {
	return &FSRegistry{dir: dir, cache: make(map[string]*Paradigm)}
}

// Load returns the named paradigm, resolving any extends chain and caching
// the result. An unknown name is a fatal "not found" error (spec §4.2).
func (r *FSRegistry) Load(name string) (*Paradigm, error) {
	return r.loadVisited(name, make(map[string]bool))
}

func (r *FSRegistry) loadVisited(name string, visited map[string]bool) (*Paradigm, error) {
	r.mu.Lock()
	if cached, ok := r.cache[name]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	r.mu.Unlock()

	if visited[name] {
		return nil, fmt.Errorf("paradigm: extends cycle detected at %q", name)
	}
	visited[name] = true

	p, err := r.readFile(name)
	if err != nil {
		return nil, err
	}
	p.Name = name

	resolved := p
	if p.Extends != "" {
		base, err := r.loadVisited(p.Extends, visited)
		if err != nil {
			return nil, fmt.Errorf("paradigm: %q: resolving extends %q: %w", name, p.Extends, err)
		}
		resolved, err = p.mergeOver(base)
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.cache[name] = resolved
	r.mu.Unlock()
	return resolved, nil
}

func (r *FSRegistry) readFile(name string) (*Paradigm, error) {
	path, err := r.resolveFile(name)
	if err != nil {
		return nil, fmt.Errorf("paradigm: %q not found", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("paradigm: reading %q: %w", name, err)
	}
	var p Paradigm
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("paradigm: malformed blueprint %q: %w", name, err)
	}
	return &p, nil
}

func (r *FSRegistry) resolveFile(name string) (string, error) {
	for _, ext := range loadableExts {
		candidate := filepath.Join(r.dir, name+ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", os.ErrNotExist
}

// ListManifest builds the machine-addressable catalog (spec §4.2): one
// bulleted entry per loadable paradigm naming its name, description,
// vertical-input keys, and horizontal-input keys.
func (r *FSRegistry) ListManifest() (string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return "", fmt.Errorf("paradigm: listing %q: %w", r.dir, err)
	}

	seen := make(map[string]bool)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		isLoadable := false
		for _, want := range loadableExts {
			if ext == want {
				isLoadable = true
				break
			}
		}
		if !isLoadable {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ext)
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		p, err := r.Load(name)
		if err != nil {
			return "", fmt.Errorf("paradigm: manifest entry %q: %w", name, err)
		}
		fmt.Fprintf(&b, "- %s: %s (vertical: %s; horizontal: %s)\n",
			name,
			p.Metadata.Description,
			strings.Join(p.Metadata.Inputs.Vertical, ", "),
			strings.Join(p.Metadata.Inputs.Horizontal, ", "),
		)
	}
	return b.String(), nil
}
