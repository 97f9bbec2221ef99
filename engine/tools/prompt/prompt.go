// Package prompt implements the body's prompt_tool (spec §6 "prompt_tool.
// read(name) returns an object with a .template string"). No dedicated
// teacher file survived retrieval for this tool; it is grounded on the same
// core.PathCWD/afero-relative-read conventions as engine/tools/filesystem,
// since a named prompt is, on disk, just another file under the agent's
// base directory (spec §4.7's prompt_location row: "Ask the prompt tool to
// load the named prompt").
package prompt

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// Template is the object prompt_tool.read(name) returns, per spec §6.
type Template struct {
	Name     string
	Template string
}

// Source is the prompt_tool: named prompts are files under dir, read by
// name without an extension (tried in order) or with one.
type Source struct {
	dir  string
	afs  afero.Fs
	exts []string
}

// New builds a Source rooted at dir on the OS filesystem.
func New(dir string) *Source {
	return NewWithFs(dir, afero.NewOsFs())
}

// NewWithFs builds a Source over an arbitrary afero.Fs (e.g. an in-memory
// one in tests).
func NewWithFs(dir string, afs afero.Fs) *Source {
	return &Source{dir: dir, afs: afs, exts: []string{"", ".md", ".txt", ".prompt"}}
}

// Read implements prompt_tool.read(name).template, trying name as-is and
// with each recognized extension.
func (s *Source) Read(name string) (string, error) {
	for _, ext := range s.exts {
		path := filepath.Join(s.dir, name+ext)
		if data, err := afero.ReadFile(s.afs, path); err == nil {
			return string(data), nil
		}
	}
	return "", fmt.Errorf("prompt: no such prompt %q under %q", name, s.dir)
}

// ReadTemplate is Read wrapped into the §6 "object with a .template string"
// shape.
func (s *Source) ReadTemplate(name string) (*Template, error) {
	text, err := s.Read(name)
	if err != nil {
		return nil, err
	}
	return &Template{Name: name, Template: text}, nil
}

// Invoke implements composition.Invokable: the only affordance method is
// "read".
func (s *Source) Invoke(method string, kwargs map[string]any, positional []any) (any, error) {
	if method != "read" {
		return nil, fmt.Errorf("prompt: unknown method %q", method)
	}
	name, _ := kwargs["name"].(string)
	if name == "" && len(positional) > 0 {
		name, _ = positional[0].(string)
	}
	tmpl, err := s.ReadTemplate(name)
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}
