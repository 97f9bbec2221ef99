// Package selector implements MVP (Memory Value Perception): per-selector
// drill-down and branch transforms (spec §4.5), the wrapper resolution table
// (§4.7), and the cross-product + dict-formatting that turns the selected
// references into ready-to-consume input dictionaries.
package selector

import (
	"encoding/json"

	"github.com/GEOGUANSIN/normCode-sub001/engine/wrapper"
)

// Resolver is the tool-facing contract MVP leaf resolution needs: reading a
// file's content, looking up a memorized parameter, and loading a named
// prompt template. engine/body.Body implements it by delegating to its bound
// file_system and prompt_tool; tests here use an in-memory fake.
type Resolver interface {
	ReadFile(path string) (string, error)
	ReadMemorizedValue(name string) (string, error)
	LoadPrompt(name string) (string, error)
}

// Special marks a value that must land at a canonical dict key
// (prompt_template, save_dir, save_path, script_location) in the final MVP
// dict rather than become a positional input_N - the "special instructional
// value" of spec §4.5/§4.7.
type Special struct {
	Key   string
	Value any
}

// ResolveWrapped implements the §4.7 wrapper resolution table.
func ResolveWrapped(w *wrapper.Wrapped, r Resolver) (any, error) {
	switch w.Type {
	case wrapper.TypeFileLocation:
		return r.ReadFile(w.Content)
	case wrapper.TypePrompt:
		text, err := r.ReadFile(w.Content)
		if err != nil {
			return nil, err
		}
		return Special{Key: "prompt_template", Value: text}, nil
	case wrapper.TypePromptLocation:
		tmpl, err := r.LoadPrompt(w.Content)
		if err != nil {
			return nil, err
		}
		return Special{Key: "prompt_template", Value: tmpl}, nil
	case wrapper.TypeScriptLocation, wrapper.TypeGeneratedScript:
		return Special{Key: "script_location", Value: w.Content}, nil
	case wrapper.TypeSavePath:
		return Special{Key: "save_path", Value: w.Content}, nil
	case wrapper.TypeSaveDir:
		return Special{Key: "save_dir", Value: w.Content}, nil
	case wrapper.TypeMemorizedParameter:
		return r.ReadMemorizedValue(w.Content)
	default:
		return w.Content, nil
	}
}

// decodeLeaf implements "strip then drill": if v is a wrapped string, decode
// it and try to parse the inner content as a JSON literal (number, bool,
// list, dict), falling back to the raw string when that fails.
func decodeLeaf(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	w, ok := wrapper.Parse(s)
	if !ok {
		return v
	}
	var parsed any
	if err := json.Unmarshal([]byte(w.Content), &parsed); err == nil {
		return parsed
	}
	return w.Content
}

// rawInner extracts a value's raw inner content for branch synthesis: the
// wrapper's content if v is wrapped, else v's own string/any form unchanged.
func rawInner(v any) any {
	if s, ok := v.(string); ok {
		if w, ok := wrapper.Parse(s); ok {
			return w.Content
		}
	}
	return v
}

// specialAsValue flattens a Special into a plain map entry, the shape the
// spec's `{%{key}: ...}` bracket notation denotes when embedded as a branch
// dict value instead of promoted to the top-level MVP dict.
func specialAsValue(v any) any {
	if sp, ok := v.(Special); ok {
		return map[string]any{sp.Key: sp.Value}
	}
	return v
}
