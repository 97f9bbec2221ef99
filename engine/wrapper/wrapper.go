// Package wrapper is the single source of truth for the wire-level typed
// reference encoding described in spec §4.1: `%{type}id(content)` or the
// typeless `%id(content)`. No other package may invent its own wrapper
// syntax; every component that needs to wrap, parse, or peek at a typed
// reference goes through this codec.
package wrapper

import (
	"fmt"
	"regexp"

	"github.com/GEOGUANSIN/normCode-sub001/engine/core"
)

// Type is one of the recognized wrapper types from spec §3. The taxonomy is
// open: Parse succeeds for any type string, recognized or not (consumers
// that don't recognize a type fall back to returning the inner content
// unchanged, per the §4.7 resolution table's "unknown / other" row).
type Type string

const (
	TypeFileLocation       Type = "file_location"
	TypeScriptLocation     Type = "script_location"
	TypeGeneratedScript    Type = "generated_script_path"
	TypePromptLocation     Type = "prompt_location"
	TypePrompt             Type = "prompt"
	TypeSavePath           Type = "save_path"
	TypeSaveDir            Type = "save_dir"
	TypeMemorizedParameter Type = "memorized_parameter"
	TypeNormal             Type = "normal"
	TypeFileLocationList   Type = "file_location_list"
)

// wirePattern matches both `%{type}id(content)` and `%id(content)`.
// Content spans to the final `)` in the string (DOTALL), per spec §6.
var wirePattern = regexp.MustCompile(`(?s)^%(?:\{([a-zA-Z0-9_]+)\})?([a-zA-Z0-9]*)\((.*)\)$`)

// Wrapped is the parsed form of a wire-encoded reference.
type Wrapped struct {
	Type    Type
	ID      string
	Content string
}

// Wrap renders content as a canonical wrapped string, generating a short
// unique id for traceability. If typ is empty, the typeless form is used.
func Wrap(content any, typ Type) string {
	id := core.ShortID()
	s := fmt.Sprintf("%v", content)
	if typ == "" {
		return fmt.Sprintf("%%%s(%s)", id, s)
	}
	return fmt.Sprintf("%%{%s}%s(%s)", typ, id, s)
}

// WrapWithID renders content with a caller-supplied id, for callers that
// need a deterministic id or want to reuse an existing one across a family
// of related wraps.
func WrapWithID(content any, typ Type, id string) string {
	s := fmt.Sprintf("%v", content)
	if typ == "" {
		return fmt.Sprintf("%%%s(%s)", id, s)
	}
	return fmt.Sprintf("%%{%s}%s(%s)", typ, id, s)
}

// IsWrapped reports whether value matches the wire syntax.
func IsWrapped(value string) bool {
	return wirePattern.MatchString(value)
}

// Parse decodes value. It returns (nil, false) for non-wrapped strings.
func Parse(value string) (*Wrapped, bool) {
	m := wirePattern.FindStringSubmatch(value)
	if m == nil {
		return nil, false
	}
	return &Wrapped{Type: Type(m[1]), ID: m[2], Content: m[3]}, true
}

// ExtractInner strips the wrapper and returns the inner content, or returns
// value unchanged if it is not wrapped.
func ExtractInner(value string) string {
	if w, ok := Parse(value); ok {
		return w.Content
	}
	return value
}
